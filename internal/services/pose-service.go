package services

import (
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/chirotrack/backend/internal/domain"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/repository"
)

var (
	ErrPoseNotFound    = errors.New("pose detection record not found")
	ErrInvalidAccuracy = errors.New("accuracy must be between 0 and 100")
	ErrInvalidSummary  = errors.New("invalid scan summary")
	ErrNotesTooLong    = errors.New("notes cannot exceed 1000 characters")
)

var jointsDetectedPattern = regexp.MustCompile(`^\d+/\d+$`)

type PoseService interface {
	CreatePose(ownerID uint, input dto.CreatePoseDetectionRequest) (*domain.PoseDetection, error)
	GetPosesByPatient(ownerID, patientID uint, page, limit int) (*dto.PoseDetectionListData, error)
	GetAllPoses(ownerID uint, page, limit int) (*dto.PoseDetectionListData, error)
	GetPose(id, ownerID uint) (*domain.PoseDetection, error)
	UpdatePose(id, ownerID uint, input dto.UpdatePoseDetectionRequest) (*domain.PoseDetection, error)
	DeletePose(id, ownerID uint) error
	GetStats(ownerID, patientID uint) (*dto.PoseDetectionStatsData, error)
}

type poseService struct {
	repo     repository.PoseRepository
	patients repository.PatientRepository
	now      func() time.Time
}

func NewPoseService(repo repository.PoseRepository, patients repository.PatientRepository) PoseService {
	return &poseService{repo: repo, patients: patients, now: time.Now}
}

// ownedPatient gate-keeps every per-patient operation: scans are only
// reachable through a patient the caller owns.
func (s *poseService) ownedPatient(patientID, ownerID uint) (*domain.Patient, error) {
	patient, err := s.patients.FindPatientByID(patientID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return patient, nil
}

func (s *poseService) CreatePose(ownerID uint, input dto.CreatePoseDetectionRequest) (*domain.PoseDetection, error) {
	if _, err := s.ownedPatient(input.PatientID, ownerID); err != nil {
		return nil, err
	}
	if err := validateSummary(input.Summary); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(input.Notes) > 1000 {
		return nil, ErrNotesTooLong
	}

	pose, err := s.repo.CreatePose(&domain.PoseDetection{
		PatientID:     input.PatientID,
		CreatedByID:   ownerID,
		Summary:       input.Summary,
		BodyDetection: input.BodyDetection,
		Proportions:   input.Proportions,
		Joints:        input.Joints,
		ScanDate:      s.now(),
		DeviceInfo:    "Apple Vision API",
		Notes:         input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.patients.TouchLastScan(input.PatientID); err != nil {
		// The scan is saved; a stale last_scan stamp is not worth failing
		// the request over.
		return pose, nil
	}
	return pose, nil
}

func (s *poseService) GetPosesByPatient(ownerID, patientID uint, page, limit int) (*dto.PoseDetectionListData, error) {
	patient, err := s.ownedPatient(patientID, ownerID)
	if err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)

	poses, total, err := s.repo.ListPosesByPatient(patientID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &dto.PoseDetectionListData{
		PoseDetections: poseResponses(poses),
		Patient: &dto.PatientRef{
			ID:       patient.ID,
			FullName: patient.FullName,
			Gender:   patient.Gender,
		},
		Pagination: dto.NewPagination(page, limit, total, len(poses)),
	}, nil
}

func (s *poseService) GetAllPoses(ownerID uint, page, limit int) (*dto.PoseDetectionListData, error) {
	page, limit = normalizePage(page, limit)

	poses, total, err := s.repo.ListPosesByOwner(ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &dto.PoseDetectionListData{
		PoseDetections: poseResponses(poses),
		Pagination:     dto.NewPagination(page, limit, total, len(poses)),
	}, nil
}

func (s *poseService) GetPose(id, ownerID uint) (*domain.PoseDetection, error) {
	pose, err := s.repo.FindPoseByID(id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPoseNotFound
		}
		return nil, err
	}
	return pose, nil
}

func (s *poseService) UpdatePose(id, ownerID uint, input dto.UpdatePoseDetectionRequest) (*domain.PoseDetection, error) {
	pose, err := s.GetPose(id, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Summary != nil {
		if err := validateSummary(*input.Summary); err != nil {
			return nil, err
		}
		pose.Summary = *input.Summary
	}
	if input.BodyDetection != nil {
		pose.BodyDetection = input.BodyDetection
	}
	if input.Proportions != nil {
		pose.Proportions = *input.Proportions
	}
	if input.Joints != nil {
		pose.Joints = input.Joints
	}
	if input.Notes != nil {
		if utf8.RuneCountInString(*input.Notes) > 1000 {
			return nil, ErrNotesTooLong
		}
		pose.Notes = *input.Notes
	}

	if err := s.repo.SavePose(pose); err != nil {
		return nil, err
	}
	return pose, nil
}

func (s *poseService) DeletePose(id, ownerID uint) error {
	if err := s.repo.DeletePose(id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPoseNotFound
		}
		return err
	}
	return nil
}

func (s *poseService) GetStats(ownerID, patientID uint) (*dto.PoseDetectionStatsData, error) {
	patient, err := s.ownedPatient(patientID, ownerID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.PoseStatsByPatient(patientID)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.RecentPoses(patientID, 5)
	if err != nil {
		return nil, err
	}

	return &dto.PoseDetectionStatsData{
		Patient: dto.PatientRef{
			ID:       patient.ID,
			FullName: patient.FullName,
		},
		Statistics: dto.PoseDetectionStats{
			TotalScans:      stats.TotalScans,
			AverageAccuracy: stats.AverageAccuracy,
			HighestAccuracy: stats.HighestAccuracy,
			LowestAccuracy:  stats.LowestAccuracy,
			FirstScan:       stats.FirstScan,
			LastScan:        stats.LastScan,
		},
		RecentScans: poseResponses(recent),
	}, nil
}

func validateSummary(s domain.ScanSummary) error {
	if s.BestPoseAccuracy < 0 || s.BestPoseAccuracy > 100 {
		return ErrInvalidAccuracy
	}
	if s.ValidPosesDetected < 0 || !jointsDetectedPattern.MatchString(s.JointsDetected) {
		return ErrInvalidSummary
	}
	return nil
}

func poseResponses(poses []domain.PoseDetection) []dto.PoseDetectionResponse {
	out := make([]dto.PoseDetectionResponse, 0, len(poses))
	for i := range poses {
		out = append(out, dto.NewPoseDetectionResponse(&poses[i]))
	}
	return out
}
