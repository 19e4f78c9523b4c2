package repository

import (
	"errors"
	"log"
	"time"

	"github.com/chirotrack/backend/internal/domain"
	"gorm.io/gorm"
)

type PoseStats struct {
	TotalScans      int64
	AverageAccuracy float64
	HighestAccuracy float64
	LowestAccuracy  float64
	FirstScan       *time.Time
	LastScan        *time.Time
}

type PoseRepository interface {
	CreatePose(p *domain.PoseDetection) (*domain.PoseDetection, error)
	FindPoseByID(id, ownerID uint) (*domain.PoseDetection, error)
	ListPosesByPatient(patientID uint, limit, offset int) ([]domain.PoseDetection, int64, error)
	ListPosesByOwner(ownerID uint, limit, offset int) ([]domain.PoseDetection, int64, error)
	RecentPoses(patientID uint, n int) ([]domain.PoseDetection, error)
	PoseStatsByPatient(patientID uint) (*PoseStats, error)
	SavePose(p *domain.PoseDetection) error
	DeletePose(id, ownerID uint) error
}

type poseRepository struct {
	db *gorm.DB
}

func NewPoseRepository(db *gorm.DB) PoseRepository {
	return &poseRepository{db: db}
}

func (r *poseRepository) CreatePose(p *domain.PoseDetection) (*domain.PoseDetection, error) {
	if p == nil {
		return nil, errors.New("nil pose detection")
	}

	if err := r.db.Create(p).Error; err != nil {
		log.Printf("create pose detection error: %v", err)
		return nil, errors.New("failed to create pose detection")
	}
	return p, nil
}

func (r *poseRepository) FindPoseByID(id, ownerID uint) (*domain.PoseDetection, error) {
	pose := &domain.PoseDetection{}

	err := r.db.Preload("Patient").Preload("CreatedBy").
		Where("id = ? AND created_by_id = ?", id, ownerID).
		First(pose).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("find pose detection error: %v", err)
		return nil, errors.New("failed to find pose detection")
	}
	return pose, nil
}

func (r *poseRepository) ListPosesByPatient(patientID uint, limit, offset int) ([]domain.PoseDetection, int64, error) {
	return r.list(r.db.Where("patient_id = ?", patientID), limit, offset)
}

func (r *poseRepository) ListPosesByOwner(ownerID uint, limit, offset int) ([]domain.PoseDetection, int64, error) {
	return r.list(r.db.Where("created_by_id = ?", ownerID), limit, offset)
}

func (r *poseRepository) list(q *gorm.DB, limit, offset int) ([]domain.PoseDetection, int64, error) {
	var poses []domain.PoseDetection
	var total int64

	if err := q.Model(&domain.PoseDetection{}).Count(&total).Error; err != nil {
		log.Printf("count pose detections error: %v", err)
		return nil, 0, errors.New("failed to count pose detections")
	}
	err := q.Preload("CreatedBy").
		Order("scan_date DESC").
		Limit(limit).Offset(offset).
		Find(&poses).Error
	if err != nil {
		log.Printf("list pose detections error: %v", err)
		return nil, 0, errors.New("failed to list pose detections")
	}
	return poses, total, nil
}

func (r *poseRepository) RecentPoses(patientID uint, n int) ([]domain.PoseDetection, error) {
	var poses []domain.PoseDetection

	err := r.db.Where("patient_id = ?", patientID).
		Order("scan_date DESC").
		Limit(n).
		Find(&poses).Error
	if err != nil {
		log.Printf("recent pose detections error: %v", err)
		return nil, errors.New("failed to load recent pose detections")
	}
	return poses, nil
}

func (r *poseRepository) PoseStatsByPatient(patientID uint) (*PoseStats, error) {
	var row struct {
		TotalScans      int64
		AverageAccuracy float64
		HighestAccuracy float64
		LowestAccuracy  float64
		FirstScan       *time.Time
		LastScan        *time.Time
	}

	err := r.db.Model(&domain.PoseDetection{}).
		Select(`COUNT(*) AS total_scans,
			COALESCE(AVG(summary_best_pose_accuracy), 0) AS average_accuracy,
			COALESCE(MAX(summary_best_pose_accuracy), 0) AS highest_accuracy,
			COALESCE(MIN(summary_best_pose_accuracy), 0) AS lowest_accuracy,
			MIN(scan_date) AS first_scan,
			MAX(scan_date) AS last_scan`).
		Where("patient_id = ?", patientID).
		Scan(&row).Error
	if err != nil {
		log.Printf("pose stats error: %v", err)
		return nil, errors.New("failed to aggregate pose statistics")
	}

	return &PoseStats{
		TotalScans:      row.TotalScans,
		AverageAccuracy: row.AverageAccuracy,
		HighestAccuracy: row.HighestAccuracy,
		LowestAccuracy:  row.LowestAccuracy,
		FirstScan:       row.FirstScan,
		LastScan:        row.LastScan,
	}, nil
}

func (r *poseRepository) SavePose(p *domain.PoseDetection) error {
	if p == nil {
		return errors.New("nil pose detection")
	}

	if err := r.db.Save(p).Error; err != nil {
		log.Printf("save pose detection error: %v", err)
		return errors.New("failed to save pose detection")
	}
	return nil
}

func (r *poseRepository) DeletePose(id, ownerID uint) error {
	res := r.db.Where("id = ? AND created_by_id = ?", id, ownerID).Delete(&domain.PoseDetection{})
	if res.Error != nil {
		log.Printf("delete pose detection error: %v", res.Error)
		return errors.New("failed to delete pose detection")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
