package services

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chirotrack/backend/internal/domain"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/repository"
)

var (
	ErrPatientNotFound     = errors.New("patient record not found")
	ErrPatientNameTaken    = errors.New("a patient with this name already exists in your records")
	ErrInvalidGender       = errors.New("gender must be Male, Female, or Other")
	ErrInvalidDateOfBirth  = errors.New("invalid date of birth")
	ErrDateOfBirthInFuture = errors.New("date of birth cannot be in the future")
	ErrSearchQueryRequired = errors.New("search query is required")
)

type PatientService interface {
	CreatePatient(ownerID uint, input dto.CreatePatientRequest) (*domain.Patient, error)
	GetPatients(ownerID uint, search string, page, limit int) (*dto.PatientListData, error)
	SearchPatients(ownerID uint, query string, page, limit int) (*dto.PatientListData, error)
	GetPatient(id, ownerID uint) (*domain.Patient, error)
	UpdatePatient(id, ownerID uint, input dto.UpdatePatientRequest) (*domain.Patient, error)
	DeletePatient(id, ownerID uint) error
}

type patientService struct {
	repo repository.PatientRepository
	now  func() time.Time
}

func NewPatientService(repo repository.PatientRepository) PatientService {
	return &patientService{repo: repo, now: time.Now}
}

func (s *patientService) CreatePatient(ownerID uint, input dto.CreatePatientRequest) (*domain.Patient, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" || utf8.RuneCountInString(fullName) > 100 {
		return nil, ErrInvalidInput
	}
	if !domain.ValidGender(input.Gender) {
		return nil, ErrInvalidGender
	}
	dob, err := parseDate(input.DateOfBirth)
	if err != nil {
		return nil, ErrInvalidDateOfBirth
	}
	if dob.After(s.now()) {
		return nil, ErrDateOfBirthInFuture
	}

	if _, err := s.repo.FindPatientByName(fullName, ownerID, 0); err == nil {
		return nil, ErrPatientNameTaken
	}

	return s.repo.CreatePatient(&domain.Patient{
		FullName:    fullName,
		Gender:      input.Gender,
		DateOfBirth: dob,
		CreatedByID: ownerID,
	})
}

func (s *patientService) GetPatients(ownerID uint, search string, page, limit int) (*dto.PatientListData, error) {
	page, limit = normalizePage(page, limit)

	patients, total, err := s.repo.ListPatients(ownerID, strings.TrimSpace(search), limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		out = append(out, dto.NewPatientResponse(&patients[i]))
	}
	return &dto.PatientListData{
		Patients:   out,
		Pagination: dto.NewPagination(page, limit, total, len(out)),
	}, nil
}

func (s *patientService) SearchPatients(ownerID uint, query string, page, limit int) (*dto.PatientListData, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrSearchQueryRequired
	}
	page, limit = normalizePage(page, limit)

	patients, total, err := s.repo.ListPatients(ownerID, query, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		resp := dto.NewPatientResponse(&patients[i])
		resp.RelevanceScore = relevanceScore(patients[i].FullName, query)
		out = append(out, resp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})

	return &dto.PatientListData{
		Patients:   out,
		Pagination: dto.NewPagination(page, limit, total, len(out)),
	}, nil
}

func (s *patientService) GetPatient(id, ownerID uint) (*domain.Patient, error) {
	patient, err := s.repo.FindPatientByID(id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return patient, nil
}

func (s *patientService) UpdatePatient(id, ownerID uint, input dto.UpdatePatientRequest) (*domain.Patient, error) {
	patient, err := s.GetPatient(id, ownerID)
	if err != nil {
		return nil, err
	}

	if fullName := strings.TrimSpace(input.FullName); fullName != "" && fullName != patient.FullName {
		if utf8.RuneCountInString(fullName) > 100 {
			return nil, ErrInvalidInput
		}
		if _, err := s.repo.FindPatientByName(fullName, ownerID, id); err == nil {
			return nil, ErrPatientNameTaken
		}
		patient.FullName = fullName
	}
	if input.Gender != "" {
		if !domain.ValidGender(input.Gender) {
			return nil, ErrInvalidGender
		}
		patient.Gender = input.Gender
	}
	if input.DateOfBirth != "" {
		dob, err := parseDate(input.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateOfBirth
		}
		if dob.After(s.now()) {
			return nil, ErrDateOfBirthInFuture
		}
		patient.DateOfBirth = dob
	}

	if err := s.repo.SavePatient(patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *patientService) DeletePatient(id, ownerID uint) error {
	if err := s.repo.DeletePatient(id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPatientNotFound
		}
		return err
	}
	return nil
}

// relevanceScore ranks how well a patient name matches the search term:
// exact > prefix > substring > word prefix.
func relevanceScore(fullName, query string) int {
	name := strings.ToLower(fullName)
	term := strings.ToLower(strings.TrimSpace(query))

	switch {
	case name == term:
		return 100
	case strings.HasPrefix(name, term):
		return 80
	case strings.Contains(name, term):
		return 60
	}
	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, term) {
			return 40
		}
	}
	return 0
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateOfBirth
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
