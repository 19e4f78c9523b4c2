package repository

import (
	"errors"
	"log"

	"github.com/chirotrack/backend/internal/domain"
	"gorm.io/gorm"
)

type PatientRepository interface {
	CreatePatient(p *domain.Patient) (*domain.Patient, error)
	// FindPatientByID only returns the patient when it belongs to ownerID.
	FindPatientByID(id, ownerID uint) (*domain.Patient, error)
	// FindPatientByName matches case-insensitively on the exact name within
	// one practitioner's records. excludeID skips a row (0 to disable).
	FindPatientByName(fullName string, ownerID, excludeID uint) (*domain.Patient, error)
	ListPatients(ownerID uint, search string, limit, offset int) ([]domain.Patient, int64, error)
	SavePatient(p *domain.Patient) error
	DeletePatient(id, ownerID uint) error
	TouchLastScan(patientID uint) error
}

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) CreatePatient(p *domain.Patient) (*domain.Patient, error) {
	if p == nil {
		return nil, errors.New("nil patient")
	}

	if err := r.db.Create(p).Error; err != nil {
		log.Printf("create patient error: %v", err)
		return nil, errors.New("failed to create patient")
	}
	return p, nil
}

func (r *patientRepository) FindPatientByID(id, ownerID uint) (*domain.Patient, error) {
	patient := &domain.Patient{}

	err := r.db.Preload("CreatedBy").
		Where("id = ? AND created_by_id = ?", id, ownerID).
		First(patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("find patient error: %v", err)
		return nil, errors.New("failed to find patient")
	}
	return patient, nil
}

func (r *patientRepository) FindPatientByName(fullName string, ownerID, excludeID uint) (*domain.Patient, error) {
	patient := &domain.Patient{}

	q := r.db.Where("created_by_id = ? AND LOWER(full_name) = LOWER(?)", ownerID, fullName)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.First(patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("find patient by name error: %v", err)
		return nil, errors.New("failed to find patient by name")
	}
	return patient, nil
}

func (r *patientRepository) ListPatients(ownerID uint, search string, limit, offset int) ([]domain.Patient, int64, error) {
	var patients []domain.Patient
	var total int64

	q := r.db.Model(&domain.Patient{}).Where("created_by_id = ?", ownerID)
	if search != "" {
		q = q.Where("full_name ILIKE ?", "%"+EscapeLike(search)+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		log.Printf("count patients error: %v", err)
		return nil, 0, errors.New("failed to count patients")
	}
	err := q.Preload("CreatedBy").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&patients).Error
	if err != nil {
		log.Printf("list patients error: %v", err)
		return nil, 0, errors.New("failed to list patients")
	}
	return patients, total, nil
}

func (r *patientRepository) SavePatient(p *domain.Patient) error {
	if p == nil {
		return errors.New("nil patient")
	}

	if err := r.db.Save(p).Error; err != nil {
		log.Printf("save patient error: %v", err)
		return errors.New("failed to save patient")
	}
	return nil
}

func (r *patientRepository) DeletePatient(id, ownerID uint) error {
	res := r.db.Where("id = ? AND created_by_id = ?", id, ownerID).Delete(&domain.Patient{})
	if res.Error != nil {
		log.Printf("delete patient error: %v", res.Error)
		return errors.New("failed to delete patient")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepository) TouchLastScan(patientID uint) error {
	err := r.db.Model(&domain.Patient{}).
		Where("id = ?", patientID).
		UpdateColumn("last_scan", gorm.Expr("NOW()")).Error
	if err != nil {
		log.Printf("touch last scan error: %v", err)
		return errors.New("failed to update last scan")
	}
	return nil
}
