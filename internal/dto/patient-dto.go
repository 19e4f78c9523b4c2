package dto

import (
	"time"

	"github.com/chirotrack/backend/internal/domain"
)

type CreatePatientRequest struct {
	FullName    string `json:"fullName" validate:"required,max=100"`
	Gender      string `json:"gender" validate:"required,oneof=Male Female Other"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
}

type UpdatePatientRequest struct {
	FullName    string `json:"fullName,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

type PatientOwner struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type PatientResponse struct {
	ID          uint          `json:"id"`
	FullName    string        `json:"fullName"`
	Gender      string        `json:"gender"`
	DateOfBirth time.Time     `json:"dateOfBirth"`
	Age         int           `json:"age"`
	LastScan    *time.Time    `json:"lastScan,omitempty"`
	CreatedBy   *PatientOwner `json:"createdBy,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Only populated by the search endpoint.
	RelevanceScore int `json:"relevanceScore,omitempty"`
}

func NewPatientResponse(p *domain.Patient) PatientResponse {
	resp := PatientResponse{
		ID:          p.ID,
		FullName:    p.FullName,
		Gender:      p.Gender,
		DateOfBirth: p.DateOfBirth,
		Age:         p.Age(),
		LastScan:    p.LastScan,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.CreatedBy != nil {
		resp.CreatedBy = &PatientOwner{
			ID:        p.CreatedBy.ID,
			FirstName: p.CreatedBy.FirstName,
			LastName:  p.CreatedBy.LastName,
			Email:     p.CreatedBy.Email,
		}
	}
	return resp
}

type PatientListData struct {
	Patients   []PatientResponse `json:"patients"`
	Pagination Pagination        `json:"pagination"`
}
