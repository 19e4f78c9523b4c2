package dto

import (
	"time"

	"github.com/chirotrack/backend/internal/domain"
)

type CreatePoseDetectionRequest struct {
	PatientID     uint                  `json:"patientId" validate:"required"`
	Summary       domain.ScanSummary    `json:"summary" validate:"required"`
	BodyDetection []domain.BodyRegion   `json:"bodyDetection"`
	Proportions   domain.Proportions    `json:"proportions"`
	Joints        []domain.Joint        `json:"joints"`
	Notes         string                `json:"notes,omitempty" validate:"max=1000"`
}

type UpdatePoseDetectionRequest struct {
	Summary       *domain.ScanSummary `json:"summary,omitempty"`
	BodyDetection []domain.BodyRegion `json:"bodyDetection,omitempty"`
	Proportions   *domain.Proportions `json:"proportions,omitempty"`
	Joints        []domain.Joint      `json:"joints,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
}

type PoseDetectionResponse struct {
	ID                uint                  `json:"id"`
	PatientID         uint                  `json:"patientId"`
	Summary           domain.ScanSummary    `json:"summary"`
	BodyDetection     domain.BodyRegionList `json:"bodyDetection"`
	Proportions       domain.Proportions    `json:"proportions"`
	Joints            domain.JointList      `json:"joints"`
	ScanDate          time.Time             `json:"scanDate"`
	DeviceInfo        string                `json:"deviceInfo"`
	Notes             string                `json:"notes,omitempty"`
	OverallAssessment string                `json:"overallAssessment"`
	CreatedBy         *PatientOwner         `json:"createdBy,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
}

func NewPoseDetectionResponse(p *domain.PoseDetection) PoseDetectionResponse {
	resp := PoseDetectionResponse{
		ID:                p.ID,
		PatientID:         p.PatientID,
		Summary:           p.Summary,
		BodyDetection:     p.BodyDetection,
		Proportions:       p.Proportions,
		Joints:            p.Joints,
		ScanDate:          p.ScanDate,
		DeviceInfo:        p.DeviceInfo,
		Notes:             p.Notes,
		OverallAssessment: p.OverallAssessment(),
		CreatedAt:         p.CreatedAt,
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

type PatientRef struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Gender   string `json:"gender,omitempty"`
}

type PoseDetectionListData struct {
	PoseDetections []PoseDetectionResponse `json:"poseDetections"`
	Patient        *PatientRef             `json:"patient,omitempty"`
	Pagination     Pagination              `json:"pagination"`
}

type PoseDetectionStats struct {
	TotalScans      int64      `json:"totalScans"`
	AverageAccuracy float64    `json:"averageAccuracy"`
	HighestAccuracy float64    `json:"highestAccuracy"`
	LowestAccuracy  float64    `json:"lowestAccuracy"`
	FirstScan       *time.Time `json:"firstScan"`
	LastScan        *time.Time `json:"lastScan"`
}

type PoseDetectionStatsData struct {
	Patient     PatientRef              `json:"patient"`
	Statistics  PoseDetectionStats      `json:"statistics"`
	RecentScans []PoseDetectionResponse `json:"recentScans"`
}
