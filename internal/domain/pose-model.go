package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Joint names accepted from the vision pipeline.
var JointNames = []string{
	"Head", "L. Shoulder", "R. Shoulder", "L. Elbow", "R. Elbow",
	"L. Wrist", "R. Wrist", "L. Hip", "R. Hip", "L. Knee", "R. Knee",
	"L. Ankle", "R. Ankle", "Neck", "Torso",
}

var BodyRegions = []string{"Head", "Torso", "Arms", "Legs"}

type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Joint struct {
	Name              string      `json:"name"`
	Status            bool        `json:"status"`
	Confidence        float64     `json:"confidence"`
	ScreenCoordinates Coordinates `json:"screenCoordinates"`
	VisionCoordinates Coordinates `json:"visionCoordinates"`
}

type BodyRegion struct {
	Region   string  `json:"region"`
	Detected int     `json:"detected"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

type Proportions struct {
	Height    float64 `json:"height"`
	Shoulders float64 `json:"shoulders"`
	Ratio     float64 `json:"ratio"`
}

type JointList []Joint

type BodyRegionList []BodyRegion

type ScanSummary struct {
	ValidPosesDetected     int     `json:"valid_poses_detected"`
	BestPoseAccuracy       float64 `json:"best_pose_accuracy"`
	JointsDetected         string  `gorm:"size:16" json:"joints_detected"`
	CriticalJointsDetected bool    `json:"critical_joints_detected"`
}

type PoseDetection struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PatientID uint     `gorm:"not null;index:idx_poses_patient_scan,priority:1" json:"patient_id"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`

	CreatedByID uint  `gorm:"not null;index" json:"created_by_id"`
	CreatedBy   *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	Summary ScanSummary `gorm:"embedded;embeddedPrefix:summary_" json:"summary"`

	BodyDetection BodyRegionList `gorm:"type:jsonb" json:"body_detection"`
	Proportions   Proportions    `gorm:"embedded;embeddedPrefix:proportions_" json:"proportions"`
	Joints        JointList      `gorm:"type:jsonb" json:"joints"`

	ScanDate   time.Time `gorm:"not null;index:idx_poses_patient_scan,priority:2,sort:desc" json:"scan_date"`
	DeviceInfo string    `gorm:"size:100;default:Apple Vision API" json:"device_info"`
	Notes      string    `gorm:"size:1000" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OverallAssessment bands the best-pose accuracy for the clinician UI.
func (p *PoseDetection) OverallAssessment() string {
	return AssessAccuracy(p.Summary.BestPoseAccuracy)
}

func AssessAccuracy(accuracy float64) string {
	switch {
	case accuracy >= 90:
		return "Excellent"
	case accuracy >= 80:
		return "Good"
	case accuracy >= 70:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func (j JointList) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JointList) Scan(value interface{}) error {
	return scanJSON(value, j)
}

func (b BodyRegionList) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *BodyRegionList) Scan(value interface{}) error {
	return scanJSON(value, b)
}

func scanJSON(value, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported jsonb source type")
	}
}
