package domain

import "time"

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

type Patient struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FullName    string     `gorm:"size:100;not null;index:idx_patients_owner_name,priority:2" json:"full_name"`
	Gender      string     `gorm:"type:varchar(10);not null" json:"gender"`
	DateOfBirth time.Time  `gorm:"not null" json:"date_of_birth"`
	LastScan    *time.Time `json:"last_scan,omitempty"`

	CreatedByID uint  `gorm:"not null;index:idx_patients_owner_name,priority:1" json:"created_by_id"`
	CreatedBy   *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// Age in full years as of now.
func (p *Patient) Age() int {
	return AgeAt(p.DateOfBirth, time.Now())
}

func AgeAt(dob, at time.Time) int {
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
