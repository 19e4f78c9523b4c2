package domain

import "time"

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// ResetOTP is the per-user password-reset challenge. It lives inside the
// users row so issue/verify are single-row operations.
type ResetOTP struct {
	Code      *string    `json:"-"`
	ExpiresAt *time.Time `json:"-"`
	Attempts  int        `gorm:"not null;default:0" json:"-"`
}

type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	FirstName    string  `gorm:"size:50;not null" json:"first_name"`
	LastName     string  `gorm:"size:50" json:"last_name"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `json:"-"`
	GoogleSub    *string `gorm:"uniqueIndex" json:"-"`
	// Legacy subject id kept from the pre-Firebase sign-in rollout. Still
	// unique so old rows cannot collide.
	LegacyGoogleID *string `gorm:"uniqueIndex" json:"-"`
	Provider       string  `gorm:"type:varchar(20);not null;default:local" json:"provider"`

	LastLogin      *time.Time `json:"last_login,omitempty"`
	EmailVerified  bool       `gorm:"not null;default:false" json:"is_email_verified"`
	ProfilePicture *string    `json:"profile_picture,omitempty"`

	ResetOTP ResetOTP `gorm:"embedded;embeddedPrefix:reset_otp_" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPassword reports whether the account can authenticate locally. Accounts
// provisioned from a Google token have no hash until a password is set.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
