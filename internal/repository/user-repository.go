package repository

import (
	"errors"
	"log"

	"github.com/chirotrack/backend/internal/domain"
	"gorm.io/gorm"
)

// ErrNotFound is the storage-neutral not-found the services branch on.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	CreateUser(user *domain.User) (*domain.User, error)
	FindUserByEmail(email string) (*domain.User, error)
	FindUserByID(userID uint) (*domain.User, error)
	FindUserByGoogleSub(sub string) (*domain.User, error)
	SaveUser(user *domain.User) error
	// IncrementOTPAttempts bumps the reset attempt counter with a
	// storage-level increment so two racing wrong guesses cannot both
	// observe the same value.
	IncrementOTPAttempts(userID uint) error
	ListUsers(search string, limit, offset int) ([]domain.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}

	if err := r.db.Create(user).Error; err != nil {
		log.Printf("create user error: %v", err)
		return nil, errors.New("failed to create user")
	}
	return user, nil
}

func (r *userRepository) FindUserByEmail(email string) (*domain.User, error) {
	user := &domain.User{}

	if err := r.db.First(user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("find user by email error: %v", err)
		return nil, errors.New("failed to find user by email")
	}
	return user, nil
}

func (r *userRepository) FindUserByID(userID uint) (*domain.User, error) {
	user := &domain.User{}

	if err := r.db.First(user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("find user by id error: %v", err)
		return nil, errors.New("failed to find user by ID")
	}
	return user, nil
}

func (r *userRepository) FindUserByGoogleSub(sub string) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.Where("google_sub = ? OR legacy_google_id = ?", sub, sub).First(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("find user by google sub error: %v", err)
		return nil, errors.New("failed to find user by google subject")
	}
	return user, nil
}

func (r *userRepository) SaveUser(user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}

	if err := r.db.Save(user).Error; err != nil {
		log.Printf("save user error: %v", err)
		return errors.New("failed to save user")
	}
	return nil
}

func (r *userRepository) IncrementOTPAttempts(userID uint) error {
	err := r.db.Model(&domain.User{}).
		Where("id = ?", userID).
		UpdateColumn("reset_otp_attempts", gorm.Expr("reset_otp_attempts + 1")).Error
	if err != nil {
		log.Printf("increment otp attempts error: %v", err)
		return errors.New("failed to increment otp attempts")
	}
	return nil
}

func (r *userRepository) ListUsers(search string, limit, offset int) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	q := r.db.Model(&domain.User{})
	if search != "" {
		like := "%" + EscapeLike(search) + "%"
		q = q.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?",
			like, like, like,
		)
	}

	if err := q.Count(&total).Error; err != nil {
		log.Printf("count users error: %v", err)
		return nil, 0, errors.New("failed to count users")
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		log.Printf("list users error: %v", err)
		return nil, 0, errors.New("failed to list users")
	}
	return users, total, nil
}
