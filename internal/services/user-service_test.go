package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chirotrack/backend/internal/domain"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	url    string
	folder string
	name   string
	err    error
}

func (u *fakeUploader) UploadBytes(ctx context.Context, folder, filename string, b []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.folder = folder
	u.name = filename
	return u.url, nil
}

func newUserFixture(t *testing.T) (*fakeUserRepo, *fakeUploader, UserService) {
	t.Helper()

	repo := newFakeUserRepo()
	uploader := &fakeUploader{url: "https://cdn.example.com/p.jpg"}
	auth := helper.SetupAuth("test-secret", time.Hour)
	return repo, uploader, NewUserService(repo, auth, uploader)
}

func seedLocalUser(t *testing.T, repo *fakeUserRepo, auth helper.Auth, email, password string) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user, err := repo.CreateUser(&domain.User{
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        email,
		PasswordHash: hash,
		Provider:     domain.ProviderLocal,
	})
	require.NoError(t, err)
	return user
}

func TestUpdateUser(t *testing.T) {
	repo, _, svc := newUserFixture(t)
	auth := helper.SetupAuth("test-secret", time.Hour)
	user := seedLocalUser(t, repo, auth, "jane@example.com", "secret1")

	got, err := svc.UpdateUser(user.ID, dto.UpdateUserRequest{FirstName: " Janet ", LastName: "Smith"})
	require.NoError(t, err)
	assert.Equal(t, "Janet", got.FirstName)
	assert.Equal(t, "Smith", got.LastName)

	_, err = svc.UpdateUser(user.ID, dto.UpdateUserRequest{FirstName: "", LastName: "Smith"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateUser(999, dto.UpdateUserRequest{FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrUserMissing)
}

func TestUpdateUserCountsNameLengthInRunes(t *testing.T) {
	repo, _, svc := newUserFixture(t)
	auth := helper.SetupAuth("test-secret", time.Hour)
	user := seedLocalUser(t, repo, auth, "jane@example.com", "secret1")

	// 45 characters but 90 bytes; the 50-character cap must still accept it.
	accented := strings.Repeat("é", 45)
	got, err := svc.UpdateUser(user.ID, dto.UpdateUserRequest{FirstName: accented, LastName: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, accented, got.FirstName)

	_, err = svc.UpdateUser(user.ID, dto.UpdateUserRequest{FirstName: strings.Repeat("é", 51), LastName: "Doe"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdatePasswordRequiresCurrent(t *testing.T) {
	repo, _, svc := newUserFixture(t)
	auth := helper.SetupAuth("test-secret", time.Hour)
	user := seedLocalUser(t, repo, auth, "jane@example.com", "secret1")

	err := svc.UpdatePassword(user.ID, dto.UpdatePasswordRequest{CurrentPassword: "wrong", NewPassword: "brandnew"})
	assert.ErrorIs(t, err, ErrCurrentPasswordWrong)

	err = svc.UpdatePassword(user.ID, dto.UpdatePasswordRequest{CurrentPassword: "secret1", NewPassword: "123"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	err = svc.UpdatePassword(user.ID, dto.UpdatePasswordRequest{CurrentPassword: "secret1", NewPassword: "brandnew"})
	require.NoError(t, err)
	assert.NoError(t, auth.VerifyPassword("brandnew", repo.users[user.ID].PasswordHash))
}

func TestUpdatePasswordFirstPasswordForGoogleAccount(t *testing.T) {
	repo, _, svc := newUserFixture(t)
	sub := "sub-1"
	user, err := repo.CreateUser(&domain.User{
		Email:     "fed@example.com",
		GoogleSub: &sub,
		Provider:  domain.ProviderGoogle,
	})
	require.NoError(t, err)

	// No current password to prove for a federated account.
	err = svc.UpdatePassword(user.ID, dto.UpdatePasswordRequest{NewPassword: "brandnew"})
	require.NoError(t, err)
	assert.True(t, repo.users[user.ID].HasPassword())
}

func TestUpdateProfilePicture(t *testing.T) {
	repo, uploader, svc := newUserFixture(t)
	auth := helper.SetupAuth("test-secret", time.Hour)
	user := seedLocalUser(t, repo, auth, "jane@example.com", "secret1")

	url, err := svc.UpdateProfilePicture(context.Background(), user.ID, []byte{0xFF, 0xD8})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/p.jpg", url)
	assert.Equal(t, "profile-pictures", uploader.folder)
	assert.Equal(t, "user-1", uploader.name)

	require.NotNil(t, repo.users[user.ID].ProfilePicture)
	assert.Equal(t, url, *repo.users[user.ID].ProfilePicture)
}

func TestGetUsersPagination(t *testing.T) {
	repo, _, svc := newUserFixture(t)
	auth := helper.SetupAuth("test-secret", time.Hour)
	seedLocalUser(t, repo, auth, "a@example.com", "secret1")
	seedLocalUser(t, repo, auth, "b@example.com", "secret1")

	data, err := svc.GetUsers("", 1, 10)
	require.NoError(t, err)
	assert.Len(t, data.Users, 2)
	assert.Equal(t, int64(2), data.Pagination.TotalRecords)
	assert.Equal(t, 1, data.Pagination.CurrentPage)
	assert.False(t, data.Pagination.HasNextPage)
}
