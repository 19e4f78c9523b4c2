package services

import (
	"strings"
	"testing"
	"time"

	"github.com/chirotrack/backend/internal/domain"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePatientRepo struct {
	patients map[uint]*domain.Patient
	nextID   uint
	touched  []uint
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: map[uint]*domain.Patient{}, nextID: 1}
}

func (r *fakePatientRepo) CreatePatient(p *domain.Patient) (*domain.Patient, error) {
	cp := *p
	cp.ID = r.nextID
	r.nextID++
	r.patients[cp.ID] = &cp
	return &cp, nil
}

func (r *fakePatientRepo) FindPatientByID(id, ownerID uint) (*domain.Patient, error) {
	p, ok := r.patients[id]
	if !ok || p.CreatedByID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) FindPatientByName(fullName string, ownerID, excludeID uint) (*domain.Patient, error) {
	for _, p := range r.patients {
		if p.CreatedByID != ownerID || p.ID == excludeID {
			continue
		}
		if strings.EqualFold(p.FullName, fullName) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePatientRepo) ListPatients(ownerID uint, search string, limit, offset int) ([]domain.Patient, int64, error) {
	var out []domain.Patient
	for _, p := range r.patients {
		if p.CreatedByID != ownerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.FullName), strings.ToLower(search)) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePatientRepo) SavePatient(p *domain.Patient) error {
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) DeletePatient(id, ownerID uint) error {
	p, ok := r.patients[id]
	if !ok || p.CreatedByID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.patients, id)
	return nil
}

func (r *fakePatientRepo) TouchLastScan(patientID uint) error {
	r.touched = append(r.touched, patientID)
	if p, ok := r.patients[patientID]; ok {
		now := time.Now()
		p.LastScan = &now
	}
	return nil
}

func newPatientService(repo *fakePatientRepo) PatientService {
	return NewPatientService(repo)
}

func TestCreatePatient(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newPatientService(repo)

	p, err := svc.CreatePatient(1, dto.CreatePatientRequest{
		FullName:    "  John Smith ",
		Gender:      domain.GenderMale,
		DateOfBirth: "1990-05-20",
	})
	require.NoError(t, err)
	assert.Equal(t, "John Smith", p.FullName)
	assert.Equal(t, uint(1), p.CreatedByID)
	assert.Equal(t, 1990, p.DateOfBirth.Year())
}

func TestCreatePatientValidation(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newPatientService(repo)

	_, err := svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "", Gender: "Male", DateOfBirth: "1990-01-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "A", Gender: "Unknown", DateOfBirth: "1990-01-01"})
	assert.ErrorIs(t, err, ErrInvalidGender)

	_, err = svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "A", Gender: "Male", DateOfBirth: "not-a-date"})
	assert.ErrorIs(t, err, ErrInvalidDateOfBirth)

	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	_, err = svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "A", Gender: "Male", DateOfBirth: future})
	assert.ErrorIs(t, err, ErrDateOfBirthInFuture)
}

func TestCreatePatientCountsNameLengthInRunes(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newPatientService(repo)

	// 80 characters but 160 bytes; must pass the 100-character cap.
	accented := strings.Repeat("é", 80)
	p, err := svc.CreatePatient(1, dto.CreatePatientRequest{
		FullName:    accented,
		Gender:      domain.GenderFemale,
		DateOfBirth: "1990-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, accented, p.FullName)

	_, err = svc.CreatePatient(1, dto.CreatePatientRequest{
		FullName:    strings.Repeat("é", 101),
		Gender:      domain.GenderFemale,
		DateOfBirth: "1990-01-01",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreatePatientDuplicateNamePerOwner(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newPatientService(repo)

	_, err := svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "John Smith", Gender: "Male", DateOfBirth: "1990-01-01"})
	require.NoError(t, err)

	_, err = svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "john smith", Gender: "Male", DateOfBirth: "1991-01-01"})
	assert.ErrorIs(t, err, ErrPatientNameTaken)

	// Same name under another practitioner is fine.
	_, err = svc.CreatePatient(2, dto.CreatePatientRequest{FullName: "John Smith", Gender: "Male", DateOfBirth: "1990-01-01"})
	assert.NoError(t, err)
}

func TestGetPatientScopedToOwner(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newPatientService(repo)

	p, err := svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "John Smith", Gender: "Male", DateOfBirth: "1990-01-01"})
	require.NoError(t, err)

	got, err := svc.GetPatient(p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.GetPatient(p.ID, 2)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestUpdatePatient(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newPatientService(repo)

	p, err := svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "John Smith", Gender: "Male", DateOfBirth: "1990-01-01"})
	require.NoError(t, err)

	got, err := svc.UpdatePatient(p.ID, 1, dto.UpdatePatientRequest{FullName: "Johnny Smith", Gender: domain.GenderOther})
	require.NoError(t, err)
	assert.Equal(t, "Johnny Smith", got.FullName)
	assert.Equal(t, domain.GenderOther, got.Gender)
	// DOB untouched when omitted.
	assert.Equal(t, 1990, got.DateOfBirth.Year())
}

func TestUpdatePatientNameCollision(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newPatientService(repo)

	_, err := svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "John Smith", Gender: "Male", DateOfBirth: "1990-01-01"})
	require.NoError(t, err)
	p2, err := svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "Jane Smith", Gender: "Female", DateOfBirth: "1992-01-01"})
	require.NoError(t, err)

	_, err = svc.UpdatePatient(p2.ID, 1, dto.UpdatePatientRequest{FullName: "John Smith"})
	assert.ErrorIs(t, err, ErrPatientNameTaken)

	// Re-saving the current name is not a collision.
	_, err = svc.UpdatePatient(p2.ID, 1, dto.UpdatePatientRequest{FullName: "Jane Smith"})
	assert.NoError(t, err)
}

func TestDeletePatient(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newPatientService(repo)

	p, err := svc.CreatePatient(1, dto.CreatePatientRequest{FullName: "John Smith", Gender: "Male", DateOfBirth: "1990-01-01"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePatient(p.ID, 2), ErrPatientNotFound)
	require.NoError(t, svc.DeletePatient(p.ID, 1))
	assert.ErrorIs(t, svc.DeletePatient(p.ID, 1), ErrPatientNotFound)
}

func TestSearchPatientsRanksByRelevance(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newPatientService(repo)

	names := []string{"John Smith", "Johnny Walker", "Alice Johnson", "Bob Jones"}
	for _, n := range names {
		_, err := svc.CreatePatient(1, dto.CreatePatientRequest{FullName: n, Gender: "Other", DateOfBirth: "1990-01-01"})
		require.NoError(t, err)
	}

	data, err := svc.SearchPatients(1, "john", 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, data.Patients)

	for i := 1; i < len(data.Patients); i++ {
		assert.GreaterOrEqual(t, data.Patients[i-1].RelevanceScore, data.Patients[i].RelevanceScore)
	}
	// Prefix matches outrank substring matches.
	assert.Equal(t, 80, data.Patients[0].RelevanceScore)
}

func TestSearchPatientsRequiresQuery(t *testing.T) {
	svc := newPatientService(newFakePatientRepo())
	_, err := svc.SearchPatients(1, "   ", 1, 10)
	assert.ErrorIs(t, err, ErrSearchQueryRequired)
}

func TestRelevanceScore(t *testing.T) {
	assert.Equal(t, 100, relevanceScore("John Smith", "john smith"))
	assert.Equal(t, 80, relevanceScore("John Smith", "joh"))
	assert.Equal(t, 60, relevanceScore("Big John Smith", "john s"))
	assert.Equal(t, 60, relevanceScore("Alice Johnson", "john"))
	assert.Equal(t, 0, relevanceScore("Alice Brown", "john"))
}

func TestNormalizePage(t *testing.T) {
	page, limit := normalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	page, limit = normalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, limit)

	page, limit = normalizePage(2, 25)
	assert.Equal(t, 2, page)
	assert.Equal(t, 25, limit)
}

func TestAgeAt(t *testing.T) {
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, domain.AgeAt(dob, time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 29, domain.AgeAt(dob, time.Date(2020, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, domain.AgeAt(dob, time.Date(1989, 1, 1, 0, 0, 0, 0, time.UTC)))
}
