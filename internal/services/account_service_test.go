package services

import (
	"database/sql"
	"errors"
	"testing"

	"curtain_shop_backend/internal/models"
	"curtain_shop_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAccountRepository struct {
	getProfileFunc    func(userID int64) (*models.UserProfile, error)
	upsertProfileFunc func(executor repositories.SQLExecutor, profile *models.UserProfile) error
}

func (m *mockAccountRepository) GetProfile(userID int64) (*models.UserProfile, error) {
	return m.getProfileFunc(userID)
}

func (m *mockAccountRepository) UpsertProfile(executor repositories.SQLExecutor, profile *models.UserProfile) error {
	return m.upsertProfileFunc(executor, profile)
}

func (m *mockAccountRepository) CreateAddress(executor repositories.SQLExecutor, address *models.UserAddress) (int64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockAccountRepository) GetAddressByID(addressID int64) (*models.UserAddress, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAccountRepository) GetAddressesByUserID(userID int64) ([]models.UserAddress, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAccountRepository) UpdateAddress(executor repositories.SQLExecutor, address *models.UserAddress) error {
	return errors.New("not implemented")
}

func (m *mockAccountRepository) DeleteAddress(executor repositories.SQLExecutor, addressID int64, userID int64) error {
	return errors.New("not implemented")
}

func (m *mockAccountRepository) SetDefaultAddress(tx *sql.Tx, addressID int64, userID int64) error {
	return errors.New("not implemented")
}

func TestAccountService_GetProfile_MissingRowIsEmptyProfile(t *testing.T) {
	repo := &mockAccountRepository{
		getProfileFunc: func(userID int64) (*models.UserProfile, error) {
			return nil, repositories.ErrNotFound
		},
	}
	svc := NewAccountService(repo, nil)

	profile, err := svc.GetProfile(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), profile.UserID)
	assert.Nil(t, profile.Gender)
	assert.False(t, profile.IsBusiness)
}

func TestAccountService_UpdateProfile_RejectsUnknownGender(t *testing.T) {
	repo := &mockAccountRepository{
		getProfileFunc: func(userID int64) (*models.UserProfile, error) {
			return &models.UserProfile{UserID: userID}, nil
		},
	}
	svc := NewAccountService(repo, nil)

	bad := "X"
	_, err := svc.UpdateProfile(1, UpdateProfileRequest{Gender: &bad})
	assert.True(t, errors.Is(err, ErrInvalidGender))
}

func TestAccountService_UpdateProfile_MergesPartialUpdate(t *testing.T) {
	existingBio := "sells curtains"
	var saved *models.UserProfile
	repo := &mockAccountRepository{
		getProfileFunc: func(userID int64) (*models.UserProfile, error) {
			return &models.UserProfile{UserID: userID, Bio: &existingBio, IsBusiness: true}, nil
		},
		upsertProfileFunc: func(executor repositories.SQLExecutor, profile *models.UserProfile) error {
			saved = profile
			return nil
		},
	}
	svc := NewAccountService(repo, nil)

	telegram := "@aziza"
	gender := "f" // case-insensitive on input
	profile, err := svc.UpdateProfile(1, UpdateProfileRequest{Telegram: &telegram, Gender: &gender})
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, "F", *profile.Gender)
	assert.Equal(t, "@aziza", *profile.Telegram)
	// Untouched fields survive the partial update.
	assert.Equal(t, "sells curtains", *profile.Bio)
	assert.True(t, profile.IsBusiness)
}
