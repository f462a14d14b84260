package usecase

import (
	"context"
	"errors"
	"testing"

	"pdao-registration/internal/data/entity"
	"pdao-registration/internal/data/repository"
	"pdao-registration/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func TestGetProfile(t *testing.T) {
	user := storedUser(entity.StatusActive)
	svc := NewUserService(newMemUsers(user), zap.NewNop())

	resp, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, resp.Email)
	assert.Equal(t, "1992-01-10", resp.DateOfBirth)

	_, err = svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile_PartialFieldsAndAddressMerge(t *testing.T) {
	user := storedUser(entity.StatusActive)
	repo := newMemUsers(user)
	svc := NewUserService(repo, zap.NewNop())

	resp, err := svc.UpdateProfile(context.Background(), user.ID, &request.UpdateProfileRequest{
		FirstName:   ptr("Anabelle"),
		DateOfBirth: ptr("1992-06-16"),
		Address: &request.UpdateAddressRequest{
			Street:      "99 Osmeña Blvd",
			Coordinates: &request.CoordinatesRequest{Latitude: 10.3, Longitude: 123.9},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Anabelle", resp.FirstName)
	assert.Equal(t, "Reyes", resp.LastName)
	assert.Equal(t, 32, resp.Age, "age recomputed from the new date of birth")
	assert.Equal(t, "99 Osmeña Blvd", resp.Address.Street)
	assert.Equal(t, "Lahug", resp.Address.Barangay)
	assert.Equal(t, "Cebu City", resp.Address.City)
	require.NotNil(t, resp.Address.Coordinates)
	assert.Equal(t, 10.3, resp.Address.Coordinates.Latitude)
	assert.Equal(t, 2, repo.byID[user.ID].Version)
}

func TestUpdateProfile_DuplicateChecksExcludeSelf(t *testing.T) {
	user := storedUser(entity.StatusActive)
	other := storedUser(entity.StatusActive)
	other.Email = "other@example.com"
	other.ContactNumber = "09190000000"

	svc := NewUserService(newMemUsers(user, other), zap.NewNop())
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, user.ID, &request.UpdateProfileRequest{Email: ptr(user.Email), ContactNumber: ptr(user.ContactNumber)})
	assert.NoError(t, err, "own email and number are not duplicates")

	_, err = svc.UpdateProfile(ctx, user.ID, &request.UpdateProfileRequest{Email: ptr(other.Email)})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	_, err = svc.UpdateProfile(ctx, user.ID, &request.UpdateProfileRequest{ContactNumber: ptr(other.ContactNumber)})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "contact_number", dup.Field)
}

func TestUpdateProfile_PasswordChange(t *testing.T) {
	user := storedUser(entity.StatusActive)
	svc := NewUserService(newMemUsers(user), zap.NewNop())
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, user.ID, &request.UpdateProfileRequest{
		CurrentPassword: ptr("not-it"),
		NewPassword:     ptr("brand-new-pass"),
	})
	var authn *AuthenticationError
	require.ErrorAs(t, err, &authn)
	assert.Equal(t, "current_password", authn.Field)
	assert.True(t, user.CheckPassword("password123"))

	_, err = svc.UpdateProfile(ctx, user.ID, &request.UpdateProfileRequest{
		CurrentPassword: ptr("password123"),
		NewPassword:     ptr("brand-new-pass"),
	})
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("brand-new-pass"))
	assert.False(t, user.CheckPassword("password123"))
}

func TestUpdateProfile_StorageErrors(t *testing.T) {
	user := storedUser(entity.StatusActive)
	repo := newMemUsers(user)
	svc := NewUserService(repo, zap.NewNop())

	repo.updateHook = func(*entity.User) error {
		return &repository.DuplicateKeyError{Field: "email", Err: errors.New("23505")}
	}
	_, err := svc.UpdateProfile(context.Background(), user.ID, &request.UpdateProfileRequest{LastName: ptr("Cruz")})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)

	repo.updateHook = func(*entity.User) error { return repository.ErrNotFound }
	_, err = svc.UpdateProfile(context.Background(), user.ID, &request.UpdateProfileRequest{LastName: ptr("Cruz")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	active := storedUser(entity.StatusActive)
	pending := storedUser(entity.StatusPending)
	staff := storedUser(entity.StatusActive)
	staff.Role = entity.RoleStaff

	svc := NewUserService(newMemUsers(active, pending, staff), zap.NewNop())

	page, err := svc.ListUsers(context.Background(), &request.UserListRequest{Status: "Active"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.PerPage)
	assert.Len(t, page.Data, 2)

	page, err = svc.ListUsers(context.Background(), &request.UserListRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 1},
	})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	page, err = svc.ListUsers(context.Background(), &request.UserListRequest{Role: "Staff"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Staff", page.Data[0].Role)
}
