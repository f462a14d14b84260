package usecase

import (
	"context"
	"errors"
	"fmt"

	"pdao-registration/internal/data/entity"
	"pdao-registration/internal/data/repository"
	"pdao-registration/internal/dto/request"
	"pdao-registration/internal/dto/response"
	"pdao-registration/internal/schema"
	"pdao-registration/pkg/utils"

	"dario.cat/mergo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	ListUsers(ctx context.Context, req *request.UserListRequest) (*response.PaginatedResponse[response.UserResponse], error)
}

type userService struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewUserService(users repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		users: users,
		log:   log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	user, err := us.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// UpdateProfile applies a validated partial update. Unique fields are checked
// against other accounts first and a credential change needs the current
// password.
func (us *userService) UpdateProfile(ctx context.Context, id uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	user, err := us.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		other, err := us.users.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if other != nil && other.ID != user.ID {
			return nil, newDuplicateError("email")
		}
		user.Email = *req.Email
	}

	if req.ContactNumber != nil {
		contact, err := schema.NormalizeContactNumber(*req.ContactNumber)
		if err != nil {
			return nil, newValidationError("contact_number", "Contact number must be 11 digits starting with 09")
		}
		if contact != user.ContactNumber {
			other, err := us.users.FindByContactNumber(ctx, contact)
			if err != nil {
				return nil, fmt.Errorf("check contact number: %w", err)
			}
			if other != nil && other.ID != user.ID {
				return nil, newDuplicateError("contact_number")
			}
			user.ContactNumber = contact
		}
	}

	if req.CurrentPassword != nil && req.NewPassword != nil {
		if !user.CheckPassword(*req.CurrentPassword) {
			us.log.Info("Password change rejected", zap.String("id", user.ID.String()))
			return nil, &AuthenticationError{Field: "current_password", Message: "Current password is incorrect"}
		}
		user.SetPassword(*req.NewPassword)
	}

	if err := applyProfile(user, req); err != nil {
		return nil, err
	}

	if err := us.users.Update(ctx, user); err != nil {
		var dup *repository.DuplicateKeyError
		if errors.As(err, &dup) {
			return nil, newDuplicateError(dup.Field)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	us.log.Info("Profile updated", zap.String("id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

// applyProfile copies the plain fields and merges the address patch over the
// stored address.
func applyProfile(user *entity.User, req *request.UpdateProfileRequest) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&user.FirstName, req.FirstName)
	set(&user.MiddleName, req.MiddleName)
	set(&user.LastName, req.LastName)
	set(&user.Suffix, req.Suffix)

	if req.Sex != nil {
		user.Sex = entity.Sex(*req.Sex)
	}

	if req.DateOfBirth != nil {
		dob, err := schema.ParseDate(*req.DateOfBirth)
		if err != nil {
			return newValidationError("date_of_birth", "Date of birth must be a valid YYYY-MM-DD date and not in the future")
		}
		user.DateOfBirth = dob
	}

	if req.Address != nil {
		patch := entity.Address{
			Street:   req.Address.Street,
			Barangay: req.Address.Barangay,
			City:     req.Address.City,
			Province: req.Address.Province,
			Region:   req.Address.Region,
			ZipCode:  req.Address.ZipCode,
			Country:  req.Address.Country,
			Type:     entity.AddressType(req.Address.Type),
		}
		if c := req.Address.Coordinates; c != nil {
			patch.Coordinates = &entity.Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
		}
		if err := mergo.Merge(&user.Address, patch, mergo.WithOverride); err != nil {
			return fmt.Errorf("merge address: %w", err)
		}
	}

	return nil
}

func (us *userService) ListUsers(ctx context.Context, req *request.UserListRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	filter := repository.UserFilter{
		Status: entity.UserStatus(req.Status),
		Role:   entity.UserRole(req.Role),
	}

	users, err := us.users.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := us.users.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	us.log.Debug("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("per_page", req.PerPage),
		zap.Int("total_pages", utils.CalculateTotalPages(total, req.PerPage)),
	)

	return response.NewPaginatedResponse(response.UsersToResponse(users), req.Page, req.PerPage, total), nil
}

func (us *userService) find(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
