package response

import (
	"time"

	"pdao-registration/internal/data/entity"
)

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// UserResponse is the only shape a user leaves the service in. It has no
// password or version field.
type UserResponse struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	FormID          *string        `json:"form_id"`
	FirstName       string         `json:"first_name"`
	MiddleName      string         `json:"middle_name,omitempty"`
	LastName        string         `json:"last_name"`
	Suffix          string         `json:"suffix,omitempty"`
	Sex             string         `json:"sex"`
	DateOfBirth     string         `json:"date_of_birth"`
	Age             int            `json:"age"`
	Address         entity.Address `json:"address"`
	ContactNumber   string         `json:"contact_number"`
	Email           string         `json:"email"`
	Role            string         `json:"role"`
	Status          string         `json:"status"`
	IsVerified      bool           `json:"is_verified"`
	IsEmailVerified bool           `json:"is_email_verified"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:              user.ID.String(),
		UserID:          user.UserID,
		FormID:          user.FormID,
		FirstName:       user.FirstName,
		MiddleName:      user.MiddleName,
		LastName:        user.LastName,
		Suffix:          user.Suffix,
		Sex:             string(user.Sex),
		DateOfBirth:     user.DateOfBirth.Format("2006-01-02"),
		Age:             user.Age,
		Address:         user.Address,
		ContactNumber:   user.ContactNumber,
		Email:           user.Email,
		Role:            string(user.Role),
		Status:          string(user.Status),
		IsVerified:      user.IsVerified,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

func UsersToResponse(users []*entity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, user := range users {
		out[i] = UserToResponse(user)
	}
	return out
}

func AuthToResponse(user *entity.User, token string, expiresAt time.Time) AuthResponse {
	return AuthResponse{
		User:      UserToResponse(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}
}
