package request

// UpdateProfileRequest carries a partial profile. Nil means "leave as is".
type UpdateProfileRequest struct {
	FirstName       *string               `json:"first_name,omitempty"`
	MiddleName      *string               `json:"middle_name,omitempty"`
	LastName        *string               `json:"last_name,omitempty"`
	Suffix          *string               `json:"suffix,omitempty"`
	Sex             *string               `json:"sex,omitempty"`
	DateOfBirth     *string               `json:"date_of_birth,omitempty"`
	Age             *int                  `json:"age,omitempty"`
	Address         *UpdateAddressRequest `json:"address,omitempty"`
	ContactNumber   *string               `json:"contact_number,omitempty"`
	Email           *string               `json:"email,omitempty"`
	CurrentPassword *string               `json:"current_password,omitempty"`
	NewPassword     *string               `json:"new_password,omitempty"`
}

// UpdateAddressRequest is merged over the stored address; empty fields keep
// their stored value.
type UpdateAddressRequest struct {
	Street      string              `json:"street,omitempty"`
	Barangay    string              `json:"barangay,omitempty"`
	City        string              `json:"city,omitempty"`
	Province    string              `json:"province,omitempty"`
	Region      string              `json:"region,omitempty"`
	ZipCode     string              `json:"zip_code,omitempty"`
	Country     string              `json:"country,omitempty"`
	Type        string              `json:"type,omitempty"`
	Coordinates *CoordinatesRequest `json:"coordinates,omitempty"`
}

type UserListRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=Active Inactive Suspended Pending"`
	Role   string `json:"role" validate:"omitempty,oneof=User Admin Supervisor Staff"`
}
