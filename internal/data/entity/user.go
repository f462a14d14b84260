package entity

import (
	"errors"
	"fmt"
	"time"

	"pdao-registration/internal/dto/request"
	"pdao-registration/internal/schema"
	"pdao-registration/pkg/utils"
)

type Sex string

const (
	SexMale   Sex = schema.SexMale
	SexFemale Sex = schema.SexFemale
)

type UserRole string

const (
	RoleUser       UserRole = "User"
	RoleAdmin      UserRole = "Admin"
	RoleSupervisor UserRole = "Supervisor"
	RoleStaff      UserRole = "Staff"
)

type UserStatus string

const (
	StatusActive    UserStatus = "Active"
	StatusInactive  UserStatus = "Inactive"
	StatusSuspended UserStatus = "Suspended"
	StatusPending   UserStatus = "Pending"
)

type AddressType string

const (
	AddressPermanent AddressType = schema.AddressPermanent
	AddressTemporary AddressType = schema.AddressTemporary
	AddressPresent   AddressType = schema.AddressPresent
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address is embedded in the user record.
type Address struct {
	Street      string       `json:"street"`
	Barangay    string       `json:"barangay"`
	City        string       `json:"city"`
	Province    string       `json:"province"`
	Region      string       `json:"region"`
	ZipCode     string       `json:"zip_code,omitempty"`
	Country     string       `json:"country"`
	Type        AddressType  `json:"type"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

var ErrPasswordNotSet = errors.New("password not set")

type User struct {
	Base
	UserID          string     `db:"user_id"`
	FormID          *string    `db:"form_id"`
	FirstName       string     `db:"first_name"`
	MiddleName      string     `db:"middle_name"`
	LastName        string     `db:"last_name"`
	Suffix          string     `db:"suffix"`
	Sex             Sex        `db:"sex"`
	DateOfBirth     time.Time  `db:"date_of_birth"`
	Age             int        `db:"age"`
	Address         Address    `db:"address"`
	ContactNumber   string     `db:"contact_number"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password" json:"-"`
	Role            UserRole   `db:"role"`
	Status          UserStatus `db:"status"`
	IsVerified      bool       `db:"is_verified"`
	IsEmailVerified bool       `db:"is_email_verified"`
	Version         int        `db:"version" json:"-"`

	plainPassword    string
	passwordModified bool
}

// NewRegisteredUser maps a validated registration onto a new record. Server
// managed fields are forced whatever the client sent.
func NewRegisteredUser(req *request.RegisterRequest) (*User, error) {
	dob, err := schema.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("date_of_birth: %w", err)
	}

	user := &User{
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		Suffix:        req.Suffix,
		Sex:           Sex(req.Sex),
		DateOfBirth:   dob,
		Address:       AddressFromRequest(req.Address),
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		FormID:        nil,
		Role:          RoleUser,
		Status:        StatusPending,
	}
	user.SetPassword(req.Password)

	return user, nil
}

func AddressFromRequest(addr request.AddressRequest) Address {
	out := Address{
		Street:   addr.Street,
		Barangay: addr.Barangay,
		City:     addr.City,
		Province: addr.Province,
		Region:   addr.Region,
		ZipCode:  addr.ZipCode,
		Country:  addr.Country,
		Type:     AddressType(addr.Type),
	}
	if addr.Coordinates != nil {
		out.Coordinates = &Coordinates{
			Latitude:  addr.Coordinates.Latitude,
			Longitude: addr.Coordinates.Longitude,
		}
	}
	return out
}

// SetPassword stages a plain-text password; BeforeSave hashes it.
func (u *User) SetPassword(plain string) {
	u.plainPassword = plain
	u.passwordModified = true
}

// PasswordModified reports whether a staged password awaits hashing.
func (u *User) PasswordModified() bool {
	return u.passwordModified
}

// BeforeSave prepares the record for storage. Repositories call it on every
// create and update. The password is hashed only when it was staged through
// SetPassword since the last save.
func (u *User) BeforeSave(now time.Time) error {
	u.touch(now)

	if u.UserID == "" {
		u.UserID = utils.GenerateUserID(now)
	}

	if !u.DateOfBirth.IsZero() {
		u.Age = schema.CalculateAge(u.DateOfBirth, now)
	}

	contact, err := schema.NormalizeContactNumber(u.ContactNumber)
	if err != nil {
		return fmt.Errorf("contact_number: %w", err)
	}
	u.ContactNumber = contact

	if u.Address.Country == "" {
		u.Address.Country = schema.DefaultCountry
	}
	if u.Address.Type == "" {
		u.Address.Type = schema.DefaultAddressType
	}

	if u.passwordModified {
		hash, err := utils.HashPassword(u.plainPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
		u.plainPassword = ""
		u.passwordModified = false
	}
	if u.PasswordHash == "" {
		return ErrPasswordNotSet
	}

	u.Version++

	return nil
}

func (u *User) CheckPassword(plain string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return utils.CheckPasswordHash(plain, u.PasswordHash)
}

// Activate moves a pending account to active. It reports whether the status
// changed.
func (u *User) Activate() bool {
	if u.Status != StatusPending {
		return false
	}
	u.Status = StatusActive
	return true
}

// IsActive reports whether the account may use an access token.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// CanAuthenticate is false for accounts an administrator has shut off.
func (u *User) CanAuthenticate() bool {
	return u.Status != StatusSuspended && u.Status != StatusInactive
}
