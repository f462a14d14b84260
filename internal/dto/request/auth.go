package request

type RegisterRequest struct {
	FirstName     string         `json:"first_name"`
	MiddleName    string         `json:"middle_name,omitempty"`
	LastName      string         `json:"last_name"`
	Suffix        string         `json:"suffix,omitempty"`
	Sex           string         `json:"sex"`
	DateOfBirth   string         `json:"date_of_birth"`
	Age           *int           `json:"age,omitempty"`
	Address       AddressRequest `json:"address"`
	ContactNumber string         `json:"contact_number"`
	Email         string         `json:"email"`
	Password      string         `json:"password"`
}

type AddressRequest struct {
	Street      string              `json:"street"`
	Barangay    string              `json:"barangay"`
	City        string              `json:"city"`
	Province    string              `json:"province"`
	Region      string              `json:"region"`
	ZipCode     string              `json:"zip_code,omitempty"`
	Country     string              `json:"country,omitempty"`
	Type        string              `json:"type,omitempty"`
	Coordinates *CoordinatesRequest `json:"coordinates,omitempty"`
}

type CoordinatesRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
