package response

// GeoArea is one selectable region, province, city or barangay.
type GeoArea struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ParentCode string `json:"parent_code,omitempty"`
}
