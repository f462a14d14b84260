package schema

import "strings"

// ValueKind is the JSON type a field must carry.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInteger
	KindNumber
	KindObject
)

// Rule describes one input field. Tag uses go-playground/validator syntax and
// is shared by the request-field pass, the structural pass and the client.
type Rule struct {
	Path     string
	Label    string
	Kind     ValueKind
	Tag      string
	FreeText bool // trimmed and HTML-escaped
	Secret   bool // never trimmed
	Present  bool // key must be supplied; a zero value is still valid
	With     string
}

const (
	SexMale   = "Male"
	SexFemale = "Female"

	AddressPermanent = "Permanent"
	AddressTemporary = "Temporary"
	AddressPresent   = "Present"

	DefaultCountry     = "Philippines"
	DefaultAddressType = AddressPermanent
)

var RegistrationRules = []Rule{
	{Path: "first_name", Label: "First name", Tag: "required,min=1,max=50", FreeText: true},
	{Path: "middle_name", Label: "Middle name", Tag: "omitempty,max=50", FreeText: true},
	{Path: "last_name", Label: "Last name", Tag: "required,min=1,max=50", FreeText: true},
	{Path: "suffix", Label: "Suffix", Tag: "omitempty,max=10", FreeText: true},
	{Path: "sex", Label: "Sex", Tag: "required,oneof=Male Female"},
	{Path: "date_of_birth", Label: "Date of birth", Tag: "required,dob"},
	{Path: "age", Label: "Age", Kind: KindInteger, Tag: "omitempty,min=0,max=150"},
	{Path: "address", Label: "Address", Kind: KindObject, Tag: "required"},
	{Path: "address.street", Label: "Street", Tag: "required,max=200", FreeText: true},
	{Path: "address.barangay", Label: "Barangay", Tag: "required,max=100", FreeText: true},
	{Path: "address.city", Label: "City/Municipality", Tag: "required,max=100", FreeText: true},
	{Path: "address.province", Label: "Province", Tag: "required,max=100", FreeText: true},
	{Path: "address.region", Label: "Region", Tag: "required,max=100", FreeText: true},
	{Path: "address.zip_code", Label: "ZIP code", Tag: "omitempty,zip4"},
	{Path: "address.country", Label: "Country", Tag: "omitempty,max=56", FreeText: true},
	{Path: "address.type", Label: "Address type", Tag: "omitempty,oneof=Permanent Temporary Present"},
	{Path: "address.coordinates", Label: "Coordinates", Kind: KindObject, Tag: "omitempty"},
	{Path: "address.coordinates.latitude", Label: "Latitude", Kind: KindNumber, Tag: "latitude", Present: true},
	{Path: "address.coordinates.longitude", Label: "Longitude", Kind: KindNumber, Tag: "longitude", Present: true},
	{Path: "contact_number", Label: "Contact number", Tag: "required,ph_mobile"},
	{Path: "email", Label: "Email", Tag: "required,email,max=100"},
	{Path: "password", Label: "Password", Tag: "required,min=8,max=100", Secret: true},
}

var LoginRules = []Rule{
	{Path: "email", Label: "Email", Tag: "required,email"},
	{Path: "password", Label: "Password", Tag: "required", Secret: true},
}

// UpdateRules is the registration shape with every field optional, minus the
// password, plus the credential-change pair.
var UpdateRules = append(optional(RegistrationRules, "password"),
	Rule{Path: "current_password", Label: "Current password", Tag: "omitnil,min=1,max=100", Secret: true, With: "new_password"},
	Rule{Path: "new_password", Label: "New password", Tag: "omitnil,min=8,max=100", Secret: true, With: "current_password"},
)

// Fields a caller may never supply, with the dedicated message for each.
var (
	RegistrationForbidden = map[string]string{
		"form_id": "Form ID cannot be set during registration",
	}
	UpdateForbidden = map[string]string{
		"form_id":  "Form ID cannot be changed through a profile update",
		"user_id":  "User ID cannot be changed",
		"password": "Use current_password and new_password to change the password",
	}
)

// mandatory reports whether an absent or empty value violates r.
func (r Rule) mandatory() bool {
	return r.Present || strings.HasPrefix(r.Tag, "required")
}

// RuleFor looks up the rule for path.
func RuleFor(rules []Rule, path string) (Rule, bool) {
	for _, r := range rules {
		if r.Path == path {
			return r, true
		}
	}
	return Rule{}, false
}

// optional relaxes rules that are required only because their parent is:
// the field may be left out, but a supplied value still has to be valid.
// Children of an optional object keep their tags, so a supplied object must
// still be complete.
func optional(rules []Rule, drop ...string) []Rule {
	dropped := make(map[string]bool, len(drop))
	for _, d := range drop {
		dropped[d] = true
	}

	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if dropped[r.Path] {
			continue
		}
		if parentRequired(rules, r.Path) {
			r.Tag = relax(r.Tag)
		}
		out = append(out, r)
	}
	return out
}

func parentRequired(rules []Rule, path string) bool {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return true
	}
	parent, ok := RuleFor(rules, path[:i])
	return ok && strings.HasPrefix(parent.Tag, "required") && parentRequired(rules, parent.Path)
}

func relax(tag string) string {
	switch {
	case tag == "required":
		return "omitnil"
	case strings.HasPrefix(tag, "required,"):
		return "omitnil," + strings.TrimPrefix(tag, "required,")
	default:
		return tag
	}
}
