package schema

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func newTestPipeline() *Pipeline {
	return NewPipeline(func() time.Time { return fixedNow })
}

func validRegistration() map[string]any {
	return map[string]any{
		"first_name":    "Juan",
		"middle_name":   "Santos",
		"last_name":     "Dela Cruz",
		"sex":           "Male",
		"date_of_birth": "1990-06-15",
		"address": map[string]any{
			"street":   "123 Rizal St",
			"barangay": "Bonuan Binloc",
			"city":     "Dagupan City",
			"province": "Pangasinan",
			"region":   "Region I",
		},
		"contact_number": "09171234567",
		"email":          "Juan.Cruz@Example.com",
		"password":       "supersecret",
	}
}

func body(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func fields(errs FieldErrors) []string {
	out := make([]string, len(errs))
	for i, fe := range errs {
		out[i] = fe.Field
	}
	return out
}

// ───────────────────────────────────────────────
// Registration
// ───────────────────────────────────────────────

func TestParseRegistration_Valid(t *testing.T) {
	p := newTestPipeline()

	req, errs := p.ParseRegistration(body(t, validRegistration()))
	require.Empty(t, errs)
	require.NotNil(t, req)

	assert.Equal(t, "Juan", req.FirstName)
	assert.Equal(t, "juan.cruz@example.com", req.Email)
	assert.Equal(t, "Philippines", req.Address.Country)
	assert.Equal(t, "Permanent", req.Address.Type)
	assert.Equal(t, "supersecret", req.Password)
	assert.Nil(t, req.Age)
}

func TestParseRegistration_TrimsAndEscapesFreeText(t *testing.T) {
	p := newTestPipeline()
	payload := validRegistration()
	payload["last_name"] = "  O'Brien  "
	payload["address"].(map[string]any)["street"] = "<b>Lot 5</b>"
	payload["password"] = " spaced password "

	req, errs := p.ParseRegistration(body(t, payload))
	require.Empty(t, errs)

	assert.Equal(t, "O&#39;Brien", req.LastName)
	assert.Equal(t, "&lt;b&gt;Lot 5&lt;/b&gt;", req.Address.Street)
	assert.Equal(t, " spaced password ", req.Password, "passwords are never trimmed")
}

func TestParseRegistration_LengthIsCheckedBeforeEscaping(t *testing.T) {
	p := newTestPipeline()
	payload := validRegistration()
	payload["first_name"] = strings.Repeat("'", 50)

	req, errs := p.ParseRegistration(body(t, payload))
	require.Empty(t, errs)
	assert.Equal(t, strings.Repeat("&#39;", 50), req.FirstName)
}

func TestParseRegistration_RejectsFormID(t *testing.T) {
	p := newTestPipeline()

	for _, value := range []any{"FORM-20250101-ABCDE", nil, "", 42, false} {
		payload := validRegistration()
		payload["form_id"] = value

		req, errs := p.ParseRegistration(body(t, payload))
		assert.Nil(t, req)
		fe := errs.First("form_id")
		require.NotNil(t, fe, "value %v", value)
		assert.Equal(t, "Form ID cannot be set during registration", fe.Message)
	}
}

func TestParseRegistration_IgnoresServerManagedFields(t *testing.T) {
	p := newTestPipeline()
	payload := validRegistration()
	payload["status"] = "Active"
	payload["role"] = "Admin"
	payload["is_verified"] = true
	payload["user_id"] = "PDAO-20200101-AAAAA"

	req, errs := p.ParseRegistration(body(t, payload))
	require.Empty(t, errs)
	require.NotNil(t, req)
}

func TestParseRegistration_OneErrorPerViolation(t *testing.T) {
	p := newTestPipeline()
	payload := validRegistration()
	payload["first_name"] = ""
	payload["email"] = "not-an-email"
	payload["password"] = "short"
	payload["sex"] = "Other"

	_, errs := p.ParseRegistration(body(t, payload))

	assert.ElementsMatch(t, []string{"first_name", "sex", "email", "password"}, fields(errs))
	assert.Equal(t, "First name is required", errs.First("first_name").Message)
	assert.Equal(t, "Sex must be one of: Male, Female", errs.First("sex").Message)
	assert.Equal(t, "Email must be a valid email address", errs.First("email").Message)
	assert.Equal(t, "Password must be at least 8 characters", errs.First("password").Message)
}

func TestParseRegistration_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		field  string
	}{
		{"missing last name", func(m map[string]any) { delete(m, "last_name") }, "last_name"},
		{"first name too long", func(m map[string]any) { m["first_name"] = strings.Repeat("a", 51) }, "first_name"},
		{"first name not text", func(m map[string]any) { m["first_name"] = 5 }, "first_name"},
		{"suffix too long", func(m map[string]any) { m["suffix"] = strings.Repeat("x", 11) }, "suffix"},
		{"future date of birth", func(m map[string]any) { m["date_of_birth"] = "2025-06-16" }, "date_of_birth"},
		{"impossible date", func(m map[string]any) { m["date_of_birth"] = "1990-02-30" }, "date_of_birth"},
		{"wrong date format", func(m map[string]any) { m["date_of_birth"] = "06/15/1990" }, "date_of_birth"},
		{"international contact number", func(m map[string]any) { m["contact_number"] = "+639171234567" }, "contact_number"},
		{"short contact number", func(m map[string]any) { m["contact_number"] = "0917123456" }, "contact_number"},
		{"email too long", func(m map[string]any) { m["email"] = strings.Repeat("a", 95) + "@x.com" }, "email"},
		{"password too long", func(m map[string]any) { m["password"] = strings.Repeat("p", 101) }, "password"},
		{"fractional age", func(m map[string]any) { m["age"] = 34.5 }, "age"},
		{"missing address", func(m map[string]any) { delete(m, "address") }, "address"},
		{"address not an object", func(m map[string]any) { m["address"] = "Dagupan" }, "address"},
		{"missing barangay", func(m map[string]any) { delete(m["address"].(map[string]any), "barangay") }, "address.barangay"},
		{"bad zip", func(m map[string]any) { m["address"].(map[string]any)["zip_code"] = "24000" }, "address.zip_code"},
		{"bad address type", func(m map[string]any) { m["address"].(map[string]any)["type"] = "Vacation" }, "address.type"},
		{"half coordinates", func(m map[string]any) {
			m["address"].(map[string]any)["coordinates"] = map[string]any{"latitude": 16.06}
		}, "address.coordinates.longitude"},
		{"latitude out of range", func(m map[string]any) {
			m["address"].(map[string]any)["coordinates"] = map[string]any{"latitude": 120.3, "longitude": 120.3}
		}, "address.coordinates.latitude"},
	}

	p := newTestPipeline()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validRegistration()
			tt.mutate(payload)

			req, errs := p.ParseRegistration(body(t, payload))
			assert.Nil(t, req)
			assert.Equal(t, []string{tt.field}, fields(errs))
		})
	}
}

func TestParseRegistration_AgeMustMatchDateOfBirth(t *testing.T) {
	p := newTestPipeline()

	payload := validRegistration()
	payload["age"] = 35
	req, errs := p.ParseRegistration(body(t, payload))
	require.Empty(t, errs)
	require.NotNil(t, req.Age)
	assert.Equal(t, 35, *req.Age)

	payload["age"] = 34
	_, errs = p.ParseRegistration(body(t, payload))
	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{Field: "age", Message: "Age does not match date of birth"}, errs[0])
}

func TestParseRegistration_RequestFieldPassShortCircuits(t *testing.T) {
	p := newTestPipeline()
	payload := validRegistration()
	payload["age"] = 10 // structural failure
	delete(payload, "email")

	_, errs := p.ParseRegistration(body(t, payload))
	assert.Equal(t, []string{"email"}, fields(errs))
}

func TestParseRegistration_MalformedBody(t *testing.T) {
	p := newTestPipeline()

	tests := map[string]string{
		"":          "Request body is required",
		"{":         "Request body must be valid JSON",
		"[1,2]":     "Request body must be a JSON object",
		`"string"`:  "Request body must be a JSON object",
		"   \n\t  ": "Request body is required",
	}

	for raw, msg := range tests {
		_, errs := p.ParseRegistration([]byte(raw))
		require.Len(t, errs, 1, raw)
		assert.Equal(t, FieldError{Field: "body", Message: msg}, errs[0])
	}
}

func TestParseRegistration_KeysAreCaseSensitive(t *testing.T) {
	p := newTestPipeline()
	payload := validRegistration()
	payload["Middle_Name"] = "<script>"
	delete(payload, "middle_name")

	req, errs := p.ParseRegistration(body(t, payload))
	require.Empty(t, errs)
	assert.Empty(t, req.MiddleName)
}

// ───────────────────────────────────────────────
// Login
// ───────────────────────────────────────────────

func TestParseLogin(t *testing.T) {
	p := newTestPipeline()

	req, errs := p.ParseLogin([]byte(`{"email":" Juan@Example.com ","password":"x"}`))
	require.Empty(t, errs)
	assert.Equal(t, "juan@example.com", req.Email)
	assert.Equal(t, "x", req.Password)

	_, errs = p.ParseLogin([]byte(`{"email":"juan@example.com","password":""}`))
	assert.Equal(t, []string{"password"}, fields(errs))

	_, errs = p.ParseLogin([]byte(`{"email":"nope"}`))
	assert.ElementsMatch(t, []string{"email", "password"}, fields(errs))
}

// ───────────────────────────────────────────────
// Update
// ───────────────────────────────────────────────

func TestParseUpdate_Partial(t *testing.T) {
	p := newTestPipeline()

	req, errs := p.ParseUpdate([]byte(`{"first_name":"Pedro","address":{"city":"San Carlos City"},"email":"NEW@Example.com"}`))
	require.Empty(t, errs)

	require.NotNil(t, req.FirstName)
	assert.Equal(t, "Pedro", *req.FirstName)
	require.NotNil(t, req.Address)
	assert.Equal(t, "San Carlos City", req.Address.City)
	assert.Empty(t, req.Address.Street)
	require.NotNil(t, req.Email)
	assert.Equal(t, "new@example.com", *req.Email)
	assert.Nil(t, req.LastName)
}

func TestParseUpdate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		fields []string
	}{
		{"empty update", `{}`, []string{"body"}},
		{"password", `{"password":"newpassword"}`, []string{"password"}},
		{"form id null", `{"form_id":null,"first_name":"A"}`, []string{"form_id"}},
		{"user id", `{"user_id":"PDAO-20250101-AAAAA"}`, []string{"user_id"}},
		{"empty first name", `{"first_name":""}`, []string{"first_name"}},
		{"bad sex", `{"sex":"X"}`, []string{"sex"}},
		{"bad contact", `{"contact_number":"12345"}`, []string{"contact_number"}},
		{"new password alone", `{"new_password":"longenough"}`, []string{"current_password"}},
		{"current password alone", `{"current_password":"whatever"}`, []string{"new_password"}},
		{"short new password", `{"current_password":"old","new_password":"short"}`, []string{"new_password"}},
		{"half coordinates", `{"address":{"coordinates":{"longitude":120.3}}}`, []string{"address.coordinates.latitude"}},
	}

	p := newTestPipeline()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, errs := p.ParseUpdate([]byte(tt.raw))
			assert.Nil(t, req)
			assert.ElementsMatch(t, tt.fields, fields(errs))
		})
	}
}

func TestParseUpdate_PasswordChange(t *testing.T) {
	p := newTestPipeline()

	req, errs := p.ParseUpdate([]byte(`{"current_password":"oldpassword","new_password":"newpassword"}`))
	require.Empty(t, errs)
	assert.Equal(t, "oldpassword", *req.CurrentPassword)
	assert.Equal(t, "newpassword", *req.NewPassword)
}

func TestParseUpdate_EmptyFirstNameMessage(t *testing.T) {
	p := newTestPipeline()

	_, errs := p.ParseUpdate([]byte(`{"first_name":"   "}`))
	require.Len(t, errs, 1)
	assert.Equal(t, "First name cannot be empty", errs[0].Message)
}

// ───────────────────────────────────────────────
// Rule table
// ───────────────────────────────────────────────

func TestParseRegistration_ZeroCoordinatesAccepted(t *testing.T) {
	payload := validRegistration()
	payload["address"].(map[string]any)["coordinates"] = map[string]any{"latitude": 0.0, "longitude": 0.0}

	req, errs := newTestPipeline().ParseRegistration(body(t, payload))
	require.Empty(t, errs)
	require.NotNil(t, req.Address.Coordinates)
	assert.Zero(t, req.Address.Coordinates.Latitude)
	assert.Zero(t, req.Address.Coordinates.Longitude)

	payload["address"].(map[string]any)["coordinates"] = map[string]any{"latitude": 0.0}
	_, errs = newTestPipeline().ParseRegistration(body(t, payload))
	require.Len(t, errs, 1)
	assert.Equal(t, "address.coordinates.longitude", errs[0].Field)
	assert.Equal(t, "Longitude is required", errs[0].Message)
}

func TestUpdateRules_DerivedFromRegistration(t *testing.T) {
	_, hasPassword := RuleFor(UpdateRules, "password")
	assert.False(t, hasPassword)

	street, ok := RuleFor(UpdateRules, "address.street")
	require.True(t, ok)
	assert.Equal(t, "omitnil,max=200", street.Tag)

	lat, ok := RuleFor(UpdateRules, "address.coordinates.latitude")
	require.True(t, ok)
	assert.Equal(t, "latitude", lat.Tag)
	assert.True(t, lat.Present, "a supplied coordinates object must stay complete")

	reg, _ := RuleFor(RegistrationRules, "address.street")
	assert.Equal(t, "required,max=200", reg.Tag, "registration table is not mutated")
}

func TestCheckField(t *testing.T) {
	p := newTestPipeline()

	assert.Empty(t, p.CheckField(RegistrationRules, "contact_number", "09171234567"))
	assert.Equal(t, "Contact number must be 11 digits starting with 09", p.CheckField(RegistrationRules, "contact_number", "0917"))
	assert.Equal(t, "First name is required", p.CheckField(RegistrationRules, "first_name", "  "))
	assert.Empty(t, p.CheckField(RegistrationRules, "middle_name", ""))
	assert.Equal(t, "Date of birth must be a valid YYYY-MM-DD date and not in the future",
		p.CheckField(RegistrationRules, "date_of_birth", "2030-01-01"))
	assert.Equal(t, "Age must be a number", p.CheckField(RegistrationRules, "age", "ten"))
	assert.Empty(t, p.CheckField(RegistrationRules, "unknown", "anything"))
}

func TestCheckFields(t *testing.T) {
	p := newTestPipeline()
	values := map[string]string{
		"first_name": "Juan",
		"last_name":  "",
		"sex":        "Female",
	}

	errs := p.CheckFields(RegistrationRules, values, "first_name", "last_name", "sex", "date_of_birth")
	assert.Equal(t, []string{"last_name", "date_of_birth"}, fields(errs))
}
