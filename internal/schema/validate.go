package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"pdao-registration/internal/dto/request"

	"github.com/go-playground/validator/v10"
)

// Pipeline validates and normalizes incoming payloads. It is safe for
// concurrent use once constructed.
type Pipeline struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewPipeline builds a pipeline whose date checks use now as the clock.
func NewPipeline(now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}

	p := &Pipeline{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}

	p.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = p.validate.RegisterValidation("ph_mobile", func(fl validator.FieldLevel) bool {
		return IsContactNumber(fl.Field().String())
	})
	_ = p.validate.RegisterValidation("zip4", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	})
	_ = p.validate.RegisterValidation("dob", func(fl validator.FieldLevel) bool {
		dob, err := ParseDate(fl.Field().String())
		if err != nil {
			return false
		}
		return !IsFutureDate(dob, p.now())
	})

	p.registerStruct(RegistrationRules, "", request.RegisterRequest{})
	p.registerStruct(RegistrationRules, "address.", request.AddressRequest{})
	p.registerStruct(RegistrationRules, "address.coordinates.", request.CoordinatesRequest{})
	p.registerStruct(LoginRules, "", request.LoginRequest{})
	p.registerStruct(UpdateRules, "", request.UpdateProfileRequest{})
	p.registerStruct(UpdateRules, "address.", request.UpdateAddressRequest{})

	p.validate.RegisterStructValidation(p.registrationLevel, request.RegisterRequest{})
	p.validate.RegisterStructValidation(p.updateLevel, request.UpdateProfileRequest{})

	return p
}

// registerStruct maps the rule table onto the fields of sample's type, so the
// structural pass uses the same tags as the request-field pass.
func (p *Pipeline) registerStruct(rules []Rule, prefix string, sample any) {
	typ := reflect.TypeOf(sample)
	mapped := make(map[string]string)
	for i := 0; i < typ.NumField(); i++ {
		fld := typ.Field(i)
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if rule, ok := RuleFor(rules, prefix+name); ok {
			mapped[fld.Name] = rule.Tag
		}
	}
	p.validate.RegisterStructValidationMapRules(mapped, sample)
}

func (p *Pipeline) registrationLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(request.RegisterRequest)
	p.checkAge(sl, req.Age, req.DateOfBirth)
}

func (p *Pipeline) updateLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(request.UpdateProfileRequest)
	if req.DateOfBirth != nil {
		p.checkAge(sl, req.Age, *req.DateOfBirth)
	}
	if (req.CurrentPassword == nil) != (req.NewPassword == nil) {
		if req.CurrentPassword == nil {
			sl.ReportError(req.CurrentPassword, "current_password", "CurrentPassword", "required_with", "new_password")
		} else {
			sl.ReportError(req.NewPassword, "new_password", "NewPassword", "required_with", "current_password")
		}
	}
}

func (p *Pipeline) checkAge(sl validator.StructLevel, age *int, dateOfBirth string) {
	if age == nil {
		return
	}
	dob, err := ParseDate(dateOfBirth)
	if err != nil {
		return
	}
	if *age != CalculateAge(dob, p.now()) {
		sl.ReportError(*age, "age", "Age", "age_dob", "")
	}
}

// structErrors converts validator output into path-keyed field errors.
func structErrors(rules []Rule, err error) FieldErrors {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{{Field: "body", Message: "Request body is invalid"}}
	}

	out := make(FieldErrors, 0, len(validationErrors))
	for _, fe := range validationErrors {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		out = append(out, FieldError{
			Field:   path,
			Message: describe(rules, path, fe.Tag(), fe.Param(), fe.Kind()),
		})
	}
	return out
}

// describe renders the message for a failed tag on path.
func describe(rules []Rule, path, tag, param string, kind reflect.Kind) string {
	label := path
	if rule, ok := RuleFor(rules, path); ok {
		label = rule.Label
	}

	switch tag {
	case "required":
		return label + " is required"
	case "required_with":
		other := param
		if rule, ok := RuleFor(rules, param); ok {
			other = strings.ToLower(rule.Label)
		}
		return fmt.Sprintf("%s is required when %s is provided", label, other)
	case "min":
		if kind == reflect.String && param == "1" {
			return label + " cannot be empty"
		}
		if kind == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if kind == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "email":
		return label + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "ph_mobile":
		return label + " must be 11 digits starting with 09"
	case "dob":
		return label + " must be a valid YYYY-MM-DD date and not in the future"
	case "zip4":
		return label + " must be a 4-digit code"
	case "latitude", "longitude":
		return fmt.Sprintf("%s must be a valid %s", label, tag)
	case "age_dob":
		return label + " does not match date of birth"
	default:
		return label + " is invalid"
	}
}
