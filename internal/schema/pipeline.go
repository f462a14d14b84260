package schema

import (
	"encoding/json"
	"errors"
	"html"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"pdao-registration/internal/dto/request"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// Default is the pipeline on the wall clock.
var Default = NewPipeline(time.Now)

// ParseRegistration runs both passes over a registration body and applies
// address defaults.
func (p *Pipeline) ParseRegistration(body []byte) (*request.RegisterRequest, FieldErrors) {
	var req request.RegisterRequest
	if errs := p.parse(body, RegistrationRules, RegistrationForbidden, &req); len(errs) > 0 {
		return nil, errs
	}

	ApplyAddressDefaults(&req.Address)
	req.Email = NormalizeEmail(req.Email)

	return &req, nil
}

func (p *Pipeline) ParseLogin(body []byte) (*request.LoginRequest, FieldErrors) {
	var req request.LoginRequest
	if errs := p.parse(body, LoginRules, nil, &req); len(errs) > 0 {
		return nil, errs
	}

	req.Email = NormalizeEmail(req.Email)

	return &req, nil
}

// ParseUpdate accepts any subset of the profile fields. An empty update is
// rejected.
func (p *Pipeline) ParseUpdate(body []byte) (*request.UpdateProfileRequest, FieldErrors) {
	var req request.UpdateProfileRequest
	if errs := p.parse(body, UpdateRules, UpdateForbidden, &req); len(errs) > 0 {
		return nil, errs
	}

	if req == (request.UpdateProfileRequest{}) {
		return nil, FieldErrors{{Field: "body", Message: "At least one field must be provided"}}
	}

	if req.Email != nil {
		email := NormalizeEmail(*req.Email)
		req.Email = &email
	}

	return &req, nil
}

func ApplyAddressDefaults(addr *request.AddressRequest) {
	if addr.Country == "" {
		addr.Country = DefaultCountry
	}
	if addr.Type == "" {
		addr.Type = DefaultAddressType
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckField validates one raw form value the way the server will. It
// returns an empty string when the value is acceptable.
func (p *Pipeline) CheckField(rules []Rule, path, value string) string {
	rule, ok := RuleFor(rules, path)
	if !ok {
		return ""
	}

	if !rule.Secret {
		value = strings.TrimSpace(value)
	}
	if value == "" {
		if rule.mandatory() {
			return describe(rules, path, "required", "", 0)
		}
		return ""
	}

	var v any = value
	switch rule.Kind {
	case KindInteger, KindNumber:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || (rule.Kind == KindInteger && f != math.Trunc(f)) {
			return rule.Label + " must be a number"
		}
		v = f
	case KindObject:
		return ""
	}

	if err := p.validate.Var(v, rule.Tag); err != nil {
		return varError(rules, rule, err).Message
	}
	return ""
}

// CheckFields runs CheckField over values for each path, in order.
func (p *Pipeline) CheckFields(rules []Rule, values map[string]string, paths ...string) FieldErrors {
	var errs FieldErrors
	for _, path := range paths {
		if msg := p.CheckField(rules, path, values[path]); msg != "" {
			errs = append(errs, FieldError{Field: path, Message: msg})
		}
	}
	return errs
}

// parse is the shared two-pass flow. The request-field pass runs first and
// short-circuits; the structural pass only sees payloads that cleared it.
func (p *Pipeline) parse(body []byte, rules []Rule, forbidden map[string]string, out any) FieldErrors {
	doc, errs := decodeObject(body)
	if len(errs) > 0 {
		return errs
	}

	if errs := p.checkFields(doc, rules, forbidden); len(errs) > 0 {
		return errs
	}

	if err := decodeInto(doc, out); err != nil {
		return FieldErrors{{Field: "body", Message: "Request body is invalid"}}
	}
	if err := p.validate.Struct(out); err != nil {
		return structErrors(rules, err)
	}

	// escape only after both passes so length limits apply to what was typed
	escapeFreeText(doc, rules)
	if err := decodeInto(doc, out); err != nil {
		return FieldErrors{{Field: "body", Message: "Request body is invalid"}}
	}

	return nil
}

func decodeObject(body []byte) (map[string]any, FieldErrors) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, FieldErrors{{Field: "body", Message: "Request body is required"}}
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, FieldErrors{{Field: "body", Message: "Request body must be valid JSON"}}
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, FieldErrors{{Field: "body", Message: "Request body must be a JSON object"}}
	}
	return doc, nil
}

// checkFields is the request-field pass: presence, type, trimming and the
// per-field tag of every rule, plus the forbidden keys. A forbidden key is
// rejected whatever its value, null included.
func (p *Pipeline) checkFields(doc map[string]any, rules []Rule, forbidden map[string]string) FieldErrors {
	var errs FieldErrors

	keys := make([]string, 0, len(forbidden))
	for k := range forbidden {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := doc[k]; ok {
			errs = append(errs, FieldError{Field: k, Message: forbidden[k]})
		}
	}

	for _, rule := range rules {
		parent, key, ok := lookupParent(doc, rule.Path)
		if !ok {
			continue
		}

		value, present := parent[key]
		if !present || value == nil {
			if fe := missing(doc, rules, rule); fe != nil {
				errs = append(errs, *fe)
			}
			continue
		}

		value, fe := coerce(rule, value)
		if fe != nil {
			errs = append(errs, *fe)
			continue
		}
		parent[key] = value

		if rule.Kind == KindObject {
			continue
		}
		if err := p.validate.Var(value, rule.Tag); err != nil {
			errs = append(errs, varError(rules, rule, err))
		}
	}

	return errs
}

func missing(doc map[string]any, rules []Rule, rule Rule) *FieldError {
	if rule.mandatory() {
		return &FieldError{Field: rule.Path, Message: describe(rules, rule.Path, "required", "", 0)}
	}
	if rule.With != "" {
		if other, ok := doc[rule.With]; ok && other != nil {
			return &FieldError{Field: rule.Path, Message: describe(rules, rule.Path, "required_with", rule.With, 0)}
		}
	}
	return nil
}

func coerce(rule Rule, value any) (any, *FieldError) {
	switch rule.Kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return nil, &FieldError{Field: rule.Path, Message: rule.Label + " must be text"}
		}
		if !rule.Secret {
			s = strings.TrimSpace(s)
		}
		return s, nil
	case KindInteger:
		f, ok := value.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, &FieldError{Field: rule.Path, Message: rule.Label + " must be a whole number"}
		}
		return f, nil
	case KindNumber:
		f, ok := value.(float64)
		if !ok {
			return nil, &FieldError{Field: rule.Path, Message: rule.Label + " must be a number"}
		}
		return f, nil
	case KindObject:
		m, ok := value.(map[string]any)
		if !ok {
			return nil, &FieldError{Field: rule.Path, Message: rule.Label + " must be an object"}
		}
		return m, nil
	}
	return value, nil
}

func varError(rules []Rule, rule Rule, err error) FieldError {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return FieldError{Field: rule.Path, Message: describe(rules, rule.Path, fe.Tag(), fe.Param(), fe.Kind())}
	}
	return FieldError{Field: rule.Path, Message: rule.Label + " is invalid"}
}

// lookupParent walks to the object holding the last segment of path. It
// reports false when an ancestor is missing or not an object; the ancestor's
// own rule reports that.
func lookupParent(doc map[string]any, path string) (map[string]any, string, bool) {
	segments := strings.Split(path, ".")
	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			return nil, "", false
		}
		current = next
	}
	return current, segments[len(segments)-1], true
}

func escapeFreeText(doc map[string]any, rules []Rule) {
	for _, rule := range rules {
		if !rule.FreeText {
			continue
		}
		parent, key, ok := lookupParent(doc, rule.Path)
		if !ok {
			continue
		}
		if s, ok := parent[key].(string); ok {
			parent[key] = html.EscapeString(s)
		}
	}
}

func decodeInto(doc map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
	})
	if err != nil {
		return err
	}
	return decoder.Decode(doc)
}
