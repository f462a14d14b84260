package schema

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the only accepted date_of_birth format.
const DateLayout = "2006-01-02"

var (
	ErrInvalidContactNumber = errors.New("contact number must be 11 digits starting with 09")
	ErrInvalidDate          = errors.New("date must be a valid YYYY-MM-DD date")

	contactNumberPattern = regexp.MustCompile(`^09\d{9}$`)
	datePattern          = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	zipPattern           = regexp.MustCompile(`^\d{4}$`)
)

// NormalizeContactNumber canonicalizes a Philippine mobile number to
// 09XXXXXXXXX. "+63 917 123 4567", "639171234567" and "9171234567" all
// become "09171234567".
func NormalizeContactNumber(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	switch {
	case strings.HasPrefix(digits, "63") && len(digits) >= 12:
		digits = "0" + digits[2:]
	case !strings.HasPrefix(digits, "0") && !strings.HasPrefix(digits, "63"):
		digits = "0" + digits
	}

	if len(digits) > 11 {
		digits = digits[:11]
	}

	if !contactNumberPattern.MatchString(digits) {
		return "", ErrInvalidContactNumber
	}
	return digits, nil
}

// IsContactNumber reports whether s is already canonical.
func IsContactNumber(s string) bool {
	return contactNumberPattern.MatchString(s)
}

// ParseDate parses a strict YYYY-MM-DD date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// CalculateAge returns whole years between dob and now, one less when this
// year's birthday has not happened yet. A Feb 29 birthday counts as reached
// on Mar 1 in non-leap years.
func CalculateAge(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// IsFutureDate reports whether the calendar date d falls after now's date.
func IsFutureDate(d, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return day.After(today)
}
