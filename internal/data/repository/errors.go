package repository

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned by writes that matched no record. Reads return
// nil, nil instead.
var ErrNotFound = errors.New("record not found")

// DuplicateKeyError reports a unique constraint violation, keyed by the
// request field that collided.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// uniqueFields maps Postgres constraint names and Mongo index names to fields.
var uniqueFields = map[string]string{
	"users_user_id_key":        "user_id",
	"users_email_key":          "email",
	"users_contact_number_key": "contact_number",
	"user_id_1":                "user_id",
	"email_1":                  "email",
	"contact_number_1":         "contact_number",
}

func fieldForConstraint(name string) string {
	if field, ok := uniqueFields[name]; ok {
		return field
	}
	return "unknown"
}

// mapPgError converts a unique violation into a DuplicateKeyError and leaves
// every other error untouched.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &DuplicateKeyError{Field: fieldForConstraint(pgErr.ConstraintName), Err: err}
	default:
		return err
	}
}

var mongoIndexPattern = regexp.MustCompile(`index: (\S+)`)

func mapMongoError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	index := ""
	if m := mongoIndexPattern.FindStringSubmatch(err.Error()); len(m) == 2 {
		index = m[1]
	}
	return &DuplicateKeyError{Field: fieldForConstraint(index), Err: err}
}
