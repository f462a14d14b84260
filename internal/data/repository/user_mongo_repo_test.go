package repository

import (
	"errors"
	"testing"

	"pdao-registration/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestDocumentRoundTrip(t *testing.T) {
	user := pendingUser()
	user.Address.Coordinates = &entity.Coordinates{Latitude: 16.04, Longitude: 120.33}
	require.NoError(t, user.BeforeSave(fixedNow))

	raw, err := bson.Marshal(toDocument(user))
	require.NoError(t, err)

	var stored bson.M
	require.NoError(t, bson.Unmarshal(raw, &stored))
	assert.Equal(t, user.ID.String(), stored["_id"])
	assert.Contains(t, stored, "__v")
	assert.Nil(t, stored["form_id"])

	var doc userDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got, err := doc.toEntity()
	require.NoError(t, err)

	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.UserID, got.UserID)
	assert.Equal(t, user.Address, got.Address)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.True(t, user.DateOfBirth.Equal(got.DateOfBirth))
	assert.True(t, user.CreatedAt.Equal(got.CreatedAt))
}

func TestDocumentToEntity_BadID(t *testing.T) {
	_, err := userDocument{ID: "not-a-uuid"}.toEntity()
	assert.Error(t, err)
}

func TestMongoFilter(t *testing.T) {
	assert.Empty(t, mongoFilter(UserFilter{}))
	assert.Equal(t, bson.M{"status": "Suspended", "role": "Staff"},
		mongoFilter(UserFilter{Status: entity.StatusSuspended, Role: entity.RoleStaff}))
}

func TestMapMongoError(t *testing.T) {
	dupErr := func(index string) error {
		return mongo.WriteException{WriteErrors: mongo.WriteErrors{{
			Code:    11000,
			Message: "E11000 duplicate key error collection: pdao.users index: " + index + " dup key: { x: 1 }",
		}}}
	}

	for index, field := range map[string]string{
		"email_1":          "email",
		"contact_number_1": "contact_number",
		"user_id_1":        "user_id",
	} {
		var dup *DuplicateKeyError
		require.ErrorAs(t, mapMongoError(dupErr(index)), &dup, index)
		assert.Equal(t, field, dup.Field)
	}

	other := errors.New("server selection timeout")
	assert.Equal(t, other, mapMongoError(other))
}

func TestUserIndexes(t *testing.T) {
	indexes := UserIndexes()
	unique := 0
	for _, idx := range indexes {
		if idx.Options != nil && idx.Options.Unique != nil && *idx.Options.Unique {
			unique++
		}
	}
	assert.Equal(t, 3, unique)
}

func TestDuplicateKeyError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &DuplicateKeyError{Field: "email", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "email")
}
