package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdao-registration/internal/data/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const usersCollection = "users"

type coordinatesDocument struct {
	Latitude  float64 `bson:"latitude"`
	Longitude float64 `bson:"longitude"`
}

type addressDocument struct {
	Street      string               `bson:"street"`
	Barangay    string               `bson:"barangay"`
	City        string               `bson:"city"`
	Province    string               `bson:"province"`
	Region      string               `bson:"region"`
	ZipCode     string               `bson:"zip_code,omitempty"`
	Country     string               `bson:"country"`
	Type        string               `bson:"type"`
	Coordinates *coordinatesDocument `bson:"coordinates,omitempty"`
}

// userDocument is the stored shape of a user. The uuid is kept as its string
// form in _id.
type userDocument struct {
	ID              string          `bson:"_id"`
	UserID          string          `bson:"user_id"`
	FormID          *string         `bson:"form_id"`
	FirstName       string          `bson:"first_name"`
	MiddleName      string          `bson:"middle_name,omitempty"`
	LastName        string          `bson:"last_name"`
	Suffix          string          `bson:"suffix,omitempty"`
	Sex             string          `bson:"sex"`
	DateOfBirth     time.Time       `bson:"date_of_birth"`
	Age             int             `bson:"age"`
	Address         addressDocument `bson:"address"`
	ContactNumber   string          `bson:"contact_number"`
	Email           string          `bson:"email"`
	Password        string          `bson:"password"`
	Role            string          `bson:"role"`
	Status          string          `bson:"status"`
	IsVerified      bool            `bson:"is_verified"`
	IsEmailVerified bool            `bson:"is_email_verified"`
	Version         int             `bson:"__v"`
	CreatedAt       time.Time       `bson:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at"`
}

func toDocument(u *entity.User) userDocument {
	doc := userDocument{
		ID:              u.ID.String(),
		UserID:          u.UserID,
		FormID:          u.FormID,
		FirstName:       u.FirstName,
		MiddleName:      u.MiddleName,
		LastName:        u.LastName,
		Suffix:          u.Suffix,
		Sex:             string(u.Sex),
		DateOfBirth:     u.DateOfBirth.UTC(),
		Age:             u.Age,
		ContactNumber:   u.ContactNumber,
		Email:           u.Email,
		Password:        u.PasswordHash,
		Role:            string(u.Role),
		Status:          string(u.Status),
		IsVerified:      u.IsVerified,
		IsEmailVerified: u.IsEmailVerified,
		Version:         u.Version,
		CreatedAt:       u.CreatedAt.UTC(),
		UpdatedAt:       u.UpdatedAt.UTC(),
		Address: addressDocument{
			Street:   u.Address.Street,
			Barangay: u.Address.Barangay,
			City:     u.Address.City,
			Province: u.Address.Province,
			Region:   u.Address.Region,
			ZipCode:  u.Address.ZipCode,
			Country:  u.Address.Country,
			Type:     string(u.Address.Type),
		},
	}
	if c := u.Address.Coordinates; c != nil {
		doc.Address.Coordinates = &coordinatesDocument{Latitude: c.Latitude, Longitude: c.Longitude}
	}
	return doc
}

func (d userDocument) toEntity() (*entity.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse _id %q: %w", d.ID, err)
	}

	u := &entity.User{
		UserID:          d.UserID,
		FormID:          d.FormID,
		FirstName:       d.FirstName,
		MiddleName:      d.MiddleName,
		LastName:        d.LastName,
		Suffix:          d.Suffix,
		Sex:             entity.Sex(d.Sex),
		DateOfBirth:     d.DateOfBirth.UTC(),
		Age:             d.Age,
		ContactNumber:   d.ContactNumber,
		Email:           d.Email,
		PasswordHash:    d.Password,
		Role:            entity.UserRole(d.Role),
		Status:          entity.UserStatus(d.Status),
		IsVerified:      d.IsVerified,
		IsEmailVerified: d.IsEmailVerified,
		Version:         d.Version,
		Address: entity.Address{
			Street:   d.Address.Street,
			Barangay: d.Address.Barangay,
			City:     d.Address.City,
			Province: d.Address.Province,
			Region:   d.Address.Region,
			ZipCode:  d.Address.ZipCode,
			Country:  d.Address.Country,
			Type:     entity.AddressType(d.Address.Type),
		},
	}
	u.ID = id
	u.CreatedAt = d.CreatedAt.UTC()
	u.UpdatedAt = d.UpdatedAt.UTC()
	if c := d.Address.Coordinates; c != nil {
		u.Address.Coordinates = &entity.Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
	}
	return u, nil
}

func mongoFilter(filter UserFilter) bson.M {
	m := bson.M{}
	if filter.Status != "" {
		m["status"] = string(filter.Status)
	}
	if filter.Role != "" {
		m["role"] = string(filter.Role)
	}
	return m
}

// UserIndexes are the indexes EnsureIndexes creates. Index names follow the
// driver default so duplicate key errors map back to fields.
func UserIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "contact_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "form_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
}

// EnsureIndexes creates the users indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, UserIndexes()); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type userMongoRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
	now  func() time.Time
}

func NewUserMongoRepository(db *mongo.Database, log *zap.Logger) UserRepository {
	return &userMongoRepository{
		coll: db.Collection(usersCollection),
		log:  log.With(zap.String("repository", "user_mongo")),
		now:  time.Now,
	}
}

func (ur *userMongoRepository) Create(ctx context.Context, user *entity.User) error {
	if err := user.BeforeSave(ur.now()); err != nil {
		return fmt.Errorf("prepare user: %w", err)
	}

	if _, err := ur.coll.InsertOne(ctx, toDocument(user)); err != nil {
		err = mapMongoError(err)
		var dup *DuplicateKeyError
		if errors.As(err, &dup) {
			ur.log.Warn("Duplicate user on create", zap.String("field", dup.Field))
			return err
		}
		ur.log.Error("Failed to create user", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userMongoRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return ur.findOne(ctx, bson.M{"_id": id.String()})
}

func (ur *userMongoRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return ur.findOne(ctx, bson.M{"email": email})
}

func (ur *userMongoRepository) FindByContactNumber(ctx context.Context, contactNumber string) (*entity.User, error) {
	return ur.findOne(ctx, bson.M{"contact_number": contactNumber})
}

func (ur *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	err := ur.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user", zap.Error(err))
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toEntity()
}

func (ur *userMongoRepository) FindAll(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(max(offset, 0)))

	cursor, err := ur.coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		ur.log.Error("Failed to get all users", zap.Error(err))
		return nil, fmt.Errorf("find all users limit %d offset %d: %w", limit, offset, err)
	}
	defer cursor.Close(ctx)

	users := make([]*entity.User, 0, limit)
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		user, err := doc.toEntity()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate users cursor: %w", err)
	}

	return users, nil
}

func (ur *userMongoRepository) CountAll(ctx context.Context, filter UserFilter) (int64, error) {
	count, err := ur.coll.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		ur.log.Error("Database error counting users", zap.Error(err))
		return 0, fmt.Errorf("count all users: %w", err)
	}
	return count, nil
}

func (ur *userMongoRepository) Update(ctx context.Context, user *entity.User) error {
	if err := user.BeforeSave(ur.now()); err != nil {
		return fmt.Errorf("prepare user: %w", err)
	}

	result, err := ur.coll.ReplaceOne(ctx, bson.M{"_id": user.ID.String()}, toDocument(user))
	if err != nil {
		err = mapMongoError(err)
		var dup *DuplicateKeyError
		if errors.As(err, &dup) {
			ur.log.Warn("Duplicate user on update", zap.String("field", dup.Field))
			return err
		}
		ur.log.Error("Failed to update user", zap.Error(err), zap.String("id", user.ID.String()))
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("update user %s: %w", user.ID.String(), ErrNotFound)
	}

	return nil
}
