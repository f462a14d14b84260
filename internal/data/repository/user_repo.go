package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdao-registration/internal/data/entity"
	"pdao-registration/pkg/database"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// UserFilter narrows listings. Empty fields match everything.
type UserFilter struct {
	Status entity.UserStatus
	Role   entity.UserRole
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByContactNumber(ctx context.Context, contactNumber string) (*entity.User, error)
	FindAll(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.User, error)
	CountAll(ctx context.Context, filter UserFilter) (int64, error)
	Update(ctx context.Context, user *entity.User) error
}

const userColumns = `id, user_id, form_id, first_name, middle_name, last_name, suffix,
		       sex, date_of_birth, age, address, contact_number, email, password,
		       role, status, is_verified, is_email_verified, version, created_at, updated_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
	now func() time.Time
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
		now: time.Now,
	}
}

// Create runs the pre-save hook and inserts the record.
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := user.BeforeSave(ur.now()); err != nil {
		return fmt.Errorf("prepare user: %w", err)
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := ur.db.Exec(ctx, query,
		user.ID,
		user.UserID,
		user.FormID,
		user.FirstName,
		user.MiddleName,
		user.LastName,
		user.Suffix,
		user.Sex,
		user.DateOfBirth,
		user.Age,
		user.Address,
		user.ContactNumber,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.IsVerified,
		user.IsEmailVerified,
		user.Version,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		err = mapPgError(err)
		var dup *DuplicateKeyError
		if errors.As(err, &dup) {
			ur.log.Warn("Duplicate user on create", zap.String("field", dup.Field))
			return err
		}
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return ur.findOne(ctx, "id", id)
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return ur.findOne(ctx, "email", email)
}

func (ur *userRepository) FindByContactNumber(ctx context.Context, contactNumber string) (*entity.User, error) {
	return ur.findOne(ctx, "contact_number", contactNumber)
}

// findOne returns nil, nil when no row matches. column is never user input.
func (ur *userRepository) findOne(ctx context.Context, column string, value any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(ur.db.QueryRow(ctx, query, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user",
			zap.Error(err),
			zap.String("column", column),
		)
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}

	return user, nil
}

// FindAll retrieves a page of users, newest first.
func (ur *userRepository) FindAll(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.User, error) {
	query, args, err := listUsersQuery(filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := ur.db.Query(ctx, query, args...)
	if err != nil {
		ur.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all users limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) CountAll(ctx context.Context, filter UserFilter) (int64, error) {
	query, args, err := filtered(psql.Select("COUNT(*)").From("users"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int64
	if err := ur.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		ur.log.Error("Database error counting users", zap.Error(err))
		return 0, fmt.Errorf("count all users: %w", err)
	}

	return count, nil
}

// Update runs the pre-save hook and writes every mutable column back.
func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	if err := user.BeforeSave(ur.now()); err != nil {
		return fmt.Errorf("prepare user: %w", err)
	}

	query, args, err := updateUserQuery(user)
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	result, err := ur.db.Exec(ctx, query, args...)
	if err != nil {
		err = mapPgError(err)
		var dup *DuplicateKeyError
		if errors.As(err, &dup) {
			ur.log.Warn("Duplicate user on update", zap.String("field", dup.Field))
			return err
		}
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.String("id", user.ID.String()),
		)
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update user %s: %w", user.ID.String(), ErrNotFound)
	}

	return nil
}

func filtered(b sq.SelectBuilder, filter UserFilter) sq.SelectBuilder {
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Role != "" {
		b = b.Where(sq.Eq{"role": filter.Role})
	}
	return b
}

func listUsersQuery(filter UserFilter, limit, offset int) (string, []any, error) {
	offset = max(offset, 0)
	return filtered(psql.Select(userColumns).From("users"), filter).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
}

func updateUserQuery(user *entity.User) (string, []any, error) {
	return psql.Update("users").
		SetMap(map[string]any{
			"form_id":           user.FormID,
			"first_name":        user.FirstName,
			"middle_name":       user.MiddleName,
			"last_name":         user.LastName,
			"suffix":            user.Suffix,
			"sex":               user.Sex,
			"date_of_birth":     user.DateOfBirth,
			"age":               user.Age,
			"address":           user.Address,
			"contact_number":    user.ContactNumber,
			"email":             user.Email,
			"password":          user.PasswordHash,
			"role":              user.Role,
			"status":            user.Status,
			"is_verified":       user.IsVerified,
			"is_email_verified": user.IsEmailVerified,
			"version":           user.Version,
			"updated_at":        user.UpdatedAt,
		}).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.UserID,
		&user.FormID,
		&user.FirstName,
		&user.MiddleName,
		&user.LastName,
		&user.Suffix,
		&user.Sex,
		&user.DateOfBirth,
		&user.Age,
		&user.Address,
		&user.ContactNumber,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.IsVerified,
		&user.IsEmailVerified,
		&user.Version,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
