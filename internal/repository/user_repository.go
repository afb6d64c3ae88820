package repository

import (
	"context"
	"database/sql"
	"errors"

	"invoice-assistant/internal/models"
	"invoice-assistant/pkg/database"

	"go.uber.org/zap"
)

// ErrNotFound indicates the requested row does not exist (or is not visible to the caller).
var ErrNotFound = errors.New("record not found")

var userColumns = []string{"id", "username", "COALESCE(password_hash, '')", "COALESCE(name, '')"}

type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewUserRepository(db *database.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the user and fills in its generated ID.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query, args, err := r.db.Builder().
		Insert("users").
		Columns("username", "password_hash", "name").
		Values(user.Username, user.PasswordHash, user.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	return r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&user.ID)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query, args, err := r.db.Builder().
		Select(userColumns...).
		From("users").
		Where("username = ?", username).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.db.SQL.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query, args, err := r.db.Builder().
		Select(userColumns...).
		From("users").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Name); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	query, args, err := r.db.Builder().
		Update("users").
		Set("password_hash", hash).
		Where("id = ?", userID).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	query, args, err := r.db.Builder().Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
