package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chertoha/contacthub/internal/common"
	"github.com/chertoha/contacthub/internal/dbx"
	"github.com/chertoha/contacthub/internal/models"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, hashed_password, avatar)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 RETURNING id, created_at, confirmed
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.HashedPassword, user.Avatar).
		Scan(&user.ID, &user.CreatedAt, &user.Confirmed)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("user %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := fmt.Sprintf(
		`SELECT id, username, email, hashed_password, COALESCE(avatar, ''), confirmed, created_at
		 FROM users
		 WHERE %s
		 `, where)

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword,
		&user.Avatar, &user.Confirmed, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) SetConfirmed(ctx context.Context, email string) error {
	query :=
		`UPDATE users SET confirmed = true
		 WHERE email = $1
		 `

	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	query :=
		`UPDATE users SET avatar = $2
		 WHERE email = $1
		 RETURNING id, username, email, hashed_password, COALESCE(avatar, ''), confirmed, created_at
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email, url).Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword,
		&user.Avatar, &user.Confirmed, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
