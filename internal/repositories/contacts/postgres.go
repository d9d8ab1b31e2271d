package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chertoha/contacthub/internal/common"
	"github.com/chertoha/contacthub/internal/dbx"
	"github.com/chertoha/contacthub/internal/models"
)

const pgUniqueViolation = "23505"

const contactColumns = `id, first_name, last_name, email, phone, birth_date, COALESCE(additional_data, ''), user_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanContact(row interface{ Scan(dest ...any) error }) (*models.Contact, error) {
	c := &models.Contact{}
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.BirthDate, &c.AdditionalData, &c.UserID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	query :=
		`INSERT INTO contacts (first_name, last_name, email, phone, birth_date, additional_data, user_id)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.BirthDate, contact.AdditionalData, contact.UserID).Scan(&contact.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("contact %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return contact, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID int64) (*models.Contact, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM contacts
		 WHERE id = $1 AND user_id = $2
		 `, contactColumns)

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Contact, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM contacts
		 WHERE email = $1
		 `, contactColumns)

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, offset, limit int, search string) ([]*models.Contact, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM contacts
		 WHERE user_id = $1
		   AND ($2 = '' OR first_name ILIKE '%%' || $2 || '%%'
		                OR last_name  ILIKE '%%' || $2 || '%%'
		                OR email      ILIKE '%%' || $2 || '%%')
		 ORDER BY id
		 OFFSET $3 LIMIT $4
		 `, contactColumns)

	rows, err := r.db.QueryContext(ctx, query, userID, search, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

func (r *PostgresRepository) Update(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	query := fmt.Sprintf(
		`UPDATE contacts
		 SET first_name = $3, last_name = $4, email = $5, phone = $6,
		     birth_date = $7, additional_data = NULLIF($8, '')
		 WHERE id = $1 AND user_id = $2
		 RETURNING %s
		 `, contactColumns)

	updated, err := scanContact(r.db.QueryRowContext(ctx, query,
		contact.ID, contact.UserID,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.BirthDate, contact.AdditionalData))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("contact %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	query :=
		`DELETE FROM contacts
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) BirthdaysBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.Contact, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM contacts
		 WHERE user_id = $1 AND birth_date >= $2 AND birth_date <= $3
		 ORDER BY birth_date
		 `, contactColumns)

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

func collectContacts(rows *sql.Rows) ([]*models.Contact, error) {
	var out []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
