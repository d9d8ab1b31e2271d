package contacts

import (
	"context"
	"time"

	"github.com/chertoha/contacthub/internal/models"
)

// Repository is the persistence contract for contacts. All operations that
// take a userID are scoped to that owner; rows belonging to other users
// surface as common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Contact, error)
	GetByEmail(ctx context.Context, email string) (*models.Contact, error)
	List(ctx context.Context, userID int64, offset, limit int, search string) ([]*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, id, userID int64) error
	BirthdaysBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.Contact, error)
}
