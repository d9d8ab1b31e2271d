package users

import (
	"context"

	"github.com/chertoha/contacthub/internal/models"
)

// Repository is the persistence contract for users. Absent rows surface as
// common.ErrNotFound; uniqueness violations as common.ErrConflict.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetConfirmed(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, email, url string) (*models.User, error)
}
