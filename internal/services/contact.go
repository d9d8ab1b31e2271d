package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chertoha/contacthub/internal/common"
	"github.com/chertoha/contacthub/internal/dbx"
	"github.com/chertoha/contacthub/internal/models"
	"github.com/chertoha/contacthub/internal/repositories/repomanager"
)

// upcomingBirthdayWindow is how far ahead the birthday listing looks.
const upcomingBirthdayWindow = 7 * 24 * time.Hour

// ContactInput carries the fields of a new contact.
type ContactInput struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	BirthDate      time.Time
	AdditionalData string
}

// ContactUpdate carries a partial update; nil fields are left unchanged.
type ContactUpdate struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	BirthDate      *time.Time
	AdditionalData *string
}

// ContactService manages a user's address book. Every operation is scoped
// to the owning user.
type ContactService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	now   func() time.Time
}

func NewContactService(db *sql.DB, repos repomanager.RepositoryManager) *ContactService {
	return &ContactService{db: db, repos: repos, now: time.Now}
}

// Create adds a contact for user. Contact emails are globally unique;
// a duplicate yields common.ErrConflict.
func (s *ContactService) Create(ctx context.Context, input ContactInput, user *models.User) (*models.Contact, error) {
	repo := s.repos.Contacts(s.db)

	if _, err := repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("contact with email %s %w", input.Email, common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	return repo.Create(ctx, &models.Contact{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		BirthDate:      input.BirthDate,
		AdditionalData: input.AdditionalData,
		UserID:         user.ID,
	})
}

// List returns the user's contacts with pagination and an optional search
// over names and email.
func (s *ContactService) List(ctx context.Context, user *models.User, offset, limit int, search string) ([]*models.Contact, error) {
	return s.repos.Contacts(s.db).List(ctx, user.ID, offset, limit, search)
}

// Get returns a single contact by id, or common.ErrNotFound when it does
// not exist or belongs to another user.
func (s *ContactService) Get(ctx context.Context, id int64, user *models.User) (*models.Contact, error) {
	return s.repos.Contacts(s.db).GetByID(ctx, id, user.ID)
}

// Update applies a partial update inside a transaction so the
// read-modify-write cannot interleave with a concurrent update.
func (s *ContactService) Update(ctx context.Context, id int64, upd ContactUpdate, user *models.User) (*models.Contact, error) {
	repo := s.repos.Contacts(s.db)

	if upd.Email != nil {
		existing, err := repo.GetByEmail(ctx, *upd.Email)
		if err == nil && existing.ID != id {
			return nil, fmt.Errorf("contact with email %s %w", *upd.Email, common.ErrConflict)
		} else if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	var updated *models.Contact
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repos.Contacts(tx)

		contact, err := repoTx.GetByID(ctx, id, user.ID)
		if err != nil {
			return err
		}

		if upd.FirstName != nil {
			contact.FirstName = *upd.FirstName
		}
		if upd.LastName != nil {
			contact.LastName = *upd.LastName
		}
		if upd.Email != nil {
			contact.Email = *upd.Email
		}
		if upd.Phone != nil {
			contact.Phone = *upd.Phone
		}
		if upd.BirthDate != nil {
			contact.BirthDate = *upd.BirthDate
		}
		if upd.AdditionalData != nil {
			contact.AdditionalData = *upd.AdditionalData
		}

		updated, err = repoTx.Update(ctx, contact)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a contact and returns the removed record.
func (s *ContactService) Delete(ctx context.Context, id int64, user *models.User) (*models.Contact, error) {
	repo := s.repos.Contacts(s.db)

	contact, err := repo.GetByID(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	if err := repo.Delete(ctx, id, user.ID); err != nil {
		return nil, err
	}
	return contact, nil
}

// UpcomingBirthdays lists contacts whose birth_date falls within the next
// seven days, ordered by date.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, user *models.User) ([]*models.Contact, error) {
	from := s.now()
	return s.repos.Contacts(s.db).BirthdaysBetween(ctx, user.ID, from, from.Add(upcomingBirthdayWindow))
}
