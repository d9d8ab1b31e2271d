package repomanager

import (
	"context"
	"database/sql"

	"github.com/chertoha/contacthub/internal/dbx"
	"github.com/chertoha/contacthub/internal/repositories/contacts"
	"github.com/chertoha/contacthub/internal/repositories/users"
)

// RepositoryManager hands out repositories bound to a specific handle,
// which may be the shared *sql.DB or an open transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Contacts(db dbx.DBTX) contacts.Repository
}
