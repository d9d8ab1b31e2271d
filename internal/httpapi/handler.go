// Package httpapi exposes the REST surface: auth, user profile, contact
// management, and the health check. Handlers translate HTTP to service
// calls and map the shared error taxonomy onto status codes.
package httpapi

import (
	"context"
	"database/sql"
	"io"
	"net/http"

	"github.com/chertoha/contacthub/internal/logging"
	"github.com/chertoha/contacthub/internal/models"
	"github.com/chertoha/contacthub/internal/services"
)

// UserProvider is the user-facing service surface consumed by handlers.
type UserProvider interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ConfirmEmail(ctx context.Context, token string) error
	ResendConfirmation(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, user *models.User, body io.Reader, contentType string) (*models.User, error)
}

// ContactProvider is the contact-management service surface.
type ContactProvider interface {
	Create(ctx context.Context, input services.ContactInput, user *models.User) (*models.Contact, error)
	List(ctx context.Context, user *models.User, offset, limit int, search string) ([]*models.Contact, error)
	Get(ctx context.Context, id int64, user *models.User) (*models.Contact, error)
	Update(ctx context.Context, id int64, upd services.ContactUpdate, user *models.User) (*models.Contact, error)
	Delete(ctx context.Context, id int64, user *models.User) (*models.Contact, error)
	UpcomingBirthdays(ctx context.Context, user *models.User) ([]*models.Contact, error)
}

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type Handler struct {
	users    UserProvider
	contacts ContactProvider
	authn    Authenticator
	db       *sql.DB
	logger   logging.Logger
	limiter  *clientLimiter
}

func NewHandler(users UserProvider, contacts ContactProvider, authn Authenticator, db *sql.DB, logger logging.Logger) *Handler {
	return &Handler{
		users:    users,
		contacts: contacts,
		authn:    authn,
		db:       db,
		logger:   logger,
		limiter:  newClientLimiter(meRequestsPerMinute),
	}
}

// Routes builds the API mux. Protected routes go through requireAuth, which
// must run before any handler logic that assumes a valid caller.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthchecker", h.healthCheck)

	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("GET /api/auth/confirmed_email/{token}", h.confirmEmail)
	mux.HandleFunc("POST /api/auth/request_email", h.requestEmail)

	mux.Handle("GET /api/users/me", h.requireAuth(h.rateLimit(http.HandlerFunc(h.me))))
	mux.Handle("PATCH /api/users/avatar", h.requireAuth(http.HandlerFunc(h.updateAvatar)))

	mux.Handle("POST /api/contacts", h.requireAuth(http.HandlerFunc(h.createContact)))
	mux.Handle("GET /api/contacts", h.requireAuth(http.HandlerFunc(h.listContacts)))
	mux.Handle("GET /api/contacts/upcoming-birthdays", h.requireAuth(http.HandlerFunc(h.upcomingBirthdays)))
	mux.Handle("GET /api/contacts/{id}", h.requireAuth(http.HandlerFunc(h.getContact)))
	mux.Handle("PATCH /api/contacts/{id}", h.requireAuth(http.HandlerFunc(h.updateContact)))
	mux.Handle("DELETE /api/contacts/{id}", h.requireAuth(http.HandlerFunc(h.deleteContact)))

	return mux
}
