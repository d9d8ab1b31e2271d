package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/chertoha/contacthub/internal/auth"
	"github.com/chertoha/contacthub/internal/cache"
	"github.com/chertoha/contacthub/internal/common"
	"github.com/chertoha/contacthub/internal/dbx"
	"github.com/chertoha/contacthub/internal/logging"
	"github.com/chertoha/contacthub/internal/models"
	contactsrepo "github.com/chertoha/contacthub/internal/repositories/contacts"
	usersrepo "github.com/chertoha/contacthub/internal/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	users  map[string]*models.User // keyed by email
	nextID int64

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) SetConfirmed(ctx context.Context, email string) error {
	u, ok := f.users[email]
	if !ok {
		return common.ErrNotFound
	}
	u.Confirmed = true
	return nil
}

func (f *fakeUsersRepo) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.Avatar = url
	return u, nil
}

type fakeContactsRepo struct{}

func (fakeContactsRepo) Create(context.Context, *models.Contact) (*models.Contact, error) {
	return nil, nil
}
func (fakeContactsRepo) GetByID(context.Context, int64, int64) (*models.Contact, error) {
	return nil, nil
}
func (fakeContactsRepo) GetByEmail(context.Context, string) (*models.Contact, error) {
	return nil, common.ErrNotFound
}
func (fakeContactsRepo) List(context.Context, int64, int, int, string) ([]*models.Contact, error) {
	return nil, nil
}
func (fakeContactsRepo) Update(context.Context, *models.Contact) (*models.Contact, error) {
	return nil, nil
}
func (fakeContactsRepo) Delete(context.Context, int64, int64) error { return nil }
func (fakeContactsRepo) BirthdaysBetween(context.Context, int64, time.Time, time.Time) ([]*models.Contact, error) {
	return nil, nil
}

type fakeRepoManager struct {
	u usersrepo.Repository
	c contactsrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Contacts(dbx.DBTX) contactsrepo.Repository   { return m.c }

type sentMail struct {
	email    string
	username string
}

type fakeMailer struct {
	sent chan sentMail
	err  error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 4)}
}

func (f *fakeMailer) SendConfirmation(ctx context.Context, email, username string) error {
	f.sent <- sentMail{email: email, username: username}
	return f.err
}

func (f *fakeMailer) waitForSend(t *testing.T) sentMail {
	t.Helper()
	select {
	case m := <-f.sent:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for confirmation email")
		return sentMail{}
	}
}

type fakeAvatarStore struct {
	url string
	err error
}

func (f *fakeAvatarStore) Upload(ctx context.Context, username string, body io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type cacheEntry struct {
	value []byte
	ttl   time.Duration
}

type fakeCacheStore struct {
	entries map[string]cacheEntry
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{entries: map[string]cacheEntry{}}
}

func (s *fakeCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.entries[key] = cacheEntry{value: value, ttl: ttl}
	return nil
}

func (s *fakeCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	e, ok := s.entries[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return e.value, nil
}

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) With(...any) logging.Logger            { return nopLogger{} }

type userServiceFixture struct {
	svc    *UserService
	users  *fakeUsersRepo
	mailer *fakeMailer
	store  *fakeCacheStore
	emails *auth.EmailTokenService
}

func newUserServiceFixture(t *testing.T, db *sql.DB) *userServiceFixture {
	t.Helper()

	codec, err := auth.NewCodec("test-secret", "HS256", time.Now)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	users := newFakeUsersRepo()
	mailer := newFakeMailer()
	store := newFakeCacheStore()
	emails := auth.NewEmailTokenService(codec)

	svc := NewUserService(
		db,
		&fakeRepoManager{u: users, c: fakeContactsRepo{}},
		auth.NewBcryptHasher(),
		auth.NewAccessTokenService(codec, time.Hour),
		emails,
		cache.NewSessionCache(store),
		mailer,
		&fakeAvatarStore{url: "https://s3.local/avatars/alice/x"},
		nopLogger{},
	)

	return &userServiceFixture{svc: svc, users: users, mailer: mailer, store: store, emails: emails}
}

func TestAccountLifecycle(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	fx := newUserServiceFixture(t, db)
	ctx := context.Background()

	req := RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "sw0rdfish"}
	user, err := fx.svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Confirmed {
		t.Fatal("new account must start unconfirmed")
	}
	if user.Avatar == "" || !strings.Contains(user.Avatar, "gravatar.com") {
		t.Fatalf("expected gravatar default, got %q", user.Avatar)
	}
	if sent := fx.mailer.waitForSend(t); sent.email != req.Email || sent.username != req.Username {
		t.Fatalf("unexpected confirmation mail: %+v", sent)
	}

	// login before confirmation is rejected and must not issue a token
	if _, err := fx.svc.Login(ctx, "alice", "sw0rdfish"); !errors.Is(err, common.ErrUnconfirmed) {
		t.Fatalf("unconfirmed login: want ErrUnconfirmed, got %v", err)
	}
	if len(fx.store.entries) != 0 {
		t.Fatal("no session snapshot expected before confirmation")
	}

	token, err := fx.emails.Issue(req.Email)
	if err != nil {
		t.Fatalf("Issue email token error: %v", err)
	}
	if err := fx.svc.ConfirmEmail(ctx, token); err != nil {
		t.Fatalf("ConfirmEmail error: %v", err)
	}
	if err := fx.svc.ConfirmEmail(ctx, token); !errors.Is(err, common.ErrAlreadyConfirmed) {
		t.Fatalf("second confirmation: want ErrAlreadyConfirmed, got %v", err)
	}

	access, err := fx.svc.Login(ctx, "alice", "sw0rdfish")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if access == "" {
		t.Fatal("expected non-empty access token")
	}

	e, ok := fx.store.entries["user:alice"]
	if !ok {
		t.Fatalf("expected session snapshot under user:alice, have %v", fx.store.entries)
	}
	if e.ttl != cache.SnapshotTTL {
		t.Fatalf("snapshot ttl = %v, want %v", e.ttl, cache.SnapshotTTL)
	}
	var snap cache.Snapshot
	if err := json.Unmarshal(e.value, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.Username != "alice" || !snap.Confirmed {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestRegister_Conflicts(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	fx := newUserServiceFixture(t, db)
	ctx := context.Background()

	if _, err := fx.svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "x"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	fx.mailer.waitForSend(t)

	// same email, different username
	_, err := fx.svc.Register(ctx, RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "x"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("email conflict: want ErrConflict, got %v", err)
	}

	// same username, different email
	_, err = fx.svc.Register(ctx, RegisterRequest{Username: "alice", Email: "other@example.com", Password: "x"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("username conflict: want ErrConflict, got %v", err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	fx := newUserServiceFixture(t, db)
	ctx := context.Background()

	if _, err := fx.svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "right"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	fx.mailer.waitForSend(t)
	fx.users.users["alice@example.com"].Confirmed = true

	if _, err := fx.svc.Login(ctx, "ghost", "whatever"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("unknown user: want ErrInvalidCredentials, got %v", err)
	}
	if _, err := fx.svc.Login(ctx, "alice", "wrong"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", err)
	}
	if len(fx.store.entries) != 0 {
		t.Fatal("failed logins must not write session snapshots")
	}
}

func TestConfirmEmail_UnknownEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	fx := newUserServiceFixture(t, db)

	token, err := fx.emails.Issue("nobody@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if err := fx.svc.ConfirmEmail(context.Background(), token); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestConfirmEmail_BadToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	fx := newUserServiceFixture(t, db)

	err := fx.svc.ConfirmEmail(context.Background(), "not-a-token")
	if !errors.Is(err, common.ErrUnprocessableToken) {
		t.Fatalf("want ErrUnprocessableToken, got %v", err)
	}
}

func TestResendConfirmation_Neutral(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	fx := newUserServiceFixture(t, db)
	ctx := context.Background()

	// unknown address: silently accepted, nothing sent
	if err := fx.svc.ResendConfirmation(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("ResendConfirmation unknown: %v", err)
	}

	if _, err := fx.svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "x"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	fx.mailer.waitForSend(t)

	// pending account: another mail goes out
	if err := fx.svc.ResendConfirmation(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ResendConfirmation pending: %v", err)
	}
	fx.mailer.waitForSend(t)

	// confirmed account: silently accepted, nothing sent
	fx.users.users["alice@example.com"].Confirmed = true
	if err := fx.svc.ResendConfirmation(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ResendConfirmation confirmed: %v", err)
	}
	select {
	case m := <-fx.mailer.sent:
		t.Fatalf("unexpected mail after confirmation: %+v", m)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUpdateAvatar(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	fx := newUserServiceFixture(t, db)
	ctx := context.Background()

	user, err := fx.svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "x"})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	fx.mailer.waitForSend(t)

	updated, err := fx.svc.UpdateAvatar(ctx, user, strings.NewReader("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("UpdateAvatar error: %v", err)
	}
	if updated.Avatar != "https://s3.local/avatars/alice/x" {
		t.Fatalf("unexpected avatar url: %q", updated.Avatar)
	}
}
