package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-webauth/app/entity"
	"github.com/vibast-solutions/ms-go-webauth/app/repository"
	"github.com/vibast-solutions/ms-go-webauth/app/service"
	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var userColumns = []string{
	"id",
	"email",
	"password_hash",
	"reset_token",
	"reset_token_expires_at",
	"created_at",
	"updated_at",
}

const (
	insertUserQuery            = `(?s)INSERT INTO users \(email, password_hash, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?\)`
	findByEmailQuery           = `(?s)SELECT id, email, password_hash, reset_token, reset_token_expires_at, created_at, updated_at\s+FROM users WHERE email = \?`
	findByResetTokenQuery      = `(?s)SELECT id, email, password_hash, reset_token, reset_token_expires_at, created_at, updated_at\s+FROM users WHERE reset_token = \? AND reset_token_expires_at > \?`
	findByIDAndResetTokenQuery = `(?s)SELECT id, email, password_hash, reset_token, reset_token_expires_at, created_at, updated_at\s+FROM users WHERE id = \? AND reset_token = \? AND reset_token_expires_at > \?`
	setResetTokenQuery         = `(?s)UPDATE users SET\s+reset_token = \?,\s+reset_token_expires_at = \?,\s+updated_at = \?\s+WHERE id = \? AND reset_token <=> \?`
	resetPasswordQuery         = `(?s)UPDATE users SET\s+password_hash = \?,\s+reset_token = NULL,\s+reset_token_expires_at = NULL,\s+updated_at = \?\s+WHERE id = \? AND reset_token = \? AND reset_token_expires_at > \?`
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// plainHasher keeps tests fast; bcrypt itself is covered in hasher_test.go.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (plainHasher) Compare(plaintext, hash string) bool   { return hash == "hashed:"+plaintext }

type fixedTokens struct {
	tokens []string
	err    error
}

func (g *fixedTokens) Generate() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	token := g.tokens[0]
	g.tokens = g.tokens[1:]
	return token, nil
}

type sentReset struct {
	email string
	token string
}

type recordingNotifier struct {
	mu       sync.Mutex
	resets   []sentReset
	welcomes []string
}

func (n *recordingNotifier) SendPasswordReset(email, token string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, sentReset{email: email, token: token})
}

func (n *recordingNotifier) SendWelcome(email string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, email)
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP:   config.HTTPConfig{BaseURL: "http://localhost:3000"},
		Tokens: config.TokenConfig{ResetTTL: time.Hour},
		Mail:   config.MailConfig{SendTimeout: time.Second},
	}
}

func newServiceWithMock(t *testing.T, tokens ...string) (service.AuthService, sqlmock.Sqlmock, *recordingNotifier, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	notifier := &recordingNotifier{}
	svc := service.NewAuthService(
		repository.NewUserRepository(db),
		notifier,
		testConfig(),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithHasher(plainHasher{}),
		service.WithTokenGenerator(&fixedTokens{tokens: append(tokens, "spare-token")}),
	)

	return svc, mock, notifier, func() { _ = db.Close() }
}

func userRow(id uint64, email, hash string, token, expiresAt any) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).AddRow(id, email, hash, token, expiresAt, fixedNow, fixedNow)
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("user@example.com").
		WillReturnRows(userRow(1, "user@example.com", "hashed:secret", nil, nil))

	user, err := svc.Login(context.Background(), "user@example.com", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("expected user 1, got %d", user.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("user@example.com").
		WillReturnRows(userRow(1, "user@example.com", "hashed:secret", nil, nil))

	user, err := svc.Login(context.Background(), "user@example.com", "guess")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected no user on failed login")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Login_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := svc.Login(context.Background(), "ghost@example.com", "secret")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t)
	defer cleanup()

	dbErr := errors.New("db down")
	mock.ExpectQuery(findByEmailQuery).
		WithArgs("user@example.com").
		WillReturnError(dbErr)

	_, err := svc.Login(context.Background(), "user@example.com", "secret")
	if !errors.Is(err, dbErr) || errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthService_Signup_CreatesUserAndSendsWelcome(t *testing.T) {
	svc, mock, notifier, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectExec(insertUserQuery).
		WithArgs("new@example.com", "hashed:password1", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(5, 1))

	user, err := svc.Signup(context.Background(), "new@example.com", "password1")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if user.ID != 5 || user.PasswordHash == "password1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if len(notifier.welcomes) != 1 || notifier.welcomes[0] != "new@example.com" {
		t.Fatalf("expected welcome email, got %v", notifier.welcomes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	svc, mock, notifier, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectExec(insertUserQuery).
		WithArgs("dup@example.com", "hashed:password1", fixedNow, fixedNow).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := svc.Signup(context.Background(), "dup@example.com", "password1")
	if !errors.Is(err, service.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(notifier.welcomes) != 0 {
		t.Fatalf("expected no welcome email for duplicate signup")
	}
}

func TestAuthService_RequestPasswordReset_UnknownEmailDoesNotMutate(t *testing.T) {
	svc, mock, notifier, cleanup := newServiceWithMock(t, "tok")
	defer cleanup()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(notifier.resets) != 0 {
		t.Fatalf("expected no reset email")
	}

	// Any UPDATE would have failed as unexpected.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_RequestPasswordReset_StoresTokenForOneHour(t *testing.T) {
	svc, mock, notifier, cleanup := newServiceWithMock(t, "a1b2c3")
	defer cleanup()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("a@b.com").
		WillReturnRows(userRow(1, "a@b.com", "hashed:old", nil, nil))
	mock.ExpectExec(setResetTokenQuery).
		WithArgs("a1b2c3", fixedNow.Add(3600000*time.Millisecond), fixedNow, uint64(1), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.RequestPasswordReset(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("request password reset failed: %v", err)
	}
	if len(notifier.resets) != 1 || notifier.resets[0] != (sentReset{email: "a@b.com", token: "a1b2c3"}) {
		t.Fatalf("expected reset email with token, got %+v", notifier.resets)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_RequestPasswordReset_ReplacesExistingToken(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t, "fresh")
	defer cleanup()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("a@b.com").
		WillReturnRows(userRow(1, "a@b.com", "hashed:old", "stale", fixedNow.Add(-time.Minute)))
	mock.ExpectExec(setResetTokenQuery).
		WithArgs("fresh", fixedNow.Add(time.Hour), fixedNow, uint64(1), "stale").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.RequestPasswordReset(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("request password reset failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_RequestPasswordReset_ConcurrentWriterWins(t *testing.T) {
	svc, mock, notifier, cleanup := newServiceWithMock(t, "loser")
	defer cleanup()

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("a@b.com").
		WillReturnRows(userRow(1, "a@b.com", "hashed:old", nil, nil))
	mock.ExpectExec(setResetTokenQuery).
		WithArgs("loser", fixedNow.Add(time.Hour), fixedNow, uint64(1), nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.RequestPasswordReset(context.Background(), "a@b.com")
	if !errors.Is(err, service.ErrResetConflict) {
		t.Fatalf("expected ErrResetConflict, got %v", err)
	}
	if len(notifier.resets) != 0 {
		t.Fatalf("expected no email for the losing token")
	}
}

func TestAuthService_RequestPasswordReset_EntropyFailureAborts(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	notifier := &recordingNotifier{}
	svc := service.NewAuthService(
		repository.NewUserRepository(db),
		notifier,
		testConfig(),
		service.WithTokenGenerator(&fixedTokens{err: errors.Join(service.ErrEntropy, errors.New("no entropy"))}),
	)

	err = svc.RequestPasswordReset(context.Background(), "a@b.com")
	if !errors.Is(err, service.ErrEntropy) {
		t.Fatalf("expected ErrEntropy, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expected no store access: %v", err)
	}
}

func TestAuthService_RequestPasswordReset_StoreFailure(t *testing.T) {
	svc, mock, notifier, cleanup := newServiceWithMock(t, "tok")
	defer cleanup()

	dbErr := errors.New("deadlock")
	mock.ExpectQuery(findByEmailQuery).
		WithArgs("a@b.com").
		WillReturnRows(userRow(1, "a@b.com", "hashed:old", nil, nil))
	mock.ExpectExec(setResetTokenQuery).
		WillReturnError(dbErr)

	err := svc.RequestPasswordReset(context.Background(), "a@b.com")
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(notifier.resets) != 0 {
		t.Fatalf("expected no email when persistence fails")
	}
}

func TestAuthService_ValidateResetToken(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByResetTokenQuery).
		WithArgs("tok", fixedNow).
		WillReturnRows(userRow(9, "a@b.com", "hashed:old", "tok", fixedNow.Add(time.Minute)))

	user, err := svc.ValidateResetToken(context.Background(), "tok")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if user.ID != 9 {
		t.Fatalf("expected user 9, got %d", user.ID)
	}
}

func TestAuthService_ValidateResetToken_Expired(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByResetTokenQuery).
		WithArgs("tok", fixedNow).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := svc.ValidateResetToken(context.Background(), "tok")
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_ResetPassword_InvalidTokenDoesNotWrite(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByIDAndResetTokenQuery).
		WithArgs(uint64(1), "wrong", fixedNow).
		WillReturnRows(sqlmock.NewRows(userColumns))

	err := svc.ResetPassword(context.Background(), 1, "wrong", "new-password")
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_ResetPassword_Success(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByIDAndResetTokenQuery).
		WithArgs(uint64(1), "tok", fixedNow).
		WillReturnRows(userRow(1, "a@b.com", "hashed:old", "tok", fixedNow.Add(time.Minute)))
	mock.ExpectExec(resetPasswordQuery).
		WithArgs("hashed:new-password", fixedNow, uint64(1), "tok", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.ResetPassword(context.Background(), 1, "tok", "new-password"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_ResetPassword_ConsumedConcurrently(t *testing.T) {
	svc, mock, _, cleanup := newServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findByIDAndResetTokenQuery).
		WithArgs(uint64(1), "tok", fixedNow).
		WillReturnRows(userRow(1, "a@b.com", "hashed:old", "tok", fixedNow.Add(time.Minute)))
	mock.ExpectExec(resetPasswordQuery).
		WithArgs("hashed:new-password", fixedNow, uint64(1), "tok", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.ResetPassword(context.Background(), 1, "tok", "new-password")
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

// memoryUserRepo mirrors the SQL predicates of repository.UserRepository.
type memoryUserRepo struct {
	mu     sync.Mutex
	users  map[uint64]*entity.User
	nextID uint64
	writes int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[uint64]*entity.User{}, nextID: 1}
}

func (r *memoryUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[user.ID] = &stored
	r.writes++
	return nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByResetToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken.Valid && u.ResetToken.String == token && u.ResetTokenExpiresAt.Valid && u.ResetTokenExpiresAt.Time.After(now) {
			found := *u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByIDAndResetToken(ctx context.Context, id uint64, token string, now time.Time) (*entity.User, error) {
	u, err := r.FindByResetToken(ctx, token, now)
	if err != nil || u == nil || u.ID != id {
		return nil, err
	}
	return u, nil
}

func (r *memoryUserRepo) SetResetToken(_ context.Context, userID uint64, previous sql.NullString, token string, expiresAt, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.ResetToken != previous {
		return false, nil
	}
	u.ResetToken = sql.NullString{String: token, Valid: true}
	u.ResetTokenExpiresAt = sql.NullTime{Time: expiresAt, Valid: true}
	u.UpdatedAt = now
	r.writes++
	return true, nil
}

func (r *memoryUserRepo) ResetPassword(_ context.Context, userID uint64, token, passwordHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || !u.ResetToken.Valid || u.ResetToken.String != token || !u.ResetTokenExpiresAt.Time.After(now) {
		return false, nil
	}
	u.PasswordHash = passwordHash
	u.ResetToken = sql.NullString{}
	u.ResetTokenExpiresAt = sql.NullTime{}
	u.UpdatedAt = now
	r.writes++
	return true, nil
}

func (r *memoryUserRepo) get(id uint64) entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

func TestAuthService_ResetLifecycle(t *testing.T) {
	repo := newMemoryUserRepo()
	notifier := &recordingNotifier{}
	now := fixedNow
	svc := service.NewAuthService(repo, notifier, testConfig(),
		service.WithClock(func() time.Time { return now }),
		service.WithHasher(plainHasher{}),
	)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "a@b.com", "original")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if err = svc.RequestPasswordReset(ctx, "a@b.com"); err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	pending := repo.get(user.ID)
	if !pending.ResetToken.Valid || !pending.ResetTokenExpiresAt.Valid {
		t.Fatalf("expected both reset fields set, got %+v", pending)
	}
	if got := pending.ResetTokenExpiresAt.Time.Sub(now); got != 3600000*time.Millisecond {
		t.Fatalf("expected expiry one hour after request, got %v", got)
	}
	token := pending.ResetToken.String
	if len(token) != 2*service.ResetTokenBytes {
		t.Fatalf("expected %d hex chars, got %q", 2*service.ResetTokenBytes, token)
	}
	if len(notifier.resets) != 1 || notifier.resets[0].token != token {
		t.Fatalf("expected reset email carrying the stored token, got %+v", notifier.resets)
	}

	if _, err = svc.ValidateResetToken(ctx, token); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if err = svc.ResetPassword(ctx, user.ID, token, "replacement"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}
	after := repo.get(user.ID)
	if after.ResetToken.Valid || after.ResetTokenExpiresAt.Valid {
		t.Fatalf("expected reset fields cleared, got %+v", after)
	}
	if after.PasswordHash == pending.PasswordHash {
		t.Fatalf("expected password hash to change")
	}
	if _, err = svc.Login(ctx, "a@b.com", "replacement"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	writes := repo.writes
	err = svc.ResetPassword(ctx, user.ID, token, "third")
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected reused token to fail with ErrInvalidToken, got %v", err)
	}
	if repo.writes != writes {
		t.Fatalf("expected no writes for a reused token")
	}
}

func TestAuthService_ResetRejectedAfterExpiry(t *testing.T) {
	repo := newMemoryUserRepo()
	now := fixedNow
	svc := service.NewAuthService(repo, &recordingNotifier{}, testConfig(),
		service.WithClock(func() time.Time { return now }),
		service.WithHasher(plainHasher{}),
		service.WithTokenGenerator(&fixedTokens{tokens: []string{"tok"}}),
	)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "a@b.com", "original")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if err = svc.RequestPasswordReset(ctx, "a@b.com"); err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	before := repo.get(user.ID)

	now = now.Add(time.Hour)
	if err = svc.ResetPassword(ctx, user.ID, "tok", "replacement"); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken at expiry, got %v", err)
	}
	after := repo.get(user.ID)
	if after.PasswordHash != before.PasswordHash || after.ResetToken != before.ResetToken || after.ResetTokenExpiresAt != before.ResetTokenExpiresAt {
		t.Fatalf("expected no mutation for an expired token")
	}
}

// sqlmock argument matcher used where only the shape of a value matters.
type hexToken struct{}

func (hexToken) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok || len(s) != 2*service.ResetTokenBytes {
		return false
	}
	return strings.Trim(s, "0123456789abcdef") == ""
}

func TestAuthService_RequestPasswordReset_DefaultGenerator(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	svc := service.NewAuthService(repository.NewUserRepository(db), &recordingNotifier{}, testConfig(),
		service.WithClock(func() time.Time { return fixedNow }),
	)

	mock.ExpectQuery(findByEmailQuery).
		WithArgs("a@b.com").
		WillReturnRows(userRow(1, "a@b.com", "hash", nil, nil))
	mock.ExpectExec(setResetTokenQuery).
		WithArgs(hexToken{}, fixedNow.Add(time.Hour), fixedNow, uint64(1), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.RequestPasswordReset(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("request password reset failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
