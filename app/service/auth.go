package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-webauth/app/entity"
	"github.com/vibast-solutions/ms-go-webauth/app/metrics"
	"github.com/vibast-solutions/ms-go-webauth/app/repository"
	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/sirupsen/logrus"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrResetConflict      = errors.New("reset token changed concurrently")
	ErrEntropy            = errors.New("random source unavailable")
)

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	FindByIDAndResetToken(ctx context.Context, id uint64, token string, now time.Time) (*entity.User, error)
	SetResetToken(ctx context.Context, userID uint64, previous sql.NullString, token string, expiresAt, now time.Time) (bool, error)
	ResetPassword(ctx context.Context, userID uint64, token, passwordHash string, now time.Time) (bool, error)
}

type notifier interface {
	SendPasswordReset(email, token string)
	SendWelcome(email string)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*entity.User, error)
	Signup(ctx context.Context, email, password string) (*entity.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) (*entity.User, error)
	ResetPassword(ctx context.Context, userID uint64, token, newPassword string) error
}

type AuthServiceOption func(*authService)

func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *authService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithHasher(h Hasher) AuthServiceOption {
	return func(s *authService) {
		if h != nil {
			s.hasher = h
		}
	}
}

func WithTokenGenerator(g TokenGenerator) AuthServiceOption {
	return func(s *authService) {
		if g != nil {
			s.tokens = g
		}
	}
}

func WithMetrics(m *metrics.Metrics) AuthServiceOption {
	return func(s *authService) {
		s.metrics = m
	}
}

type authService struct {
	userRepo userRepository
	notifier notifier
	cfg      *config.Config
	hasher   Hasher
	tokens   TokenGenerator
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewAuthService(userRepo userRepository, notifier notifier, cfg *config.Config, opts ...AuthServiceOption) AuthService {
	svc := &authService{
		userRepo: userRepo,
		notifier: notifier,
		cfg:      cfg,
		hasher:   NewBcryptHasher(),
		tokens:   NewRandomTokenGenerator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Login fails with ErrInvalidCredentials both for unknown emails and wrong passwords.
func (s *authService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if user == nil || !s.hasher.Compare(password, user.PasswordHash) {
		s.metrics.Login(metrics.ResultInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	s.metrics.Login(metrics.ResultSuccess)
	return user, nil
}

// Signup relies on the unique index on users.email to reject duplicates.
func (s *authService) Signup(ctx context.Context, email, password string) (*entity.User, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &entity.User{
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.metrics.Signup(metrics.ResultDuplicate)
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.Signup(metrics.ResultCreated)
	s.notifier.SendWelcome(user.Email)
	return user, nil
}

// RequestPasswordReset issues a fresh token for the account and queues the
// reset email. The token is written with a compare-and-swap on the previous
// token value; when a concurrent request wins, ErrResetConflict is returned and
// no email is sent for the losing token.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	token, err := s.tokens.Generate()
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		s.metrics.ResetRequest(metrics.ResultUnknownEmail)
		return ErrUserNotFound
	}

	now := s.now()
	if user.HasPendingReset(now) {
		logrus.WithField("user_id", user.ID).Debug("Replacing pending reset token")
	}
	expiresAt := now.Add(s.cfg.Tokens.ResetTTL)
	updated, err := s.userRepo.SetResetToken(ctx, user.ID, user.ResetToken, token, expiresAt, now)
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if !updated {
		s.metrics.ResetRequest(metrics.ResultConflict)
		logrus.WithField("user_id", user.ID).Warn("Reset token was replaced by a concurrent request")
		return ErrResetConflict
	}

	s.metrics.ResetRequest(metrics.ResultIssued)
	s.notifier.SendPasswordReset(user.Email, token)
	return nil
}

func (s *authService) ValidateResetToken(ctx context.Context, token string) (*entity.User, error) {
	user, err := s.userRepo.FindByResetToken(ctx, token, s.now())
	if err != nil {
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// ResetPassword consumes the token. Any lookup miss returns ErrInvalidToken
// before a single write happens.
func (s *authService) ResetPassword(ctx context.Context, userID uint64, token, newPassword string) error {
	now := s.now()
	user, err := s.userRepo.FindByIDAndResetToken(ctx, userID, token, now)
	if err != nil {
		return fmt.Errorf("find user by reset token: %w", err)
	}
	if user == nil {
		s.metrics.Reset(metrics.ResultInvalidToken)
		return ErrInvalidToken
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	consumed, err := s.userRepo.ResetPassword(ctx, user.ID, token, hashed, now)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if !consumed {
		s.metrics.Reset(metrics.ResultInvalidToken)
		return ErrInvalidToken
	}

	s.metrics.Reset(metrics.ResultCompleted)
	return nil
}
