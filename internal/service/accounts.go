package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/metrics"
	"github.com/IL272/Wilddict/internal/model"
	"github.com/IL272/Wilddict/internal/queue"
	"github.com/IL272/Wilddict/internal/repository"
	"github.com/IL272/Wilddict/internal/utils"
)

// Input limits.  Password bounds follow bcrypt (72 bytes) and the web
// client's minimum.
const (
	MinPasswordLen = 6
	MaxPasswordLen = 72
	MaxEmailLen    = 255
	MaxUsernameLen = 64
)

// AccountStore is the persistence the registry needs.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (*model.Account, error)
}

// Session is the result of a successful registration or login.
type Session struct {
	Account *model.Account
	Token   utils.AccessToken
}

// Registry owns account identity: uniqueness of email and username,
// account creation and login.
type Registry struct {
	accounts AccountStore
	hasher   *utils.Hasher
	codec    *utils.TokenCodec
	ttl      time.Duration
	events   queue.Publisher
	metrics  *metrics.Auth
	log      *zap.Logger
}

// NewRegistry wires a Registry.  ttl is the validity window of every token
// it issues.
func NewRegistry(accounts AccountStore, hasher *utils.Hasher, codec *utils.TokenCodec, ttl time.Duration,
	events queue.Publisher, m *metrics.Auth, log *zap.Logger) *Registry {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &Registry{accounts: accounts, hasher: hasher, codec: codec, ttl: ttl, events: events, metrics: m, log: log}
}

// Register creates an active account and returns an authenticated session
// for it.  An email clash is reported before a username clash.  The
// pre-check gives a friendly error; the unique indexes decide races.
func (r *Registry) Register(ctx context.Context, email, username, password string) (*Session, error) {
	email, username = strings.TrimSpace(email), strings.TrimSpace(username)
	if err := validateRegistration(email, username, password); err != nil {
		r.metrics.Registrations.WithLabelValues("invalid").Inc()
		return nil, err
	}

	existing, err := r.GetByEmailOrUsername(ctx, email, username)
	if err != nil {
		r.metrics.Registrations.WithLabelValues("error").Inc()
		return nil, err
	}
	if existing != nil {
		return nil, r.duplicate(existing.Email == email)
	}

	hash, err := r.hasher.HashPassword(password)
	if err != nil {
		r.metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc := &model.Account{Email: email, Username: username, PasswordHash: hash, IsActive: true}
	if err := r.accounts.Create(ctx, acc); err != nil {
		var ce repository.ConflictError
		if errors.As(err, &ce) {
			return nil, r.duplicate(ce.Field != "username")
		}
		r.metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create account: %w", err)
	}

	tok, err := r.codec.Issue(acc.Email, r.ttl)
	if err != nil {
		r.metrics.Registrations.WithLabelValues("error").Inc()
		return nil, err
	}
	r.metrics.Registrations.WithLabelValues("ok").Inc()
	r.log.Info("account registered", zap.Uint64("account_id", acc.ID), zap.String("username", acc.Username))

	ev := queue.NewEvent(queue.AccountRegistered, acc.ID)
	ev.Username = acc.Username
	_ = r.events.Publish(ctx, ev)

	return &Session{Account: acc, Token: tok}, nil
}

// Login verifies the password for email and issues a fresh token.  Unknown
// email and wrong password produce the same error after the same amount of
// bcrypt work.  The active flag is consulted only once the password checks
// out.
func (r *Registry) Login(ctx context.Context, email, password string) (*Session, error) {
	acc, err := r.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		r.metrics.Logins.WithLabelValues("error").Inc()
		return nil, err
	}
	if acc == nil {
		r.hasher.Burn(password)
		r.metrics.Logins.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}
	if !r.hasher.VerifyPassword(acc.PasswordHash, password) {
		r.metrics.Logins.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}
	if !acc.IsActive {
		r.metrics.Logins.WithLabelValues("inactive").Inc()
		return nil, ErrInactiveAccount
	}

	tok, err := r.codec.Issue(acc.Email, r.ttl)
	if err != nil {
		r.metrics.Logins.WithLabelValues("error").Inc()
		return nil, err
	}
	r.metrics.Logins.WithLabelValues("ok").Inc()
	_ = r.events.Publish(ctx, queue.NewEvent(queue.AccountLoggedIn, acc.ID))
	return &Session{Account: acc, Token: tok}, nil
}

// GetByEmail returns the account registered under email, or nil when there
// is none.
func (r *Registry) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	acc, err := r.accounts.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return acc, nil
}

// GetByEmailOrUsername returns an account holding email or username,
// preferring the email owner, or nil when neither is taken.
func (r *Registry) GetByEmailOrUsername(ctx context.Context, email, username string) (*model.Account, error) {
	acc, err := r.accounts.GetByEmailOrUsername(ctx, email, username)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email or username: %w", err)
	}
	return acc, nil
}

func (r *Registry) duplicate(email bool) error {
	if email {
		r.metrics.Registrations.WithLabelValues("duplicate_email").Inc()
		return ErrDuplicateEmail
	}
	r.metrics.Registrations.WithLabelValues("duplicate_username").Inc()
	return ErrDuplicateUsername
}

func validateRegistration(email, username, password string) error {
	switch {
	case email == "" || !strings.Contains(email, "@") || len(email) > MaxEmailLen:
		return fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	case username == "" || len(username) > MaxUsernameLen:
		return fmt.Errorf("%w: username must be 1-%d characters", ErrInvalidInput, MaxUsernameLen)
	case len(password) < MinPasswordLen:
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLen)
	case len(password) > MaxPasswordLen:
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, MaxPasswordLen)
	}
	return nil
}
