package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/metrics"
	"github.com/IL272/Wilddict/internal/model"
	"github.com/IL272/Wilddict/internal/repository"
	"github.com/IL272/Wilddict/internal/utils"
)

// AccountLookup finds the account a token subject names.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
}

// Resolver turns a bearer token into the account it was issued to.
type Resolver struct {
	codec    *utils.TokenCodec
	accounts AccountLookup
	// EnforceActive rejects tokens of deactivated accounts.
	EnforceActive bool

	metrics *metrics.Auth
	log     *zap.Logger
}

// NewResolver wires a Resolver with EnforceActive set to enforceActive.
func NewResolver(codec *utils.TokenCodec, accounts AccountLookup, enforceActive bool, m *metrics.Auth, log *zap.Logger) *Resolver {
	return &Resolver{codec: codec, accounts: accounts, EnforceActive: enforceActive, metrics: m, log: log}
}

// Resolve returns the principal for raw.  Every rejection is
// ErrUnauthenticated; the concrete reason only reaches logs and metrics.
// Storage failures are returned as-is so they surface as server errors
// rather than as a rejected token.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*model.Account, error) {
	claim, err := r.codec.Decode(raw)
	if err != nil {
		if errors.Is(err, utils.ErrExpiredToken) {
			return nil, r.reject("expired", err)
		}
		return nil, r.reject("malformed", err)
	}

	acc, err := r.accounts.GetByEmail(ctx, claim.Subject)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, r.reject("unknown_subject", err)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	if r.EnforceActive && !acc.IsActive {
		return nil, r.reject("inactive", ErrInactiveAccount)
	}
	return acc, nil
}

func (r *Resolver) reject(reason string, cause error) error {
	r.metrics.Rejections.WithLabelValues(reason).Inc()
	r.log.Debug("token rejected", zap.String("reason", reason), zap.Error(cause))
	return ErrUnauthenticated
}
