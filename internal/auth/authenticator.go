package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weiawesome/wes-chat/internal/cache"
	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/internal/repository"
	"github.com/weiawesome/wes-chat/pkg/jwt"
	"github.com/weiawesome/wes-chat/pkg/log"
)

// IdentityStore resolves a stored credential to its user.
type IdentityStore interface {
	GetByToken(ctx context.Context, token string) (*domain.User, error)
}

// TokenVerifier checks a credential's signature before the store is hit.
type TokenVerifier interface {
	Validate(token string) (*jwt.Claims, error)
}

// Authenticator resolves an Authorization header to a Principal.
type Authenticator struct {
	store    IdentityStore
	verifier TokenVerifier
	cache    cache.PrincipalCache
	cacheTTL time.Duration
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithVerifier rejects credentials that fail signature verification
// before looking them up.
func WithVerifier(v TokenVerifier) Option {
	return func(a *Authenticator) { a.verifier = v }
}

// WithCache serves repeated lookups of the same credential from c.
func WithCache(c cache.PrincipalCache, ttl time.Duration) Option {
	return func(a *Authenticator) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// NewAuthenticator creates an Authenticator backed by store.
func NewAuthenticator(store IdentityStore, opts ...Option) *Authenticator {
	a := &Authenticator{store: store}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate returns the Principal owning the bearer credential in
// header. Missing, malformed, unknown and revoked credentials all fail
// with domain.ErrUnauthenticated. Identity store outages are returned
// as-is.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*domain.Principal, error) {
	l := log.Ctx(ctx)

	token, ok := BearerToken(NormalizeAuthorization(header))
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	var subject string
	if a.verifier != nil {
		claims, err := a.verifier.Validate(token)
		if err != nil {
			l.Debug().Err(err).Msg("credential rejected by verifier")
			return nil, domain.ErrUnauthenticated
		}
		subject = claims.Subject
	}

	if a.cache != nil {
		p, err := a.cache.Get(ctx, token)
		switch {
		case err == nil && (subject == "" || p.ID == subject):
			return p, nil
		case err != nil && !errors.Is(err, cache.ErrCacheMiss):
			l.Warn().Err(err).Msg("principal cache lookup failed")
		}
	}

	user, err := a.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("identity lookup: %w", err)
	}
	if subject != "" && user.ID != subject {
		l.Warn().Str(log.FieldUserID, user.ID).Msg("credential subject does not match its owner")
		return nil, domain.ErrUnauthenticated
	}

	principal := user.ToPrincipal()
	if a.cache != nil {
		if err := a.cache.Set(ctx, token, principal, a.cacheTTL); err != nil {
			l.Warn().Err(err).Msg("failed to cache principal")
		}
	}
	return principal, nil
}

// Forget evicts cached principals for the given credentials.
func (a *Authenticator) Forget(ctx context.Context, tokens ...string) {
	if a.cache == nil || len(tokens) == 0 {
		return
	}
	if err := a.cache.Delete(ctx, tokens...); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to evict cached principals")
	}
}
