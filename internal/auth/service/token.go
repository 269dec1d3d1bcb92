package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
)

// TokenService signs and verifies access tokens. Tokens are never stored, so
// verification needs nothing but the key ring and the clock.
type TokenService struct {
	keys     *jwtx.KeyRing
	verifier *jwtx.Verifier
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenService builds a token service. A zero ttl selects
// jwtx.DefaultTokenTTL and a nil now selects time.Now.
func NewTokenService(keys *jwtx.KeyRing, issuer string, ttl time.Duration, now func() time.Time) *TokenService {
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		keys:     keys,
		verifier: jwtx.NewVerifier(keys, issuer, jwtx.WithClock(now)),
		issuer:   issuer,
		ttl:      ttl,
		now:      now,
	}
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for the account's current role. amr records how the
// caller authenticated.
func (s *TokenService) Issue(a domain.Account, amr ...string) (domain.IssuedToken, error) {
	if a.ID == "" || a.Role == "" {
		return domain.IssuedToken{}, domain.Internal(errors.New("issue token: account without id or role"))
	}

	claims := jwtx.NewClaims(a.ID, string(a.Role), amr, s.issuer, s.ttl, s.now())
	raw, err := s.keys.Sign(claims)
	if err != nil {
		return domain.IssuedToken{}, domain.Internal(fmt.Errorf("sign token: %w", err))
	}

	return domain.IssuedToken{
		AccessToken: raw,
		TokenType:   domain.TokenTypeBearer,
		ID:          claims.ID,
		Role:        a.Role,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Verify checks raw and returns its claims. A correctly signed token past its
// expiry fails with ErrTokenExpired; everything else that is not a valid
// token, including "", whitespace and "null", fails with ErrTokenInvalid.
func (s *TokenService) Verify(raw string) (jwtx.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") {
		return jwtx.Claims{}, domain.ErrTokenInvalid
	}

	claims, err := s.verifier.Verify(raw)
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return jwtx.Claims{}, domain.Wrap(domain.ErrTokenExpired, err)
	case err != nil:
		return jwtx.Claims{}, domain.Wrap(domain.ErrTokenInvalid, err)
	}

	if _, ok := domain.ParseRole(claims.Role); !ok {
		return jwtx.Claims{}, domain.Wrap(domain.ErrTokenInvalid, fmt.Errorf("unknown role %q", claims.Role))
	}
	return claims, nil
}
