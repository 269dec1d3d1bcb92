package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrUnknownKID   = errors.New("jwtx: unknown kid")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Verifier checks tokens produced by a KeyRing. It never touches storage, the
// outcome depends only on the token, the ring and the clock.
type Verifier struct {
	keys   *KeyRing
	issuer string
	now    func() time.Time
}

type VerifierOption func(*Verifier)

// WithClock overrides time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

func NewVerifier(keys *KeyRing, issuer string, opts ...VerifierOption) *Verifier {
	v := &Verifier{keys: keys, issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify parses raw and returns its claims. Errors wrap exactly one of the
// package sentinels; ErrExpired is only returned for a token whose signature
// checked out. A token is still valid at its exp instant.
func (v *Verifier) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMalformed
	}

	// Time based claims are checked by validate against the injected clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.keys.Algorithm()}),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		pub, ok := v.keys.publicKey(kid)
		if !ok {
			return nil, ErrUnknownKID
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}
	if err := v.validate(claims); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func (v *Verifier) validate(c Claims) error {
	now := v.now()

	exp := c.Expiry()
	switch {
	case exp.IsZero():
		return fmt.Errorf("%w: missing exp", ErrInvalidClaim)
	case v.issuer != "" && c.Issuer != v.issuer:
		return fmt.Errorf("%w: issuer %q", ErrInvalidClaim, c.Issuer)
	case c.IssuedAt != nil && now.Before(c.IssuedAt.Time):
		return fmt.Errorf("%w: issued in the future", ErrInvalidClaim)
	case c.NotBefore != nil && now.Before(c.NotBefore.Time):
		return fmt.Errorf("%w: not valid yet", ErrInvalidClaim)
	case c.Subject == "" || c.Role == "":
		return ErrInvalidClaim
	case now.After(exp):
		return fmt.Errorf("%w: expired at %s", ErrExpired, exp.Format(time.RFC3339))
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, ErrUnknownKID):
		return ErrUnknownKID
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
}
