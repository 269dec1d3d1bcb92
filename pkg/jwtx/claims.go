package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window applied to every issued token unless
// the service is configured otherwise.
const DefaultTokenTTL = time.Hour

// Authentication method references carried in the amr claim.
const (
	AMRPassword = "pwd"
	AMRMFA      = "mfa"
)

// Claims are the bearer token claims. Role is a snapshot taken at issuance, a
// later role switch does not change tokens already handed out.
type Claims struct {
	jwt.RegisteredClaims

	Role string   `json:"role"`
	AMR  []string `json:"amr,omitempty"`
}

// NewClaims builds claims for subject valid for ttl from now.
func NewClaims(subject, role string, amr []string, issuer string, ttl time.Duration, now time.Time) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Role: role,
		AMR:  amr,
	}
}

// HasAMR reports whether method was used to obtain the token.
func (c Claims) HasAMR(method string) bool {
	return slices.Contains(c.AMR, method)
}

// Expiry returns the exp claim, or the zero time when absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func newJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
