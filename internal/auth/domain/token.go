package domain

import "time"

const TokenTypeBearer = "Bearer"

// IssuedToken is a freshly signed access token. Tokens are never stored.
type IssuedToken struct {
	AccessToken string
	TokenType   string
	ID          string // jti
	Role        Role
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// ExpiresIn is the remaining lifetime relative to now, never negative.
func (t IssuedToken) ExpiresIn(now time.Time) time.Duration {
	return max(t.ExpiresAt.Sub(now), 0)
}

// LoginResult carries a token or a pending challenge, never both. A freshly
// registered MFA account has neither.
type LoginResult struct {
	Account   Account
	Token     *IssuedToken
	Challenge *ChallengeTicket
}

func (r LoginResult) MFARequired() bool { return r.Challenge != nil }
