package domain

import "time"

// MFAMethodCode is the only step-up method: a numeric one-time code.
const MFAMethodCode = "code"

// MFAChallenge is the single pending step-up slot of an account. A new login
// overwrites it.
type MFAChallenge struct {
	ID                string
	AccountID         string
	CodeHash          string // SHA-256 fingerprint of the code
	AttemptsRemaining int
	CreatedAt         time.Time
	ExpiresAt         time.Time
}

func (c MFAChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ChallengeTicket is what the caller learns about a freshly created
// challenge. Code is the plaintext and is never stored.
type ChallengeTicket struct {
	ChallengeID string
	AccountID   string
	Code        string
	Methods     []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}
