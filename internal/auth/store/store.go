package store

import (
	"context"
	"errors"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrConflict      = errors.New("store: concurrent update")
)

// Store is the root data access interface. Sub-repositories are reached
// through methods so a Tx can hand out the same repositories bound to the
// transaction, and nested transactions are impossible to start by accident.
type Store interface {
	Accounts() Accounts
	MFAChallenges() MFAChallenges

	ApplyMigrations() error

	// WithTx runs fn in a read/write transaction. fn returning an error rolls
	// the transaction back; nil commits.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Accounts() Accounts
	MFAChallenges() MFAChallenges
}

type Accounts interface {
	// Create inserts a. Uniqueness of email and of non-null username is
	// enforced by the database; a collision returns an error wrapping
	// ErrAlreadyExists and naming the field.
	Create(ctx context.Context, a domain.Account) error

	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)

	// UpdateRole sets role and partner status together and bumps updated_at.
	UpdateRole(ctx context.Context, id string, role domain.Role, status *domain.PartnerStatus) error

	// SetPartnerStatus only touches accounts whose role is partner.
	SetPartnerStatus(ctx context.Context, id string, status domain.PartnerStatus) error

	// ListPartners returns partners, newest first. A nil status lists all.
	ListPartners(ctx context.Context, status *domain.PartnerStatus) ([]domain.Account, error)

	CountByRole(ctx context.Context) ([]domain.RoleCount, error)
}

// MFAChallenges holds at most one challenge per account.
type MFAChallenges interface {
	// Upsert stores c, replacing any challenge the account already has.
	Upsert(ctx context.Context, c domain.MFAChallenge) error

	Get(ctx context.Context, accountID string) (domain.MFAChallenge, error)

	// DecrementAttempts lowers the counter of challenge challengeID by one,
	// provided it is still the account's current challenge and has attempts
	// left. It returns the remaining count, or ErrNotFound when the guard
	// did not match.
	DecrementAttempts(ctx context.Context, accountID, challengeID string) (int, error)

	// Consume deletes challenge challengeID. Only one caller can observe
	// success; the rest get ErrNotFound.
	Consume(ctx context.Context, accountID, challengeID string) error

	// DeleteExpired removes challenges that expired before now and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
