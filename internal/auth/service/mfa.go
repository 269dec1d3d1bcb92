package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/cryptox"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/idx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"
)

const (
	DefaultMFACodeTTL     = 5 * time.Minute
	DefaultMFAMaxAttempts = 5
	DefaultMFACodeDigits  = 6
)

// MFAService runs the step-up challenge: one overwritable slot per account,
// a bounded number of guesses, and at most one token per challenge.
type MFAService struct {
	Accounts   store.Accounts
	Challenges store.MFAChallenges
	Tokens     *TokenService

	CodeTTL     time.Duration
	MaxAttempts int
	CodeDigits  int

	Observer Observer
	Now      func() time.Time
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *MFAService) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultMFACodeTTL
}

func (s *MFAService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultMFAMaxAttempts
}

func (s *MFAService) codeDigits() int {
	if s.CodeDigits > 0 {
		return s.CodeDigits
	}
	return DefaultMFACodeDigits
}

// CreateChallenge draws a fresh code for the account and replaces whatever
// challenge it had. Only the code's fingerprint is stored; the plaintext is
// returned once in the ticket.
func (s *MFAService) CreateChallenge(ctx context.Context, accountID string) (domain.ChallengeTicket, error) {
	code, err := cryptox.GenerateNumericCode(s.codeDigits())
	if err != nil {
		return domain.ChallengeTicket{}, classify(ctx, "generate mfa code", err)
	}

	now := s.now()
	c := domain.MFAChallenge{
		ID:                idx.NewAt(now).String(),
		AccountID:         accountID,
		CodeHash:          cryptox.FingerprintToken(code),
		AttemptsRemaining: s.maxAttempts(),
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.codeTTL()),
	}
	if err := s.Challenges.Upsert(ctx, c); err != nil {
		return domain.ChallengeTicket{}, classify(ctx, "store mfa challenge", err)
	}

	slogx.FromContext(ctx).Info("mfa challenge issued",
		slog.String("account_id", accountID),
		slog.String("challenge_id", c.ID),
	)
	return domain.ChallengeTicket{
		ChallengeID: c.ID,
		AccountID:   accountID,
		Code:        code,
		Methods:     []string{domain.MFAMethodCode},
		IssuedAt:    c.CreatedAt,
		ExpiresAt:   c.ExpiresAt,
	}, nil
}

// VerifyChallenge checks code against the account's pending challenge. Every
// guess costs an attempt, right or wrong. A matching code consumes the
// challenge and yields a token carrying amr [pwd mfa].
func (s *MFAService) VerifyChallenge(ctx context.Context, accountID, code string) (domain.Account, domain.IssuedToken, error) {
	account, token, err := s.verify(ctx, strings.TrimSpace(accountID), strings.TrimSpace(code))

	outcome := OutcomeSuccess
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	observerOrNop(s.Observer).MFAVerification(outcome)
	return account, token, err
}

func (s *MFAService) verify(ctx context.Context, accountID, code string) (domain.Account, domain.IssuedToken, error) {
	l := slogx.FromContext(ctx).With(slog.String("account_id", accountID))

	if accountID == "" {
		return domain.Account{}, domain.IssuedToken{}, domain.NewValidationError("account_id", "account_id is required")
	}
	if code == "" {
		return domain.Account{}, domain.IssuedToken{}, domain.NewValidationError("code", "code is required")
	}

	c, err := s.Challenges.Get(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.IssuedToken{}, noActiveChallenge()
	}
	if err != nil {
		return domain.Account{}, domain.IssuedToken{}, classify(ctx, "load mfa challenge", err)
	}
	if c.Expired(s.now()) {
		return domain.Account{}, domain.IssuedToken{}, domain.ErrMFAExpired
	}
	if c.AttemptsRemaining <= 0 {
		return domain.Account{}, domain.IssuedToken{}, domain.ErrMFAAttemptsExceeded
	}

	remaining, err := s.Challenges.DecrementAttempts(ctx, accountID, c.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.IssuedToken{}, s.lostRace(ctx, accountID, c.ID)
	}
	if err != nil {
		return domain.Account{}, domain.IssuedToken{}, classify(ctx, "decrement mfa attempts", err)
	}

	if !cryptox.EqualFingerprints(cryptox.FingerprintToken(code), c.CodeHash) {
		l.Info("mfa code rejected", slog.Int("attempts_remaining", remaining))
		return domain.Account{}, domain.IssuedToken{}, &domain.Error{
			Kind:    domain.KindMFAInvalidCode,
			Message: fmt.Sprintf("invalid verification code, %d attempts remaining", remaining),
		}
	}

	if err := s.Challenges.Consume(ctx, accountID, c.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, domain.IssuedToken{}, domain.ErrMFAExpired
		}
		return domain.Account{}, domain.IssuedToken{}, classify(ctx, "consume mfa challenge", err)
	}

	account, err := s.Accounts.GetByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.IssuedToken{}, domain.ErrAuthentication
	}
	if err != nil {
		return domain.Account{}, domain.IssuedToken{}, classify(ctx, "load account", err)
	}

	token, err := s.Tokens.Issue(account, jwtx.AMRPassword, jwtx.AMRMFA)
	if err != nil {
		return domain.Account{}, domain.IssuedToken{}, classify(ctx, "issue token", err)
	}

	l.Info("mfa challenge passed", slog.String("challenge_id", c.ID))
	return account, token, nil
}

// lostRace explains a failed conditional decrement: the challenge was either
// replaced or consumed meanwhile, or concurrent guesses used up the attempts.
func (s *MFAService) lostRace(ctx context.Context, accountID, challengeID string) error {
	c, err := s.Challenges.Get(ctx, accountID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return noActiveChallenge()
	case err != nil:
		return classify(ctx, "reload mfa challenge", err)
	case c.ID != challengeID || c.Expired(s.now()):
		return domain.ErrMFAExpired
	default:
		return domain.ErrMFAAttemptsExceeded
	}
}

func noActiveChallenge() error {
	e := *domain.ErrMFAExpired
	e.Message = "no active verification challenge"
	return &e
}
