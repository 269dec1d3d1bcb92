package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/cryptox"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/idx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"
)

// RegisterInput carries a signup request as received. Normalization happens
// in Register.
type RegisterInput struct {
	Email        string
	Username     *string
	Password     string
	Role         string
	Phone        string
	BusinessName string
	AcceptTerms  bool
}

// AccountService owns credentials: signup, password checks and the
// customer/partner role toggle.
type AccountService struct {
	Store store.Store

	// AllowOwnerSignup lets anyone register an owner account. Production
	// deployments turn it off and provision owners out of band.
	AllowOwnerSignup bool

	Observer Observer
	Now      func() time.Time
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// dummyPasswordHash is verified against when the identifier matches no
// account, so a miss costs the same as a wrong password.
func dummyPasswordHash() string {
	dummyHashOnce.Do(func() {
		h, err := cryptox.HashPassword("dummy-password-0")
		if err == nil {
			dummyHash = h
		}
	})
	return dummyHash
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register validates in, hashes the password and inserts the account. A
// collision on email or username surfaces as duplicate_identity from the
// store's unique constraints; there is no lookup beforehand.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.Account, error) {
	email := NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return domain.Account{}, err
	}

	username := NormalizeUsername(in.Username)
	if username != nil {
		if err := validateUsername(*username); err != nil {
			return domain.Account{}, err
		}
	}

	if err := validatePassword(in.Password); err != nil {
		return domain.Account{}, err
	}

	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return domain.Account{}, domain.NewValidationError("role", "role must be one of customer, partner, owner")
	}
	if role == domain.RoleOwner && !s.AllowOwnerSignup {
		return domain.Account{}, domain.NewValidationError("role", "owner accounts cannot be self registered")
	}

	now := s.now()
	a := domain.Account{
		ID:         idx.New().String(),
		Email:      email,
		Username:   username,
		Role:       role,
		MFAEnabled: role.RequiresMFA(),
		Phone:      strings.TrimSpace(in.Phone),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if role == domain.RolePartner {
		if !in.AcceptTerms {
			return domain.Account{}, domain.NewValidationError("accept_terms", "partners must accept the terms")
		}
		status := domain.PartnerPending
		a.PartnerStatus = &status
		a.BusinessName = strings.TrimSpace(in.BusinessName)
		a.TermsAcceptedAt = &now
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Account{}, classify(ctx, "hash password", err)
	}
	a.PasswordHash = hash

	if err := s.Store.Accounts().Create(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, domain.NewDuplicateIdentityError(duplicateField(err), err)
		}
		return domain.Account{}, classify(ctx, "create account", err)
	}

	observerOrNop(s.Observer).AccountRegistered(string(role))
	slogx.FromContext(ctx).Info("account registered",
		slog.String("account_id", a.ID),
		slog.String("role", string(role)),
	)
	return a, nil
}

func duplicateField(err error) string {
	if strings.Contains(err.Error(), "username") {
		return "username"
	}
	return "email"
}

// Authenticate resolves identifier as an email first and then as a username,
// and checks password. Unknown identifiers and wrong passwords fail the same
// way.
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (domain.Account, error) {
	l := slogx.FromContext(ctx)
	id := strings.ToLower(strings.TrimSpace(identifier))

	a, err := s.lookup(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		_ = cryptox.VerifyPassword(password, dummyPasswordHash())
		l.Info("login failed", slog.String("reason", "unknown identifier"))
		return domain.Account{}, domain.ErrAuthentication
	}
	if err != nil {
		return domain.Account{}, classify(ctx, "lookup account", err)
	}

	switch err := cryptox.VerifyPassword(password, a.PasswordHash); {
	case errors.Is(err, cryptox.ErrPasswordMismatch):
		l.Info("login failed", slog.String("account_id", a.ID), slog.String("reason", "wrong password"))
		return domain.Account{}, domain.ErrAuthentication
	case err != nil:
		return domain.Account{}, classify(ctx, "verify password", err)
	}
	return a, nil
}

func (s *AccountService) lookup(ctx context.Context, id string) (domain.Account, error) {
	if id == "" {
		return domain.Account{}, store.ErrNotFound
	}
	accounts := s.Store.Accounts()

	a, err := accounts.GetByEmail(ctx, id)
	if !errors.Is(err, store.ErrNotFound) {
		return a, err
	}
	return accounts.GetByUsername(ctx, id)
}

// SwitchRole flips a customer to partner and back. Every call flips. Owners
// cannot switch. A returning partner gets their previous status back.
func (s *AccountService) SwitchRole(ctx context.Context, accountID string) (domain.Account, error) {
	var updated domain.Account

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetByID(ctx, accountID)
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		next, ok := a.Role.Toggled()
		if !ok {
			return domain.NewValidationError("role", "%s accounts cannot switch role", a.Role)
		}

		status := a.PartnerStatus
		if next == domain.RolePartner && status == nil {
			pending := domain.PartnerPending
			status = &pending
		}

		if err := tx.Accounts().UpdateRole(ctx, a.ID, next, status); err != nil {
			return err
		}

		updated, err = tx.Accounts().GetByID(ctx, a.ID)
		return err
	})
	if err != nil {
		return domain.Account{}, classify(ctx, "switch role", err)
	}

	slogx.FromContext(ctx).Info("role switched",
		slog.String("account_id", updated.ID),
		slog.String("role", string(updated.Role)),
	)
	return updated, nil
}

// GetAccount returns the current state of an account.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, classify(ctx, "get account", err)
	}
	return a, nil
}
