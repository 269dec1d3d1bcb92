package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"
)

// PartnerService covers partner onboarding review by owners and the partner's
// own view of it.
type PartnerService struct {
	Store store.Store
}

// ListPartners lists partner accounts, optionally filtered by status. An
// empty status lists all partners.
func (s *PartnerService) ListPartners(ctx context.Context, status string) ([]domain.Account, error) {
	var filter *domain.PartnerStatus
	if strings.TrimSpace(status) != "" {
		ps, ok := domain.ParsePartnerStatus(status)
		if !ok {
			return nil, domain.NewValidationError("status", "status must be one of pending, approved, rejected")
		}
		filter = &ps
	}

	accounts, err := s.Store.Accounts().ListPartners(ctx, filter)
	if err != nil {
		return nil, classify(ctx, "list partners", err)
	}
	return accounts, nil
}

// SetStatus records a review decision. reviewerID is only logged.
func (s *PartnerService) SetStatus(ctx context.Context, reviewerID, accountID, status string) (domain.Account, error) {
	ps, ok := domain.ParsePartnerStatus(status)
	if !ok {
		return domain.Account{}, domain.NewValidationError("status", "status must be one of pending, approved, rejected")
	}

	var updated domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Accounts().SetPartnerStatus(ctx, accountID, ps)
		if errors.Is(err, store.ErrNotFound) {
			// Tell a missing account apart from one that is not a partner.
			if _, getErr := tx.Accounts().GetByID(ctx, accountID); errors.Is(getErr, store.ErrNotFound) {
				return domain.ErrNotFound
			}
			return domain.NewValidationError("account_id", "account is not a partner")
		}
		if err != nil {
			return err
		}
		updated, err = tx.Accounts().GetByID(ctx, accountID)
		return err
	})
	if err != nil {
		return domain.Account{}, classify(ctx, "set partner status", err)
	}

	slogx.FromContext(ctx).Info("partner reviewed",
		slog.String("account_id", accountID),
		slog.String("reviewer_id", reviewerID),
		slog.String("status", string(ps)),
	)
	return updated, nil
}

// Profile returns the calling partner's account.
func (s *PartnerService) Profile(ctx context.Context, accountID string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, classify(ctx, "get partner", err)
	}
	if a.Role != domain.RolePartner {
		return domain.Account{}, domain.ErrForbidden
	}
	return a, nil
}
