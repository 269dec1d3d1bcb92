package service

import (
	"context"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
)

// AccountStats summarizes the account base for owners.
type AccountStats struct {
	Total    int
	ByRole   map[domain.Role]int
	Partners map[domain.PartnerStatus]int
}

type AnalyticsService struct {
	Store store.Store
}

func (s *AnalyticsService) AccountStats(ctx context.Context) (AccountStats, error) {
	rows, err := s.Store.Accounts().CountByRole(ctx)
	if err != nil {
		return AccountStats{}, classify(ctx, "count accounts", err)
	}

	stats := AccountStats{
		ByRole:   make(map[domain.Role]int, len(domain.Roles)),
		Partners: make(map[domain.PartnerStatus]int, len(domain.PartnerStatuses)),
	}
	for _, r := range domain.Roles {
		stats.ByRole[r] = 0
	}
	for _, ps := range domain.PartnerStatuses {
		stats.Partners[ps] = 0
	}

	for _, row := range rows {
		stats.Total += row.Count
		stats.ByRole[row.Role] += row.Count
		if row.Role == domain.RolePartner && row.PartnerStatus != nil {
			stats.Partners[*row.PartnerStatus] += row.Count
		}
	}
	return stats, nil
}
