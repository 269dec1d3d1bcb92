package http

import (
	"net/http"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/service"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/authsdk"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/httpx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
)

type AnalyticsHandler struct {
	AnalyticsService *service.AnalyticsService
}

// HandleAccounts handles GET /v1/analytics/accounts
//
//	@Summary		Account analytics
//	@Description	Counts accounts by role and partners by review status.
//	@Tags			Analytics
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.AnalyticsResponse
//	@Failure		401	{object}	authsdk.APIError	"Missing, invalid or expired token"
//	@Failure		403	{object}	authsdk.APIError	"Owner role required"
//	@Router			/v1/analytics/accounts [get].
func (h *AnalyticsHandler) HandleAccounts(w http.ResponseWriter, r *http.Request, _ jwtx.Claims) {
	stats, err := h.AnalyticsService.AccountStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := authsdk.AnalyticsResponse{
		Total:    stats.Total,
		ByRole:   make(map[string]int, len(stats.ByRole)),
		Partners: make(map[string]int, len(stats.Partners)),
	}
	for role, n := range stats.ByRole {
		resp.ByRole[string(role)] = n
	}
	for status, n := range stats.Partners {
		resp.Partners[string(status)] = n
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
