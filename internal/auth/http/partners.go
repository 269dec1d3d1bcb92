package http

import (
	"net/http"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/service"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/authsdk"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/httpx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
)

type PartnersHandler struct {
	PartnerService *service.PartnerService
}

// HandleList handles GET /v1/partners
//
//	@Summary		List partners
//	@Description	Lists partner accounts for review, newest first.
//	@Tags			Partners
//	@Security		BearerAuth
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(pending, approved, rejected)
//	@Success		200		{object}	authsdk.ListAccountsResponse
//	@Failure		400		{object}	authsdk.APIError	"Unknown status"
//	@Failure		401		{object}	authsdk.APIError	"Missing, invalid or expired token"
//	@Failure		403		{object}	authsdk.APIError	"Owner role required"
//	@Router			/v1/partners [get].
func (h *PartnersHandler) HandleList(w http.ResponseWriter, r *http.Request, _ jwtx.Claims) {
	accounts, err := h.PartnerService.ListPartners(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := authsdk.ListAccountsResponse{Accounts: make([]authsdk.AccountResponse, 0, len(accounts))}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, *accountResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleSetStatus handles POST /v1/partners/{id}/status
//
//	@Summary		Review a partner
//	@Tags			Partners
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Partner account id"
//	@Param			request	body		authsdk.PartnerStatusRequest	true	"Decision"
//	@Success		200		{object}	authsdk.AccountResponse
//	@Failure		400		{object}	authsdk.APIError	"Unknown status or account is not a partner"
//	@Failure		403		{object}	authsdk.APIError	"Owner role required"
//	@Failure		404		{object}	authsdk.APIError	"No such account"
//	@Router			/v1/partners/{id}/status [post].
func (h *PartnersHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request, claims jwtx.Claims) {
	var req authsdk.PartnerStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	a, err := h.PartnerService.SetStatus(r.Context(), claims.Subject, r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountResponse(a))
}

// HandleProfile handles GET /v1/partners/me
//
//	@Summary		Partner profile
//	@Description	Returns the calling partner's profile and review status.
//	@Tags			Partners
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.AccountResponse
//	@Failure		403	{object}	authsdk.APIError	"Partner role required"
//	@Router			/v1/partners/me [get].
func (h *PartnersHandler) HandleProfile(w http.ResponseWriter, r *http.Request, claims jwtx.Claims) {
	a, err := h.PartnerService.Profile(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountResponse(a))
}
