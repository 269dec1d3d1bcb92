package http

import (
	"net/http"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/service"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/authsdk"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/httpx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
)

// AccountsHandler serves signup and the caller's own account.
type AccountsHandler struct {
	LoginService   *service.LoginService
	AccountService *service.AccountService
}

// HandleRegister handles POST /v1/accounts
//
//	@Summary		Register an account
//	@Description	Creates a customer, partner or owner account. Customers and partners are signed in
//	@Description	immediately; owners must log in and pass an MFA challenge before receiving a token.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Account details"
//	@Success		201		{object}	authsdk.TokenResponse	"Created account, with a token unless MFA is required"
//	@Failure		400		{object}	authsdk.APIError		"Malformed email, weak password or unknown role"
//	@Failure		409		{object}	authsdk.APIError		"Email or username already registered"
//	@Failure		429		{object}	authsdk.APIError		"Rate limit exceeded"
//	@Router			/v1/accounts [post].
func (h *AccountsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.LoginService.Register(r.Context(), service.RegisterInput{
		Email:        req.Email,
		Username:     req.Username,
		Password:     req.Password,
		Role:         req.Role,
		Phone:        req.Phone,
		BusinessName: req.BusinessName,
		AcceptTerms:  req.AcceptTerms,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tokenResponse(res))
}

// HandleMe handles GET /v1/accounts/me
//
//	@Summary		Current account
//	@Description	Returns the account the bearer token was issued to.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.AccountResponse
//	@Failure		401	{object}	authsdk.APIError	"Missing, invalid or expired token"
//	@Failure		404	{object}	authsdk.APIError	"Account no longer exists"
//	@Router			/v1/accounts/me [get].
func (h *AccountsHandler) HandleMe(w http.ResponseWriter, r *http.Request, claims jwtx.Claims) {
	a, err := h.AccountService.GetAccount(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountResponse(a))
}

// HandleSwitchRole handles POST /v1/accounts/me/role
//
//	@Summary		Toggle customer and partner role
//	@Description	Flips the caller between customer and partner and returns a token for the new role.
//	@Description	Every call flips. Owners cannot switch.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse
//	@Failure		400	{object}	authsdk.APIError	"Owner accounts cannot switch"
//	@Failure		401	{object}	authsdk.APIError	"Missing, invalid or expired token"
//	@Router			/v1/accounts/me/role [post].
func (h *AccountsHandler) HandleSwitchRole(w http.ResponseWriter, r *http.Request, claims jwtx.Claims) {
	res, err := h.LoginService.SwitchRole(r.Context(), claims)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(res))
}
