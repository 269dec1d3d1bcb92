package http

import (
	"net/http"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/service"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/authsdk"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/httpx"
)

// LoginHandler serves password login and the MFA step-up.
type LoginHandler struct {
	LoginService *service.LoginService

	// EchoMFACodes returns the one-time code in the login response. Only for
	// development and tests, where no delivery channel exists.
	EchoMFACodes bool
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Checks an email or username and password. Accounts with MFA get 202 and a challenge
//	@Description	instead of a token; complete it with /v1/auth/mfa/verify.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest			true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse			"Signed in"
//	@Success		202		{object}	authsdk.MFAChallengeResponse	"MFA required"
//	@Failure		401		{object}	authsdk.APIError				"Invalid credentials"
//	@Failure		429		{object}	authsdk.APIError				"Rate limit exceeded"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.LoginService.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if res.MFARequired() {
		httpx.WriteJSON(w, http.StatusAccepted, challengeResponse(*res.Challenge, h.EchoMFACodes))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(res))
}

// HandleVerifyMFA handles POST /v1/auth/mfa/verify
//
//	@Summary		Complete MFA
//	@Description	Submits the one-time code of the pending challenge. Each submission uses up an attempt;
//	@Description	once none remain, or the code expired, the caller must log in again.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.MFAVerifyRequest	true	"Account and code"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.APIError	"Missing account_id or code"
//	@Failure		401		{object}	authsdk.APIError	"Invalid or expired code"
//	@Failure		429		{object}	authsdk.APIError	"Attempts exhausted"
//	@Router			/v1/auth/mfa/verify [post].
func (h *LoginHandler) HandleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req authsdk.MFAVerifyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.LoginService.VerifyMFA(r.Context(), req.AccountID, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(res))
}
