package http

import (
	"math"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/authsdk"
)

func accountResponse(a domain.Account) *authsdk.AccountResponse {
	resp := &authsdk.AccountResponse{
		ID:         a.ID,
		Email:      a.Email,
		Role:       string(a.Role),
		MFAEnabled: a.MFAEnabled,
		Profile:    profileResponse(a.Profile()),
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.Username != nil {
		resp.Username = *a.Username
	}
	if status, ok := a.CurrentPartnerStatus(); ok {
		resp.PartnerStatus = string(status)
	}
	return resp
}

func profileResponse(p domain.Profile) authsdk.ProfileResponse {
	resp := authsdk.ProfileResponse{Kind: string(p.Role())}
	switch p := p.(type) {
	case domain.CustomerProfile:
		resp.Phone = p.Phone
	case domain.PartnerProfile:
		resp.Phone = p.Phone
		resp.BusinessName = p.BusinessName
		if p.TermsAcceptedAt != nil {
			resp.TermsAcceptedAt = p.TermsAcceptedAt.UTC().Format(time.RFC3339)
		}
	case domain.OwnerProfile:
		resp.Phone = p.Phone
	}
	return resp
}

func tokenResponse(res domain.LoginResult) authsdk.TokenResponse {
	resp := authsdk.TokenResponse{Account: accountResponse(res.Account)}
	if t := res.Token; t != nil {
		resp.AccessToken = t.AccessToken
		resp.TokenType = t.TokenType
		resp.ExpiresIn = seconds(t.ExpiresAt.Sub(t.IssuedAt))
	}
	return resp
}

func challengeResponse(t domain.ChallengeTicket, echoCode bool) authsdk.MFAChallengeResponse {
	resp := authsdk.MFAChallengeResponse{
		MFARequired: true,
		ChallengeID: t.ChallengeID,
		AccountID:   t.AccountID,
		Methods:     t.Methods,
		ExpiresIn:   seconds(t.ExpiresAt.Sub(t.IssuedAt)),
	}
	if echoCode {
		resp.Code = t.Code
	}
	return resp
}

func seconds(d time.Duration) int {
	return int(math.Max(0, math.Round(d.Seconds())))
}
