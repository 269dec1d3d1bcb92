package service

import (
	"context"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
)

// LoginService ties credentials, step-up and token issuance together.
type LoginService struct {
	Accounts *AccountService
	MFA      *MFAService
	Tokens   *TokenService
	Observer Observer
}

// Register creates the account and signs the caller in. Accounts that need
// MFA get no token here; they have to log in and pass a challenge first.
func (s *LoginService) Register(ctx context.Context, in RegisterInput) (domain.LoginResult, error) {
	a, err := s.Accounts.Register(ctx, in)
	if err != nil {
		return domain.LoginResult{}, err
	}
	if a.MFAEnabled {
		return domain.LoginResult{Account: a}, nil
	}

	token, err := s.Tokens.Issue(a, jwtx.AMRPassword)
	if err != nil {
		return domain.LoginResult{}, classify(ctx, "issue token", err)
	}
	return domain.LoginResult{Account: a, Token: &token}, nil
}

// Login checks the password. MFA accounts get a fresh challenge in place of a
// token, replacing any challenge still pending.
func (s *LoginService) Login(ctx context.Context, identifier, password string) (domain.LoginResult, error) {
	res, err := s.login(ctx, identifier, password)

	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = string(domain.KindOf(err))
	case res.MFARequired():
		outcome = OutcomeMFARequired
	}
	observerOrNop(s.Observer).LoginAttempt(outcome)
	return res, err
}

func (s *LoginService) login(ctx context.Context, identifier, password string) (domain.LoginResult, error) {
	a, err := s.Accounts.Authenticate(ctx, identifier, password)
	if err != nil {
		return domain.LoginResult{}, err
	}

	if a.MFAEnabled {
		ticket, err := s.MFA.CreateChallenge(ctx, a.ID)
		if err != nil {
			return domain.LoginResult{}, err
		}
		return domain.LoginResult{Account: a, Challenge: &ticket}, nil
	}

	token, err := s.Tokens.Issue(a, jwtx.AMRPassword)
	if err != nil {
		return domain.LoginResult{}, classify(ctx, "issue token", err)
	}
	return domain.LoginResult{Account: a, Token: &token}, nil
}

// VerifyMFA completes a login that returned a challenge.
func (s *LoginService) VerifyMFA(ctx context.Context, accountID, code string) (domain.LoginResult, error) {
	a, token, err := s.MFA.VerifyChallenge(ctx, accountID, code)
	if err != nil {
		return domain.LoginResult{}, err
	}
	return domain.LoginResult{Account: a, Token: &token}, nil
}

// SwitchRole toggles the role of the authenticated account and reissues the
// token for the new role. The authentication methods of the presented token
// carry over.
func (s *LoginService) SwitchRole(ctx context.Context, claims jwtx.Claims) (domain.LoginResult, error) {
	a, err := s.Accounts.SwitchRole(ctx, claims.Subject)
	if err != nil {
		return domain.LoginResult{}, err
	}

	token, err := s.Tokens.Issue(a, claims.AMR...)
	if err != nil {
		return domain.LoginResult{}, classify(ctx, "issue token", err)
	}
	return domain.LoginResult{Account: a, Token: &token}, nil
}
