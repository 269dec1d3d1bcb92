package service

import (
	"slices"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
)

// Operation names a guarded entry point.
type Operation string

const (
	OpRegister       Operation = "register"
	OpLogin          Operation = "login"
	OpVerifyMFA      Operation = "verify_mfa"
	OpCurrentAccount Operation = "current_account"
	OpSwitchRole     Operation = "switch_role"
	OpAnalytics      Operation = "analytics"
	OpPartnerReview  Operation = "partner_review"
	OpPartnerProfile Operation = "partner_profile"
	OpFavorites      Operation = "favorites"
)

// Rule is the access requirement of one operation. Public operations need no
// token; otherwise the token's role must be in Roles.
type Rule struct {
	Public bool
	Roles  []domain.Role
}

// Policy declares who may call what. Favorites belongs to a downstream
// service and is declared so it can run the same guard.
var Policy = map[Operation]Rule{
	OpRegister:       {Public: true},
	OpLogin:          {Public: true},
	OpVerifyMFA:      {Public: true},
	OpCurrentAccount: {Roles: domain.Roles},
	OpSwitchRole:     {Roles: domain.Roles},
	OpAnalytics:      {Roles: []domain.Role{domain.RoleOwner}},
	OpPartnerReview:  {Roles: []domain.Role{domain.RoleOwner}},
	OpPartnerProfile: {Roles: []domain.Role{domain.RolePartner}},
	OpFavorites:      {Roles: []domain.Role{domain.RoleCustomer}},
}

// Guard makes access decisions from bearer tokens alone. It holds no mutable
// state and is safe for concurrent use.
type Guard struct {
	Tokens   *TokenService
	Observer Observer
}

// Authorize verifies raw and checks its role against required. An empty
// required set admits every role. Missing, invalid and expired tokens all
// fail as unauthenticated; a valid token with another role is forbidden.
func (g *Guard) Authorize(raw string, required ...domain.Role) (jwtx.Claims, error) {
	claims, err := g.authorize(raw, required)

	outcome := OutcomeSuccess
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	observerOrNop(g.Observer).GuardDecision(outcome)
	return claims, err
}

func (g *Guard) authorize(raw string, required []domain.Role) (jwtx.Claims, error) {
	if raw == "" {
		return jwtx.Claims{}, domain.ErrUnauthenticated
	}

	claims, err := g.Tokens.Verify(raw)
	if err != nil {
		e := domain.Wrap(domain.ErrUnauthenticated, err)
		if domain.KindOf(err) == domain.KindTokenExpired {
			e.Message = "token expired"
		} else {
			e.Message = "invalid token"
		}
		return jwtx.Claims{}, e
	}

	if len(required) > 0 && !slices.Contains(required, domain.Role(claims.Role)) {
		return jwtx.Claims{}, domain.ErrForbidden
	}
	return claims, nil
}

// AuthorizeOperation applies the Policy rule of op. Unknown operations are
// denied.
func (g *Guard) AuthorizeOperation(raw string, op Operation) (jwtx.Claims, error) {
	rule, ok := Policy[op]
	if !ok {
		observerOrNop(g.Observer).GuardDecision(string(domain.KindForbidden))
		return jwtx.Claims{}, domain.ErrForbidden
	}
	if rule.Public {
		return jwtx.Claims{}, nil
	}
	return g.Authorize(raw, rule.Roles...)
}

// For binds the guard to op so it can be handed to transport adapters.
func (g *Guard) For(op Operation) func(raw string) (jwtx.Claims, error) {
	return func(raw string) (jwtx.Claims, error) {
		return g.AuthorizeOperation(raw, op)
	}
}
