package domain

import "strings"

type Role string

const (
	RoleCustomer Role = "customer"
	RolePartner  Role = "partner"
	RoleOwner    Role = "owner"
)

// Roles lists every role, in display order.
var Roles = []Role{RoleCustomer, RolePartner, RoleOwner}

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RolePartner, RoleOwner:
		return r, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

// RequiresMFA reports whether logins for r must pass a step-up challenge.
func (r Role) RequiresMFA() bool { return r == RoleOwner }

// Toggled returns the other side of the customer/partner pair. Owners have no
// counterpart.
func (r Role) Toggled() (Role, bool) {
	switch r {
	case RoleCustomer:
		return RolePartner, true
	case RolePartner:
		return RoleCustomer, true
	default:
		return r, false
	}
}

type PartnerStatus string

const (
	PartnerPending  PartnerStatus = "pending"
	PartnerApproved PartnerStatus = "approved"
	PartnerRejected PartnerStatus = "rejected"
)

var PartnerStatuses = []PartnerStatus{PartnerPending, PartnerApproved, PartnerRejected}

func ParsePartnerStatus(s string) (PartnerStatus, bool) {
	switch p := PartnerStatus(strings.ToLower(strings.TrimSpace(s))); p {
	case PartnerPending, PartnerApproved, PartnerRejected:
		return p, true
	default:
		return "", false
	}
}
