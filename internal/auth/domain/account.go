package domain

import "time"

type Account struct {
	ID           string
	Email        string  // normalized
	Username     *string // normalized, nil when the account has none
	PasswordHash string  // argon2id PHC string
	Role         Role
	MFAEnabled   bool

	// PartnerStatus survives a switch back to customer so a later switch to
	// partner restores it. Only meaningful while Role is partner.
	PartnerStatus *PartnerStatus

	Phone           string
	BusinessName    string
	TermsAcceptedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CurrentPartnerStatus returns the partner status when the account is
// currently a partner.
func (a Account) CurrentPartnerStatus() (PartnerStatus, bool) {
	if a.Role != RolePartner || a.PartnerStatus == nil {
		return "", false
	}
	return *a.PartnerStatus, true
}

// Profile projects the role specific fields.
func (a Account) Profile() Profile {
	switch a.Role {
	case RolePartner:
		status, _ := a.CurrentPartnerStatus()
		return PartnerProfile{
			Phone:           a.Phone,
			BusinessName:    a.BusinessName,
			Status:          status,
			TermsAcceptedAt: a.TermsAcceptedAt,
		}
	case RoleOwner:
		return OwnerProfile{Phone: a.Phone}
	default:
		return CustomerProfile{Phone: a.Phone}
	}
}

// RoleCount is one row of the account analytics.
type RoleCount struct {
	Role          Role
	PartnerStatus *PartnerStatus
	Count         int
}
