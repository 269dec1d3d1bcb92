package domain

import "time"

// Profile is the role specific part of an account. Exactly one variant
// exists per role.
type Profile interface {
	Role() Role
	profile()
}

type CustomerProfile struct {
	Phone string
}

type PartnerProfile struct {
	Phone           string
	BusinessName    string
	Status          PartnerStatus
	TermsAcceptedAt *time.Time
}

type OwnerProfile struct {
	Phone string
}

func (CustomerProfile) Role() Role { return RoleCustomer }
func (PartnerProfile) Role() Role  { return RolePartner }
func (OwnerProfile) Role() Role    { return RoleOwner }

func (CustomerProfile) profile() {}
func (PartnerProfile) profile()  {}
func (OwnerProfile) profile()    {}
