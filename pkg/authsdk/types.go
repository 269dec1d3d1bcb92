package authsdk

// RegisterRequest is the body of POST /v1/accounts. Phone, BusinessName and
// AcceptTerms only apply to some roles and are ignored otherwise.
type RegisterRequest struct {
	Email        string  `json:"email" example:"a@example.com"`
	Username     *string `json:"username,omitempty" example:"alice"`
	Password     string  `json:"password" example:"Secure123!"`
	Role         string  `json:"role" example:"customer" enums:"customer,partner,owner"`
	Phone        string  `json:"phone,omitempty"`
	BusinessName string  `json:"business_name,omitempty"`
	AcceptTerms  bool    `json:"accept_terms,omitempty"`
}

// LoginRequest is the body of POST /v1/auth/login. Identifier is an email or
// a username.
type LoginRequest struct {
	Identifier string `json:"identifier" example:"a@example.com"`
	Password   string `json:"password"`
}

// MFAVerifyRequest is the body of POST /v1/auth/mfa/verify.
type MFAVerifyRequest struct {
	AccountID string `json:"account_id"`
	Code      string `json:"code" example:"123456"`
}

// PartnerStatusRequest is the body of POST /v1/partners/{id}/status.
type PartnerStatusRequest struct {
	Status string `json:"status" enums:"pending,approved,rejected"`
}

// TokenResponse carries an access token. Registering an account that needs MFA
// returns only the account; the token comes from login and verification.
type TokenResponse struct {
	AccessToken string           `json:"access_token,omitempty"`
	TokenType   string           `json:"token_type,omitempty" example:"Bearer"`
	ExpiresIn   int              `json:"expires_in,omitempty" example:"3600"`
	Account     *AccountResponse `json:"account,omitempty"`
}

// MFAChallengeResponse is returned with 202 by login when a step-up code is
// required. Code is only present when the server echoes codes (dev and test).
type MFAChallengeResponse struct {
	MFARequired bool     `json:"mfa_required"`
	ChallengeID string   `json:"challenge_id"`
	AccountID   string   `json:"account_id"`
	Methods     []string `json:"methods"`
	ExpiresIn   int      `json:"expires_in" example:"300"`
	Code        string   `json:"code,omitempty"`
}

type AccountResponse struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username,omitempty"`
	Role          string          `json:"role"`
	MFAEnabled    bool            `json:"mfa_enabled"`
	PartnerStatus string          `json:"partner_status,omitempty"`
	Profile       ProfileResponse `json:"profile"`
	CreatedAt     string          `json:"created_at"`
}

// ProfileResponse carries the role specific fields. Kind names the variant.
type ProfileResponse struct {
	Kind            string `json:"kind" enums:"customer,partner,owner"`
	Phone           string `json:"phone,omitempty"`
	BusinessName    string `json:"business_name,omitempty"`
	TermsAcceptedAt string `json:"terms_accepted_at,omitempty"`
}

type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AnalyticsResponse counts accounts by role, and partners by status.
type AnalyticsResponse struct {
	Total    int            `json:"total"`
	ByRole   map[string]int `json:"by_role"`
	Partners map[string]int `json:"partners"`
}

// HealthResponse is served by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
