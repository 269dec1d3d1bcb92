package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the authentication service over HTTP. It is safe for
// concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Register creates an account. Customers and partners get their first token;
// owner accounts come back without one and must log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	var tok TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", "", req, &tok, http.StatusCreated); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Login authenticates with an email or username. Accounts with MFA enabled
// get an *MFARequiredError instead of a token.
func (c *Client) Login(ctx context.Context, identifier, password string) (*TokenResponse, error) {
	resp, body, err := c.send(ctx, http.MethodPost, "/v1/auth/login", "", LoginRequest{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var tok TokenResponse
		if err := json.Unmarshal(body, &tok); err != nil {
			return nil, fmt.Errorf("decode token response: %w", err)
		}
		return &tok, nil
	case http.StatusAccepted:
		var ch MFAChallengeResponse
		if err := json.Unmarshal(body, &ch); err != nil {
			return nil, fmt.Errorf("decode challenge response: %w", err)
		}
		return nil, &MFARequiredError{Challenge: ch}
	default:
		return nil, parseErrorResponse(resp.StatusCode, body)
	}
}

// VerifyMFA submits the step-up code for accountID.
func (c *Client) VerifyMFA(ctx context.Context, accountID, code string) (*TokenResponse, error) {
	var tok TokenResponse
	req := MFAVerifyRequest{AccountID: accountID, Code: code}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/mfa/verify", "", req, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) CurrentAccount(ctx context.Context, token string) (*AccountResponse, error) {
	var acc AccountResponse
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/me", token, nil, &acc, http.StatusOK); err != nil {
		return nil, err
	}
	return &acc, nil
}

// SwitchRole toggles between customer and partner. The returned token carries
// the new role; the old one keeps its role until it expires.
func (c *Client) SwitchRole(ctx context.Context, token string) (*TokenResponse, error) {
	var tok TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/accounts/me/role", token, nil, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) PartnerProfile(ctx context.Context, token string) (*AccountResponse, error) {
	var acc AccountResponse
	if err := c.do(ctx, http.MethodGet, "/v1/partners/me", token, nil, &acc, http.StatusOK); err != nil {
		return nil, err
	}
	return &acc, nil
}

// ListPartners lists partner accounts, optionally filtered by status. Owner only.
func (c *Client) ListPartners(ctx context.Context, token, status string) (*ListAccountsResponse, error) {
	path := "/v1/partners"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out ListAccountsResponse
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPartnerStatus records a review decision for a partner. Owner only.
func (c *Client) SetPartnerStatus(ctx context.Context, token, accountID, status string) (*AccountResponse, error) {
	var acc AccountResponse
	path := "/v1/partners/" + url.PathEscape(accountID) + "/status"
	if err := c.do(ctx, http.MethodPost, path, token, PartnerStatusRequest{Status: status}, &acc, http.StatusOK); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Analytics returns account counts. Owner only.
func (c *Client) Analytics(ctx context.Context, token string) (*AnalyticsResponse, error) {
	var out AnalyticsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/analytics/accounts", token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Liveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

func (c *Client) Readiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	var h HealthResponse
	if err := c.do(ctx, http.MethodGet, path, "", nil, &h, http.StatusOK); err != nil {
		return nil, err
	}
	return &h, nil
}

// do sends in as JSON and decodes the response into out when the status
// matches want.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any, want int) error {
	resp, body, err := c.send(ctx, method, path, token, in)
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		return parseErrorResponse(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path, token string, in any) (*http.Response, []byte, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp, data, nil
}
