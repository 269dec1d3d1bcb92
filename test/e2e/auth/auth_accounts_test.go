//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestCustomerLifecycle registers a customer, logs in by email and username
// and reads the account back with the issued token.
func TestCustomerLifecycle(t *testing.T) {
	client := setupAuthContainer(t)
	ctx := t.Context()

	username := "ada"
	reg, err := client.Register(ctx, authsdk.RegisterRequest{
		Email:    "Ada@Example.com",
		Username: &username,
		Password: testPassword,
		Role:     "customer",
		Phone:    "+61 400 000 000",
	})
	require.NoError(t, err)
	assertTokenResponse(t, reg)
	require.Equal(t, "ada@example.com", reg.Account.Email)
	require.Equal(t, "customer", reg.Account.Profile.Kind)

	for _, identifier := range []string{"ada@example.com", "ADA@example.com", "ada"} {
		tok, err := client.Login(ctx, identifier, testPassword)
		require.NoError(t, err, identifier)
		assertTokenResponse(t, tok)
		require.Equal(t, reg.Account.ID, tok.Account.ID)
	}

	me, err := client.CurrentAccount(ctx, reg.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.Account.ID, me.ID)
	require.Equal(t, "ada", me.Username)
	require.Equal(t, "+61 400 000 000", me.Profile.Phone)
}

func TestDuplicateIdentity(t *testing.T) {
	client := setupAuthContainer(t)
	registerCustomer(t, client, "dup@example.com")

	// Emails are unique across roles.
	_, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Email:        "DUP@example.com",
		Password:     testPassword,
		Role:         "partner",
		BusinessName: "Dup Cleaning",
		AcceptTerms:  true,
	})
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeDuplicateIdentity)

	_, err = client.Register(t.Context(), authsdk.RegisterRequest{
		Email:    "DUP@example.com",
		Password: testPassword,
		Role:     "customer",
	})
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeDuplicateIdentity)
}

// TestInvalidCredentials checks that unknown accounts and wrong passwords are
// rejected the same way.
func TestInvalidCredentials(t *testing.T) {
	client := setupAuthContainer(t)
	registerCustomer(t, client, "eve@example.com")

	_, wrongPassword := client.Login(t.Context(), "eve@example.com", "Wrong12345")
	assertAPIError(t, wrongPassword, http.StatusUnauthorized, authsdk.ErrorCodeAuthentication)

	_, unknown := client.Login(t.Context(), "nobody@example.com", testPassword)
	assertAPIError(t, unknown, http.StatusUnauthorized, authsdk.ErrorCodeAuthentication)

	require.Equal(t, wrongPassword.Error(), unknown.Error())
}

func TestSwitchRole(t *testing.T) {
	client := setupAuthContainer(t)
	ctx := t.Context()
	customer := registerCustomer(t, client, "flip@example.com")

	partner, err := client.SwitchRole(ctx, customer.AccessToken)
	require.NoError(t, err)
	assertTokenResponse(t, partner)
	require.Equal(t, "partner", partner.Account.Role)
	require.Equal(t, "pending", partner.Account.PartnerStatus)

	profile, err := client.PartnerProfile(ctx, partner.AccessToken)
	require.NoError(t, err)
	require.Equal(t, customer.Account.ID, profile.ID)

	// The customer token is a snapshot and keeps its role.
	_, err = client.PartnerProfile(ctx, customer.AccessToken)
	assertAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeForbidden)

	back, err := client.SwitchRole(ctx, partner.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "customer", back.Account.Role)
}

func TestInvalidAccessToken(t *testing.T) {
	client := setupAuthContainer(t)

	for _, token := range []string{"invalid-token-12345", "null", "a.b.c"} {
		_, err := client.CurrentAccount(t.Context(), token)
		assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
	}

	// A token signed by another instance carries a kid this one never issued.
	other := setupAuthContainer(t)
	foreign := registerCustomer(t, other, "stranger@example.com")
	_, err := client.CurrentAccount(t.Context(), foreign.AccessToken)
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
}
