/*
Package authsdk is the Go client for the authentication service and holds the
JSON shapes shared by the server handlers.

# Usage

	client := authsdk.NewClient("http://localhost:8080")

	tok, err := client.Register(ctx, authsdk.RegisterRequest{
		Email:    "a@example.com",
		Password: "Secure123!",
		Role:     "customer",
	})

Logging in as an account with MFA enabled returns an *MFARequiredError carrying
the challenge. Complete it with VerifyMFA:

	tok, err := client.Login(ctx, "owner@example.com", password)
	var mfa *authsdk.MFARequiredError
	if errors.As(err, &mfa) {
		tok, err = client.VerifyMFA(ctx, mfa.Challenge.AccountID, code)
	}

Authenticated calls take the access token explicitly:

	me, err := client.CurrentAccount(ctx, tok.AccessToken)

# Errors

Every non-success response is returned as *APIError whose Code is one of the
ErrorCode constants.
*/
package authsdk
