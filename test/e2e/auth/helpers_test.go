//go:build e2e

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and shared assertions for the auth service end-to-end
 * tests. Run with: go test -tags e2e ./test/e2e/...
 */

const (
	testImageName  = "auth-service-test:latest"
	redisImageName = "redis:7-alpine"

	testPassword = "Secure123!"
)

// relaxedLimits keeps rapid test traffic under the rate limiters.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_WINDOW_SEC": "60",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// TestMain builds the service image once for the whole suite.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

type containerOptions struct {
	env      map[string]string
	networks []string
}

type containerOption func(*containerOptions)

// withEnv overrides service environment variables.
func withEnv(kv map[string]string) containerOption {
	return func(o *containerOptions) { maps.Copy(o.env, kv) }
}

// withDefaultRateLimits drops the relaxed limits so limiting can be tested.
func withDefaultRateLimits() containerOption {
	return func(o *containerOptions) {
		for k := range relaxedLimits {
			delete(o.env, k)
		}
	}
}

func withNetwork(name string) containerOption {
	return func(o *containerOptions) { o.networks = append(o.networks, name) }
}

// setupAuthContainer starts the service and returns a client for it. The
// container is terminated when the test ends.
func setupAuthContainer(t *testing.T, opts ...containerOption) *authsdk.Client {
	t.Helper()
	ctx := context.Background()

	o := &containerOptions{env: map[string]string{
		"AUTH_DATABASE_FILE": "/data/auth.db",
		"AUTH_PEPPER_FILE":   "/data/pepper",
		"AUTH_ISSUER":        "auth-e2e",
		"AUTH_ALGORITHM":     "EdDSA",
		"AUTH_NUM_KEYS":      "2",
		"ENV":                "test",
		"MFA_ECHO_CODE":      "true",
		"LOG_LEVEL":          "info",
		"LOG_FORMAT":         "json",
	}}
	maps.Copy(o.env, relaxedLimits)
	for _, opt := range opts {
		opt(o)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          o.env,
			Networks:     o.networks,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return authsdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))
}

// setupRedis starts Redis on a fresh network and returns the options that
// point the service at it.
func setupRedis(t *testing.T) []containerOption {
	t.Helper()
	ctx := context.Background()

	nw, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = nw.Remove(ctx) })

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          redisImageName,
			ExposedPorts:   []string{"6379/tcp"},
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"redis"}},
			WaitingFor:     wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisC.Terminate(ctx) })

	return []containerOption{
		withNetwork(nw.Name),
		withEnv(map[string]string{"MFA_STORE": "redis", "REDIS_ADDR": "redis:6379"}),
	}
}

// registerCustomer creates a customer and returns its token response.
func registerCustomer(t *testing.T, client *authsdk.Client, email string) *authsdk.TokenResponse {
	t.Helper()
	resp, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Email:    email,
		Password: testPassword,
		Role:     "customer",
	})
	require.NoError(t, err)
	assertTokenResponse(t, resp)
	return resp
}

func registerPartner(t *testing.T, client *authsdk.Client, email string) *authsdk.TokenResponse {
	t.Helper()
	resp, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Email:        email,
		Password:     testPassword,
		Role:         "partner",
		BusinessName: "Sparkle Cleaning",
		AcceptTerms:  true,
	})
	require.NoError(t, err)
	assertTokenResponse(t, resp)
	return resp
}

// loginForChallenge logs in an MFA account and returns the pending challenge.
func loginForChallenge(t *testing.T, client *authsdk.Client, identifier string) authsdk.MFAChallengeResponse {
	t.Helper()
	_, err := client.Login(t.Context(), identifier, testPassword)
	var mfaErr *authsdk.MFARequiredError
	require.True(t, errors.As(err, &mfaErr), "expected MFA challenge, got %v", err)
	require.NotEmpty(t, mfaErr.Challenge.Code, "MFA_ECHO_CODE should expose the code")
	return mfaErr.Challenge
}

// ownerToken registers an owner and completes the MFA step-up.
func ownerToken(t *testing.T, client *authsdk.Client, email string) string {
	t.Helper()
	resp, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Email:    email,
		Password: testPassword,
		Role:     "owner",
	})
	require.NoError(t, err)
	require.Empty(t, resp.AccessToken, "owner registration must not sign in")

	ch := loginForChallenge(t, client, email)
	tok, err := client.VerifyMFA(t.Context(), ch.AccountID, ch.Code)
	require.NoError(t, err)
	assertTokenResponse(t, tok)
	return tok.AccessToken
}

func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
	require.Positive(t, resp.ExpiresIn)
	require.NotNil(t, resp.Account)
}

// assertAPIError checks the status and error code of a failed call.
func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *authsdk.APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	require.Equal(t, code, apiErr.Code)
}

func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
