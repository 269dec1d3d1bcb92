package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/metrics"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserverCounters(t *testing.T) {
	t.Parallel()
	m := metrics.New()

	m.AccountRegistered("customer")
	m.LoginAttempt("success")
	m.LoginAttempt("mfa_required")
	m.MFAVerification("mfa_invalid_code")
	m.GuardDecision("forbidden")

	out := scrape(t, m)
	require.Contains(t, out, `auth_registrations_total{role="customer"} 1`)
	require.Contains(t, out, `auth_logins_total{outcome="success"} 1`)
	require.Contains(t, out, `auth_logins_total{outcome="mfa_required"} 1`)
	require.Contains(t, out, `auth_mfa_verifications_total{outcome="mfa_invalid_code"} 1`)
	require.Contains(t, out, `auth_guard_decisions_total{outcome="forbidden"} 1`)
	require.Contains(t, out, "go_goroutines")
}

func TestMiddlewareLabelsByPattern(t *testing.T) {
	t.Parallel()
	m := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/partners/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.Middleware(mux)

	for _, path := range []string{"/v1/partners/a", "/v1/partners/b", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrape(t, m)
	require.Contains(t, out, `auth_http_requests_total{method="GET",route="GET /v1/partners/{id}",status="418"} 2`)
	require.Contains(t, out, `auth_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	require.Contains(t, out, `auth_http_request_duration_seconds_count{method="GET",route="GET /v1/partners/{id}"} 2`)
}

func TestInstancesDoNotShareState(t *testing.T) {
	t.Parallel()
	a, b := metrics.New(), metrics.New()
	a.LoginAttempt("success")

	require.NotContains(t, scrape(t, b), `auth_logins_total{outcome="success"} 1`)
}
