package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/metrics"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/service"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/httpx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"

	_ "github.com/Kishorekomminenik/CleanrMLP1-sub001/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux     *http.ServeMux
	handler http.Handler

	keys         *jwtx.KeyRing
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	metrics      *metrics.Metrics

	// Checks are extra readiness checks, keyed by name.
	Checks       map[string]ReadinessCheck
	EchoMFACodes bool

	LoginService     *service.LoginService
	AccountService   *service.AccountService
	PartnerService   *service.PartnerService
	AnalyticsService *service.AnalyticsService
	Guard            *service.Guard
}

func NewRouter(
	keys *jwtx.KeyRing,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
		Checks:       map[string]ReadinessCheck{},
	}
}

// ApplyRoutes registers every route and builds the global middleware chain.
// Services must be set before calling it.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccounts()
	r.registerPartners()
	r.registerAnalytics()
	r.registerSystem()

	r.Mux.Handle("/swagger/",
		httpx.Chain(httpSwagger.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Metrics wraps the mux directly so it sees the matched route pattern.
	r.handler = httpx.Chain(r.metrics.Middleware(r.Mux),
		slogx.HTTPMiddleware(r.logger),
		slogx.Recoverer,
	)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Authentication Service API
//	@version		0.1.0
//	@description	Account registration, password login with MFA step-up for owners, bearer tokens
//	@description	and role based access decisions.
//	@description
//	@description				Tokens are EdDSA (or ES256) signed JWTs carrying sub, role and amr claims.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.handler == nil {
		http.Error(w, "routes not applied", http.StatusServiceUnavailable)
		return
	}
	r.handler.ServeHTTP(w, req)
}

// protect guards h with the policy of op. mws run after authorization.
func (r *Router) protect(op service.Operation, h httpx.ClaimsHandler, mws ...httpx.Middleware) http.Handler {
	return httpx.RequireClaims(r.Guard.For(op), guardError(service.Policy[op].Roles), h, mws...)
}

func (r *Router) registerAuth() {
	h := &LoginHandler{LoginService: r.LoginService, EchoMFACodes: r.EchoMFACodes}

	// Credential and code guessing endpoints - strict limit by IP
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/mfa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyMFA),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{LoginService: r.LoginService, AccountService: r.AccountService}

	r.Mux.Handle("POST /v1/accounts",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/accounts/me",
		r.protect(service.OpCurrentAccount, h.HandleMe, httpx.RateLimitByAccount(httpx.LenientLimit)),
	)
	r.Mux.Handle("POST /v1/accounts/me/role",
		r.protect(service.OpSwitchRole, h.HandleSwitchRole, httpx.RateLimitByAccount(httpx.ModerateLimit)),
	)
}

func (r *Router) registerPartners() {
	h := &PartnersHandler{PartnerService: r.PartnerService}

	r.Mux.Handle("GET /v1/partners",
		r.protect(service.OpPartnerReview, h.HandleList, httpx.RateLimitByAccount(httpx.ModerateLimit)),
	)
	r.Mux.Handle("POST /v1/partners/{id}/status",
		r.protect(service.OpPartnerReview, h.HandleSetStatus, httpx.RateLimitByAccount(httpx.ModerateLimit)),
	)
	r.Mux.Handle("GET /v1/partners/me",
		r.protect(service.OpPartnerProfile, h.HandleProfile, httpx.RateLimitByAccount(httpx.LenientLimit)),
	)
}

func (r *Router) registerAnalytics() {
	h := &AnalyticsHandler{AnalyticsService: r.AnalyticsService}

	r.Mux.Handle("GET /v1/analytics/accounts",
		r.protect(service.OpAnalytics, h.HandleAccounts, httpx.RateLimitByAccount(httpx.ModerateLimit)),
	)
}

func (r *Router) registerSystem() {
	checks := map[string]ReadinessCheck{
		"database": r.store.Ping,
		"signer": func(context.Context) error {
			if r.keys == nil || r.keys.Len() == 0 {
				return errors.New("no signing keys loaded")
			}
			return nil
		},
	}
	for name, check := range r.Checks {
		checks[name] = check
	}

	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, checks))
	r.Mux.Handle("GET /metrics",
		httpx.Chain(r.metrics.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
