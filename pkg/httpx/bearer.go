package httpx

import (
	"net/http"
	"strings"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"
)

// BearerToken pulls the raw token out of the Authorization header. The scheme
// is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// SetBearerChallenge adds an RFC 6750 challenge for a rejected token.
func SetBearerChallenge(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
}

// SetInsufficientRoleChallenge adds the challenge sent with a 403.
func SetInsufficientRoleChallenge(w http.ResponseWriter, roles ...string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", role="`+strings.Join(roles, " ")+`"`)
}

// ClaimsHandler receives the claims verified for the request.
type ClaimsHandler func(w http.ResponseWriter, r *http.Request, claims jwtx.Claims)

// Authorizer turns a raw bearer token into verified claims. A missing token is
// passed as "".
type Authorizer func(raw string) (jwtx.Claims, error)

// ErrorWriter renders an authorization failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireClaims runs authorize before h. mws wrap h after authorization, so
// they can key on the authenticated account. The request logger gains
// account_id and role.
func RequireClaims(authorize Authorizer, onError ErrorWriter, h ClaimsHandler, mws ...Middleware) http.Handler {
	inner := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		h(w, r, claims)
	}), mws...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := BearerToken(r)
		claims, err := authorize(raw)
		if err != nil {
			onError(w, r, err)
			return
		}
		ctx := WithClaims(r.Context(), claims)
		ctx = slogx.With(ctx, "account_id", claims.Subject, "role", claims.Role)
		inner.ServeHTTP(w, r.WithContext(ctx))
	})
}
