package httpx

import (
	"context"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeyAccountID ctxKey = "account_id"
	ctxKeyClaims    ctxKey = "claims"
)

// WithClaims stores verified token claims on ctx.
func WithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxKeyAccountID, c.Subject)
	return context.WithValue(ctx, ctxKeyClaims, c)
}

func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return c, ok
}

// AccountIDFromContext returns the authenticated subject, or "".
func AccountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyAccountID).(string)
	return id
}
