package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/authsdk"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/httpx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"
)

// statusFor maps an error kind to its HTTP status and wire code. Token
// failures are reported as unauthenticated.
func statusFor(kind domain.Kind) (int, string) {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest, authsdk.ErrorCodeValidation
	case domain.KindDuplicateIdentity:
		return http.StatusConflict, authsdk.ErrorCodeDuplicateIdentity
	case domain.KindAuthentication:
		return http.StatusUnauthorized, authsdk.ErrorCodeAuthentication
	case domain.KindUnauthenticated, domain.KindTokenInvalid, domain.KindTokenExpired:
		return http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated
	case domain.KindForbidden:
		return http.StatusForbidden, authsdk.ErrorCodeForbidden
	case domain.KindMFAInvalidCode:
		return http.StatusUnauthorized, authsdk.ErrorCodeMFAInvalidCode
	case domain.KindMFAExpired:
		return http.StatusUnauthorized, authsdk.ErrorCodeMFAExpired
	case domain.KindMFAAttemptsExceeded:
		return http.StatusTooManyRequests, authsdk.ErrorCodeMFAAttemptsExceeded
	case domain.KindNotFound:
		return http.StatusNotFound, authsdk.ErrorCodeNotFound
	default:
		return http.StatusInternalServerError, authsdk.ErrorCodeServerError
	}
}

// writeError renders err as the error envelope. Server faults never reveal
// their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status, code := statusFor(kind)

	if status == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
		authsdk.ErrServerError.WriteError(w)
		return
	}

	desc := string(kind)
	var de *domain.Error
	if errors.As(err, &de) && de.Message != "" {
		desc = de.Message
	}
	if code == authsdk.ErrorCodeUnauthenticated {
		httpx.SetBearerChallenge(w, desc)
	}

	slogx.FromContext(r.Context()).Info("request rejected", slog.String("kind", string(kind)), slog.Int("status", status))
	authsdk.NewAPIError(status, code, desc).WriteError(w)
}

// guardError renders a rejected bearer token for a route restricted to roles.
func guardError(roles []domain.Role) httpx.ErrorWriter {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if domain.KindOf(err) == domain.KindForbidden {
			httpx.SetInsufficientRoleChallenge(w, names...)
		}
		writeError(w, r, err)
	}
}

// writeBadRequest reports an undecodable request body.
func writeBadRequest(w http.ResponseWriter, err error) {
	authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeValidation, err.Error()).WriteError(w)
}
