package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"
)

// classify passes domain errors through and turns anything else into a
// server fault, logging the cause.
func classify(ctx context.Context, msg string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	slogx.FromContext(ctx).Error(msg, slog.Any("err", err))
	return domain.Internal(err)
}
