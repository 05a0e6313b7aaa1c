package services

import (
	"context"
	"time"

	"furnitureshop/internal/apperr"
)

// withTimeout bounds a storage call. A non-positive d leaves ctx unbounded.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// retryOnConflict runs fn a second time when the first attempt lost a
// serialization or lock race.
func retryOnConflict(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || !apperr.IsKind(err, apperr.KindConflict) || ctx.Err() != nil {
		return err
	}
	return fn()
}
