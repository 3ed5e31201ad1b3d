package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/vali/pkg/domain"
)

// LogHooks returns lifecycle hooks writing events to logger.
// Failures are logged at Info, everything else at Debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnValidateEnd: func(ctx context.Context, e *domain.ValidationEvent) {
			if e.Valid {
				logger.DebugContext(ctx, "validation passed", "scheme", e.Scheme, "duration", e.Duration)
				return
			}
			logger.InfoContext(ctx, "validation failed",
				"scheme", e.Scheme,
				"field", e.Field,
				"reason", e.Error,
				"usage", e.Usage,
			)
		},
		OnSchemeLoad: func(ctx context.Context, e *domain.SchemeEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "scheme load failed", "scheme", e.Scheme, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "scheme loaded", "scheme", e.Scheme, "cached", e.Cached)
		},
		OnSchemeChange: func(ctx context.Context, e *domain.SchemeEvent) {
			logger.InfoContext(ctx, string(e.Type), "scheme", e.Scheme)
		},
	}
}
