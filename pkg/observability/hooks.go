package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// Combine fans every event out to all the given hook sets, in order.
func Combine(sets ...domain.AnalysisHooks) domain.AnalysisHooks {
	var out domain.AnalysisHooks
	for _, h := range sets {
		out.OnExpand = chainState(out.OnExpand, h.OnExpand)
		out.OnCycle = chainState(out.OnCycle, h.OnCycle)
		out.OnUnknownReference = chainState(out.OnUnknownReference, h.OnUnknownReference)
		out.OnPathExplosion = chainState(out.OnPathExplosion, h.OnPathExplosion)
		out.OnTargetDone = chainTarget(out.OnTargetDone, h.OnTargetDone)
	}
	return out
}

func chainState(a, b func(context.Context, *domain.StateEvent)) func(context.Context, *domain.StateEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *domain.StateEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainTarget(a, b func(context.Context, *domain.TargetEvent)) func(context.Context, *domain.TargetEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *domain.TargetEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LogHooks logs every analysis event at debug level, except explosions which are warnings.
func LogHooks(logger *slog.Logger) domain.AnalysisHooks {
	return domain.AnalysisHooks{
		OnExpand: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "expand",
				"state_id", e.StateID,
				"kind", e.Kind,
				"alternatives", e.Alternatives,
			)
		},
		OnCycle: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "cycle", "state_id", e.StateID)
		},
		OnUnknownReference: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "unknown reference", "ref", e.StateID)
		},
		OnPathExplosion: func(ctx context.Context, e *domain.StateEvent) {
			logger.WarnContext(ctx, "path explosion",
				"state_id", e.StateID,
				"alternatives", e.Alternatives,
			)
		},
		OnTargetDone: func(ctx context.Context, e *domain.TargetEvent) {
			if e.Err != nil {
				logger.DebugContext(ctx, "target failed", "target", e.Target, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "target done",
				"target", e.Target,
				"paths", e.Paths,
				"duration", e.Duration,
			)
		},
	}
}
