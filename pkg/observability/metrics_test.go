package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	h := m.Hooks()
	ctx := context.Background()

	h.OnExpand(ctx, &domain.StateEvent{StateID: "a", Kind: domain.KindAtomic})
	h.OnExpand(ctx, &domain.StateEvent{StateID: "b", Kind: domain.KindAtomic})
	h.OnExpand(ctx, &domain.StateEvent{StateID: "S", Kind: domain.KindSwitch})
	h.OnCycle(ctx, &domain.StateEvent{StateID: "a"})
	h.OnUnknownReference(ctx, &domain.StateEvent{StateID: "ghost"})
	h.OnPathExplosion(ctx, &domain.StateEvent{StateID: "P", Alternatives: 27})
	h.OnTargetDone(ctx, &domain.TargetEvent{Target: "a", Paths: 2, Duration: time.Millisecond})
	h.OnTargetDone(ctx, &domain.TargetEvent{Target: "zz", Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Expansions.WithLabelValues("atomic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Expansions.WithLabelValues("switch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnknownReferences))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PathExplosions))
	assert.Equal(t, 2, testutil.CollectAndCount(m.TargetDuration))

	count, err := testutil.GatherAndCount(reg, "flowpaths_target_paths")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.AnalysisHooks{
		OnCycle: func(context.Context, *domain.StateEvent) { calls = append(calls, "a") },
	}
	b := domain.AnalysisHooks{
		OnCycle:      func(context.Context, *domain.StateEvent) { calls = append(calls, "b") },
		OnTargetDone: func(context.Context, *domain.TargetEvent) { calls = append(calls, "b-target") },
	}

	h := observability.Combine(a, domain.AnalysisHooks{}, b)
	require.NotNil(t, h.OnCycle)
	assert.Nil(t, h.OnExpand)

	h.OnCycle(context.Background(), &domain.StateEvent{})
	h.OnTargetDone(context.Background(), &domain.TargetEvent{})
	assert.Equal(t, []string{"a", "b", "b-target"}, calls)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := observability.LogHooks(logger)

	h.OnPathExplosion(context.Background(), &domain.StateEvent{StateID: "P", Alternatives: 27})
	h.OnUnknownReference(context.Background(), &domain.StateEvent{StateID: "ghost"})

	out := buf.String()
	assert.Contains(t, out, "level=WARN msg=\"path explosion\" state_id=P alternatives=27")
	assert.Contains(t, out, "ref=ghost")
}
