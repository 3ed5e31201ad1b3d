package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vali/pkg/domain"
	"github.com/aretw0/vali/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnValidateEnd(ctx, &domain.ValidationEvent{Scheme: "user", Valid: true, Duration: time.Millisecond})
	hooks.OnValidateEnd(ctx, &domain.ValidationEvent{Scheme: "user", Field: "name", Error: "x"})
	hooks.OnSchemeLoad(ctx, &domain.SchemeEvent{Scheme: "user", Cached: true})

	expected := `
# HELP vali_validations_total Total number of validations by scheme and outcome
# TYPE vali_validations_total counter
vali_validations_total{outcome="invalid",scheme="user"} 1
vali_validations_total{outcome="valid",scheme="user"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "vali_validations_total"))
	n, err := testutil.GatherAndCount(m.Registry(), "vali_field_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `vali_scheme_loads_total{scheme="user",source="cache"} 1`)
}

func TestLogHooks_MergeWithMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := observability.NewMetrics()

	hooks := observability.LogHooks(logger).Merge(m.Hooks())
	hooks.OnValidateEnd(context.Background(), &domain.ValidationEvent{Scheme: "order", Field: "id", Error: "bad id"})

	assert.Contains(t, buf.String(), "validation failed")
	assert.Contains(t, buf.String(), "field=id")
	n, err := testutil.GatherAndCount(m.Registry(), "vali_validations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
