package metrics_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/metrics"
)

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.ResultSuccess},
		{fmt.Errorf("wrapped: %w", domain.ErrConflict), metrics.ResultConflict},
		{domain.ErrNotFound, metrics.ResultNotFound},
		{domain.ErrInvalidState, metrics.ResultInvalidState},
		{domain.ErrValidation, metrics.ResultInvalidInput},
		{errors.New("boom"), metrics.ResultError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, metrics.Result(tc.err))
	}
}

// TestInit_RegistersInstruments verifies the lifecycle instruments show up in
// the registry after Init and that observations are gathered.
func TestInit_RegistersInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.Init(reg)

	metrics.ObserveStart(nil)
	metrics.ObserveStop(domain.ErrInvalidState)
	metrics.ObserveSettlement(30, 50)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["parking_sessions_started_total"])
	assert.True(t, names["parking_sessions_stopped_total"])
	assert.True(t, names["parking_session_charge_total"])
	assert.True(t, names["parking_session_duration_minutes"])
}
