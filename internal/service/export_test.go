package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/parking-meter/internal/service"
)

func TestExportService_Export_SettledOnly(t *testing.T) {
	l := newLifecycle(t, 120)
	ctx := context.Background()

	first := l.start(t)
	l.clock.Advance(90 * time.Minute)
	_, err := l.svc.Stop(ctx, l.userID, first.Session.ID)
	require.NoError(t, err)
	l.start(t) // still active, must not be exported

	svc := service.NewExportService(l.store.Sessions(), l.store.Zones(), l.store.Vehicles())

	rows, err := svc.Export(ctx, l.userID)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, first.Session.ID, row.SessionID)
	assert.Equal(t, "TEST-1", row.Plate)
	assert.Equal(t, "Old Town", row.ZoneName)
	assert.EqualValues(t, 120, row.HourlyRate)
	assert.EqualValues(t, 90, row.BilledMinutes)
	assert.EqualValues(t, 180, row.Price)
	assert.True(t, row.StoppedAt.Equal(t0.Add(90*time.Minute)))
}

func TestExportService_Export_Empty(t *testing.T) {
	l := newLifecycle(t, 120)
	svc := service.NewExportService(l.store.Sessions(), l.store.Zones(), l.store.Vehicles())

	rows, err := svc.Export(context.Background(), l.userID)

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
