package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventanita/internal/domain"
	"ventanita/internal/logger"
	"ventanita/internal/service"
)

func TestScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _, city := f.tree(t)

	now := time.Now().UTC()
	_, err := f.pages.SchedulePublish(ctx, city.ID, "", now.Add(time.Minute))
	require.NoError(t, err)
	f.pages.SetClock(func() time.Time { return now.Add(time.Hour) })

	s := service.NewScheduler(f.pages, f.metrics, logger.Nop())
	n, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ScheduledRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Publishes.WithLabelValues("scheduler")))

	p, err := f.pages.Get(ctx, city.ID)
	require.NoError(t, err)
	assert.True(t, p.Live)
}

func TestScheduler_Start(t *testing.T) {
	f := newFixture(t)
	s := service.NewScheduler(f.pages, f.metrics, logger.Nop())

	assert.Error(t, s.Start(context.Background(), "every now and then"))
	require.NoError(t, s.Start(context.Background(), "@every 1h"))
	s.Stop()
	s.Stop()
}

func TestScheduler_DeletedPagesAreSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, cities, city := f.tree(t)
	other := f.create(t, cities.ID, domain.PageTypeCity, "Luque")

	now := time.Now().UTC()
	for _, id := range []string{city.ID, other.ID} {
		_, err := f.pages.SchedulePublish(ctx, id, "", now.Add(time.Minute))
		require.NoError(t, err)
	}
	require.NoError(t, f.pages.Delete(ctx, city.ID))
	f.pages.SetClock(func() time.Time { return now.Add(time.Hour) })

	n, err := service.NewScheduler(f.pages, f.metrics, logger.Nop()).RunOnce(ctx)
	require.NoError(t, err, "deleted pages take their revisions with them")
	assert.Equal(t, 1, n)
}
