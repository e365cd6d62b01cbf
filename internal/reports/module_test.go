package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit_portal_backend/internal/events"
	"recruit_portal_backend/internal/funnel"
	"recruit_portal_backend/internal/reports/service"
	"recruit_portal_backend/internal/reports/transport"
	"recruit_portal_backend/platform/cache"
	"recruit_portal_backend/platform/logger"
)

type memRepo struct {
	mu   sync.Mutex
	rows map[string][]funnel.RawActivityRow
}

func (r *memRepo) ListMonthlyRows(_ context.Context, monthKey, _ string) ([]funnel.RawActivityRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]funnel.RawActivityRow(nil), r.rows[monthKey]...), nil
}

func (r *memRepo) ListMonths(context.Context) ([]string, error) { return nil, nil }

func (r *memRepo) set(monthKey string, rows ...funnel.RawActivityRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[monthKey] = rows
}

func assigned(id string) funnel.RawActivityRow {
	return funnel.RawActivityRow{MonthKey: "2026_01", ConsultantName: "佐藤", CandidateID: id, AssignedDate: "2026-01-05", Status: "new"}
}

func newTestModule(t *testing.T) (*Module, *memRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &memRepo{rows: map[string][]funnel.RawActivityRow{}}
	svc := service.New(repo, nil, cache.New(client, "reports"), nil, logger.Discard(), service.Options{CacheTTL: time.Hour})
	return &Module{service: svc}, repo, mr
}

func TestSheetImportedRefreshesMonth(t *testing.T) {
	m, repo, _ := newTestModule(t)
	ctx := context.Background()
	bus := events.NewInMemoryBus(logger.Discard())
	m.RegisterHandlers(bus)

	repo.set("2026_01", assigned("C1"))
	first, err := m.Service().Funnel(ctx, transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	require.Equal(t, 1, first.Totals.Assigned)

	repo.set("2026_01", assigned("C1"), assigned("C2"))
	require.NoError(t, bus.PublishSync(ctx, events.MonthlySheetImported{
		BaseEvent: events.NewBaseEvent(),
		MonthKey:  "2026_01",
		Rows:      2,
	}))

	// Served from the refreshed cache.
	repo.set("2026_01")
	got, err := m.Service().Funnel(ctx, transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Totals.Assigned)
}

func TestTargetUpdatedInvalidatesMonth(t *testing.T) {
	m, repo, mr := newTestModule(t)
	ctx := context.Background()

	repo.set("2026_01", assigned("C1"))
	_, err := m.Service().Funnel(ctx, transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	require.NotEmpty(t, mr.Keys())

	require.NoError(t, m.Handle(ctx, events.MonthlyTargetUpdated{BaseEvent: events.NewBaseEvent(), YearMonth: "2026-01"}))
	assert.Empty(t, mr.Keys())
}

type unrelatedEvent struct{ events.BaseEvent }

func (unrelatedEvent) EventName() string { return "targets.unrelated" }

func TestHandleIgnoresOtherEvents(t *testing.T) {
	m, _, _ := newTestModule(t)
	assert.NoError(t, m.Handle(context.Background(), unrelatedEvent{events.NewBaseEvent()}))
}
