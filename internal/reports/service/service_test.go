package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit_portal_backend/internal/funnel"
	"recruit_portal_backend/internal/reports/transport"
	targets "recruit_portal_backend/internal/targets/transport"
	"recruit_portal_backend/platform/apperr"
	"recruit_portal_backend/platform/cache"
	"recruit_portal_backend/platform/logger"
	"recruit_portal_backend/platform/metrics"
)

type fakeRepo struct {
	mu      sync.Mutex
	rows    map[string][]funnel.RawActivityRow
	months  []string
	err     error
	calls   int
	queried []string
}

func (r *fakeRepo) ListMonthlyRows(_ context.Context, monthKey, consultant string) ([]funnel.RawActivityRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.queried = append(r.queried, monthKey)
	if r.err != nil {
		return nil, r.err
	}
	var out []funnel.RawActivityRow
	for _, row := range r.rows[monthKey] {
		if consultant == "" || row.ConsultantName == consultant {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListMonths(context.Context) ([]string, error) {
	return r.months, r.err
}

func (r *fakeRepo) setRows(monthKey string, rows ...funnel.RawActivityRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows == nil {
		r.rows = map[string][]funnel.RawActivityRow{}
	}
	r.rows[monthKey] = rows
}

func (r *fakeRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeTargets struct {
	target *targets.TargetResponse
	err    error
}

func (f fakeTargets) ForMonth(_ context.Context, yearMonth string) (*targets.TargetResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.target == nil || f.target.YearMonth != yearMonth {
		return nil, nil
	}
	return f.target, nil
}

func sheetRow(consultant, candidate, name, status, assigned, interview string) funnel.RawActivityRow {
	return funnel.RawActivityRow{
		MonthKey:         "2026_01",
		ConsultantName:   consultant,
		CandidateID:      candidate,
		CandidateName:    name,
		AssignedDate:     assigned,
		Status:           status,
		ExpectedAmount:   "1,200,000",
		ProbabilityGrade: "A",
		InterviewFlag:    interview,
	}
}

func januaryRows() []funnel.RawActivityRow {
	return []funnel.RawActivityRow{
		sheetRow("Sato", "C1", "鈴木 一郎", "first-contact-done", "2026-01-05", "FALSE"),
		sheetRow("Sato", "C2", "田中 花子", "interview-confirmed", "1/10", "TRUE"),
		sheetRow("Kato", "C3", "高橋 健", "new", "2026/1/12", ""),
	}
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, "reports"), mr
}

func newTestService(repo *fakeRepo, tp TargetProvider, c Cache, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2026, time.January, 20, 3, 0, 0, 0, time.UTC) }
	}
	return New(repo, tp, c, metrics.New(), logger.Discard(), opts)
}

func TestFunnelComputesMonth(t *testing.T) {
	repo := &fakeRepo{}
	repo.setRows("2026_01", januaryRows()...)
	target := &targets.TargetResponse{YearMonth: "2026-01", TotalSalesBudget: 29_000_000}
	svc := newTestService(repo, fakeTargets{target: target}, nil, Options{})

	resp, err := svc.Funnel(context.Background(), transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)

	assert.Equal(t, "2026_01", resp.Month)
	assert.Equal(t, "2026-01", resp.YearMonth)
	require.Len(t, resp.Consultants, 2)

	sato := resp.Consultants[0]
	assert.Equal(t, "Sato", sato.Consultant)
	assert.Equal(t, [4]int{2, 1, 1, 0}, [4]int{sato.Assigned, sato.FirstContact, sato.Interview, sato.Closed})
	assert.InDelta(t, 0.5, sato.FirstContactRate, 1e-9)

	assert.Equal(t, funnel.Totals{Assigned: 3, FirstContact: 1, FirstContactRaw: 1, Interview: 1}, resp.Totals)
	assert.InDelta(t, 1.0/3.0, resp.TotalRates.FirstContact, 1e-9)
	assert.Same(t, target, resp.Target)
	assert.Nil(t, resp.Diagnostics)
	assert.Empty(t, resp.Message)
}

func TestFunnelFiltersConsultant(t *testing.T) {
	repo := &fakeRepo{}
	repo.setRows("2026_01", januaryRows()...)
	svc := newTestService(repo, nil, nil, Options{})

	resp, err := svc.Funnel(context.Background(), transport.FunnelQuery{Month: "2026-01", Consultant: " Kato "})
	require.NoError(t, err)

	require.Len(t, resp.Consultants, 1)
	assert.Equal(t, "Kato", resp.Consultants[0].Consultant)
	assert.Equal(t, "Kato", resp.Consultant)
	assert.Equal(t, 1, resp.Totals.Assigned)
}

func TestFunnelDefaultsToCurrentMonthInLocation(t *testing.T) {
	repo := &fakeRepo{}
	jst := time.FixedZone("JST", 9*60*60)
	svc := newTestService(repo, nil, nil, Options{
		Location: jst,
		Now:      func() time.Time { return time.Date(2026, time.January, 31, 16, 0, 0, 0, time.UTC) },
	})

	resp, err := svc.Funnel(context.Background(), transport.FunnelQuery{})
	require.NoError(t, err)

	assert.Equal(t, "2026_02", resp.Month)
	assert.Equal(t, []string{"2026_02"}, repo.queried)
}

func TestFunnelEmptyMonth(t *testing.T) {
	svc := newTestService(&fakeRepo{}, nil, nil, Options{})

	resp, err := svc.Funnel(context.Background(), transport.FunnelQuery{Month: "2026_03"})
	require.NoError(t, err)

	assert.NotNil(t, resp.Consultants)
	assert.Empty(t, resp.Consultants)
	assert.Equal(t, funnel.Totals{}, resp.Totals)
	assert.Equal(t, "no activity rows for 2026_03", resp.Message)
}

func TestFunnelRejectsBadMonth(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil, nil, Options{})

	_, err := svc.Funnel(context.Background(), transport.FunnelQuery{Month: "2026_13"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.Zero(t, repo.callCount())
}

func TestFunnelRepositoryFailure(t *testing.T) {
	repo := &fakeRepo{err: errors.New("connection refused")}
	svc := newTestService(repo, nil, nil, Options{})

	_, err := svc.Funnel(context.Background(), transport.FunnelQuery{Month: "2026_01"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestFunnelSurvivesTargetFailure(t *testing.T) {
	repo := &fakeRepo{}
	repo.setRows("2026_01", januaryRows()...)
	svc := newTestService(repo, fakeTargets{err: errors.New("timeout")}, nil, Options{})

	resp, err := svc.Funnel(context.Background(), transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	assert.Nil(t, resp.Target)
	assert.Equal(t, 3, resp.Totals.Assigned)
}

func TestFunnelExposesDiagnostics(t *testing.T) {
	repo := &fakeRepo{}
	repo.setRows("2026_01", append(januaryRows(),
		sheetRow("Kato", "C4", "伊藤 優", "保留中", "2026-01-15", ""),
	)...)
	svc := newTestService(repo, nil, nil, Options{ExposeDiagnostics: true})

	resp, err := svc.Funnel(context.Background(), transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)

	require.NotNil(t, resp.Diagnostics)
	assert.Equal(t, map[string]int{"保留中": 1}, resp.Diagnostics.Unmapped)
	assert.Equal(t, 4, resp.Diagnostics.Records)
	// the unmapped candidate is not counted as assigned
	assert.Equal(t, 3, resp.Totals.Assigned)
}

func TestFunnelServesFromCache(t *testing.T) {
	repo := &fakeRepo{}
	repo.setRows("2026_01", januaryRows()...)
	c, mr := newTestCache(t)
	svc := newTestService(repo, nil, c, Options{CacheTTL: time.Minute})
	ctx := context.Background()

	first, err := svc.Funnel(ctx, transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("reports:2026_01:funnel:"))

	second, err := svc.Funnel(ctx, transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.callCount())
	assert.Equal(t, first, second)

	mr.FastForward(2 * time.Minute)
	_, err = svc.Funnel(ctx, transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.callCount())
}

func TestFunnelComputesWhenCacheIsDown(t *testing.T) {
	repo := &fakeRepo{}
	repo.setRows("2026_01", januaryRows()...)
	c, mr := newTestCache(t)
	mr.Close()
	svc := newTestService(repo, nil, c, Options{CacheTTL: time.Minute})

	resp, err := svc.Funnel(context.Background(), transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Totals.Assigned)
}

func TestRefreshReplacesStaleReport(t *testing.T) {
	repo := &fakeRepo{}
	repo.setRows("2026_01", januaryRows()...)
	c, mr := newTestCache(t)
	svc := newTestService(repo, nil, c, Options{CacheTTL: time.Hour})
	ctx := context.Background()

	_, err := svc.Funnel(ctx, transport.FunnelQuery{Month: "2026_01", Consultant: "Sato"})
	require.NoError(t, err)

	repo.setRows("2026_01", sheetRow("Sato", "C9", "木村 拓", "closed-won", "2026-01-02", "TRUE"))
	stale, err := svc.Funnel(ctx, transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	assert.Equal(t, 1, stale.Totals.Assigned, "whole-month key was never cached")

	require.NoError(t, svc.Refresh(ctx, "2026_01"))
	assert.False(t, mr.Exists("reports:2026_01:funnel:Sato"))
	assert.True(t, mr.Exists("reports:2026_01:funnel:"))
	assert.True(t, mr.Exists("reports:2026_01:cases"))

	fresh, err := svc.Funnel(ctx, transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Totals.Closed)
}

func TestInvalidateAcceptsYearMonth(t *testing.T) {
	repo := &fakeRepo{}
	repo.setRows("2026_01", januaryRows()...)
	c, mr := newTestCache(t)
	svc := newTestService(repo, nil, c, Options{CacheTTL: time.Hour})
	ctx := context.Background()

	_, err := svc.Funnel(ctx, transport.FunnelQuery{Month: "2026_01"})
	require.NoError(t, err)
	_, err = svc.Funnel(ctx, transport.FunnelQuery{Month: "2026_02"})
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, "2026-01"))
	assert.False(t, mr.Exists("reports:2026_01:funnel:"))
	assert.True(t, mr.Exists("reports:2026_02:funnel:"))

	err = svc.Invalidate(ctx, "January")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestInterviewCases(t *testing.T) {
	repo := &fakeRepo{}
	repo.setRows("2026_01",
		sheetRow("Sato", "C1", "鈴木 一郎", "interview-scheduled", "2026-01-05", "TRUE"),
		sheetRow("Sato", "C2", "田中　花子", "interview-confirmed", "2026-01-06", "TRUE"),
		sheetRow("Sato", "C2", "田中　花子", "interview-confirmed", "2026-01-06", "TRUE"),
		sheetRow("Kato", "C3", "高橋 健", "offer-pending-acceptance", "2025-12-20", "TRUE"),
		sheetRow("Kato", "C4", "伊藤 優", "interview-confirmed", "2026-01-07", "FALSE"),
	)
	svc := newTestService(repo, nil, nil, Options{})

	resp, err := svc.InterviewCases(context.Background(), "2026_01")
	require.NoError(t, err)

	assert.Equal(t, "2026_01", resp.Month)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Consultants, 2)

	sato := resp.Consultants[0]
	assert.Equal(t, "Sato", sato.Consultant)
	assert.Equal(t, []funnel.Case{{CandidateID: "C1", Name: "鈴木", Yomi: "Aヨミ(80%)", Amount: 1_200_000}}, sato.Adjusting)
	require.Len(t, sato.BeforeInterview, 1)
	assert.Equal(t, "田中", sato.BeforeInterview[0].Name)

	kato := resp.Consultants[1]
	assert.Len(t, kato.WaitingReply, 1)
	assert.Empty(t, kato.BeforeInterview)
}

func TestMonths(t *testing.T) {
	svc := newTestService(&fakeRepo{}, nil, nil, Options{})
	resp, err := svc.Months(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, resp.Months)

	svc = newTestService(&fakeRepo{months: []string{"2026_02", "2026_01"}}, nil, nil, Options{})
	resp, err = svc.Months(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2026_02", "2026_01"}, resp.Months)
}
