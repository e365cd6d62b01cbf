package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"recruit_portal_backend/internal/funnel"
	"recruit_portal_backend/internal/reports/repository"
	"recruit_portal_backend/internal/reports/transport"
	targets "recruit_portal_backend/internal/targets/transport"
	"recruit_portal_backend/platform/apperr"
	"recruit_portal_backend/platform/cache"
	"recruit_portal_backend/platform/logger"
	"recruit_portal_backend/platform/metrics"
)

// TargetProvider looks up the monthly target shown next to a funnel.
type TargetProvider interface {
	ForMonth(ctx context.Context, yearMonth string) (*targets.TargetResponse, error)
}

// Cache stores computed reports. Get returns cache.ErrMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Options tune how reports are computed.
type Options struct {
	Taxonomy *funnel.Taxonomy
	// RolloverMonth is the last month of a fiscal year. Month/day dates
	// without a year resolve against the fiscal year of the report month.
	RolloverMonth time.Month
	// Location decides the current month when none is requested.
	Location          *time.Location
	CacheTTL          time.Duration
	ExposeDiagnostics bool
	Now               func() time.Time
}

// Service computes monthly funnel reports from the staging table.
type Service struct {
	repo    repository.Repository
	targets TargetProvider
	cache   Cache
	metrics *metrics.Registry
	log     *logger.Logger
	opts    Options
}

// New creates a reports service. targets, reportCache and reg may be nil.
func New(repo repository.Repository, targetProvider TargetProvider, reportCache Cache, reg *metrics.Registry, log *logger.Logger, opts Options) *Service {
	if opts.Taxonomy == nil {
		opts.Taxonomy = funnel.DefaultTaxonomy()
	}
	if opts.RolloverMonth == 0 {
		opts.RolloverMonth = time.March
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:    repo,
		targets: targetProvider,
		cache:   reportCache,
		metrics: reg,
		log:     log,
		opts:    opts,
	}
}

// Funnel returns the per-consultant funnel of a month.
func (s *Service) Funnel(ctx context.Context, q transport.FunnelQuery) (transport.FunnelResponse, error) {
	period, err := s.resolvePeriod(q.Month)
	if err != nil {
		return transport.FunnelResponse{}, err
	}
	consultant := strings.TrimSpace(q.Consultant)

	resp, err := loadCached(ctx, s, funnelKey(period, consultant), func(ctx context.Context) (transport.FunnelResponse, error) {
		return s.computeFunnel(ctx, period, consultant)
	})
	if err != nil {
		return transport.FunnelResponse{}, err
	}
	if !s.opts.ExposeDiagnostics {
		resp.Diagnostics = nil
	}
	return resp, nil
}

// InterviewCases returns the interview status card of a month.
func (s *Service) InterviewCases(ctx context.Context, month string) (transport.InterviewStatusResponse, error) {
	period, err := s.resolvePeriod(month)
	if err != nil {
		return transport.InterviewStatusResponse{}, err
	}

	return loadCached(ctx, s, casesKey(period), func(ctx context.Context) (transport.InterviewStatusResponse, error) {
		rows, err := s.repo.ListMonthlyRows(ctx, period.MonthKey(), "")
		if err != nil {
			return transport.InterviewStatusResponse{}, apperr.Unavailable("activity rows unavailable", err).WithOp("reports.InterviewCases")
		}

		lists := funnel.BuildCaseLists(s.normalizer(period).NormalizeBatch(rows))
		total := 0
		for _, l := range lists {
			total += l.Count()
		}
		return transport.InterviewStatusResponse{
			Month:       period.MonthKey(),
			Consultants: lists,
			Total:       total,
		}, nil
	})
}

// Months lists the months that have staged rows.
func (s *Service) Months(ctx context.Context) (transport.MonthsResponse, error) {
	months, err := s.repo.ListMonths(ctx)
	if err != nil {
		return transport.MonthsResponse{}, apperr.Unavailable("months unavailable", err).WithOp("reports.Months")
	}
	if months == nil {
		months = []string{}
	}
	return transport.MonthsResponse{Months: months}, nil
}

// Invalidate drops every cached report of a month. month accepts
// 2026_01 or 2026-01.
func (s *Service) Invalidate(ctx context.Context, month string) error {
	period, err := funnel.ParseMonthKey(strings.TrimSpace(month))
	if err != nil {
		return apperr.BadRequest(err.Error())
	}
	if s.cache == nil {
		return nil
	}
	deleted, err := s.cache.DeletePrefix(ctx, period.MonthKey()+":")
	if err != nil {
		return err
	}
	s.log.WithContext(ctx).Debug("report cache invalidated", "month", period.MonthKey(), "keys", deleted)
	return nil
}

// Refresh invalidates a month and recomputes its reports so the next
// reader hits a warm cache.
func (s *Service) Refresh(ctx context.Context, month string) error {
	if err := s.Invalidate(ctx, month); err != nil {
		return err
	}
	resp, err := s.Funnel(ctx, transport.FunnelQuery{Month: month})
	if err != nil {
		return err
	}
	if _, err := s.InterviewCases(ctx, month); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("funnel report refreshed",
		"month", resp.Month,
		"consultants", len(resp.Consultants),
		"assigned", resp.Totals.Assigned,
	)
	return nil
}

func (s *Service) computeFunnel(ctx context.Context, period funnel.Period, consultant string) (transport.FunnelResponse, error) {
	var (
		rows   []funnel.RawActivityRow
		target *targets.TargetResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.ListMonthlyRows(gctx, period.MonthKey(), consultant)
		if err != nil {
			return apperr.Unavailable("activity rows unavailable", err).WithOp("reports.Funnel")
		}
		return nil
	})
	g.Go(func() error {
		if s.targets == nil {
			return nil
		}
		t, err := s.targets.ForMonth(gctx, period.YearMonth())
		if err != nil {
			// The funnel is still useful without its target.
			s.log.WithContext(ctx).Warn("monthly target unavailable", "year_month", period.YearMonth(), "error", err)
			return nil
		}
		target = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return transport.FunnelResponse{}, err
	}

	start := time.Now()
	result := funnel.Compute(rows, s.normalizer(period), period)
	s.metrics.ObserveAggregation(time.Since(start))
	s.reportDiagnostics(ctx, period, result.Diagnostics)

	diagnostics := result.Diagnostics
	resp := transport.FunnelResponse{
		Month:       period.MonthKey(),
		YearMonth:   period.YearMonth(),
		Consultant:  consultant,
		Consultants: result.Funnels,
		Totals:      result.Totals,
		TotalRates:  result.Totals.Rates(),
		Target:      target,
		Diagnostics: &diagnostics,
	}
	if len(rows) == 0 {
		resp.Message = "no activity rows for " + period.MonthKey()
	}
	return resp, nil
}

func (s *Service) normalizer(period funnel.Period) funnel.Normalizer {
	return funnel.NewNormalizer(s.opts.Taxonomy, funnel.FiscalYearOf(period.Start, s.opts.RolloverMonth))
}

func (s *Service) resolvePeriod(month string) (funnel.Period, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		now := s.opts.Now().In(s.opts.Location)
		return funnel.MonthPeriod(now.Year(), now.Month()), nil
	}
	period, err := funnel.ParseMonthKey(month)
	if err != nil {
		return funnel.Period{}, apperr.BadRequest("month must be formatted as YYYY_MM").WithDetails(err.Error())
	}
	return period, nil
}

func (s *Service) reportDiagnostics(ctx context.Context, period funnel.Period, d funnel.Diagnostics) {
	log := s.log.WithContext(ctx)
	month := period.MonthKey()

	for _, raw := range slices.Sorted(maps.Keys(d.Unmapped)) {
		rows := d.Unmapped[raw]
		s.metrics.UnmappedStatus(raw, rows)
		log.UnmappedStatus(month, raw, rows)
	}
	for _, c := range d.Clamped {
		s.metrics.FirstContactClamped()
		log.FirstContactClamped(month, c.Consultant, c.Raw, c.Reported)
	}
	for _, c := range d.ClosedOutsideInterview {
		log.Warn("closed candidates missing interview flag",
			"month", month,
			"consultant", c.Consultant,
			"candidates", c.CandidateIDs,
		)
	}
	if len(d.InterviewExceedsFirstContact) > 0 {
		log.Info("interviews exceed first contacts",
			"month", month,
			"consultants", d.InterviewExceedsFirstContact,
		)
	}
}

func funnelKey(period funnel.Period, consultant string) string {
	return period.MonthKey() + ":funnel:" + consultant
}

func casesKey(period funnel.Period) string {
	return period.MonthKey() + ":cases"
}

// loadCached serves key from the cache, computing and storing it on a miss.
// Cache failures degrade to computing the value.
func loadCached[T any](ctx context.Context, s *Service, key string, compute func(context.Context) (T, error)) (T, error) {
	if s.cache != nil {
		var cached T
		err := s.cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			s.metrics.ReportCache(metrics.CacheHit)
			return cached, nil
		case errors.Is(err, cache.ErrMiss):
			s.metrics.ReportCache(metrics.CacheMiss)
		default:
			s.metrics.ReportCache(metrics.CacheError)
			s.log.WithContext(ctx).Warn("report cache read failed", "key", key, "error", err)
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}

	if s.cache != nil && s.opts.CacheTTL > 0 {
		if err := s.cache.Set(ctx, key, value, s.opts.CacheTTL); err != nil {
			s.metrics.ReportCache(metrics.CacheError)
			s.log.WithContext(ctx).Warn("report cache write failed", "key", key, "error", err)
		}
	}
	return value, nil
}
