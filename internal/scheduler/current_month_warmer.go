package scheduler

import (
	"context"
	"time"

	"recruit_portal_backend/internal/funnel"
	"recruit_portal_backend/platform/logger"
)

const defaultWarmInterval = 15 * time.Minute

// MonthRefresher recomputes and caches one month's reports.
type MonthRefresher interface {
	Refresh(ctx context.Context, month string) error
}

// CurrentMonthWarmer periodically refreshes the current month so that the
// dashboard never computes it on a request.
type CurrentMonthWarmer struct {
	reports  MonthRefresher
	log      *logger.Logger
	interval time.Duration
	location *time.Location
	now      func() time.Time
}

func NewCurrentMonthWarmer(reports MonthRefresher, log *logger.Logger, interval time.Duration, location *time.Location) *CurrentMonthWarmer {
	if interval <= 0 {
		interval = defaultWarmInterval
	}
	if location == nil {
		location = time.UTC
	}

	return &CurrentMonthWarmer{
		reports:  reports,
		log:      log,
		interval: interval,
		location: location,
		now:      time.Now,
	}
}

func (c *CurrentMonthWarmer) Run(ctx context.Context) {
	if c == nil || c.reports == nil {
		return
	}

	c.warm(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.warm(ctx)
		}
	}
}

func (c *CurrentMonthWarmer) currentMonth() string {
	now := c.now().In(c.location)
	return funnel.MonthPeriod(now.Year(), now.Month()).MonthKey()
}

func (c *CurrentMonthWarmer) warm(ctx context.Context) {
	month := c.currentMonth()
	if err := c.reports.Refresh(ctx, month); err != nil {
		c.log.Warn("current month refresh failed", "month", month, "error", err)
		return
	}
	c.log.Debug("current month refreshed", "month", month)
}
