package service

import (
	"context"
	"math"

	"github.com/google/uuid"

	"recruit_portal_backend/internal/events"
	"recruit_portal_backend/internal/targets/repository"
	"recruit_portal_backend/internal/targets/transport"
	"recruit_portal_backend/platform/apperr"
	"recruit_portal_backend/platform/logger"
)

// Service provides business logic for monthly targets.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new monthly targets service. bus may be nil.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// ForMonth returns the target of yearMonth, or the latest target when
// yearMonth is empty. A missing target is not an error: it returns nil.
func (s *Service) ForMonth(ctx context.Context, yearMonth string) (*transport.TargetResponse, error) {
	var (
		target repository.MonthlyTarget
		err    error
	)
	if yearMonth == "" {
		target, err = s.repo.Latest(ctx)
	} else {
		target, err = s.repo.Get(ctx, yearMonth)
	}
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	resp := toResponse(target)
	return &resp, nil
}

// Upsert stores a month's target and announces the change.
func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, req transport.UpsertTargetRequest) (transport.TargetResponse, error) {
	saved, err := s.repo.Upsert(ctx, repository.MonthlyTarget{
		YearMonth:                      req.YearMonth,
		TotalSalesBudget:               req.TotalSalesBudget,
		RegistrationToFirstContactRate: req.RegistrationToFirstContactRate,
		FirstContactToInterviewRate:    req.FirstContactToInterviewRate,
		InterviewToClosedRate:          req.InterviewToClosedRate,
		ClosedUnitPrice:                req.ClosedUnitPrice,
		InterviewTarget:                req.InterviewTarget,
		UpdatedBy:                      &userID,
	})
	if err != nil {
		return transport.TargetResponse{}, err
	}

	s.log.Info("monthly target updated", "year_month", saved.YearMonth, "user_id", userID)
	if s.bus != nil {
		s.bus.Publish(ctx, events.MonthlyTargetUpdated{
			BaseEvent: events.NewBaseEvent(),
			YearMonth: saved.YearMonth,
			UpdatedBy: userID,
		})
	}
	return toResponse(saved), nil
}

// BuildPlan works the budget back through the target conversion rates.
// Every step rounds up; a zero price or rate zeroes the steps that depend on it.
func BuildPlan(t repository.MonthlyTarget) transport.Plan {
	var plan transport.Plan
	if t.ClosedUnitPrice <= 0 || t.TotalSalesBudget <= 0 {
		return plan
	}
	plan.Closed = int((t.TotalSalesBudget + t.ClosedUnitPrice - 1) / t.ClosedUnitPrice)
	plan.Interviews = ceilDiv(plan.Closed, t.InterviewToClosedRate)
	plan.FirstContacts = ceilDiv(plan.Interviews, t.FirstContactToInterviewRate)
	plan.Registrations = ceilDiv(plan.FirstContacts, t.RegistrationToFirstContactRate)
	return plan
}

// ceilDiv returns ceil(n / rate), tolerating float noise such as 48/0.6.
func ceilDiv(n int, rate float64) int {
	if n <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Ceil(float64(n)/rate - 1e-9))
}

func toResponse(t repository.MonthlyTarget) transport.TargetResponse {
	return transport.TargetResponse{
		YearMonth:                      t.YearMonth,
		TotalSalesBudget:               t.TotalSalesBudget,
		RegistrationToFirstContactRate: t.RegistrationToFirstContactRate,
		FirstContactToInterviewRate:    t.FirstContactToInterviewRate,
		InterviewToClosedRate:          t.InterviewToClosedRate,
		ClosedUnitPrice:                t.ClosedUnitPrice,
		InterviewTarget:                t.InterviewTarget,
		Plan:                           BuildPlan(t),
		UpdatedBy:                      t.UpdatedBy,
		UpdatedAt:                      t.UpdatedAt,
	}
}
