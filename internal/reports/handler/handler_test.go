package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit_portal_backend/internal/funnel"
	"recruit_portal_backend/internal/reports/service"
	"recruit_portal_backend/internal/reports/transport"
	"recruit_portal_backend/platform/logger"
	"recruit_portal_backend/platform/validator"
)

type stubRepo struct {
	rows   []funnel.RawActivityRow
	months []string
	err    error
}

func (r stubRepo) ListMonthlyRows(_ context.Context, monthKey, _ string) ([]funnel.RawActivityRow, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []funnel.RawActivityRow
	for _, row := range r.rows {
		if row.MonthKey == monthKey {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r stubRepo) ListMonths(context.Context) ([]string, error) {
	return r.months, r.err
}

func newTestRouter(repo stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.New(repo, nil, nil, nil, logger.Discard(), service.Options{
		Now: func() time.Time { return time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC) },
	})
	h := New(svc, validator.New())

	engine := gin.New()
	engine.GET("/reports/funnel", h.Funnel)
	engine.GET("/reports/funnel.csv", h.FunnelCSV)
	engine.GET("/reports/interview-status", h.InterviewStatus)
	engine.GET("/reports/months", h.Months)
	return engine
}

func sampleRows() []funnel.RawActivityRow {
	return []funnel.RawActivityRow{
		{MonthKey: "2026_01", ConsultantName: "佐藤", CandidateID: "C1", CandidateName: "鈴木 一郎", AssignedDate: "2026-01-05", Status: "first-contact-done"},
		{MonthKey: "2026_01", ConsultantName: "佐藤", CandidateID: "C2", CandidateName: "田中 花子", AssignedDate: "2026-01-10", Status: "interview-confirmed", InterviewFlag: "TRUE"},
	}
}

func get(t *testing.T, engine *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestFunnel(t *testing.T) {
	rec := get(t, newTestRouter(stubRepo{rows: sampleRows()}), "/reports/funnel")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.FunnelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026_01", resp.Month)
	require.Len(t, resp.Consultants, 1)
	assert.Equal(t, 2, resp.Consultants[0].Assigned)
	assert.Equal(t, 1, resp.Consultants[0].FirstContact)
	assert.Equal(t, 1, resp.Consultants[0].Interview)
	assert.Nil(t, resp.Target)
}

func TestFunnelBadMonth(t *testing.T) {
	rec := get(t, newTestRouter(stubRepo{}), "/reports/funnel?month=2026_13")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY_MM")
}

func TestFunnelConsultantTooLong(t *testing.T) {
	rec := get(t, newTestRouter(stubRepo{}), "/reports/funnel?consultant="+strings.Repeat("x", 101))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation failed")
}

func TestFunnelRepositoryDown(t *testing.T) {
	rec := get(t, newTestRouter(stubRepo{err: errors.New("dial tcp: refused")}), "/reports/funnel?month=2026_01")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dial tcp")
}

func TestFunnelCSV(t *testing.T) {
	rec := get(t, newTestRouter(stubRepo{rows: sampleRows()}), "/reports/funnel.csv?month=2026_01")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "attachment; filename=funnel-2026_01.csv", rec.Header().Get("Content-Disposition"))
	body := strings.TrimPrefix(rec.Body.String(), utf8BOM)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	assert.Equal(t, []string{
		"consultant,assigned,first_contact,interview,closed,first_contact_rate,interview_rate,closed_rate",
		"佐藤,2,1,1,0,0.5000,1.0000,0.0000",
		"total,2,1,1,0,0.5000,1.0000,0.0000",
	}, lines)
}

func TestInterviewStatus(t *testing.T) {
	rec := get(t, newTestRouter(stubRepo{rows: sampleRows()}), "/reports/interview-status?month=2026-01")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.InterviewStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Consultants, 1)
	require.Len(t, resp.Consultants[0].BeforeInterview, 1)
	assert.Equal(t, "田中", resp.Consultants[0].BeforeInterview[0].Name)
}

func TestMonths(t *testing.T) {
	rec := get(t, newTestRouter(stubRepo{months: []string{"2026_01", "2025_12"}}), "/reports/months")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"months":["2026_01","2025_12"]}`, rec.Body.String())
}
