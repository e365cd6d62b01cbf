package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"recruit_portal_backend/internal/funnel"
	"recruit_portal_backend/internal/reports/transport"
)

// utf8BOM makes spreadsheet apps read consultant names as UTF-8.
const utf8BOM = "\ufeff"

var funnelCSVHeaders = []string{
	"consultant",
	"assigned",
	"first_contact",
	"interview",
	"closed",
	"first_contact_rate",
	"interview_rate",
	"closed_rate",
}

func funnelCSVRow(name string, assigned, firstContact, interview, closed int, rates funnel.Rates) []string {
	return []string{
		name,
		strconv.Itoa(assigned),
		strconv.Itoa(firstContact),
		strconv.Itoa(interview),
		strconv.Itoa(closed),
		formatRate(rates.FirstContact),
		formatRate(rates.Interview),
		formatRate(rates.Closed),
	}
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 4, 64)
}

func writeFunnelCSV(c *gin.Context, resp transport.FunnelResponse) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=funnel-%s.csv", resp.Month))

	if _, err := c.Writer.WriteString(utf8BOM); err != nil {
		return
	}
	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(funnelCSVHeaders); err != nil {
		return
	}
	for _, f := range resp.Consultants {
		rates := funnel.Rates{FirstContact: f.FirstContactRate, Interview: f.InterviewRate, Closed: f.ClosedRate}
		if err := writer.Write(funnelCSVRow(f.Consultant, f.Assigned, f.FirstContact, f.Interview, f.Closed, rates)); err != nil {
			return
		}
	}
	t := resp.Totals
	if err := writer.Write(funnelCSVRow("total", t.Assigned, t.FirstContact, t.Interview, t.Closed, resp.TotalRates)); err != nil {
		return
	}
	writer.Flush()
}
