package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"recruit_portal_backend/internal/funnel"
	importsservice "recruit_portal_backend/internal/imports/service"
)

func sampleResult() importsservice.Result {
	funnels := []funnel.ConsultantFunnel{
		funnel.WithRates(funnel.ConsultantFunnel{Consultant: "佐藤", Assigned: 4, FirstContact: 2, Interview: 1}),
	}
	return importsservice.Result{
		Month:      "2026_01",
		Source:     "merge.xlsx",
		Rows:       4,
		OtherMonth: 3,
		Stored:     4,
		ArchiveKey: "imports/2026_01/merge_ab12cd34.xlsx",
		Queued:     true,
		Funnel: funnel.Result{
			Funnels: funnels,
			Totals:  funnel.Summarize(funnels),
			Diagnostics: funnel.Diagnostics{
				Unmapped: map[string]int{"保留中": 2, "other": 1},
			},
		},
	}
}

func fieldsOf(out, prefix string) []string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.Fields(line)
		}
	}
	return nil
}

func TestWriteResultTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResult(&buf, sampleResult(), false); err != nil {
		t.Fatalf("writeResult: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"2026_01", "merge.xlsx", "other months 3", "imports/2026_01/merge_ab12cd34.xlsx", "queued"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	got := fieldsOf(out, "佐藤")
	want := []string{"佐藤", "4", "2", "1", "0", "50.0%", "50.0%", "0.0%"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("consultant row = %v, want %v", got, want)
	}
	if got := fieldsOf(out, "TOTAL"); len(got) != 8 || got[1] != "4" {
		t.Errorf("total row = %v", got)
	}

	// Unmapped statuses are listed in a stable order.
	unmapped := out[strings.Index(out, "UNMAPPED STATUS"):]
	if strings.Index(unmapped, "other") > strings.Index(unmapped, "保留中") {
		t.Errorf("unmapped statuses not sorted:\n%s", out)
	}
}

func TestWriteResultDryRun(t *testing.T) {
	res := sampleResult()
	res.DryRun = true
	res.Stored = 0

	var buf bytes.Buffer
	if err := writeResult(&buf, res, false); err != nil {
		t.Fatalf("writeResult: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "dry run") {
		t.Errorf("dry run not reported:\n%s", out)
	}
	if strings.Contains(out, "stored") || strings.Contains(out, "refresh") {
		t.Errorf("dry run should not report writes:\n%s", out)
	}
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResult(&buf, sampleResult(), true); err != nil {
		t.Fatalf("writeResult: %v", err)
	}

	var decoded struct {
		Month  string `json:"month"`
		Queued bool   `json:"queued"`
		Funnel struct {
			Funnels []funnel.ConsultantFunnel `json:"funnels"`
		} `json:"funnel"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Month != "2026_01" || !decoded.Queued {
		t.Errorf("decoded = %+v", decoded)
	}
	if len(decoded.Funnel.Funnels) != 1 || decoded.Funnel.Funnels[0].Assigned != 4 {
		t.Errorf("funnels = %+v", decoded.Funnel.Funnels)
	}
}
