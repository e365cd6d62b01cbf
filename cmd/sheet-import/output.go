package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	importsservice "recruit_portal_backend/internal/imports/service"
)

func writeResult(w io.Writer, res importsservice.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "month\t%s\n", res.Month)
	fmt.Fprintf(tw, "source\t%s\n", res.Source)
	fmt.Fprintf(tw, "rows\t%d (other months %d, blank %d)\n", res.Rows, res.OtherMonth, res.Blank)
	if res.DryRun {
		fmt.Fprintf(tw, "mode\tdry run, nothing written\n")
	} else {
		fmt.Fprintf(tw, "stored\t%d\n", res.Stored)
		if res.ArchiveKey != "" {
			fmt.Fprintf(tw, "archive\t%s\n", res.ArchiveKey)
		}
		fmt.Fprintf(tw, "refresh\t%s\n", queuedLabel(res.Queued))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "CONSULTANT\tASSIGNED\tFIRST CONTACT\tINTERVIEW\tCLOSED\tFC RATE\tIV RATE\tCL RATE")
	for _, f := range res.Funnel.Funnels {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			f.Consultant, f.Assigned, f.FirstContact, f.Interview, f.Closed,
			percent(f.FirstContactRate), percent(f.InterviewRate), percent(f.ClosedRate))
	}
	t := res.Funnel.Totals
	r := t.Rates()
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
		t.Assigned, t.FirstContact, t.Interview, t.Closed,
		percent(r.FirstContact), percent(r.Interview), percent(r.Closed))

	d := res.Funnel.Diagnostics
	if len(d.Unmapped) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "UNMAPPED STATUS\tROWS")
		for _, status := range slices.Sorted(maps.Keys(d.Unmapped)) {
			fmt.Fprintf(tw, "%s\t%d\n", status, d.Unmapped[status])
		}
	}
	for _, c := range d.Clamped {
		fmt.Fprintf(tw, "\nfirst contact capped for %s: %d -> %d\n", c.Consultant, c.Raw, c.Reported)
	}

	return tw.Flush()
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func queuedLabel(queued bool) string {
	if queued {
		return "queued"
	}
	return "not queued"
}
