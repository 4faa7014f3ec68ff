package report

import (
	"fmt"
	"strings"

	"github.com/matzehuels/spritestyle/pkg/qa"
)

// Row statuses.
const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// Row is one check of a QA report.
type Row struct {
	Check  string
	Status string
	Detail string
	Issues []string
}

// Summary returns one row per check, in the order the validator runs them.
func Summary(r *qa.Report) []Row {
	d := r.Details
	rows := []Row{
		row("proportions", proportionDetail(d.Proportions), d.Proportions.Issues),
		row("colors", colorDetail(d.ColorCount), d.ColorCount.Issues),
		row("outline", fmt.Sprintf("%s x%d, top %.0f%%, bottom %.0f%%",
			d.Outline.Color.Hex(), d.Outline.Thickness,
			d.Outline.TopCoverage*100, d.Outline.BottomCoverage*100), d.Outline.Issues),
		row("shading", shadingDetail(d.Shading), d.Shading.Issues),
		row("clipping", fmt.Sprintf("center (%d,%d) opaque=%t",
			d.Clipping.Center.X, d.Clipping.Center.Y, d.Clipping.Opaque), d.Clipping.Issues),
	}
	return rows
}

func row(check, detail string, issues []string) Row {
	status := StatusOK
	if len(issues) > 0 {
		status = StatusFail
	}
	return Row{Check: check, Status: status, Detail: detail, Issues: issues}
}

func proportionDetail(p qa.ProportionDetail) string {
	if p.Expected == 0 {
		return fmt.Sprintf("span %d", p.Span)
	}
	return fmt.Sprintf("span %d of %d", p.Span, p.Expected)
}

func colorDetail(c qa.ColorDetail) string {
	return fmt.Sprintf("%d of %d", c.Count, c.Max)
}

func shadingDetail(s qa.ShadingDetail) string {
	if s.Sample.Empty() && len(s.Issues) == 0 {
		return "skipped"
	}
	want := fmt.Sprintf("%d-%d", s.Min, s.Max)
	if s.Max == 0 {
		want = fmt.Sprintf("%d+", s.Min)
	}
	return fmt.Sprintf("%s: %d levels (want %s)", s.Method, s.Levels, want)
}

// Failed returns the checks that reported issues.
func Failed(rows []Row) []string {
	var out []string
	for _, r := range rows {
		if r.Status == StatusFail {
			out = append(out, r.Check)
		}
	}
	return out
}

// Text renders rows as aligned plain text, one check per line, followed by
// indented issues.
func Text(rows []Row) string {
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%-12s %-4s  %s\n", r.Check, r.Status, r.Detail)
		for _, issue := range r.Issues {
			fmt.Fprintf(&b, "    - %s\n", issue)
		}
	}
	return b.String()
}
