package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/prinsights/prinsights/pkg/labeling"
)

// TerminalRenderer renders a Report for the terminal. Color follows the
// writer's capabilities and is disabled by NO_COLOR.
type TerminalRenderer struct {
	Translator labeling.Translator
}

type termStyles struct {
	title, label, dim, warn, crit, ok lipgloss.Style
}

func newTermStyles(w io.Writer) termStyles {
	if noColor() {
		plain := lipgloss.NewStyle()
		return termStyles{title: plain, label: plain, dim: plain, warn: plain, crit: plain, ok: plain}
	}
	r := lipgloss.NewRenderer(w)
	return termStyles{
		title: r.NewStyle().Bold(true),
		label: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		dim:   r.NewStyle().Faint(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("11")),
		crit:  r.NewStyle().Foreground(lipgloss.Color("9")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func (r *TerminalRenderer) Render(w io.Writer, report *Report) error {
	tr := translator(r.Translator)
	t := func(key string) string { return tr.T(key, nil) }
	st := newTermStyles(w)

	title := report.Title
	if title == "" {
		title = t("summary.title")
	}
	if report.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(w, "%s\n\n", st.title.Render(title))

	labels := report.Decisions.LabelsToAdd
	if report.Applied != nil {
		labels = report.Applied
	}
	if len(labels) == 0 {
		fmt.Fprintln(w, t("labels.noLabels"))
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s:\n", t("labels.applied"))
		reasons := make(map[string]labeling.LabelReasoning, len(report.Decisions.Reasoning))
		for _, lr := range report.Decisions.Reasoning {
			reasons[lr.Label] = lr
		}
		for _, l := range labels {
			fmt.Fprintf(w, "  %s", st.label.Render(l))
			if lr, ok := reasons[l]; ok {
				fmt.Fprintf(w, " %s", lr.Reason)
				for i, f := range lr.MatchedFiles {
					if i == 3 {
						fmt.Fprintf(w, "\n      %s", st.dim.Render(fmt.Sprintf("... and %d more", len(lr.MatchedFiles)-3)))
						break
					}
					fmt.Fprintf(w, "\n      %s", st.dim.Render(f))
				}
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	if len(report.Decisions.LabelsToRemove) > 0 {
		fmt.Fprintf(w, "Replaces: %s\n\n", strings.Join(report.Decisions.LabelsToRemove, ", "))
	}

	if a := report.Analysis; a != nil {
		v := a.Violations
		if v.Any() {
			fmt.Fprintln(w, "Violations:")
			for _, d := range v.LargeFiles {
				fmt.Fprintf(w, "  %s %s %s > %s\n", st.crit.Render("●"), d.File,
					humanize.IBytes(uint64(d.ActualValue)), humanize.IBytes(uint64(d.Limit)))
			}
			for _, d := range v.ExceedsFileLines {
				fmt.Fprintf(w, "  %s %s %d lines > %d\n", st.warn.Render("●"), d.File, d.ActualValue, d.Limit)
			}
			if v.ExceedsAdditions {
				fmt.Fprintf(w, "  %s %s\n", st.warn.Render("●"), tr.T(labeling.ReasonExcessiveChanges, nil))
			}
			if v.ExceedsFileCount {
				fmt.Fprintf(w, "  %s %s\n", st.warn.Render("●"), tr.T(labeling.ReasonTooManyFiles, nil))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, st.dim.Render(tr.T("analysis.footer", map[string]any{
			"analyzed": len(a.Metrics.Files),
			"total":    a.Stats.TotalFiles,
			"excluded": len(a.Stats.FilesExcluded),
			"binary":   len(a.Stats.FilesSkippedBinary),
			"errors":   len(a.Stats.FilesWithErrors),
		})))
	}

	for _, f := range report.Failures {
		fmt.Fprintf(w, "%s %s\n", st.crit.Render("✗"), f)
	}
	if len(report.Failures) == 0 && report.Analysis != nil && !report.HasViolations() {
		fmt.Fprintln(w, st.ok.Render("✓ within limits"))
	}
	return nil
}
