package surface

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/prinsights/prinsights/pkg/labeling"
)

// CheckRunRenderer produces GitHub Check Run data from a Report.
type CheckRunRenderer struct {
	Translator labeling.Translator
}

func (r *CheckRunRenderer) Render(w io.Writer, report *Report) error {
	data := r.BuildCheckRunData(report)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// BuildCheckRunData creates the CheckRunData struct from a Report. Failure
// conditions fail the check; violations alone make it neutral.
func (r *CheckRunRenderer) BuildCheckRunData(report *Report) CheckRunData {
	md := &MarkdownRenderer{Translator: r.Translator}

	conclusion := "success"
	switch {
	case len(report.Failures) > 0:
		conclusion = "failure"
	case report.HasViolations():
		conclusion = "neutral"
	}

	labels := report.Decisions.LabelsToAdd
	if report.Applied != nil {
		labels = report.Applied
	}
	title := fmt.Sprintf("%d label(s) applied", len(labels))
	if len(report.Failures) > 0 {
		title = report.Failures[0]
	}

	return CheckRunData{
		Title:      title,
		Summary:    md.Markdown(report),
		Conclusion: conclusion,
	}
}
