// Package surface renders labeling results for people: the job summary and
// PR comment (Markdown), a terminal view, JSON, and GitHub Check Run data.
package surface

import (
	"io"

	"github.com/prinsights/prinsights/pkg/analysis"
	"github.com/prinsights/prinsights/pkg/i18n"
	"github.com/prinsights/prinsights/pkg/labeling"
)

// Report is everything a renderer may show about one labeling run.
type Report struct {
	Title     string                  `json:"title,omitempty"`
	Repo      string                  `json:"repo,omitempty"`
	PR        int                     `json:"pr,omitempty"`
	RunID     string                  `json:"runId,omitempty"`
	DryRun    bool                    `json:"dryRun,omitempty"`
	Decisions labeling.LabelDecisions `json:"decisions"`
	// Applied lists labels actually present after the run. Nil hides the
	// applied-labels section.
	Applied  []string         `json:"applied,omitempty"`
	Removed  []string         `json:"removed,omitempty"`
	Analysis *analysis.Result `json:"analysis,omitempty"`
	Failures []string         `json:"failures,omitempty"`
}

// HasViolations reports whether the analysis recorded any violation.
func (r *Report) HasViolations() bool {
	return r.Analysis != nil && r.Analysis.Violations.Any()
}

// Renderer produces formatted output from a Report.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, report *Report) error
}

// CheckRunData holds the data needed to create a GitHub Check Run.
type CheckRunData struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`    // Markdown body
	Conclusion string `json:"conclusion"` // success, neutral, failure
}

func translator(tr labeling.Translator) labeling.Translator {
	if tr == nil {
		return i18n.New("en")
	}
	return tr
}
