// Package labeling implements the pull request label decision engine.
// It maps PR metrics, configuration, and precomputed violations to an ordered,
// explainable set of label additions and namespace removals.
package labeling

// FileMetric describes one analyzed (post-exclusion) file.
type FileMetric struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Lines     int    `json:"lines"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// FileComplexity is a precomputed complexity score for one file.
type FileComplexity struct {
	Path       string  `json:"path"`
	Complexity float64 `json:"complexity"`
}

// ComplexityMetrics is consumed as-is; the engine never computes complexity.
type ComplexityMetrics struct {
	MaxComplexity float64          `json:"maxComplexity"`
	Files         []FileComplexity `json:"files"`
}

// PRMetrics is the immutable input produced by file analysis.
type PRMetrics struct {
	TotalAdditions int                `json:"totalAdditions"`
	Files          []FileMetric       `json:"files"`
	AllFiles       []string           `json:"allFiles"` // every changed path, before exclusion
	Complexity     *ComplexityMetrics `json:"complexity,omitempty"`
}

// Paths returns the analyzed file paths in order.
func (m PRMetrics) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Severity indicates how serious a violation is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// ViolationDetail records one file breaching a limit.
type ViolationDetail struct {
	File        string   `json:"file"`
	ActualValue int64    `json:"actualValue"`
	Limit       int64    `json:"limit"`
	Severity    Severity `json:"severity"`
}

// Violations are rule breaches detected during file analysis.
type Violations struct {
	LargeFiles       []ViolationDetail `json:"largeFiles"`
	ExceedsFileLines []ViolationDetail `json:"exceedsFileLines"`
	ExceedsAdditions bool              `json:"exceedsAdditions"`
	ExceedsFileCount bool              `json:"exceedsFileCount"`
}

// Any reports whether at least one violation is present.
func (v Violations) Any() bool {
	return len(v.LargeFiles) > 0 || len(v.ExceedsFileLines) > 0 || v.ExceedsAdditions || v.ExceedsFileCount
}

// CheckState is the outcome of a single CI check.
type CheckState string

const (
	CheckPassed  CheckState = "passed"
	CheckFailed  CheckState = "failed"
	CheckPending CheckState = "pending"
	CheckUnknown CheckState = "unknown"
)

// CheckStatus is one named CI check.
type CheckStatus struct {
	Name  string     `json:"name"`
	State CheckState `json:"state"`
}

// CIStatus is the per-check pass/fail record for the PR head.
type CIStatus struct {
	Checks []CheckStatus `json:"checks"`
}

// AnyFailed reports whether any check failed.
func (s *CIStatus) AnyFailed() bool {
	if s == nil {
		return false
	}
	for _, c := range s.Checks {
		if c.State == CheckFailed {
			return true
		}
	}
	return false
}

// AllPassed reports whether every check passed.
func (s *CIStatus) AllPassed() bool {
	if s == nil {
		return false
	}
	for _, c := range s.Checks {
		if c.State != CheckPassed {
			return false
		}
	}
	return true
}

// PRContext is optional enrichment for risk evaluation.
type PRContext struct {
	CIStatus       *CIStatus `json:"ciStatus,omitempty"`
	CommitMessages []string  `json:"commitMessages,omitempty"`
}

// ReasonCategory tags which classifier produced a label.
type ReasonCategory string

const (
	CategorySize       ReasonCategory = "size"
	CategoryComplexity ReasonCategory = "complexity"
	CategoryCategory   ReasonCategory = "category"
	CategoryRisk       ReasonCategory = "risk"
	CategoryViolation  ReasonCategory = "violation"
	CategoryDirectory  ReasonCategory = "directory"
)

// LabelReasoning explains why a label was chosen.
type LabelReasoning struct {
	Label        string         `json:"label"`
	Reason       string         `json:"reason"`
	Code         string         `json:"code,omitempty"`
	Category     ReasonCategory `json:"category"`
	MatchedFiles []string       `json:"matchedFiles"`
}

// LabelDecisions is the engine output.
// LabelsToRemove holds namespace patterns, not concrete labels; they are
// resolved against the PR's live labels by the applicator.
type LabelDecisions struct {
	LabelsToAdd    []string         `json:"labelsToAdd"`
	LabelsToRemove []string         `json:"labelsToRemove"`
	Reasoning      []LabelReasoning `json:"reasoning"`
}
