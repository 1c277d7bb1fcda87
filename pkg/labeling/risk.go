package labeling

import (
	"regexp"
	"strings"

	"github.com/prinsights/prinsights/pkg/pattern"
)

// ChangeType is the conventional-commit kind inferred from commit subjects.
type ChangeType string

const (
	ChangeRefactor ChangeType = "refactor"
	ChangeFix      ChangeType = "fix"
	ChangeFeature  ChangeType = "feature"
	ChangeDocs     ChangeType = "docs"
	ChangeTest     ChangeType = "test"
	ChangeStyle    ChangeType = "style"
	ChangeChore    ChangeType = "chore"
	ChangeUnknown  ChangeType = "unknown"
)

var changePrefixes = []struct {
	prefix string
	kind   ChangeType
}{
	{"refactor", ChangeRefactor},
	{"fix", ChangeFix},
	{"feat", ChangeFeature},
	{"docs", ChangeDocs},
	{"test", ChangeTest},
	{"style", ChangeStyle},
	{"chore", ChangeChore},
}

var testFileRe = regexp.MustCompile(`(?i)\.(test|spec)\.(ts|tsx|js|jsx)$`)

// DetectChangeType scans subjects in order; the first conventional prefix wins.
func DetectChangeType(messages []string) ChangeType {
	for _, msg := range messages {
		lower := strings.TrimSpace(strings.ToLower(msg))
		for _, p := range changePrefixes {
			if strings.HasPrefix(lower, p.prefix+":") || strings.HasPrefix(lower, p.prefix+"(") {
				return p.kind
			}
		}
	}
	return ChangeUnknown
}

// RiskFactors are the path-derived risk signals.
type RiskFactors struct {
	HasTestFiles     bool
	HasCoreChanges   bool
	HasConfigChanges bool
}

// AnalyzeRiskFactors derives risk signals from changed paths.
func AnalyzeRiskFactors(files []string, cfg RiskConfig) RiskFactors {
	var rf RiskFactors
	for _, f := range files {
		if strings.Contains(f, "__tests__/") || strings.Contains(f, "tests/") || testFileRe.MatchString(f) {
			rf.HasTestFiles = true
		}
		if pattern.MatchAny(cfg.CorePaths, f) {
			rf.HasCoreChanges = true
		}
		if pattern.MatchAny(cfg.ConfigFiles, f) {
			rf.HasConfigChanges = true
		}
	}
	return rf
}

// RiskEvaluation pairs a risk label (empty for none) with its justification.
type RiskEvaluation struct {
	Label  string
	Reason Reason
}

// EvaluateRisk applies the risk decision order. The first applicable rule wins.
func EvaluateRisk(files []string, cfg RiskConfig, prCtx *PRContext) RiskEvaluation {
	rf := AnalyzeRiskFactors(files, cfg)

	if cfg.UseCIStatus && prCtx != nil && prCtx.CIStatus != nil {
		ci := prCtx.CIStatus
		if ci.AnyFailed() {
			return RiskEvaluation{Label: RiskHigh, Reason: Reason{Code: ReasonRiskCIFailed}}
		}

		changeType := DetectChangeType(prCtx.CommitMessages)
		if changeType == ChangeRefactor && ci.AllPassed() {
			return RiskEvaluation{Reason: Reason{Code: ReasonRiskRefactoringSafe}}
		}
		if changeType == ChangeFeature && !rf.HasTestFiles && rf.HasCoreChanges && cfg.HighIfNoTestsForCore {
			return RiskEvaluation{Label: RiskHigh, Reason: Reason{Code: ReasonRiskFeatureNoTests}}
		}
	}

	if !rf.HasTestFiles && rf.HasCoreChanges && cfg.HighIfNoTestsForCore {
		return RiskEvaluation{Label: RiskHigh, Reason: Reason{Code: ReasonRiskCoreNoTests}}
	}
	if rf.HasConfigChanges {
		return RiskEvaluation{Label: RiskMedium, Reason: Reason{Code: ReasonRiskConfigChanged}}
	}
	return RiskEvaluation{}
}

// RiskLabel returns the risk label for the inputs, or "" for none.
func RiskLabel(files []string, cfg RiskConfig, prCtx *PRContext) string {
	return EvaluateRisk(files, cfg, prCtx).Label
}

// RiskReason re-evaluates the inputs and returns the justification for label.
// A label that disagrees with the fresh evaluation yields UnknownRiskReason.
func RiskReason(files []string, cfg RiskConfig, label string, prCtx *PRContext) Reason {
	ev := EvaluateRisk(files, cfg, prCtx)
	if ev.Label == label {
		return ev.Reason
	}
	return Reason{Text: UnknownRiskReason}
}

// RiskAffectedFiles lists core-path matches then config-file matches,
// without duplicates.
func RiskAffectedFiles(files []string, cfg RiskConfig) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{cfg.CorePaths, cfg.ConfigFiles} {
		for _, f := range pattern.Filter(group, files) {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// RiskClassifier blends path heuristics, CI status, and commit conventions.
type RiskClassifier struct{}

func (c *RiskClassifier) Key() string { return "risk" }

func (c *RiskClassifier) Classify(in Input) []Decision {
	if !in.Config.Risk.Enabled {
		return nil
	}
	files := in.Metrics.Paths()
	label := RiskLabel(files, in.Config.Risk, in.Context)
	if label == "" {
		return nil
	}
	return []Decision{{
		Label:        label,
		Reason:       RiskReason(files, in.Config.Risk, label, in.Context),
		Category:     CategoryRisk,
		MatchedFiles: RiskAffectedFiles(files, in.Config.Risk),
	}}
}
