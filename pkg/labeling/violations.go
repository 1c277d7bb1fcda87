package labeling

// ViolationDecisions maps violations to their fixed labels in a fixed order:
// large files, too many lines, excessive changes, too many files.
func ViolationDecisions(v Violations) []Decision {
	var out []Decision
	if len(v.LargeFiles) > 0 {
		out = append(out, Decision{
			Label:        LabelLargeFiles,
			Reason:       Reason{Code: ReasonLargeFiles, Params: map[string]any{"count": len(v.LargeFiles)}},
			Category:     CategoryViolation,
			MatchedFiles: violationFiles(v.LargeFiles),
		})
	}
	if len(v.ExceedsFileLines) > 0 {
		out = append(out, Decision{
			Label:        LabelTooManyLines,
			Reason:       Reason{Code: ReasonTooManyLines, Params: map[string]any{"count": len(v.ExceedsFileLines)}},
			Category:     CategoryViolation,
			MatchedFiles: violationFiles(v.ExceedsFileLines),
		})
	}
	if v.ExceedsAdditions {
		out = append(out, Decision{
			Label:        LabelExcessiveChanges,
			Reason:       Reason{Code: ReasonExcessiveChanges},
			Category:     CategoryViolation,
			MatchedFiles: []string{},
		})
	}
	if v.ExceedsFileCount {
		out = append(out, Decision{
			Label:        LabelTooManyFiles,
			Reason:       Reason{Code: ReasonTooManyFiles},
			Category:     CategoryViolation,
			MatchedFiles: []string{},
		})
	}
	return out
}

func violationFiles(details []ViolationDetail) []string {
	files := make([]string, 0, len(details))
	for _, d := range details {
		files = append(files, d.File)
	}
	return files
}

// ViolationClassifier always runs; it has no enabled flag.
type ViolationClassifier struct{}

func (c *ViolationClassifier) Key() string { return "violation" }

func (c *ViolationClassifier) Classify(in Input) []Decision {
	return ViolationDecisions(in.Violations)
}
