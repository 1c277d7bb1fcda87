package labeling

import "strings"

// ComplexityLabel maps a complexity score to a label. Low complexity is
// deliberately unlabeled and reported as ok=false.
func ComplexityLabel(complexity float64, th ComplexityThresholds) (label string, ok bool) {
	if complexity >= float64(th.High) {
		return ComplexityHigh, true
	}
	if complexity >= float64(th.Medium) {
		return ComplexityMedium, true
	}
	return "", false
}

// ComplexityClassifier labels PRs that carry a precomputed complexity score.
type ComplexityClassifier struct{}

func (c *ComplexityClassifier) Key() string { return "complexity" }

func (c *ComplexityClassifier) Classify(in Input) []Decision {
	cm := in.Metrics.Complexity
	if cm == nil || !in.Config.Complexity.Enabled {
		return nil
	}
	th := in.Config.Complexity.Thresholds
	label, ok := ComplexityLabel(cm.MaxComplexity, th)
	if !ok {
		return nil
	}

	var matched []string
	for _, f := range cm.Files {
		if f.Complexity >= float64(th.Medium) {
			matched = append(matched, f.Path)
		}
	}
	level := label[strings.Index(label, "/")+1:]

	return []Decision{{
		Label: label,
		Reason: Reason{
			Code:   ReasonComplexity,
			Params: map[string]any{"maxComplexity": cm.MaxComplexity, "level": level},
		},
		Category:     CategoryComplexity,
		MatchedFiles: matched,
	}}
}
