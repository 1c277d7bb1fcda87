package labeling

// SizeLabel maps an addition count to the smallest bucket whose threshold is
// not exceeded. Reaching the xlarge threshold yields xxlarge.
func SizeLabel(additions int, th SizeThresholds) string {
	switch {
	case additions <= th.Small:
		return SizeSmall
	case additions <= th.Medium:
		return SizeMedium
	case additions <= th.Large:
		return SizeLarge
	case additions < th.XLarge:
		return SizeXLarge
	default:
		return SizeXXLarge
	}
}

// SizeIndex returns the ordinal of a size label, or -1 if it is not one.
func SizeIndex(label string) int {
	for i, l := range SizeLabels {
		if l == label {
			return i
		}
	}
	return -1
}

// SizeClassifier emits exactly one size label when enabled.
type SizeClassifier struct{}

func (c *SizeClassifier) Key() string { return "size" }

func (c *SizeClassifier) Classify(in Input) []Decision {
	if !in.Config.Size.Enabled {
		return nil
	}
	label := SizeLabel(in.Metrics.TotalAdditions, in.Config.Size.Thresholds)
	return []Decision{{
		Label: label,
		Reason: Reason{
			Code:   ReasonSize,
			Params: map[string]any{"additions": in.Metrics.TotalAdditions, "label": label},
		},
		Category:     CategorySize,
		MatchedFiles: in.Metrics.Paths(),
	}}
}
