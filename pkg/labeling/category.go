package labeling

import "github.com/prinsights/prinsights/pkg/pattern"

// CategoryMatch is a matched category rule with its evidence files.
type CategoryMatch struct {
	Label        string
	MatchedFiles []string
}

// MatchCategories evaluates every rule in declaration order. A file matches a
// rule when it matches any pattern and none of the rule's excludes. Rules are
// non-exclusive: one file may satisfy several of them.
func MatchCategories(files []string, categories []Category) []CategoryMatch {
	var results []CategoryMatch
	for _, cat := range categories {
		var matched []string
		for _, f := range files {
			if !pattern.MatchAny(cat.Patterns, f) {
				continue
			}
			if len(cat.Exclude) > 0 && pattern.MatchAny(cat.Exclude, f) {
				continue
			}
			matched = append(matched, f)
		}
		if len(matched) > 0 {
			results = append(results, CategoryMatch{Label: cat.Label, MatchedFiles: matched})
		}
	}
	return results
}

// CategoryClassifier labels PRs by path category. It reads the full changed
// file list so that default exclusions do not hide categories such as specs
// or lock-file dependency bumps.
type CategoryClassifier struct{}

func (c *CategoryClassifier) Key() string { return "category" }

func (c *CategoryClassifier) Classify(in Input) []Decision {
	if !in.Config.CategoryEnabled {
		return nil
	}
	var out []Decision
	for _, m := range MatchCategories(in.Metrics.AllFiles, in.Config.Categories) {
		out = append(out, Decision{
			Label:        m.Label,
			Reason:       Reason{Code: ReasonCategoryMatch, Params: map[string]any{"label": m.Label}},
			Category:     CategoryCategory,
			MatchedFiles: m.MatchedFiles,
		})
	}
	return out
}
