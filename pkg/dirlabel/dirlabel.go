// Package dirlabel assigns labels from directory rules declared in
// .github/directory-labeler.yml.
package dirlabel

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/prinsights/prinsights/pkg/config"
	"github.com/prinsights/prinsights/pkg/labeling"
	"github.com/prinsights/prinsights/pkg/pattern"
)

// DefaultPath is the conventional location of the rules file.
const DefaultPath = ".github/directory-labeler.yml"

var (
	defaultExclusive = []string{"size", "area", "type"}
	defaultAdditive  = []string{"scope", "meta"}
)

// Rule maps a set of paths to a label.
type Rule struct {
	Label    string   `yaml:"label" validate:"required"`
	Include  []string `yaml:"include" validate:"required,min=1,dive,glob"`
	Exclude  []string `yaml:"exclude" validate:"omitempty,dive,glob"`
	Priority int      `yaml:"priority"`
}

// Namespaces lists which label namespaces hold a single label (exclusive)
// and which accumulate (additive).
type Namespaces struct {
	Exclusive []string `yaml:"exclusive"`
	Additive  []string `yaml:"additive"`
}

// Config is the directory labeler rules file.
type Config struct {
	Version    int         `yaml:"version"`
	Rules      []Rule      `yaml:"rules" validate:"dive"`
	Namespaces *Namespaces `yaml:"namespaces"`
}

// Options tune Decide.
type Options struct {
	MaxLabels          int // 0 means unlimited
	UseDefaultExcludes bool
}

// Load reads and validates a rules file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory labeler config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a rules document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, config.NewParseError(string(data), fmt.Sprintf("invalid YAML: %v", err))
	}
	if err := config.ValidateStruct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) exclusive() []string {
	if c.Namespaces == nil || c.Namespaces.Exclusive == nil {
		return defaultExclusive
	}
	return c.Namespaces.Exclusive
}

func (c *Config) additive() []string {
	if c.Namespaces == nil || c.Namespaces.Additive == nil {
		return defaultAdditive
	}
	return c.Namespaces.Additive
}

// Policies returns the namespace policies implied by the rules file, keyed
// the same way as labeling.Config.NamespacePolicies.
func (c *Config) Policies() map[string]labeling.Policy {
	out := make(map[string]labeling.Policy)
	for _, ns := range c.additive() {
		out[ns+"/*"] = labeling.PolicyAdditive
	}
	for _, ns := range c.exclusive() {
		out[ns+"/*"] = labeling.PolicyReplace
	}
	return out
}

type candidate struct {
	rule    Rule
	index   int
	matched []string
	longest int
}

// Decide matches files against the rules. Within an exclusive namespace only
// the best rule survives: highest priority, then the longest matching
// pattern, then declaration order. Results are ordered by priority and
// capped at opts.MaxLabels.
func Decide(files []string, cfg *Config, opts Options) []labeling.Decision {
	if cfg == nil || len(cfg.Rules) == 0 {
		return nil
	}

	ex := pattern.NewExcluder(opts.UseDefaultExcludes)
	var kept []string
	for _, f := range files {
		if !ex.Excluded(f) {
			kept = append(kept, f)
		}
	}

	byLabel := make(map[string]*candidate)
	var cands []*candidate
	for i, r := range cfg.Rules {
		var matched []string
		longest := 0
		for _, f := range kept {
			if pattern.MatchAny(r.Exclude, f) {
				continue
			}
			hit := false
			for _, p := range r.Include {
				if pattern.Match(p, f) {
					hit = true
					if len(p) > longest {
						longest = len(p)
					}
				}
			}
			if hit {
				matched = append(matched, f)
			}
		}
		if len(matched) == 0 {
			continue
		}
		if prev, ok := byLabel[r.Label]; ok {
			prev.matched = appendUnique(prev.matched, matched)
			if better(&candidate{rule: r, index: i, longest: longest}, prev) {
				prev.rule.Priority, prev.longest = r.Priority, longest
			}
			continue
		}
		c := &candidate{rule: r, index: i, matched: matched, longest: longest}
		byLabel[r.Label] = c
		cands = append(cands, c)
	}

	exclusive := make(map[string]bool)
	for _, ns := range cfg.exclusive() {
		exclusive[ns] = true
	}
	winners := make(map[string]*candidate)
	var selected []*candidate
	for _, c := range cands {
		ns := labeling.Namespace(c.rule.Label)
		if ns == "" || !exclusive[ns] {
			selected = append(selected, c)
			continue
		}
		if cur, ok := winners[ns]; !ok || better(c, cur) {
			winners[ns] = c
		}
	}
	for _, c := range winners {
		selected = append(selected, c)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].rule.Priority != selected[j].rule.Priority {
			return selected[i].rule.Priority > selected[j].rule.Priority
		}
		return selected[i].index < selected[j].index
	})
	if opts.MaxLabels > 0 && len(selected) > opts.MaxLabels {
		selected = selected[:opts.MaxLabels]
	}

	out := make([]labeling.Decision, 0, len(selected))
	for _, c := range selected {
		out = append(out, labeling.Decision{
			Label:        c.rule.Label,
			Reason:       labeling.Reason{Code: labeling.ReasonDirectory, Params: map[string]any{"label": c.rule.Label}},
			Category:     labeling.CategoryDirectory,
			MatchedFiles: c.matched,
		})
	}
	return out
}

func better(a, b *candidate) bool {
	if a.rule.Priority != b.rule.Priority {
		return a.rule.Priority > b.rule.Priority
	}
	if a.longest != b.longest {
		return a.longest > b.longest
	}
	return a.index < b.index
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}

// Classifier runs the directory rules as part of the label engine. It
// reads the unfiltered changed-file list.
type Classifier struct {
	Config  *Config
	Options Options
}

func (c *Classifier) Key() string { return "directory" }

func (c *Classifier) Classify(in labeling.Input) []labeling.Decision {
	return Decide(in.Metrics.AllFiles, c.Config, c.Options)
}
