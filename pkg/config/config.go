// Package config loads and validates the repository labeler configuration
// (.github/pr-labeler.yml).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/prinsights/prinsights/pkg/labeling"
)

// DefaultLabelColor is used when creating labels that do not exist yet.
const DefaultLabelColor = "cccccc"

// ConfigPaths are probed, in order, relative to a repository root.
var ConfigPaths = []string{
	filepath.Join(".github", "pr-labeler.yml"),
	filepath.Join(".github", "pr-labeler.yaml"),
}

// Config is the repository-level labeler configuration.
type Config struct {
	Language         string                 `yaml:"language" validate:"omitempty,langcode"`
	Summary          SummaryConfig          `yaml:"summary"`
	Size             SizeConfig             `yaml:"size"`
	Complexity       ComplexityConfig       `yaml:"complexity"`
	CategoryLabeling CategoryLabelingConfig `yaml:"categoryLabeling"`
	Categories       []CategoryConfig       `yaml:"categories" validate:"dive"`
	Risk             RiskConfig             `yaml:"risk"`
	Exclude          ExcludeConfig          `yaml:"exclude"`
	Labels           LabelsConfig           `yaml:"labels"`
	Runtime          RuntimeConfig          `yaml:"runtime"`
}

// SummaryConfig customizes the rendered summary.
type SummaryConfig struct {
	Title string `yaml:"title"`
}

// SizeConfig controls the size classifier.
type SizeConfig struct {
	Enabled    bool           `yaml:"enabled"`
	Thresholds SizeThresholds `yaml:"thresholds"`
}

// SizeThresholds must be strictly ascending.
type SizeThresholds struct {
	Small  int `yaml:"small" validate:"gte=0"`
	Medium int `yaml:"medium" validate:"gte=0,gtfield=Small"`
	Large  int `yaml:"large" validate:"gte=0,gtfield=Medium"`
	XLarge int `yaml:"xlarge" validate:"gte=0,gtfield=Large"`
}

// ComplexityConfig controls the complexity classifier.
type ComplexityConfig struct {
	Enabled    bool                 `yaml:"enabled"`
	Thresholds ComplexityThresholds `yaml:"thresholds"`
}

type ComplexityThresholds struct {
	Medium int `yaml:"medium" validate:"gte=0"`
	High   int `yaml:"high" validate:"gte=0,gtfield=Medium"`
}

type CategoryLabelingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CategoryConfig is one path-based category rule.
type CategoryConfig struct {
	Label       string       `yaml:"label" validate:"required"`
	Patterns    []string     `yaml:"patterns" validate:"required,min=1,dive,glob"`
	Exclude     []string     `yaml:"exclude" validate:"omitempty,dive,glob"`
	DisplayName *DisplayName `yaml:"display_name"`
}

type DisplayName struct {
	En string `yaml:"en" validate:"required"`
	Ja string `yaml:"ja" validate:"required"`
}

// RiskConfig controls the risk evaluator.
type RiskConfig struct {
	Enabled              bool     `yaml:"enabled"`
	HighIfNoTestsForCore bool     `yaml:"high_if_no_tests_for_core"`
	CorePaths            []string `yaml:"core_paths" validate:"omitempty,dive,glob"`
	ConfigFiles          []string `yaml:"config_files" validate:"omitempty,dive,glob"`
	UseCIStatus          bool     `yaml:"use_ci_status"`
}

// ExcludeConfig extends the analysis exclusion list.
type ExcludeConfig struct {
	UseDefaults bool     `yaml:"use_defaults"`
	Additional  []string `yaml:"additional" validate:"omitempty,dive,glob"`
}

// LabelsConfig controls label creation and namespace policies.
type LabelsConfig struct {
	CreateMissing     bool              `yaml:"create_missing"`
	Color             string            `yaml:"color" validate:"omitempty,len=6,hexadecimal"`
	NamespacePolicies map[string]string `yaml:"namespace_policies" validate:"omitempty,dive,keys,required,endkeys,oneof=replace additive"`
}

type RuntimeConfig struct {
	FailFast bool `yaml:"fail_fast"`
	DryRun   bool `yaml:"dry_run"`
}

// knownKeys are the accepted top-level keys, in documentation order.
var knownKeys = []string{
	"language", "summary", "size", "complexity", "categoryLabeling",
	"categories", "risk", "exclude", "labels", "runtime",
}

// DefaultConfig returns a Config populated from the built-in labeler defaults.
func DefaultConfig() *Config {
	def := labeling.DefaultConfig()

	cats := make([]CategoryConfig, 0, len(def.Categories))
	for _, c := range def.Categories {
		cc := CategoryConfig{
			Label:    c.Label,
			Patterns: append([]string(nil), c.Patterns...),
			Exclude:  append([]string(nil), c.Exclude...),
		}
		if c.DisplayName != nil {
			cc.DisplayName = &DisplayName{En: c.DisplayName.En, Ja: c.DisplayName.Ja}
		}
		cats = append(cats, cc)
	}

	policies := make(map[string]string, len(def.NamespacePolicies))
	for k, v := range def.NamespacePolicies {
		policies[k] = string(v)
	}

	return &Config{
		Size: SizeConfig{
			Enabled: def.Size.Enabled,
			Thresholds: SizeThresholds{
				Small:  def.Size.Thresholds.Small,
				Medium: def.Size.Thresholds.Medium,
				Large:  def.Size.Thresholds.Large,
				XLarge: def.Size.Thresholds.XLarge,
			},
		},
		Complexity: ComplexityConfig{
			Enabled: def.Complexity.Enabled,
			Thresholds: ComplexityThresholds{
				Medium: def.Complexity.Thresholds.Medium,
				High:   def.Complexity.Thresholds.High,
			},
		},
		CategoryLabeling: CategoryLabelingConfig{Enabled: def.CategoryEnabled},
		Categories:       cats,
		Risk: RiskConfig{
			Enabled:              def.Risk.Enabled,
			HighIfNoTestsForCore: def.Risk.HighIfNoTestsForCore,
			CorePaths:            append([]string(nil), def.Risk.CorePaths...),
			ConfigFiles:          append([]string(nil), def.Risk.ConfigFiles...),
			UseCIStatus:          def.Risk.UseCIStatus,
		},
		Exclude: ExcludeConfig{UseDefaults: true},
		Labels: LabelsConfig{
			CreateMissing:     true,
			Color:             DefaultLabelColor,
			NamespacePolicies: policies,
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil, nil
		}
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over DefaultConfig and validates the result. Unknown
// top-level keys are returned as warnings.
func Parse(data []byte) (*Config, []string, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, NewParseError(string(data), fmt.Sprintf("invalid YAML: %v", err))
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return cfg, nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return cfg, nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, nil, NewConfigError("root", root.Value, "configuration must be an object")
	}

	warnings := unknownKeys(root)

	if err := root.Decode(cfg); err != nil {
		return nil, warnings, NewParseError(string(data), fmt.Sprintf("invalid configuration: %v", err))
	}
	if err := Validate(cfg); err != nil {
		return nil, warnings, err
	}
	return cfg, warnings, nil
}

func unknownKeys(root *yaml.Node) []string {
	known := make(map[string]bool, len(knownKeys))
	for _, k := range knownKeys {
		known[k] = true
	}
	var warnings []string
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("Unknown configuration key %q will be ignored", key))
		}
	}
	return warnings
}

// FindConfigFile looks for .github/pr-labeler.yml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		for _, rel := range ConfigPaths {
			candidate := filepath.Join(dir, rel)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Labeler converts the file configuration into the engine's configuration.
func (c *Config) Labeler() labeling.Config {
	cats := make([]labeling.Category, 0, len(c.Categories))
	for _, cc := range c.Categories {
		cat := labeling.Category{
			Label:    cc.Label,
			Patterns: cc.Patterns,
			Exclude:  cc.Exclude,
		}
		if cc.DisplayName != nil {
			cat.DisplayName = &labeling.DisplayName{En: cc.DisplayName.En, Ja: cc.DisplayName.Ja}
		}
		cats = append(cats, cat)
	}

	policies := make(map[string]labeling.Policy, len(c.Labels.NamespacePolicies))
	for k, v := range c.Labels.NamespacePolicies {
		policies[k] = labeling.Policy(v)
	}

	return labeling.Config{
		Size: labeling.SizeConfig{
			Enabled: c.Size.Enabled,
			Thresholds: labeling.SizeThresholds{
				Small:  c.Size.Thresholds.Small,
				Medium: c.Size.Thresholds.Medium,
				Large:  c.Size.Thresholds.Large,
				XLarge: c.Size.Thresholds.XLarge,
			},
		},
		Complexity: labeling.ComplexityConfig{
			Enabled: c.Complexity.Enabled,
			Thresholds: labeling.ComplexityThresholds{
				Medium: c.Complexity.Thresholds.Medium,
				High:   c.Complexity.Thresholds.High,
			},
		},
		CategoryEnabled: c.CategoryLabeling.Enabled,
		Categories:      cats,
		Risk: labeling.RiskConfig{
			Enabled:              c.Risk.Enabled,
			UseCIStatus:          c.Risk.UseCIStatus,
			HighIfNoTestsForCore: c.Risk.HighIfNoTestsForCore,
			CorePaths:            c.Risk.CorePaths,
			ConfigFiles:          c.Risk.ConfigFiles,
		},
		NamespacePolicies: policies,
	}
}
