package labeling

// Well-known labels emitted by the built-in classifiers.
const (
	SizeSmall   = "size/small"
	SizeMedium  = "size/medium"
	SizeLarge   = "size/large"
	SizeXLarge  = "size/xlarge"
	SizeXXLarge = "size/xxlarge"

	ComplexityMedium = "complexity/medium"
	ComplexityHigh   = "complexity/high"

	RiskHigh   = "risk/high"
	RiskMedium = "risk/medium"

	LabelLargeFiles       = "auto/large-files"
	LabelTooManyLines     = "auto/too-many-lines"
	LabelExcessiveChanges = "auto/excessive-changes"
	LabelTooManyFiles     = "auto/too-many-files"
)

// SizeLabels lists the size buckets from smallest to largest.
var SizeLabels = []string{SizeSmall, SizeMedium, SizeLarge, SizeXLarge, SizeXXLarge}

// SizeThresholds are strictly ascending addition counts.
type SizeThresholds struct {
	Small  int `json:"small" yaml:"small"`
	Medium int `json:"medium" yaml:"medium"`
	Large  int `json:"large" yaml:"large"`
	XLarge int `json:"xlarge" yaml:"xlarge"`
}

// ComplexityThresholds are strictly ascending complexity scores.
type ComplexityThresholds struct {
	Medium int `json:"medium" yaml:"medium"`
	High   int `json:"high" yaml:"high"`
}

type SizeConfig struct {
	Enabled    bool
	Thresholds SizeThresholds
}

type ComplexityConfig struct {
	Enabled    bool
	Thresholds ComplexityThresholds
}

// DisplayName is a localized category title used in summaries.
type DisplayName struct {
	En string `json:"en" yaml:"en"`
	Ja string `json:"ja" yaml:"ja"`
}

// Category is a path-based labeling rule.
type Category struct {
	Label       string
	Patterns    []string
	Exclude     []string
	DisplayName *DisplayName
}

// RiskConfig controls the risk evaluator.
type RiskConfig struct {
	Enabled              bool
	UseCIStatus          bool
	HighIfNoTestsForCore bool
	CorePaths            []string
	ConfigFiles          []string
}

// Policy decides how labels within one namespace interact across runs.
type Policy string

const (
	// PolicyReplace makes labels in a namespace mutually exclusive.
	PolicyReplace Policy = "replace"
	// PolicyAdditive lets labels in a namespace accumulate.
	PolicyAdditive Policy = "additive"
)

// Config is the validated configuration the engine consumes.
// Threshold ordering is guaranteed by the loader.
type Config struct {
	Size              SizeConfig
	Complexity        ComplexityConfig
	CategoryEnabled   bool
	Categories        []Category
	Risk              RiskConfig
	NamespacePolicies map[string]Policy
}

// DefaultConfig returns the built-in labeler configuration.
func DefaultConfig() Config {
	return Config{
		Size: SizeConfig{
			Enabled:    true,
			Thresholds: SizeThresholds{Small: 200, Medium: 500, Large: 1000, XLarge: 3000},
		},
		Complexity: ComplexityConfig{
			Enabled:    false,
			Thresholds: ComplexityThresholds{Medium: 15, High: 30},
		},
		CategoryEnabled: true,
		Categories:      DefaultCategories(),
		Risk: RiskConfig{
			Enabled:              true,
			UseCIStatus:          true,
			HighIfNoTestsForCore: true,
			CorePaths:            []string{"src/**"},
			ConfigFiles:          []string{".github/workflows/**", "package.json", "tsconfig.json"},
		},
		NamespacePolicies: DefaultNamespacePolicies(),
	}
}

// DefaultCategories returns the built-in category rules.
func DefaultCategories() []Category {
	return []Category{
		{
			Label:       "category/tests",
			Patterns:    []string{"__tests__/**", "**/*.test.ts", "**/*.test.tsx", "**/*_test.go", "tests/**", "test/**"},
			DisplayName: &DisplayName{En: "Test Files", Ja: "テストファイル"},
		},
		{
			Label:       "category/ci-cd",
			Patterns:    []string{".github/workflows/**"},
			DisplayName: &DisplayName{En: "CI/CD", Ja: "CI/CD"},
		},
		{
			Label:       "category/documentation",
			Patterns:    []string{"docs/**", "**/*.md"},
			Exclude:     []string{".kiro/**", "CHANGELOG.md"},
			DisplayName: &DisplayName{En: "Documentation", Ja: "ドキュメント"},
		},
		{
			Label:       "category/config",
			Patterns:    []string{"**/tsconfig.json", "**/eslint.config.*", "**/.editorconfig", "**/*.config.js", "**/*.config.ts", "action.yml"},
			DisplayName: &DisplayName{En: "Configuration", Ja: "設定"},
		},
		{
			Label:       "category/spec",
			Patterns:    []string{".kiro/**", "spec/**", "specs/**"},
			DisplayName: &DisplayName{En: "Specification", Ja: "仕様"},
		},
		{
			Label:       "category/dependency",
			Patterns:    []string{"**/package.json", "**/package-lock.json", "**/pnpm-lock.yaml", "**/yarn.lock", "**/go.mod", "**/go.sum"},
			DisplayName: &DisplayName{En: "Dependencies", Ja: "依存関係"},
		},
	}
}

// DefaultNamespacePolicies returns the built-in namespace policies.
func DefaultNamespacePolicies() map[string]Policy {
	return map[string]Policy{
		"size/*":       PolicyReplace,
		"complexity/*": PolicyReplace,
		"risk/*":       PolicyReplace,
		"category/*":   PolicyAdditive,
	}
}
