// Package inputs parses and validates GitHub Action inputs.
package inputs

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/prinsights/prinsights/pkg/config"
	"github.com/prinsights/prinsights/pkg/labeling"
)

// Getter reads a named input. *githubactions.Action satisfies it.
type Getter interface {
	GetInput(name string) string
}

// MapGetter serves inputs from a map, for callers outside a workflow.
type MapGetter map[string]string

func (m MapGetter) GetInput(name string) string { return m[name] }

// CommentMode controls when the summary is posted as a PR comment.
type CommentMode string

const (
	CommentAuto   CommentMode = "auto"
	CommentAlways CommentMode = "always"
	CommentNever  CommentMode = "never"
)

// Defaults apply when an input is empty. Labeler knobs that the repository
// config file also carries have no default here, so the file wins unless the
// workflow sets them explicitly.
var Defaults = map[string]string{
	"file_size_limit":               "100KB",
	"file_lines_limit":              "500",
	"pr_additions_limit":            "5000",
	"pr_files_limit":                "50",
	"auto_remove_labels":            "true",
	"skip_draft_pr":                 "true",
	"comment_on_pr":                 "auto",
	"enable_summary":                "true",
	"enable_directory_labeling":     "false",
	"directory_labeler_config_path": ".github/directory-labeler.yml",
	"max_labels":                    "0",
	"use_default_excludes":          "true",
}

// Inputs are the validated action inputs.
type Inputs struct {
	GitHubToken string
	Language    string
	ConfigPath  string

	FileSizeLimit    int64
	FileLinesLimit   int
	PRAdditionsLimit int
	PRFilesLimit     int
	AutoRemoveLabels bool

	SizeEnabled          *bool
	SizeThresholds       *labeling.SizeThresholds
	ComplexityEnabled    *bool
	ComplexityThresholds *labeling.ComplexityThresholds
	CategoryEnabled      *bool
	RiskEnabled          *bool

	SkipDraftPR        bool
	CommentOnPR        CommentMode
	FailOnLargeFiles   bool
	FailOnTooManyFiles bool
	FailOnPRSize       string
	EnableSummary      bool

	AdditionalExcludePatterns  []string
	UseDefaultExcludes         bool
	EnableDirectoryLabeling    bool
	DirectoryLabelerConfigPath string
	MaxLabels                  int
	ComplexityReport           string
}

var validFailSizes = []string{"", "small", "medium", "large", "xlarge", "xxlarge"}

// Parse reads and validates every input, in the order they are documented.
func Parse(g Getter) (*Inputs, error) {
	get := func(name string) string {
		if v := strings.TrimSpace(g.GetInput(name)); v != "" {
			return v
		}
		return Defaults[name]
	}

	in := &Inputs{
		GitHubToken: get("github_token"),
		Language:    get("language"),
		ConfigPath:  get("config_path"),
	}
	if in.GitHubToken == "" {
		return nil, config.NewConfigError("github_token", nil, "GitHub token is required")
	}

	size, err := ParseSize(get("file_size_limit"))
	if err != nil {
		return nil, err
	}
	in.FileSizeLimit = size

	ints := []struct {
		name string
		dst  *int
		msg  string
	}{
		{"file_lines_limit", &in.FileLinesLimit, "File lines limit must be a number"},
		{"pr_additions_limit", &in.PRAdditionsLimit, "PR additions limit must be a number"},
		{"pr_files_limit", &in.PRFilesLimit, "PR files limit must be a number"},
	}
	for _, n := range ints {
		raw := get(n.name)
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, config.NewConfigError(n.name, raw, n.msg)
		}
		*n.dst = v
	}

	flags := []struct {
		name string
		dst  **bool
	}{
		{"size_enabled", &in.SizeEnabled},
		{"complexity_enabled", &in.ComplexityEnabled},
		{"category_enabled", &in.CategoryEnabled},
		{"risk_enabled", &in.RiskEnabled},
	}
	for _, f := range flags {
		raw := get(f.name)
		if raw == "" {
			continue
		}
		v, err := ParseBooleanStrict(raw)
		if err != nil {
			err.Field = f.name
			return nil, err
		}
		*f.dst = &v
	}

	if raw := get("size_thresholds"); raw != "" {
		th, err := ParseSizeThresholds(raw)
		if err != nil {
			return nil, err
		}
		in.SizeThresholds = &th
	}
	if raw := get("complexity_thresholds"); raw != "" {
		th, err := ParseComplexityThresholds(raw)
		if err != nil {
			return nil, err
		}
		in.ComplexityThresholds = &th
	}

	rawMax := get("max_labels")
	maxLabels, err := strconv.Atoi(rawMax)
	if err != nil || maxLabels < 0 {
		return nil, config.NewConfigError("max_labels", rawMax, "max_labels must be a non-negative integer")
	}
	in.MaxLabels = maxLabels

	if raw := get("fail_on_large_files"); raw != "" {
		in.FailOnLargeFiles = ParseBoolean(raw)
	}
	if raw := get("fail_on_too_many_files"); raw != "" {
		in.FailOnTooManyFiles = ParseBoolean(raw)
	}
	in.FailOnPRSize = get("fail_on_pr_size")
	if !contains(validFailSizes, in.FailOnPRSize) {
		return nil, config.NewConfigError("fail_on_pr_size", in.FailOnPRSize,
			"Invalid fail_on_pr_size value. Valid values: "+strings.Join(validFailSizes, ", "))
	}
	if in.FailOnPRSize != "" && in.SizeEnabled != nil && !*in.SizeEnabled {
		return nil, config.NewConfigError("fail_on_pr_size", in.FailOnPRSize, "fail_on_pr_size requires size_enabled to be true")
	}

	in.AutoRemoveLabels = ParseBoolean(get("auto_remove_labels"))
	in.SkipDraftPR = ParseBoolean(get("skip_draft_pr"))
	in.CommentOnPR = ParseCommentMode(get("comment_on_pr"))
	in.EnableSummary = ParseBoolean(get("enable_summary"))
	in.AdditionalExcludePatterns = ParseExcludePatterns(g.GetInput("additional_exclude_patterns"))
	in.UseDefaultExcludes = ParseBoolean(get("use_default_excludes"))
	in.EnableDirectoryLabeling = ParseBoolean(get("enable_directory_labeling"))
	in.DirectoryLabelerConfigPath = get("directory_labeler_config_path")
	in.ComplexityReport = get("complexity_report")

	return in, nil
}

// Apply overlays explicitly set inputs onto an engine configuration.
func (in *Inputs) Apply(cfg *labeling.Config) {
	if in.SizeEnabled != nil {
		cfg.Size.Enabled = *in.SizeEnabled
	}
	if in.SizeThresholds != nil {
		cfg.Size.Thresholds = *in.SizeThresholds
	}
	if in.ComplexityEnabled != nil {
		cfg.Complexity.Enabled = *in.ComplexityEnabled
	}
	if in.ComplexityThresholds != nil {
		cfg.Complexity.Thresholds = *in.ComplexityThresholds
	}
	if in.CategoryEnabled != nil {
		cfg.CategoryEnabled = *in.CategoryEnabled
	}
	if in.RiskEnabled != nil {
		cfg.Risk.Enabled = *in.RiskEnabled
	}
}

// SizeCheckEnabled reports whether fail_on_pr_size can be evaluated against cfg.
func (in *Inputs) SizeCheckEnabled(cfg labeling.Config) bool {
	return in.FailOnPRSize != "" && cfg.Size.Enabled
}

// ParseBoolean accepts true/1/yes/on, case-insensitively. Anything else is false.
func ParseBoolean(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// ParseBooleanStrict is like ParseBoolean but rejects unknown values.
func ParseBooleanStrict(value string) (bool, *config.ConfigError) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, config.NewConfigError("boolean", value,
		fmt.Sprintf("Invalid boolean value: %q. Allowed values: true/false/1/0/yes/no/on/off", value))
}

// ParseCommentMode returns always or never when given, and auto otherwise.
func ParseCommentMode(value string) CommentMode {
	switch m := CommentMode(strings.ToLower(strings.TrimSpace(value))); m {
	case CommentAlways, CommentNever:
		return m
	}
	return CommentAuto
}

// ParseExcludePatterns splits on commas and newlines, drops blanks and
// #-comments, and de-duplicates while keeping order.
func ParseExcludePatterns(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == '\n' })
	seen := make(map[string]bool, len(fields))
	out := []string{}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || strings.HasPrefix(f, "#") || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ParseSizeThresholds decodes {"small":..,"medium":..,"large":..,"xlarge":..}.
func ParseSizeThresholds(value string) (labeling.SizeThresholds, error) {
	var raw struct {
		Small  *float64 `json:"small"`
		Medium *float64 `json:"medium"`
		Large  *float64 `json:"large"`
		XLarge *float64 `json:"xlarge"`
	}
	if err := json.Unmarshal([]byte(value), &raw); err != nil && !isTypeError(err) {
		return labeling.SizeThresholds{}, config.NewParseError(value, "Invalid JSON for size thresholds")
	} else if err != nil || raw.Small == nil || raw.Medium == nil || raw.Large == nil || raw.XLarge == nil {
		return labeling.SizeThresholds{}, config.NewParseError(value, "Missing or invalid required size thresholds (small, medium, large, xlarge)")
	}
	s, m, l, x := *raw.Small, *raw.Medium, *raw.Large, *raw.XLarge
	if s < 0 || m < 0 || l < 0 || x < 0 {
		return labeling.SizeThresholds{}, config.NewParseError(value, "Size threshold values must be non-negative")
	}
	if s >= m {
		return labeling.SizeThresholds{}, config.NewParseError(value, fmt.Sprintf("size.thresholds.small (%g) must be less than medium (%g)", s, m))
	}
	if m >= l {
		return labeling.SizeThresholds{}, config.NewParseError(value, fmt.Sprintf("size.thresholds.medium (%g) must be less than large (%g)", m, l))
	}
	if l >= x {
		return labeling.SizeThresholds{}, config.NewParseError(value, fmt.Sprintf("size.thresholds.large (%g) must be less than xlarge (%g)", l, x))
	}
	return labeling.SizeThresholds{Small: int(s), Medium: int(m), Large: int(l), XLarge: int(x)}, nil
}

// ParseComplexityThresholds decodes {"medium":..,"high":..}.
func ParseComplexityThresholds(value string) (labeling.ComplexityThresholds, error) {
	var raw struct {
		Medium *float64 `json:"medium"`
		High   *float64 `json:"high"`
	}
	if err := json.Unmarshal([]byte(value), &raw); err != nil && !isTypeError(err) {
		return labeling.ComplexityThresholds{}, config.NewParseError(value, "Invalid JSON for complexity thresholds")
	} else if err != nil || raw.Medium == nil || raw.High == nil {
		return labeling.ComplexityThresholds{}, config.NewParseError(value, "Missing or invalid required complexity thresholds (medium, high)")
	}
	m, h := *raw.Medium, *raw.High
	if m < 0 || h < 0 {
		return labeling.ComplexityThresholds{}, config.NewParseError(value, "Complexity threshold values must be non-negative")
	}
	if m >= h {
		return labeling.ComplexityThresholds{}, config.NewParseError(value, fmt.Sprintf("complexity.thresholds.medium (%g) must be less than high (%g)", m, h))
	}
	return labeling.ComplexityThresholds{Medium: int(m), High: int(h)}, nil
}

var sizePattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*([kmgt]?)(i?b)?$`)

// ParseSize parses a byte size such as "100KB", "1.5 MB" or "2048".
// Units are binary: 1KB is 1024 bytes.
func ParseSize(value string) (int64, error) {
	v := strings.TrimSpace(value)
	m := sizePattern.FindStringSubmatch(v)
	if m == nil {
		return 0, config.NewParseError(value, fmt.Sprintf("Invalid size format: %q", value))
	}
	unit := strings.ToUpper(m[2])
	normalized := m[1] + " B"
	if unit != "" {
		normalized = m[1] + " " + unit + "iB"
	}
	n, err := humanize.ParseBytes(normalized)
	if err != nil {
		return 0, config.NewParseError(value, fmt.Sprintf("Invalid size format: %q", value))
	}
	return int64(n), nil
}

// isTypeError reports well-formed JSON whose fields have the wrong type.
func isTypeError(err error) bool {
	var te *json.UnmarshalTypeError
	return errors.As(err, &te)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
