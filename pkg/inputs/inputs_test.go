package inputs_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/prinsights/prinsights/pkg/config"
	"github.com/prinsights/prinsights/pkg/inputs"
	"github.com/prinsights/prinsights/pkg/labeling"
)

func TestParseDefaults(t *testing.T) {
	in, err := inputs.Parse(inputs.MapGetter{"github_token": "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.FileSizeLimit != 100*1024 {
		t.Errorf("FileSizeLimit = %d, want %d", in.FileSizeLimit, 100*1024)
	}
	if in.FileLinesLimit != 500 || in.PRAdditionsLimit != 5000 || in.PRFilesLimit != 50 {
		t.Errorf("limits = %d/%d/%d", in.FileLinesLimit, in.PRAdditionsLimit, in.PRFilesLimit)
	}
	if !in.AutoRemoveLabels || !in.SkipDraftPR || !in.EnableSummary || !in.UseDefaultExcludes {
		t.Errorf("expected default-on flags, got %+v", in)
	}
	if in.CommentOnPR != inputs.CommentAuto {
		t.Errorf("CommentOnPR = %q", in.CommentOnPR)
	}
	if in.SizeEnabled != nil || in.SizeThresholds != nil {
		t.Error("labeler knobs should stay unset so the config file wins")
	}
	if in.DirectoryLabelerConfigPath != ".github/directory-labeler.yml" {
		t.Errorf("DirectoryLabelerConfigPath = %q", in.DirectoryLabelerConfigPath)
	}
	if len(in.AdditionalExcludePatterns) != 0 {
		t.Errorf("AdditionalExcludePatterns = %v", in.AdditionalExcludePatterns)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		set       map[string]string
		wantField string
		wantParse bool
	}{
		{name: "missing token", set: map[string]string{"github_token": ""}, wantField: "github_token"},
		{name: "bad size", set: map[string]string{"file_size_limit": "lots"}, wantParse: true},
		{name: "bad lines", set: map[string]string{"file_lines_limit": "many"}, wantField: "file_lines_limit"},
		{name: "bad additions", set: map[string]string{"pr_additions_limit": "x"}, wantField: "pr_additions_limit"},
		{name: "bad files", set: map[string]string{"pr_files_limit": "1.5"}, wantField: "pr_files_limit"},
		{name: "strict boolean", set: map[string]string{"risk_enabled": "maybe"}, wantField: "risk_enabled"},
		{name: "bad size thresholds", set: map[string]string{"size_thresholds": "{"}, wantParse: true},
		{name: "bad complexity thresholds", set: map[string]string{"complexity_thresholds": `{"medium":30,"high":10}`}, wantParse: true},
		{name: "negative max labels", set: map[string]string{"max_labels": "-1"}, wantField: "max_labels"},
		{name: "non-integer max labels", set: map[string]string{"max_labels": "two"}, wantField: "max_labels"},
		{name: "unknown fail size", set: map[string]string{"fail_on_pr_size": "huge"}, wantField: "fail_on_pr_size"},
		{name: "fail size without size", set: map[string]string{"fail_on_pr_size": "large", "size_enabled": "false"}, wantField: "fail_on_pr_size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := inputs.MapGetter{"github_token": "tok"}
			for k, v := range tc.set {
				g[k] = v
			}
			_, err := inputs.Parse(g)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tc.wantParse {
				var pe *config.ParseError
				if !errors.As(err, &pe) {
					t.Errorf("expected ParseError, got %T: %v", err, err)
				}
				return
			}
			var ce *config.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %T: %v", err, err)
			}
			if ce.Field != tc.wantField {
				t.Errorf("field = %q, want %q", ce.Field, tc.wantField)
			}
		})
	}
}

func TestParseAndApply(t *testing.T) {
	g := inputs.MapGetter{
		"github_token":                "tok",
		"size_enabled":                "yes",
		"size_thresholds":             `{"small":10,"medium":20,"large":30,"xlarge":40}`,
		"complexity_enabled":          "ON",
		"complexity_thresholds":       `{"medium":5,"high":9}`,
		"category_enabled":            "0",
		"risk_enabled":                "off",
		"fail_on_large_files":         "true",
		"fail_on_pr_size":             "xlarge",
		"comment_on_pr":               "Always",
		"additional_exclude_patterns": "dist/**, gen/**\n# note\ndist/**",
		"max_labels":                  "3",
	}
	in, err := inputs.Parse(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := labeling.DefaultConfig()
	in.Apply(&cfg)

	if !cfg.Size.Enabled || cfg.Size.Thresholds != (labeling.SizeThresholds{Small: 10, Medium: 20, Large: 30, XLarge: 40}) {
		t.Errorf("size = %+v", cfg.Size)
	}
	if !cfg.Complexity.Enabled || cfg.Complexity.Thresholds.High != 9 {
		t.Errorf("complexity = %+v", cfg.Complexity)
	}
	if cfg.CategoryEnabled || cfg.Risk.Enabled {
		t.Error("expected category and risk disabled")
	}
	if !in.FailOnLargeFiles || in.FailOnTooManyFiles || in.FailOnPRSize != "xlarge" {
		t.Errorf("fail flags = %v %v %q", in.FailOnLargeFiles, in.FailOnTooManyFiles, in.FailOnPRSize)
	}
	if in.CommentOnPR != inputs.CommentAlways {
		t.Errorf("CommentOnPR = %q", in.CommentOnPR)
	}
	if !reflect.DeepEqual(in.AdditionalExcludePatterns, []string{"dist/**", "gen/**"}) {
		t.Errorf("AdditionalExcludePatterns = %v", in.AdditionalExcludePatterns)
	}
	if in.MaxLabels != 3 {
		t.Errorf("MaxLabels = %d", in.MaxLabels)
	}
	if !in.SizeCheckEnabled(cfg) {
		t.Error("expected size check enabled")
	}
}

func TestParseBoolean(t *testing.T) {
	for _, v := range []string{"true", " TRUE ", "1", "yes", "On"} {
		if !inputs.ParseBoolean(v) {
			t.Errorf("ParseBoolean(%q) = false", v)
		}
	}
	for _, v := range []string{"false", "", "no", "nope", "2"} {
		if inputs.ParseBoolean(v) {
			t.Errorf("ParseBoolean(%q) = true", v)
		}
	}
}

func TestParseBooleanStrict(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"Yes", true, false},
		{" off ", false, false},
		{"0", false, false},
		{"enabled", false, true},
		{"", false, true},
	}
	for _, tc := range tests {
		got, err := inputs.ParseBooleanStrict(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseBooleanStrict(%q) err = %v", tc.in, err)
			continue
		}
		if err != nil {
			want := `Invalid boolean value: "` + tc.in + `". Allowed values: true/false/1/0/yes/no/on/off`
			if err.Message != want {
				t.Errorf("message = %q, want %q", err.Message, want)
			}
			continue
		}
		if got != tc.want {
			t.Errorf("ParseBooleanStrict(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseCommentMode(t *testing.T) {
	tests := map[string]inputs.CommentMode{
		"always": inputs.CommentAlways,
		"NEVER":  inputs.CommentNever,
		"auto":   inputs.CommentAuto,
		"weird":  inputs.CommentAuto,
		"":       inputs.CommentAuto,
	}
	for in, want := range tests {
		if got := inputs.ParseCommentMode(in); got != want {
			t.Errorf("ParseCommentMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSizeThresholds(t *testing.T) {
	tests := []struct {
		in      string
		wantMsg string
	}{
		{`{"small":1,"medium":2,"large":3,"xlarge":4}`, ""},
		{`not json`, "Invalid JSON for size thresholds"},
		{`{"small":1,"medium":2,"large":3}`, "Missing or invalid required size thresholds (small, medium, large, xlarge)"},
		{`{"small":"1","medium":2,"large":3,"xlarge":4}`, "Missing or invalid required size thresholds (small, medium, large, xlarge)"},
		{`{"small":-1,"medium":2,"large":3,"xlarge":4}`, "Size threshold values must be non-negative"},
		{`{"small":5,"medium":5,"large":6,"xlarge":7}`, "size.thresholds.small (5) must be less than medium (5)"},
		{`{"small":1,"medium":9,"large":6,"xlarge":7}`, "size.thresholds.medium (9) must be less than large (6)"},
		{`{"small":1,"medium":2,"large":8,"xlarge":7}`, "size.thresholds.large (8) must be less than xlarge (7)"},
	}
	for _, tc := range tests {
		_, err := inputs.ParseSizeThresholds(tc.in)
		if tc.wantMsg == "" {
			if err != nil {
				t.Errorf("ParseSizeThresholds(%s) unexpected error: %v", tc.in, err)
			}
			continue
		}
		var pe *config.ParseError
		if !errors.As(err, &pe) || pe.Message != tc.wantMsg {
			t.Errorf("ParseSizeThresholds(%s) = %v, want %q", tc.in, err, tc.wantMsg)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100KB", 100 * 1024, false},
		{"100kb", 100 * 1024, false},
		{"1.5 MB", 1536 * 1024, false},
		{"1MiB", 1024 * 1024, false},
		{"2048", 2048, false},
		{"10B", 10, false},
		{"1GB", 1 << 30, false},
		{"", 0, true},
		{"ten", 0, true},
		{"-5KB", 0, true},
	}
	for _, tc := range tests {
		got, err := inputs.ParseSize(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseSize(%q) err = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseExcludePatterns(t *testing.T) {
	got := inputs.ParseExcludePatterns("a/**,\n b/** ,# comment\n\na/**,c")
	want := []string{"a/**", "b/**", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseExcludePatterns = %v, want %v", got, want)
	}
	if got := inputs.ParseExcludePatterns(""); got == nil || len(got) != 0 {
		t.Errorf("empty input should give an empty slice, got %#v", got)
	}
	if !strings.HasPrefix(inputs.Defaults["file_size_limit"], "100") {
		t.Error("unexpected default file size limit")
	}
}
