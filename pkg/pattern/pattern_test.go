package pattern_test

import (
	"testing"

	"github.com/prinsights/prinsights/pkg/pattern"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"double star nested", "src/core/**", "src/core/engine/run.ts", true},
		{"double star direct child", "src/core/**", "src/core/engine.ts", true},
		{"outside prefix", "src/core/**", "src/ui/app.ts", false},
		{"leading double star matches root", "**/*.lock", "yarn.lock", true},
		{"leading double star matches nested", "**/*.lock", "a/b/c.lock", true},
		{"dotfile matched by star", "*", ".eslintrc", true},
		{"dot directory matched by double star", "**/*.yml", ".github/workflows/ci.yml", true},
		{"case sensitive", "docs/**", "Docs/readme.md", false},
		{"single star stays in segment", "src/*.go", "src/a/b.go", false},
		{"leading dot slash trimmed", "src/**", "./src/x.go", true},
		{"invalid pattern never matches", "src/[", "src/[", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pattern.Match(tt.pattern, tt.path); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{"src/**", true},
		{"**/*.{ts,tsx}", true},
		{"", false},
		{"   ", false},
		{"src/[", false},
	}
	for _, tt := range tests {
		if got := pattern.Valid(tt.pattern); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestExcluder(t *testing.T) {
	ex := pattern.NewExcluder(true, "dist/**", "dist/**", " ")

	excluded := []string{"package-lock.json", "web/yarn.lock", ".vscode/settings.json", "node_modules/a/index.js", "dist/app.js", "a/.DS_Store"}
	for _, p := range excluded {
		if !ex.Excluded(p) {
			t.Errorf("expected %q to be excluded", p)
		}
	}

	kept := []string{"src/index.ts", "README.md", ".github/workflows/ci.yml"}
	for _, p := range kept {
		if ex.Excluded(p) {
			t.Errorf("expected %q to be kept", p)
		}
	}

	if got, want := len(ex.Patterns()), len(pattern.DefaultExcludes)+1; got != want {
		t.Errorf("len(Patterns()) = %d, want %d", got, want)
	}
}

func TestExcluderWithoutDefaults(t *testing.T) {
	ex := pattern.NewExcluder(false, "*.md")
	if ex.Excluded("package-lock.json") {
		t.Error("defaults should not apply")
	}
	if !ex.Excluded("README.md") {
		t.Error("expected README.md to be excluded")
	}

	var nilEx *pattern.Excluder
	if nilEx.Excluded("anything") {
		t.Error("nil excluder should exclude nothing")
	}
}

func TestFilter(t *testing.T) {
	got := pattern.Filter([]string{"src/**", "*.json"}, []string{"src/a.ts", "docs/b.md", "package.json"})
	want := []string{"src/a.ts", "package.json"}
	if len(got) != len(want) {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Filter()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
