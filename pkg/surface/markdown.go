package surface

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/prinsights/prinsights/pkg/analysis"
	"github.com/prinsights/prinsights/pkg/labeling"
)

// DefaultMaxFiles limits the file analysis table.
const DefaultMaxFiles = 10

// MarkdownRenderer renders the GitHub job summary and PR comment body.
type MarkdownRenderer struct {
	Translator labeling.Translator
	MaxFiles   int
}

func (r *MarkdownRenderer) Render(w io.Writer, report *Report) error {
	_, err := io.WriteString(w, r.Markdown(report))
	return err
}

// Markdown returns the rendered document.
func (r *MarkdownRenderer) Markdown(report *Report) string {
	tr := translator(r.Translator)
	t := func(key string) string { return tr.T(key, nil) }

	var sb strings.Builder

	title := report.Title
	if title == "" {
		title = t("summary.title")
	}
	fmt.Fprintf(&sb, "## %s\n\n", title)

	if report.Applied != nil {
		fmt.Fprintf(&sb, "### 🏷️ %s\n\n", t("labels.applied"))
		if len(report.Applied) == 0 {
			fmt.Fprintf(&sb, "%s\n\n", t("labels.noLabels"))
		} else {
			for _, l := range report.Applied {
				fmt.Fprintf(&sb, "- `%s`\n", l)
			}
			sb.WriteString("\n")
		}
	}
	if len(report.Removed) > 0 {
		fmt.Fprintf(&sb, "**%s:** ", t("labels.removed"))
		for i, l := range report.Removed {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "`%s`", l)
		}
		sb.WriteString("\n\n")
	}

	if len(report.Decisions.Reasoning) > 0 {
		fmt.Fprintf(&sb, "### 🧭 %s\n\n", t("reasoningTable.title"))
		fmt.Fprintf(&sb, "| %s | %s | %s |\n|------|------|------|\n",
			t("reasoningTable.label"), t("reasoningTable.reason"), t("reasoningTable.files"))
		for _, lr := range report.Decisions.Reasoning {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", lr.Label, escapeMarkdown(lr.Reason), fileList(lr.MatchedFiles, 3))
		}
		sb.WriteString("\n")
	}

	if a := report.Analysis; a != nil {
		sb.WriteString(r.fileAnalysis(tr, a))
		if a.Violations.Any() {
			sb.WriteString(improvementActions(t))
		}
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "_%s_\n", tr.T("analysis.footer", map[string]any{
			"analyzed": len(a.Metrics.Files),
			"total":    a.Stats.TotalFiles,
			"excluded": len(a.Stats.FilesExcluded),
			"binary":   len(a.Stats.FilesSkippedBinary),
			"errors":   len(a.Stats.FilesWithErrors),
		}))
		if a.Stats.ExcludedAdditions > 0 {
			fmt.Fprintf(&sb, "\n_%s_\n", tr.T("analysis.excludedAdditions", map[string]any{
				"count": humanize.Comma(int64(a.Stats.ExcludedAdditions)),
			}))
		}
	}

	return sb.String()
}

func (r *MarkdownRenderer) fileAnalysis(tr labeling.Translator, a *analysis.Result) string {
	files := a.Metrics.Files
	if len(files) == 0 {
		return ""
	}
	limit := r.MaxFiles
	if limit <= 0 {
		limit = DefaultMaxFiles
	}

	sorted := append([]labeling.FileMetric(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size > sorted[j].Size })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	lineV := make(map[string]labeling.ViolationDetail)
	for _, v := range a.Violations.ExceedsFileLines {
		lineV[v.File] = v
	}
	sizeV := make(map[string]labeling.ViolationDetail)
	for _, v := range a.Violations.LargeFiles {
		sizeV[v.File] = v
	}

	t := func(key string) string { return tr.T(key, nil) }
	var sb strings.Builder
	fmt.Fprintf(&sb, "### 📊 %s\n\n", t("fileAnalysis.title"))
	fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n|------|------|------|------|------|\n",
		t("fileDetails.fileName"), t("fileDetails.size"), t("fileDetails.lines"),
		t("fileDetails.changes"), t("fileDetails.status"))
	for _, f := range sorted {
		status := "✅ " + t("fileAnalysis.status.ok")
		if v, ok := lineV[f.Path]; ok {
			status = severityIcon(v.Severity) + " " + tr.T("fileAnalysis.status.lineExceed", map[string]any{"limit": humanize.Comma(v.Limit)})
		} else if v, ok := sizeV[f.Path]; ok {
			status = severityIcon(v.Severity) + " " + tr.T("fileAnalysis.status.sizeExceed", map[string]any{"limit": humanize.IBytes(uint64(v.Limit))})
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | +%s/-%s | %s |\n",
			f.Path, humanize.IBytes(uint64(f.Size)), humanize.Comma(int64(f.Lines)),
			humanize.Comma(int64(f.Additions)), humanize.Comma(int64(f.Deletions)), status)
	}
	sb.WriteString("\n")
	return sb.String()
}

func improvementActions(t func(string) string) string {
	var sb strings.Builder
	sb.WriteString("<details open>\n")
	fmt.Fprintf(&sb, "<summary><strong>💡 %s</strong></summary>\n\n", t("improvementActions.title"))
	fmt.Fprintf(&sb, "%s\n\n", t("improvementActions.intro"))

	fmt.Fprintf(&sb, "#### 📦 %s\n", t("improvementActions.splitting.title"))
	fmt.Fprintf(&sb, "- **%s**\n", t("improvementActions.splitting.byFeature"))
	fmt.Fprintf(&sb, "- **%s**\n", t("improvementActions.splitting.byFileGroups"))
	fmt.Fprintf(&sb, "- **%s**\n\n", t("improvementActions.splitting.separateRefactoring"))

	fmt.Fprintf(&sb, "#### 🔨 %s\n", t("improvementActions.refactoring.title"))
	fmt.Fprintf(&sb, "- %s\n", t("improvementActions.refactoring.splitFunctions"))
	fmt.Fprintf(&sb, "- %s\n", t("improvementActions.refactoring.extractCommon"))
	fmt.Fprintf(&sb, "- %s\n\n", t("improvementActions.refactoring.organizeByLayer"))

	fmt.Fprintf(&sb, "#### 📄 %s\n", t("improvementActions.generated.title"))
	fmt.Fprintf(&sb, "- %s\n", t("improvementActions.generated.excludeLock"))
	fmt.Fprintf(&sb, "- %s\n", t("improvementActions.generated.manageArtifacts"))
	fmt.Fprintf(&sb, "- %s\n\n", t("improvementActions.generated.separateGenerated"))

	sb.WriteString("</details>\n\n")
	return sb.String()
}

func severityIcon(s labeling.Severity) string {
	if s == labeling.SeverityCritical {
		return "🚫"
	}
	return "⚠️"
}

func fileList(files []string, max int) string {
	if len(files) == 0 {
		return "-"
	}
	shown := files
	if len(shown) > max {
		shown = shown[:max]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, f := range shown {
		parts = append(parts, "`"+f+"`")
	}
	if rest := len(files) - len(shown); rest > 0 {
		parts = append(parts, fmt.Sprintf("+%d", rest))
	}
	return strings.Join(parts, ", ")
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
