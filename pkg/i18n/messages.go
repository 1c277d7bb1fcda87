package i18n

var en = map[string]string{
	"reasoning.size":                "Total additions ({additions}) classified as {label}",
	"reasoning.complexity":          "Maximum complexity {maxComplexity} is {level}",
	"reasoning.category":            "Changed files match category {label}",
	"reasoning.riskCIFailed":        "CI failed",
	"reasoning.riskRefactoringSafe": "safe refactor",
	"reasoning.riskFeatureNoTests":  "feature without tests",
	"reasoning.riskCoreNoTests":     "core change without tests",
	"reasoning.riskConfigChanged":   "configuration files changed",
	"reasoning.largeFiles":          "{count} file(s) exceed the size limit",
	"reasoning.tooManyLines":        "{count} file(s) exceed the line limit",
	"reasoning.excessiveChanges":    "Total additions exceed the limit",
	"reasoning.tooManyFiles":        "Number of changed files exceeds the limit",
	"reasoning.directory":           "Files match directory rule for {label}",

	"summary.title":                  "PR Insights",
	"labels.applied":                 "Applied labels",
	"labels.noLabels":                "No labels applied",
	"labels.removed":                 "Removed labels",
	"reasoningTable.title":           "Label reasoning",
	"reasoningTable.label":           "Label",
	"reasoningTable.reason":          "Reason",
	"reasoningTable.files":           "Files",
	"fileDetails.topLargeFiles":      "Top large files",
	"fileDetails.fileName":           "File",
	"fileDetails.size":               "Size",
	"fileDetails.lines":              "Lines",
	"fileDetails.changes":            "Changes",
	"fileDetails.status":             "Status",
	"fileAnalysis.title":             "File analysis",
	"fileAnalysis.status.lineExceed": "Exceeds line limit ({limit})",
	"fileAnalysis.status.sizeExceed": "Exceeds size limit ({limit})",
	"fileAnalysis.status.ok":         "OK",
	"analysis.footer":                "Analyzed {analyzed} of {total} files ({excluded} excluded, {binary} binary, {errors} with errors)",
	"analysis.excludedAdditions":     "{count} additions in excluded files were not counted",

	"improvementActions.title":                         "Improvement actions",
	"improvementActions.intro":                         "This PR exceeds configured limits. Consider the following:",
	"improvementActions.splitting.title":               "Split the PR",
	"improvementActions.splitting.byFeature":           "Split by feature so each PR delivers one change",
	"improvementActions.splitting.byFileGroups":        "Split by file groups that can be reviewed independently",
	"improvementActions.splitting.separateRefactoring": "Move refactoring into its own PR",
	"improvementActions.refactoring.title":             "Refactor large files",
	"improvementActions.refactoring.splitFunctions":    "Split long functions into smaller units",
	"improvementActions.refactoring.extractCommon":     "Extract shared logic into modules",
	"improvementActions.refactoring.organizeByLayer":   "Organize code by layer or responsibility",
	"improvementActions.generated.title":               "Generated files",
	"improvementActions.generated.excludeLock":         "Exclude lock files from analysis",
	"improvementActions.generated.manageArtifacts":     "Keep build artifacts out of version control",
	"improvementActions.generated.separateGenerated":   "Commit generated code separately",

	"failure.largeFiles":   "Files exceeding the size limit were detected",
	"failure.tooManyFiles": "Too many files were changed",
	"failure.prSize":       "PR size {size} meets or exceeds the failure threshold {threshold}",
	"skip.draft":           "Skipping draft pull request",
}

var ja = map[string]string{
	"reasoning.size":                "追加行数 ({additions}) により {label} に分類されました",
	"reasoning.complexity":          "最大複雑度 {maxComplexity} は {level} です",
	"reasoning.category":            "変更ファイルがカテゴリ {label} に一致しました",
	"reasoning.riskCIFailed":        "CIが失敗しました",
	"reasoning.riskRefactoringSafe": "安全なリファクタリング",
	"reasoning.riskFeatureNoTests":  "テストのない機能追加",
	"reasoning.riskCoreNoTests":     "テストのないコア変更",
	"reasoning.riskConfigChanged":   "設定ファイルが変更されました",
	"reasoning.largeFiles":          "{count} 件のファイルがサイズ上限を超えています",
	"reasoning.tooManyLines":        "{count} 件のファイルが行数上限を超えています",
	"reasoning.excessiveChanges":    "追加行数の合計が上限を超えています",
	"reasoning.tooManyFiles":        "変更ファイル数が上限を超えています",
	"reasoning.directory":           "ディレクトリルール {label} に一致しました",

	"summary.title":                  "PR Insights",
	"labels.applied":                 "適用されたラベル",
	"labels.noLabels":                "適用されたラベルはありません",
	"labels.removed":                 "削除されたラベル",
	"reasoningTable.title":           "ラベルの判定理由",
	"reasoningTable.label":           "ラベル",
	"reasoningTable.reason":          "理由",
	"reasoningTable.files":           "ファイル",
	"fileDetails.topLargeFiles":      "大きなファイル",
	"fileDetails.fileName":           "ファイル",
	"fileDetails.size":               "サイズ",
	"fileDetails.lines":              "行数",
	"fileDetails.changes":            "変更",
	"fileDetails.status":             "状態",
	"fileAnalysis.title":             "ファイル分析",
	"fileAnalysis.status.lineExceed": "行数上限超過 ({limit})",
	"fileAnalysis.status.sizeExceed": "サイズ上限超過 ({limit})",
	"fileAnalysis.status.ok":         "OK",
	"analysis.footer":                "{total} 件中 {analyzed} 件を分析 (除外 {excluded} 件, バイナリ {binary} 件, エラー {errors} 件)",
	"analysis.excludedAdditions":     "除外ファイルの追加行 {count} 行は集計されていません",

	"improvementActions.title":                         "改善アクション",
	"improvementActions.intro":                         "このPRは設定された上限を超えています。以下を検討してください:",
	"improvementActions.splitting.title":               "PRの分割",
	"improvementActions.splitting.byFeature":           "機能単位で分割する",
	"improvementActions.splitting.byFileGroups":        "独立してレビューできるファイル群で分割する",
	"improvementActions.splitting.separateRefactoring": "リファクタリングを別PRにする",
	"improvementActions.refactoring.title":             "大きなファイルのリファクタリング",
	"improvementActions.refactoring.splitFunctions":    "長い関数を小さく分割する",
	"improvementActions.refactoring.extractCommon":     "共通ロジックをモジュールに抽出する",
	"improvementActions.refactoring.organizeByLayer":   "レイヤーや責務ごとに整理する",
	"improvementActions.generated.title":               "生成ファイル",
	"improvementActions.generated.excludeLock":         "ロックファイルを分析対象から除外する",
	"improvementActions.generated.manageArtifacts":     "ビルド成果物をバージョン管理に含めない",
	"improvementActions.generated.separateGenerated":   "生成コードは別コミットにする",

	"failure.largeFiles":   "サイズ上限を超えるファイルが検出されました",
	"failure.tooManyFiles": "変更ファイル数が多すぎます",
	"failure.prSize":       "PRサイズ {size} が失敗しきい値 {threshold} 以上です",
	"skip.draft":           "ドラフトPRのためスキップします",
}
