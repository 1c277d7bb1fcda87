package labeling

// Input bundles everything a classifier may inspect.
type Input struct {
	Metrics    PRMetrics
	Config     Config
	Violations Violations
	Context    *PRContext
}

// Decision is one label proposed by a classifier.
type Decision struct {
	Label        string
	Reason       Reason
	Category     ReasonCategory
	MatchedFiles []string
}

// Classifier is implemented by every label source. Classify must be pure and
// return nothing when its feature is disabled.
type Classifier interface {
	// Key returns the machine-readable classifier identifier.
	Key() string
	// Classify proposes labels for the input, in output order.
	Classify(in Input) []Decision
}

// DefaultClassifiers returns the built-in classifiers in output order:
// size, complexity, category, risk, violation.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		&SizeClassifier{},
		&ComplexityClassifier{},
		&CategoryClassifier{},
		&RiskClassifier{},
		&ViolationClassifier{},
	}
}

// Engine composes classifiers into one ordered decision.
type Engine struct {
	tr          Translator
	classifiers []Classifier
}

// NewEngine creates an engine. With no classifiers it uses DefaultClassifiers.
// A nil Translator leaves reasons as their codes.
func NewEngine(tr Translator, classifiers ...Classifier) *Engine {
	if len(classifiers) == 0 {
		classifiers = DefaultClassifiers()
	}
	return &Engine{tr: tr, classifiers: classifiers}
}

// Decide runs every classifier and resolves namespace removals. It never
// fails and performs no I/O.
func (e *Engine) Decide(metrics PRMetrics, cfg Config, violations Violations, prCtx *PRContext) LabelDecisions {
	in := Input{Metrics: metrics, Config: cfg, Violations: violations, Context: prCtx}

	out := LabelDecisions{
		LabelsToAdd: []string{},
		Reasoning:   []LabelReasoning{},
	}
	seen := make(map[string]bool)

	for _, c := range e.classifiers {
		for _, d := range c.Classify(in) {
			if d.Label == "" || seen[d.Label] {
				continue
			}
			seen[d.Label] = true
			out.LabelsToAdd = append(out.LabelsToAdd, d.Label)
			matched := d.MatchedFiles
			if matched == nil {
				matched = []string{}
			}
			out.Reasoning = append(out.Reasoning, LabelReasoning{
				Label:        d.Label,
				Reason:       d.Reason.Render(e.tr),
				Code:         d.Reason.Code,
				Category:     d.Category,
				MatchedFiles: matched,
			})
		}
	}

	out.LabelsToRemove = LabelsToRemove(out.LabelsToAdd, cfg.NamespacePolicies)
	return out
}

// Decide runs the default engine with the given translator.
func Decide(tr Translator, metrics PRMetrics, cfg Config, violations Violations, prCtx *PRContext) LabelDecisions {
	return NewEngine(tr).Decide(metrics, cfg, violations, prCtx)
}
