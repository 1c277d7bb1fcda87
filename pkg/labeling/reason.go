package labeling

// Reason codes. Each is a translation key; the listed params are passed along.
const (
	ReasonSize                = "reasoning.size"       // additions, label
	ReasonComplexity          = "reasoning.complexity" // maxComplexity, level
	ReasonCategoryMatch       = "reasoning.category"   // label
	ReasonRiskCIFailed        = "reasoning.riskCIFailed"
	ReasonRiskRefactoringSafe = "reasoning.riskRefactoringSafe"
	ReasonRiskFeatureNoTests  = "reasoning.riskFeatureNoTests"
	ReasonRiskCoreNoTests     = "reasoning.riskCoreNoTests"
	ReasonRiskConfigChanged   = "reasoning.riskConfigChanged"
	ReasonLargeFiles          = "reasoning.largeFiles"   // count
	ReasonTooManyLines        = "reasoning.tooManyLines" // count
	ReasonExcessiveChanges    = "reasoning.excessiveChanges"
	ReasonTooManyFiles        = "reasoning.tooManyFiles"
	ReasonDirectory           = "reasoning.directory" // label
)

// UnknownRiskReason is returned when a requested risk label disagrees with a
// fresh evaluation of the same inputs.
const UnknownRiskReason = "unknown risk condition"

// Translator renders a reason code into human-readable text.
type Translator interface {
	T(key string, params map[string]any) string
}

// Reason is a structured justification. Text, when set, is rendered verbatim.
type Reason struct {
	Code   string
	Params map[string]any
	Text   string
}

// Render produces the final reason string.
func (r Reason) Render(tr Translator) string {
	if r.Code == "" {
		return r.Text
	}
	if tr == nil {
		return r.Code
	}
	return tr.T(r.Code, r.Params)
}
