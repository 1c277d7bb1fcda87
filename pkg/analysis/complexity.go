package analysis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prinsights/prinsights/pkg/labeling"
)

// LoadComplexityReport reads a precomputed complexity report:
//
//	{"maxComplexity": 21, "files": [{"path": "a.ts", "complexity": 21}]}
//
// When maxComplexity is absent it is derived from the files.
func LoadComplexityReport(path string) (*labeling.ComplexityMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading complexity report: %w", err)
	}
	var m labeling.ComplexityMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing complexity report: %w", err)
	}
	for _, f := range m.Files {
		if f.Complexity > m.MaxComplexity {
			m.MaxComplexity = f.Complexity
		}
	}
	return &m, nil
}
