package models

import (
	"encoding/json"
	"fmt"
)

// AnalysisKind selects which variant of an AnalysisResult is populated.
type AnalysisKind string

const (
	AnalysisQuick AnalysisKind = "quick"
	AnalysisDeep  AnalysisKind = "deep"
)

// ParseAnalysisKind maps user input to an AnalysisKind. Anything other than
// "deep" runs the quick analysis.
func ParseAnalysisKind(s string) AnalysisKind {
	if s == string(AnalysisDeep) {
		return AnalysisDeep
	}
	return AnalysisQuick
}

// PriceRange is the min/max/average block of a quick analysis.
type PriceRange struct {
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Average *float64 `json:"average"`
}

// ProductSummary names a single product singled out by an analysis.
type ProductSummary struct {
	Title  string   `json:"title,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
	Price  *float64 `json:"price,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// QuickAnalysis is the fast single-model analysis payload.
type QuickAnalysis struct {
	PriceRange      PriceRange     `json:"price_range"`
	Insights        []string       `json:"price_insights"`
	Recommendations []string       `json:"recommendations"`
	TopRated        ProductSummary `json:"top_rated_product"`
	BestValue       ProductSummary `json:"best_value_product"`
}

// AgentOutput is one agent's contribution to a deep analysis.
type AgentOutput struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

// DeepAnalysis is the long-running multi-agent analysis payload.
type DeepAnalysis struct {
	FinalReport    string        `json:"final_report"`
	Details        []AgentOutput `json:"detailed_results"`
	TasksCompleted int           `json:"tasks_completed"`
}

// AnalysisResult is a tagged variant: exactly one of Quick or Deep is set,
// matching Kind. Raw holds the payload as the backend sent it, including
// fields the variants do not model.
type AnalysisResult struct {
	Kind  AnalysisKind
	Quick *QuickAnalysis
	Deep  *DeepAnalysis
	Raw   json.RawMessage
}

// DecodeAnalysis decodes a raw analysis payload into the variant named by kind.
func DecodeAnalysis(kind AnalysisKind, raw json.RawMessage) (*AnalysisResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("analysis: empty %s payload", kind)
	}

	switch kind {
	case AnalysisQuick:
		var q QuickAnalysis
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("analysis: decode quick: %w", err)
		}
		return &AnalysisResult{Kind: AnalysisQuick, Quick: &q, Raw: raw}, nil
	case AnalysisDeep:
		var d DeepAnalysis
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("analysis: decode deep: %w", err)
		}
		return &AnalysisResult{Kind: AnalysisDeep, Deep: &d, Raw: raw}, nil
	default:
		return nil, fmt.Errorf("analysis: unknown kind %q", kind)
	}
}

// MarshalJSON emits the payload verbatim when it came from the backend,
// otherwise the populated variant in the backend's own shape.
func (a AnalysisResult) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	switch a.Kind {
	case AnalysisQuick:
		return json.Marshal(a.Quick)
	case AnalysisDeep:
		return json.Marshal(a.Deep)
	default:
		return nil, fmt.Errorf("analysis: unknown kind %q", a.Kind)
	}
}

// KindForReportType maps a stored report_type to its analysis variant.
func KindForReportType(reportType string) (AnalysisKind, bool) {
	switch reportType {
	case "quick_analysis":
		return AnalysisQuick, true
	case "deep_analysis":
		return AnalysisDeep, true
	}
	return "", false
}
