package services

import (
	"context"
	"errors"
	"testing"

	"pricewatch/models"
)

func TestAnalysisStateStoreResetsExpanders(t *testing.T) {
	s := NewAnalysisState()
	deep := &models.AnalysisResult{Kind: models.AnalysisDeep, Deep: &models.DeepAnalysis{
		Details: []models.AgentOutput{{Agent: "a"}, {Agent: "b"}},
	}}

	s.Store(deep, "amazon", "all", 5)
	s.Toggle(1)
	if !s.Expanded(1) || s.Expanded(0) {
		t.Error("toggle did not open card 1 only")
	}

	s.Store(deep, "amazon", "all", 5)
	if s.Expanded(1) {
		t.Error("new analysis should collapse every card")
	}
	if s.Toggle(7) || s.Toggle(-1) {
		t.Error("out-of-range cards must stay collapsed")
	}
}

func TestAnalysisStateExportRefusesEmpty(t *testing.T) {
	s := NewAnalysisState()
	exp := &fakeExporter{}
	if _, err := s.Export(context.Background(), exp, "pdf"); !errors.Is(err, ErrNoAnalysis) {
		t.Errorf("got %v, want ErrNoAnalysis", err)
	}
	if exp.calls != 0 {
		t.Error("exporter should not be called")
	}
	if _, ok := s.View(); ok {
		t.Error("view of empty state should report false")
	}
}

func TestScopeLabel(t *testing.T) {
	if got := ScopeLabel("amazon", "electronics"); got != "AMAZON — ELECTRONICS" {
		t.Errorf("ScopeLabel: got %q", got)
	}
}
