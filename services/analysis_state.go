package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"pricewatch/models"
)

// ExportedDocument is a rendered analysis ready to be saved.
type ExportedDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Exporter renders an analysis plus its scope label into a document format.
type Exporter interface {
	Export(ctx context.Context, analysis *models.AnalysisResult, label, format string) (*ExportedDocument, error)
}

// CurrentAnalysis is the stored result of the last completed analysis run.
type CurrentAnalysis struct {
	Result           *models.AnalysisResult
	Label            string
	Platform         string
	Category         string
	ProductsAnalyzed int
	CompletedAt      time.Time
}

// AnalysisState keeps the single most recent analysis and the expander
// state of its agent cards.
type AnalysisState struct {
	mu       sync.RWMutex
	current  *CurrentAnalysis
	expanded []bool
}

// NewAnalysisState creates an empty state.
func NewAnalysisState() *AnalysisState {
	return &AnalysisState{}
}

// ScopeLabel builds the "PLATFORM — CATEGORY" label of an analysis run.
func ScopeLabel(platform, category string) string {
	return strings.ToUpper(platform) + " — " + strings.ToUpper(category)
}

// Store replaces the current analysis, discarding the previous one and any
// expander state.
func (s *AnalysisState) Store(result *models.AnalysisResult, platform, category string, productsAnalyzed int) {
	cur := &CurrentAnalysis{
		Result:           result,
		Label:            ScopeLabel(platform, category),
		Platform:         platform,
		Category:         category,
		ProductsAnalyzed: productsAnalyzed,
		CompletedAt:      time.Now(),
	}

	var cards int
	if result != nil && result.Kind == models.AnalysisDeep && result.Deep != nil {
		cards = len(result.Deep.Details)
	}

	s.mu.Lock()
	s.current = cur
	s.expanded = make([]bool, cards)
	s.mu.Unlock()
}

// Current returns the stored analysis, if any.
func (s *AnalysisState) Current() (CurrentAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return CurrentAnalysis{}, false
	}
	return *s.current, true
}

// Toggle flips the expander of agent card i and returns its new state.
// Out-of-range cards stay collapsed.
func (s *AnalysisState) Toggle(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.expanded) {
		return false
	}
	s.expanded[i] = !s.expanded[i]
	return s.expanded[i]
}

// Expanded reports whether agent card i is open.
func (s *AnalysisState) Expanded(i int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return i >= 0 && i < len(s.expanded) && s.expanded[i]
}

// Export hands the current analysis to exp. With nothing stored it refuses
// with ErrNoAnalysis before exp is touched.
func (s *AnalysisState) Export(ctx context.Context, exp Exporter, format string) (*ExportedDocument, error) {
	cur, ok := s.Current()
	if !ok || cur.Result == nil {
		return nil, ErrNoAnalysis
	}
	return exp.Export(ctx, cur.Result, cur.Label, format)
}

// View renders the current analysis for display.
func (s *AnalysisState) View() (*models.AnalysisView, bool) {
	cur, ok := s.Current()
	if !ok {
		return nil, false
	}

	v := BuildAnalysisView(cur.Result, cur.Platform, cur.Category, cur.ProductsAnalyzed)
	for i := range v.Agents {
		v.Agents[i].Expanded = s.Expanded(i)
	}
	return v, true
}
