package models

import "encoding/json"

// Stats is the aggregate counters payload of /api/stats.
type Stats struct {
	TotalProducts  int      `json:"total_products"`
	TotalReports   int      `json:"total_reports"`
	PriceDrops     int      `json:"price_drops"`
	PriceIncreases int      `json:"price_increases"`
	Platforms      []string `json:"platforms"`
}

// CollectRequest triggers a backend collection run.
type CollectRequest struct {
	SearchQuery string `json:"search_query"`
	Platform    string `json:"platform"`
	Category    string `json:"category"`
	MaxResults  int    `json:"max_results"`
}

// CollectStats counts what a collection run did to the store.
type CollectStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Errors   int `json:"errors"`
}

// CollectResponse is the result of a collection run.
type CollectResponse struct {
	Total    int             `json:"total"`
	Stats    CollectStats    `json:"stats"`
	Products []ProductRecord `json:"products"`
	Error    string          `json:"error,omitempty"`
}

// SearchRequest runs one query against several platforms.
type SearchRequest struct {
	SearchQuery string   `json:"search_query"`
	MaxResults  int      `json:"max_results"`
	Category    string   `json:"category"`
	Platforms   []string `json:"platforms"`
}

// SearchSummary aggregates a multi-platform search.
type SearchSummary struct {
	Total             int      `json:"total"`
	PlatformsSearched int      `json:"platforms_searched"`
	MinPrice          *float64 `json:"min_price"`
	MaxPrice          *float64 `json:"max_price"`
	AvgPrice          *float64 `json:"avg_price"`
}

// SearchResponse carries per-platform results and per-platform failures.
type SearchResponse struct {
	Query   string                     `json:"query,omitempty"`
	Summary SearchSummary              `json:"summary"`
	Results map[string][]ProductRecord `json:"results"`
	Errors  map[string]string          `json:"errors"`
}

// PriceAnalytics backs both the price-increase and distribution sections.
type PriceAnalytics struct {
	PriceIncreases      []ProductRecord `json:"price_increases"`
	PriceIncreasesCount int             `json:"price_increases_count"`
	PriceDistribution   []float64       `json:"price_distribution"`
	AvgPrice            *float64        `json:"avg_price"`
	MinPrice            *float64        `json:"min_price"`
	MaxPrice            *float64        `json:"max_price"`
}

// AnalysisRequest scopes an analysis run.
type AnalysisRequest struct {
	Platform string `json:"platform"`
	Category string `json:"category"`
}

// AnalysisResponse is the raw quick/deep analysis reply; Analysis is decoded
// into an AnalysisResult once the mode is known.
type AnalysisResponse struct {
	Analysis         json.RawMessage `json:"analysis"`
	ProductsAnalyzed int             `json:"products_analyzed"`
	TasksCompleted   *int            `json:"tasks_completed,omitempty"`
	ReportID         string          `json:"report_id,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// ReportSummary is one persisted report as listed by /api/reports.
type ReportSummary struct {
	ID               string          `json:"_id"`
	ReportType       string          `json:"report_type"`
	Platform         string          `json:"platform"`
	Category         string          `json:"category"`
	GeneratedAt      string          `json:"generated_at"`
	ProductsAnalyzed int             `json:"products_analyzed"`
	Analysis         json.RawMessage `json:"analysis"`
}

// ExportRequest is the body of /api/analysis/pdf.
type ExportRequest struct {
	Analysis *AnalysisResult `json:"analysis"`
	Label    string          `json:"label"`
}
