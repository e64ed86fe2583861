package models

// PriceBucket is one fixed-width price range of a distribution histogram.
type PriceBucket struct {
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	BarPercent float64 `json:"bar_percent"`
}

// Distribution is a price histogram. Buckets appear in the order their
// ranges were first encountered in the input.
type Distribution struct {
	Width    float64       `json:"width"`
	Buckets  []PriceBucket `json:"buckets"`
	MaxCount int           `json:"max_count"`
	Total    int           `json:"total"`
	AvgPrice string        `json:"avg_price"`
	MinPrice string        `json:"min_price"`
	MaxPrice string        `json:"max_price"`
}

// PriceComparison is the delta block of a two-product comparison.
type PriceComparison struct {
	Cheaper       string  `json:"cheaper"`
	CheaperSlot   int     `json:"cheaper_slot"`
	Diff          float64 `json:"diff"`
	SavingPercent float64 `json:"saving_percent"`
	Summary       string  `json:"summary"`
}

// ComparisonRow is one attribute line of the side-by-side table.
type ComparisonRow struct {
	Attribute string `json:"attribute"`
	First     string `json:"first"`
	Second    string `json:"second"`
}

// Comparison is the full two-product comparison. Price is nil when either
// product lacks a current price.
type Comparison struct {
	Rows  []ComparisonRow  `json:"rows"`
	Price *PriceComparison `json:"price,omitempty"`
}

// ProductRow is a display-ready product line used by the dashboard,
// browse and search tables.
type ProductRow struct {
	Platform   string `json:"platform"`
	Title      string `json:"title"`
	Price      string `json:"price"`
	Rating     string `json:"rating"`
	Trend      string `json:"trend"`
	TrendLabel string `json:"trend_label"`
	Change     string `json:"change"`
	Scrapes    int    `json:"scrapes"`
	LastSeen   string `json:"last_seen"`
}

// SidebarSummary holds the always-visible summary counters.
type SidebarSummary struct {
	TotalProducts string `json:"total_products"`
	Platforms     string `json:"platforms"`
	TotalReports  string `json:"total_reports"`
	Online        bool   `json:"online"`
}

// DashboardView is the jointly loaded dashboard.
type DashboardView struct {
	TotalProducts  string       `json:"total_products"`
	PriceDrops     string       `json:"price_drops"`
	PriceIncreases string       `json:"price_increases"`
	Platforms      string       `json:"platforms"`
	Recent         []ProductRow `json:"recent"`
	Notice         string       `json:"notice,omitempty"`
}

// DropCard is one price-drop opportunity.
type DropCard struct {
	Title       string  `json:"title"`
	Platform    string  `json:"platform"`
	DropPercent string  `json:"drop_percent"`
	Now         string  `json:"now"`
	Was         string  `json:"was"`
	Savings     float64 `json:"savings"`
	Save        string  `json:"save"`
	Rating      string  `json:"rating,omitempty"`
}

// DropsView is the price-drop section.
type DropsView struct {
	MinPercent float64    `json:"min_percent"`
	Total      int        `json:"total"`
	Notice     string     `json:"notice"`
	Cards      []DropCard `json:"cards"`
}

// IncreaseRow is one product whose price went up.
type IncreaseRow struct {
	Title       string `json:"title"`
	Platform    string `json:"platform"`
	Current     string `json:"current"`
	PreviousLow string `json:"previous_low"`
	Increase    string `json:"increase"`
}

// IncreasesView is the price-increase section.
type IncreasesView struct {
	Count  int           `json:"count"`
	Notice string        `json:"notice"`
	Rows   []IncreaseRow `json:"rows"`
}

// SearchPlatformView is one platform's slice of a multi-platform search.
type SearchPlatformView struct {
	Platform string       `json:"platform"`
	Heading  string       `json:"heading"`
	Rows     []ProductRow `json:"rows"`
}

// SearchView is the rendered multi-platform search.
type SearchView struct {
	Notice    string               `json:"notice"`
	MinPrice  string               `json:"min_price,omitempty"`
	MaxPrice  string               `json:"max_price,omitempty"`
	AvgPrice  string               `json:"avg_price,omitempty"`
	Platforms []SearchPlatformView `json:"platforms"`
	Failures  []string             `json:"failures,omitempty"`
}

// CollectView is the rendered collection result.
type CollectView struct {
	Notice   string       `json:"notice"`
	Inserted int          `json:"inserted"`
	Updated  int          `json:"updated"`
	Errors   int          `json:"errors"`
	Products []ProductRow `json:"products"`
}

// AgentCard is one expandable agent output of a deep analysis.
type AgentCard struct {
	Agent    string `json:"agent"`
	Output   string `json:"output"`
	Expanded bool   `json:"expanded"`
}

// AnalysisView is the display form of the current analysis. Fields of the
// other mode are left empty.
type AnalysisView struct {
	Kind             AnalysisKind `json:"kind"`
	Scope            string       `json:"scope"`
	ProductsAnalyzed int          `json:"products_analyzed"`

	AvgPrice        string          `json:"avg_price,omitempty"`
	PriceRange      string          `json:"price_range,omitempty"`
	TopRated        *ProductSummary `json:"top_rated,omitempty"`
	TopRatedLine    string          `json:"top_rated_line,omitempty"`
	BestValue       *ProductSummary `json:"best_value,omitempty"`
	Insights        []string        `json:"insights,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`

	FinalReport string      `json:"final_report,omitempty"`
	Agents      []AgentCard `json:"agents,omitempty"`
}

// ReportView is one entry of the stored reports list.
type ReportView struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Platform         string   `json:"platform"`
	Category         string   `json:"category"`
	GeneratedAt      string   `json:"generated_at"`
	ProductsAnalyzed int      `json:"products_analyzed"`
	Heading          string   `json:"heading"`
	PriceSummary     string   `json:"price_summary,omitempty"`
	Insights         []string `json:"insights,omitempty"`
	Excerpt          string   `json:"excerpt,omitempty"`
	Downloadable     bool     `json:"downloadable"`
}

// ReportsView is the stored reports section.
type ReportsView struct {
	Notice  string       `json:"notice"`
	Reports []ReportView `json:"reports"`
}

// BrowseView is the product explorer table for one catalog generation.
type BrowseView struct {
	Generation uint64       `json:"generation"`
	Notice     string       `json:"notice,omitempty"`
	Heading    string       `json:"heading,omitempty"`
	Rows       []ProductRow `json:"rows"`
}
