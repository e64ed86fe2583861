package services

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"pricewatch/models"
)

const (
	maxDropCards     = 25
	maxIncreaseRows  = 20
	maxReports       = 30
	maxReportInsight = 3
	reportExcerptLen = 220
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// BuildProductRow renders one record for the product tables.
func BuildProductRow(p models.ProductRecord) models.ProductRow {
	trend := ClassifyTrend(p.PriceTrend)
	change := "0%"
	if p.PriceChangePercent != nil {
		change = FormatPercent(*p.PriceChangePercent)
	}
	title := p.Title
	if title == "" {
		title = Placeholder
	}
	return models.ProductRow{
		Platform:   p.DisplayPlatform(),
		Title:      title,
		Price:      FormatPrice(p.EffectivePrice()),
		Rating:     FormatRating(p.EffectiveRating()),
		Trend:      string(trend),
		TrendLabel: trend.Label(),
		Change:     change,
		Scrapes:    p.TimesScraped,
		LastSeen:   FormatDate(p.LastSeen),
	}
}

// BuildProductRows renders a list of records.
func BuildProductRows(records []models.ProductRecord) []models.ProductRow {
	rows := make([]models.ProductRow, len(records))
	for i, r := range records {
		rows[i] = BuildProductRow(r)
	}
	return rows
}

// BuildSidebar renders the summary counters. A nil stats value means the
// backend could not be reached.
func BuildSidebar(s *models.Stats) models.SidebarSummary {
	if s == nil {
		return models.SidebarSummary{
			TotalProducts: Placeholder,
			Platforms:     Placeholder,
			TotalReports:  Placeholder,
		}
	}
	return models.SidebarSummary{
		TotalProducts: FormatCount(s.TotalProducts),
		Platforms:     FormatCount(len(s.Platforms)),
		TotalReports:  FormatCount(s.TotalReports),
		Online:        true,
	}
}

// BuildDashboardView renders the dashboard from its two jointly loaded parts.
func BuildDashboardView(s *models.Stats, recent []models.ProductRecord) *models.DashboardView {
	v := &models.DashboardView{
		TotalProducts:  FormatCount(s.TotalProducts),
		PriceDrops:     FormatCount(s.PriceDrops),
		PriceIncreases: FormatCount(s.PriceIncreases),
		Platforms:      FormatCount(len(s.Platforms)),
		Recent:         BuildProductRows(recent),
	}
	if len(recent) == 0 {
		v.Notice = "No activity yet. Start by collecting data from the Data Collection page."
	}
	return v
}

func valueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// BuildDropsView renders the price-drop cards. Rows are shown as the
// backend returned them; the threshold is not re-applied here.
func BuildDropsView(records []models.ProductRecord, minPercent float64) *models.DropsView {
	v := &models.DropsView{MinPercent: minPercent, Total: len(records)}
	if len(records) == 0 {
		v.Notice = fmt.Sprintf("No products with >%s%% price drop found.",
			strconv.FormatFloat(minPercent, 'f', -1, 64))
		return v
	}
	v.Notice = fmt.Sprintf("%d %s found", len(records), plural(len(records), "opportunity", "opportunities"))

	shown := records
	if len(shown) > maxDropCards {
		shown = shown[:maxDropCards]
	}
	for _, p := range shown {
		savings := valueOrZero(p.HighestPrice) - valueOrZero(p.CurrentPrice)
		card := models.DropCard{
			Title:       p.Title,
			Platform:    p.DisplayPlatform(),
			DropPercent: FormatPercent(math.Abs(valueOrZero(p.PriceChangePercent))) + " off",
			Now:         FormatPrice(p.CurrentPrice),
			Was:         FormatPrice(p.HighestPrice),
			Savings:     savings,
			Save:        FormatAmount(savings),
		}
		if card.Title == "" {
			card.Title = Placeholder
		}
		if p.CurrentRating != nil && *p.CurrentRating != 0 {
			card.Rating = FormatRating(p.CurrentRating)
		}
		v.Cards = append(v.Cards, card)
	}
	return v
}

// BuildIncreasesView renders the price-increase table.
func BuildIncreasesView(pa *models.PriceAnalytics) *models.IncreasesView {
	v := &models.IncreasesView{Count: pa.PriceIncreasesCount}
	if len(pa.PriceIncreases) == 0 {
		v.Notice = "No price increases detected."
		return v
	}
	v.Notice = fmt.Sprintf("%d %s with price increases",
		pa.PriceIncreasesCount, plural(pa.PriceIncreasesCount, "product", "products"))

	shown := pa.PriceIncreases
	if len(shown) > maxIncreaseRows {
		shown = shown[:maxIncreaseRows]
	}
	for _, p := range shown {
		title := p.Title
		if title == "" {
			title = Placeholder
		}
		v.Rows = append(v.Rows, models.IncreaseRow{
			Title:       title,
			Platform:    p.DisplayPlatform(),
			Current:     FormatPrice(p.CurrentPrice),
			PreviousLow: FormatPrice(p.LowestPrice),
			Increase:    "+" + FormatPercent(valueOrZero(p.PriceChangePercent)),
		})
	}
	return v
}

// BuildSearchView renders a multi-platform search. Platforms are listed in
// name order so the output is stable.
func BuildSearchView(r *models.SearchResponse) *models.SearchView {
	v := &models.SearchView{
		Notice: fmt.Sprintf("Found %d products across %d platform(s)",
			r.Summary.Total, r.Summary.PlatformsSearched),
	}
	if r.Summary.MinPrice != nil {
		v.MinPrice = FormatPrice(r.Summary.MinPrice)
		v.MaxPrice = FormatPrice(r.Summary.MaxPrice)
		v.AvgPrice = FormatPrice(r.Summary.AvgPrice)
	}

	names := make([]string, 0, len(r.Results))
	for name := range r.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		products := r.Results[name]
		v.Platforms = append(v.Platforms, models.SearchPlatformView{
			Platform: name,
			Heading:  fmt.Sprintf("%s — %d results", strings.ToUpper(name), len(products)),
			Rows:     BuildProductRows(products),
		})
	}

	failed := make([]string, 0, len(r.Errors))
	for name := range r.Errors {
		failed = append(failed, name)
	}
	sort.Strings(failed)
	for _, name := range failed {
		v.Failures = append(v.Failures,
			fmt.Sprintf("%s search failed: %s", strings.ToUpper(name), r.Errors[name]))
	}
	return v
}

// BuildCollectView renders the outcome of a collection run.
func BuildCollectView(r *models.CollectResponse) *models.CollectView {
	return &models.CollectView{
		Notice:   fmt.Sprintf("Collection complete — %d products processed", r.Total),
		Inserted: r.Stats.Inserted,
		Updated:  r.Stats.Updated,
		Errors:   r.Stats.Errors,
		Products: BuildProductRows(r.Products),
	}
}

// BuildAnalysisView renders either analysis variant.
func BuildAnalysisView(a *models.AnalysisResult, platform, category string, productsAnalyzed int) *models.AnalysisView {
	scope := fmt.Sprintf("%s · %s · %d products",
		strings.ToUpper(platform), strings.ToUpper(category), productsAnalyzed)
	v := &models.AnalysisView{Kind: a.Kind, ProductsAnalyzed: productsAnalyzed}

	switch a.Kind {
	case models.AnalysisQuick:
		q := a.Quick
		v.Scope = scope
		v.AvgPrice = FormatPrice(q.PriceRange.Average)
		v.PriceRange = FormatPrice(q.PriceRange.Min) + " – " + FormatPrice(q.PriceRange.Max)
		if q.TopRated.Title != "" {
			top := q.TopRated
			v.TopRated = &top
			if top.Rating != nil && *top.Rating != 0 {
				v.TopRatedLine = fmt.Sprintf("%s stars · %s",
					strconv.FormatFloat(*top.Rating, 'f', -1, 64), FormatPrice(top.Price))
			}
		}
		if q.BestValue.Title != "" {
			best := q.BestValue
			v.BestValue = &best
		}
		v.Insights = q.Insights
		v.Recommendations = q.Recommendations

	case models.AnalysisDeep:
		d := a.Deep
		v.Scope = fmt.Sprintf("%s · %d tasks", scope, d.TasksCompleted)
		v.FinalReport = d.FinalReport
		if v.FinalReport == "" {
			v.FinalReport = "No report generated"
		}
		for _, out := range d.Details {
			name := out.Agent
			if name == "" {
				name = "Agent"
			}
			v.Agents = append(v.Agents, models.AgentCard{Agent: name, Output: out.Output})
		}
	}
	return v
}

// reportAnalysis is the subset of a stored analysis the reports list reads.
type reportAnalysis struct {
	PriceRange  *models.PriceRange `json:"price_range"`
	Insights    []string           `json:"price_insights"`
	FinalReport string             `json:"final_report"`
}

func reportPlatform(p string) string {
	if p == "all" {
		return "All Platforms"
	}
	return strings.ToUpper(orUnknown(p))
}

func reportCategory(c string) string {
	if c == "all" {
		return "All Categories"
	}
	return titleWords(orUnknown(c))
}

// BuildReportView renders one stored report summary.
func BuildReportView(r models.ReportSummary) models.ReportView {
	v := models.ReportView{
		ID:               r.ID,
		Type:             titleWords(strings.Replace(r.ReportType, "_", " ", 1)),
		Platform:         reportPlatform(r.Platform),
		Category:         reportCategory(r.Category),
		GeneratedAt:      FormatDate(r.GeneratedAt),
		ProductsAnalyzed: r.ProductsAnalyzed,
		Downloadable:     r.ID != "",
	}
	v.Heading = fmt.Sprintf("%s — %s · %s · %d products · %s",
		v.Type, v.Platform, v.Category, v.ProductsAnalyzed, v.GeneratedAt)

	var an reportAnalysis
	if len(r.Analysis) > 0 {
		// A malformed stored analysis only loses its summary lines.
		_ = json.Unmarshal(r.Analysis, &an)
	}

	switch kind, _ := models.KindForReportType(r.ReportType); kind {
	case models.AnalysisQuick:
		if an.PriceRange != nil {
			v.PriceSummary = fmt.Sprintf("Price range: %s — %s · Avg: %s",
				FormatPrice(an.PriceRange.Min), FormatPrice(an.PriceRange.Max), FormatPrice(an.PriceRange.Average))
			insights := an.Insights
			if len(insights) > maxReportInsight {
				insights = insights[:maxReportInsight]
			}
			v.Insights = insights
		}
	case models.AnalysisDeep:
		if an.FinalReport != "" {
			v.Excerpt = truncate(an.FinalReport, reportExcerptLen) + "…"
		}
	}
	return v
}

// BuildReportsView renders the stored reports list.
func BuildReportsView(reports []models.ReportSummary) *models.ReportsView {
	v := &models.ReportsView{}
	if len(reports) == 0 {
		v.Notice = "No reports found. Generate one from the AI Insights page."
		return v
	}
	v.Notice = fmt.Sprintf("%d %s in database", len(reports), plural(len(reports), "report", "reports"))

	shown := reports
	if len(shown) > maxReports {
		shown = shown[:maxReports]
	}
	for _, r := range shown {
		v.Reports = append(v.Reports, BuildReportView(r))
	}
	return v
}
