package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"pricewatch/client"
	"pricewatch/config"
	"pricewatch/metrics"
	"pricewatch/models"
	"pricewatch/utils"
)

// Backend is the subset of the backend API the orchestrator drives.
type Backend interface {
	Stats(ctx context.Context) (*models.Stats, error)
	Recent(ctx context.Context, limit int) ([]models.ProductRecord, error)
	Collect(ctx context.Context, req models.CollectRequest) (*models.CollectResponse, error)
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
	Products(ctx context.Context, q client.ProductQuery) ([]models.ProductRecord, error)
	PriceDrops(ctx context.Context, minPercent float64) ([]models.ProductRecord, error)
	PriceAnalytics(ctx context.Context) (*models.PriceAnalytics, error)
	Analyze(ctx context.Context, kind models.AnalysisKind, req models.AnalysisRequest) (*models.AnalysisResponse, error)
	Reports(ctx context.Context) ([]models.ReportSummary, error)
	ReportPDF(ctx context.Context, reportID string) ([]byte, error)
}

// CatalogArchiver persists catalog generations. Archiving is best-effort.
type CatalogArchiver interface {
	Archive(ctx context.Context, generation uint64, records []models.ProductRecord) error
}

// Action names guarded against re-entry.
const (
	ActionCollect  = "collect"
	ActionSearch   = "search"
	ActionAnalysis = "analysis"
	ActionExport   = "export"
)

const (
	defaultSearchResults  = 5
	defaultCollectResults = 10
)

// Options tunes the orchestrator.
type Options struct {
	RecentLimit     int
	CatalogPageSize int
	BrowseLimit     int
	MaxConcurrency  int
	DefaultMinDrop  float64
	BucketWidth     float64
}

// OptionsFromConfig copies the orchestrator knobs out of the app config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RecentLimit:     cfg.RecentLimit,
		CatalogPageSize: cfg.CatalogPageSize,
		BrowseLimit:     cfg.BrowseLimit,
		MaxConcurrency:  cfg.MaxConcurrency,
		DefaultMinDrop:  cfg.DefaultMinDrop,
		BucketWidth:     cfg.BucketWidth,
	}
}

func (o Options) withDefaults() Options {
	if o.RecentLimit <= 0 {
		o.RecentLimit = 15
	}
	if o.CatalogPageSize <= 0 {
		o.CatalogPageSize = 200
	}
	if o.BrowseLimit <= 0 {
		o.BrowseLimit = 100
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = 4
	}
	if o.DefaultMinDrop <= 0 {
		o.DefaultMinDrop = 10
	}
	if o.BucketWidth <= 0 {
		o.BucketWidth = DefaultBucketWidth
	}
	return o
}

// Orchestrator sequences the backend calls each view needs and turns the
// responses into display-ready values.
type Orchestrator struct {
	backend  Backend
	opts     Options
	logger   *utils.Logger
	cleaner  *Cleaner
	catalog  *CatalogCache
	analysis *AnalysisState
	guard    *utils.ActionGuard
	exporter Exporter
	archive  CatalogArchiver

	mu      sync.RWMutex
	sidebar models.SidebarSummary
}

// NewOrchestrator wires an orchestrator around a backend.
func NewOrchestrator(backend Backend, opts Options, logger *utils.Logger) *Orchestrator {
	return &Orchestrator{
		backend:  backend,
		opts:     opts.withDefaults(),
		logger:   logger,
		cleaner:  NewCleaner(logger),
		catalog:  NewCatalogCache(),
		analysis: NewAnalysisState(),
		guard:    utils.NewActionGuard(),
		sidebar:  BuildSidebar(nil),
	}
}

// WithExporter sets the document exporter used by ExportAnalysis.
func (o *Orchestrator) WithExporter(e Exporter) *Orchestrator {
	o.exporter = e
	return o
}

// WithArchive sets where catalog generations are archived.
func (o *Orchestrator) WithArchive(a CatalogArchiver) *Orchestrator {
	o.archive = a
	return o
}

// Catalog exposes the shared catalog cache.
func (o *Orchestrator) Catalog() *CatalogCache { return o.catalog }

// Analysis exposes the analysis view state.
func (o *Orchestrator) Analysis() *AnalysisState { return o.analysis }

func (o *Orchestrator) guarded(action string, fn func() error) error {
	if !o.guard.TryAcquire(action) {
		o.logger.Warn("[orchestrator] %s already running, ignoring trigger", action)
		return ErrActionInProgress
	}
	defer o.guard.Release(action)
	return fn()
}

// replaceCatalog cleans records, installs them as a new generation, and
// returns the generation with the cleaned slice it holds.
func (o *Orchestrator) replaceCatalog(ctx context.Context, records []models.ProductRecord) (uint64, []models.ProductRecord) {
	cleaned := o.cleaner.Clean(records)
	gen := o.catalog.Replace(cleaned)
	o.logger.Info("[orchestrator] Catalog generation %d: %d products", gen, len(cleaned))

	if o.archive != nil {
		if err := o.archive.Archive(ctx, gen, cleaned); err != nil {
			o.logger.Warn("[orchestrator] Archiving generation %d failed: %v", gen, err)
		}
	}
	return gen, cleaned
}

// Sidebar returns the last rendered summary counters.
func (o *Orchestrator) Sidebar() models.SidebarSummary {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.sidebar
}

func (o *Orchestrator) setSidebar(s models.SidebarSummary) {
	o.mu.Lock()
	o.sidebar = s
	o.mu.Unlock()
}

// RefreshSidebar re-reads the summary counters. A failure only flips the
// summary to offline.
func (o *Orchestrator) RefreshSidebar(ctx context.Context) models.SidebarSummary {
	stats, err := o.backend.Stats(ctx)
	if err != nil {
		o.logger.Warn("[orchestrator] Sidebar refresh failed: %v", err)
		stats = nil
	}
	s := BuildSidebar(stats)
	o.setSidebar(s)
	return s
}

// LoadDashboard fetches stats and recent activity concurrently. Both must
// succeed; if either fails the whole load fails with that error.
func (o *Orchestrator) LoadDashboard(ctx context.Context) (*models.DashboardView, error) {
	var (
		stats     *models.Stats
		recent    []models.ProductRecord
		statsErr  error
		recentErr error
	)

	pool := utils.NewWorkerPool(2, 0)
	pool.Submit(func() { stats, statsErr = o.backend.Stats(ctx) })
	pool.Submit(func() { recent, recentErr = o.backend.Recent(ctx, o.opts.RecentLimit) })
	pool.Wait()

	err := statsErr
	if err == nil {
		err = recentErr
	}
	metrics.ObserveView("dashboard", err)
	if err != nil {
		o.logger.Error("[orchestrator] Dashboard load failed: %v", err)
		return nil, err
	}

	o.setSidebar(BuildSidebar(stats))
	return BuildDashboardView(stats, o.cleaner.Clean(recent)), nil
}

// ParseMinDrop reads the minimum drop percent. Anything that is not a
// positive finite number falls back to def.
func ParseMinDrop(raw string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}

// LoadPriceDrops fetches products whose price fell by at least the given
// percent.
func (o *Orchestrator) LoadPriceDrops(ctx context.Context, rawMinPercent string) (*models.DropsView, error) {
	minPercent := ParseMinDrop(rawMinPercent, o.opts.DefaultMinDrop)

	records, err := o.backend.PriceDrops(ctx, minPercent)
	metrics.ObserveView("price_drops", err)
	if err != nil {
		o.logger.Error("[orchestrator] Price drops load failed: %v", err)
		return nil, err
	}
	return BuildDropsView(o.cleaner.Clean(records), minPercent), nil
}

// LoadPriceIncreases fetches price analytics for the increase table.
func (o *Orchestrator) LoadPriceIncreases(ctx context.Context) (*models.IncreasesView, error) {
	pa, err := o.backend.PriceAnalytics(ctx)
	metrics.ObserveView("price_increases", err)
	if err != nil {
		o.logger.Error("[orchestrator] Price increases load failed: %v", err)
		return nil, err
	}
	pa.PriceIncreases = o.cleaner.Clean(pa.PriceIncreases)
	return BuildIncreasesView(pa), nil
}

// LoadDistribution fetches price analytics for the histogram. An empty
// price list yields ErrNoPricingData.
func (o *Orchestrator) LoadDistribution(ctx context.Context) (*models.Distribution, error) {
	pa, err := o.backend.PriceAnalytics(ctx)
	if err != nil {
		metrics.ObserveView("distribution", err)
		o.logger.Error("[orchestrator] Distribution load failed: %v", err)
		return nil, err
	}

	d, err := DistributionFromAnalytics(pa, o.opts.BucketWidth)
	metrics.ObserveView("distribution", err)
	return d, err
}

// AnalyticsView holds the three independently loaded analytics sections.
// Each section carries its own error.
type AnalyticsView struct {
	Drops           *models.DropsView
	DropsErr        error
	Increases       *models.IncreasesView
	IncreasesErr    error
	Distribution    *models.Distribution
	DistributionErr error
}

// LoadAnalytics loads the drops, increases and distribution sections
// concurrently. A failing section never blanks its siblings.
func (o *Orchestrator) LoadAnalytics(ctx context.Context, rawMinPercent string) *AnalyticsView {
	v := &AnalyticsView{}

	pool := utils.NewWorkerPool(o.opts.MaxConcurrency, 0)
	pool.Submit(func() { v.Drops, v.DropsErr = o.LoadPriceDrops(ctx, rawMinPercent) })
	pool.Submit(func() { v.Increases, v.IncreasesErr = o.LoadPriceIncreases(ctx) })
	pool.Submit(func() { v.Distribution, v.DistributionErr = o.LoadDistribution(ctx) })
	pool.Wait()

	return v
}

// SearchInput is a multi-platform search as entered by the user.
type SearchInput struct {
	Query      string
	MaxResults int
	Category   string
	Platforms  []string
}

// MultiSearch validates the input locally, then searches every selected
// platform. Validation failures never reach the network.
func (o *Orchestrator) MultiSearch(ctx context.Context, in SearchInput) (*models.SearchView, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, invalid("query", "Enter a search query")
	}
	if len(in.Platforms) == 0 {
		return nil, invalid("platforms", "Select at least one platform")
	}
	limit := in.MaxResults
	if limit <= 0 {
		limit = defaultSearchResults
	}

	var view *models.SearchView
	err := o.guarded(ActionSearch, func() error {
		o.logger.Info("[orchestrator] Searching %s for %q", strings.Join(in.Platforms, " & "), query)
		resp, err := o.backend.Search(ctx, models.SearchRequest{
			SearchQuery: query,
			MaxResults:  limit,
			Category:    in.Category,
			Platforms:   in.Platforms,
		})
		metrics.ObserveView("search", err)
		if err != nil {
			return err
		}
		for name, recs := range resp.Results {
			resp.Results[name] = o.cleaner.Clean(recs)
		}
		view = BuildSearchView(resp)
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.RefreshSidebar(ctx)
	return view, nil
}

// CollectInput is a collection run as entered by the user.
type CollectInput struct {
	Query      string
	Platform   string
	Category   string
	MaxResults int
}

// Collect asks the backend to scrape and store products.
func (o *Orchestrator) Collect(ctx context.Context, in CollectInput) (*models.CollectView, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, invalid("query", "Enter a search query")
	}
	limit := in.MaxResults
	if limit <= 0 {
		limit = defaultCollectResults
	}

	var view *models.CollectView
	err := o.guarded(ActionCollect, func() error {
		o.logger.Info("[orchestrator] Collecting %s for %q", strings.ToUpper(in.Platform), query)
		resp, err := o.backend.Collect(ctx, models.CollectRequest{
			SearchQuery: query,
			Platform:    in.Platform,
			Category:    in.Category,
			MaxResults:  limit,
		})
		if err == nil && resp.Error != "" {
			err = &client.APIError{Endpoint: "collect", Status: 200, Message: resp.Error}
		}
		metrics.ObserveView("collect", err)
		if err != nil {
			return fmt.Errorf("collection failed: %w", err)
		}
		resp.Products = o.cleaner.Clean(resp.Products)
		view = BuildCollectView(resp)
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.RefreshSidebar(ctx)
	return view, nil
}

// Browse lists products for the explorer and installs them as the new
// catalog generation.
func (o *Orchestrator) Browse(ctx context.Context, platform, view string) (*models.BrowseView, error) {
	records, err := o.backend.Products(ctx, client.ProductQuery{
		Platform: platform,
		View:     view,
		Limit:    o.opts.BrowseLimit,
	})
	metrics.ObserveView("browse", err)
	if err != nil {
		o.logger.Error("[orchestrator] Browse failed: %v", err)
		return nil, err
	}

	gen, cleaned := o.replaceCatalog(ctx, records)
	bv := &models.BrowseView{Generation: gen, Rows: BuildProductRows(cleaned)}
	if len(cleaned) == 0 {
		bv.Notice = "No products found for the selected filters."
	} else {
		bv.Heading = fmt.Sprintf("Results — %d products", len(cleaned))
	}
	return bv, nil
}

// LoadCompareCatalog makes sure the comparison pickers have something to
// offer. When the catalog is empty it fetches one default page; a failure
// is logged and swallowed since Compare re-validates every selection.
func (o *Orchestrator) LoadCompareCatalog(ctx context.Context) []SelectOption {
	if o.catalog.Len() == 0 {
		records, err := o.backend.Products(ctx, client.ProductQuery{Limit: o.opts.CatalogPageSize})
		metrics.ObserveView("compare_catalog", err)
		if err != nil {
			o.logger.Warn("[orchestrator] Catalog preload failed: %v", err)
		} else {
			o.replaceCatalog(ctx, records)
		}
	}
	return o.catalog.Options()
}

// CompareSelected compares two picker selections.
func (o *Orchestrator) CompareSelected(first, second Selection) (*models.Comparison, error) {
	cmp, err := o.catalog.Compare(first, second)
	metrics.ObserveView("compare", err)
	return cmp, err
}

// RunAnalysis runs a quick or deep analysis for the given scope and stores
// the result as the current analysis. Deep runs take several minutes and
// hold the analysis action until the single response arrives.
func (o *Orchestrator) RunAnalysis(ctx context.Context, kind models.AnalysisKind, platform, category string) (*models.AnalysisView, error) {
	var view *models.AnalysisView
	err := o.guarded(ActionAnalysis, func() error {
		if kind == models.AnalysisDeep {
			o.logger.Info("[orchestrator] Multi-agent deep analysis in progress, this may take 5–6 minutes")
		} else {
			o.logger.Info("[orchestrator] Generating quick insights for %s", ScopeLabel(platform, category))
		}

		resp, err := o.backend.Analyze(ctx, kind, models.AnalysisRequest{Platform: platform, Category: category})
		if err == nil && resp.Error != "" {
			err = &client.APIError{Endpoint: "analysis", Status: 200, Message: resp.Error}
		}
		var result *models.AnalysisResult
		if err == nil {
			result, err = models.DecodeAnalysis(kind, resp.Analysis)
		}
		metrics.ObserveView("analysis_"+string(kind), err)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		if result.Kind == models.AnalysisDeep && result.Deep.TasksCompleted == 0 && resp.TasksCompleted != nil {
			result.Deep.TasksCompleted = *resp.TasksCompleted
		}

		o.analysis.Store(result, platform, category, resp.ProductsAnalyzed)
		view, _ = o.analysis.View()
		return nil
	})
	return view, err
}

// ToggleAgent flips the expander of one deep-analysis agent card.
func (o *Orchestrator) ToggleAgent(i int) bool {
	return o.analysis.Toggle(i)
}

// ExportAnalysis renders the current analysis. With no completed analysis
// it refuses with ErrNoAnalysis without touching the exporter.
func (o *Orchestrator) ExportAnalysis(ctx context.Context, format string) (*ExportedDocument, error) {
	if _, ok := o.analysis.Current(); !ok {
		return nil, ErrNoAnalysis
	}
	if o.exporter == nil {
		return nil, fmt.Errorf("export: no exporter configured")
	}

	var doc *ExportedDocument
	err := o.guarded(ActionExport, func() error {
		var err error
		doc, err = o.analysis.Export(ctx, o.exporter, format)
		metrics.ObserveView("export", err)
		return err
	})
	return doc, err
}

// LoadReports lists stored reports.
func (o *Orchestrator) LoadReports(ctx context.Context) (*models.ReportsView, error) {
	reports, err := o.backend.Reports(ctx)
	metrics.ObserveView("reports", err)
	if err != nil {
		o.logger.Error("[orchestrator] Reports load failed: %v", err)
		return nil, err
	}
	return BuildReportsView(reports), nil
}

// DownloadReport fetches a stored report as a PDF document.
func (o *Orchestrator) DownloadReport(ctx context.Context, reportID string) (*ExportedDocument, error) {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return nil, invalid("report_id", "Select a report to download")
	}

	data, err := o.backend.ReportPDF(ctx, reportID)
	metrics.ObserveView("report_pdf", err)
	if err != nil {
		return nil, fmt.Errorf("PDF download failed: %w", err)
	}
	return &ExportedDocument{
		Filename:    "report_" + reportID + ".pdf",
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}
