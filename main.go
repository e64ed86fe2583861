package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"pricewatch/client"
	"pricewatch/config"
	"pricewatch/export"
	"pricewatch/models"
	"pricewatch/server"
	"pricewatch/services"
	"pricewatch/storage"
	"pricewatch/utils"
)

const usage = `usage: pricewatch [command]

  dashboard                      summary counters, recent activity and catalog insights (default)
  analytics [min-drop%]          price drops, increases and distribution
  compare <i> <j>                compare two products of the default catalog page
  analyze <quick|deep> [platform] [category] [pdf|html|json]
                                 run an analysis and save the exported document
  reports                        list stored reports
  report <id>                    download a stored report as PDF
  serve                          serve the views as a JSON API`

func main() {
	os.Exit(run())
}

func run() int {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	cmd := "dashboard"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	logger.Info("=== Price Intelligence Dashboard (%s) ===", cmd)
	logger.Info("Config — backend: %s | retries: %d | concurrency: %d | export: %s",
		cfg.BackendURL, cfg.MaxRetries, cfg.MaxConcurrency, cfg.ExportMode)

	api := client.New(cfg.BackendURL, cfg.MaxRetries, time.Duration(cfg.RetryBaseMs)*time.Millisecond, logger)
	orch := services.NewOrchestrator(api, services.OptionsFromConfig(cfg), logger).
		WithExporter(newExporter(cfg, api, logger))

	var archive storage.CatalogArchive
	driver, source := cfg.ArchiveSource()
	if sqlArchive, err := storage.NewSQLArchive(driver, source); err != nil {
		logger.Warn("Catalog archive disabled: %v", err)
	} else {
		defer sqlArchive.Close()
		archive = sqlArchive
		orch.WithArchive(sqlArchive)
		logger.Info("Archiving catalog generations to %s (run %s)", driver, sqlArchive.RunID())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd != "serve" {
		if err := api.Health(ctx); err != nil {
			logger.Warn("Backend offline: %v", err)
		}
	}

	var err error
	switch cmd {
	case "dashboard":
		err = runDashboard(ctx, cfg, orch, archive, logger)
	case "analytics":
		minDrop := ""
		if len(args) > 0 {
			minDrop = args[0]
		}
		err = runAnalytics(ctx, orch, minDrop)
	case "compare":
		err = runCompare(ctx, orch, args)
	case "analyze":
		err = runAnalyze(ctx, cfg, orch, logger, args)
	case "reports":
		err = runReports(ctx, orch)
	case "report":
		if len(args) == 0 {
			err = errors.New("report: missing report id")
			break
		}
		var doc *services.ExportedDocument
		if doc, err = orch.DownloadReport(ctx, args[0]); err == nil {
			err = saveDocument(cfg.ExportDir, doc, logger)
		}
	case "serve":
		err = runServe(ctx, cfg, orch, logger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	if err != nil {
		logger.Error("%s failed: %v", cmd, err)
		return 1
	}
	return 0
}

func newExporter(cfg *config.Config, api *client.Client, logger *utils.Logger) services.Exporter {
	if cfg.ExportMode == "local" {
		return export.NewLocal(export.NewChromePDF(cfg.ChromeBin, logger), logger)
	}
	return export.NewRemote(api, logger)
}

func runDashboard(ctx context.Context, cfg *config.Config, orch *services.Orchestrator, archive storage.CatalogArchive, logger *utils.Logger) error {
	view, err := orch.LoadDashboard(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n  Products: %s | Price drops: %s | Price increases: %s | Platforms: %s\n\n",
		view.TotalProducts, view.PriceDrops, view.PriceIncreases, view.Platforms)
	if view.Notice != "" {
		fmt.Printf("  %s\n\n", view.Notice)
	}
	for _, r := range view.Recent {
		fmt.Printf("  %-9s %-50.50s %10s %5s %-6s %s\n",
			r.Platform, r.Title, r.Price, r.Rating, r.TrendLabel, r.LastSeen)
	}

	browse, err := orch.Browse(ctx, "all", "all")
	if err != nil {
		logger.Warn("Catalog fetch failed, skipping insights: %v", err)
		return nil
	}
	records, err := storage.GenerationOrCurrent(ctx, archive, browse.Generation, orch.Catalog().Records())
	if err != nil {
		logger.Debug("Insights use the live catalog: %v", err)
	} else {
		logger.Info("Insights read from archived generation %d", browse.Generation)
	}

	csvPath := filepath.Join(cfg.ExportDir, fmt.Sprintf("catalog_gen%d.csv", browse.Generation))
	if csvWriter, err := storage.NewCSVWriter(csvPath); err != nil {
		logger.Warn("Failed to create CSV writer: %v", err)
	} else {
		if err := csvWriter.WriteCatalog(records); err != nil {
			logger.Warn("CSV write failed: %v", err)
		} else {
			logger.Info("Catalog generation %d saved to %s", browse.Generation, csvPath)
		}
		csvWriter.Close()
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(os.Stdout, insightSvc.Generate(records))
	return nil
}

func runAnalytics(ctx context.Context, orch *services.Orchestrator, minDrop string) error {
	v := orch.LoadAnalytics(ctx, minDrop)

	fmt.Println("\n  Price Drops")
	if v.DropsErr != nil {
		fmt.Printf("  Error: %v\n", v.DropsErr)
	} else {
		fmt.Printf("  %s\n", v.Drops.Notice)
		for _, c := range v.Drops.Cards {
			fmt.Printf("  %-9s %-48.48s %10s  was %s  save %s\n", c.Platform, c.Title, c.DropPercent, c.Was, c.Save)
		}
	}

	fmt.Println("\n  Price Increases")
	if v.IncreasesErr != nil {
		fmt.Printf("  Error: %v\n", v.IncreasesErr)
	} else {
		fmt.Printf("  %s\n", v.Increases.Notice)
		for _, r := range v.Increases.Rows {
			fmt.Printf("  %-9s %-48.48s %10s  low %s  %s\n", r.Platform, r.Title, r.Current, r.PreviousLow, r.Increase)
		}
	}

	fmt.Println("\n  Price Distribution")
	if v.DistributionErr != nil {
		fmt.Printf("  %v\n", v.DistributionErr)
	} else {
		d := v.Distribution
		fmt.Printf("  Avg %s | Min %s | Max %s\n", d.AvgPrice, d.MinPrice, d.MaxPrice)
		for _, b := range services.DisplayBuckets(d) {
			bar := int(b.BarPercent / 5)
			fmt.Printf("  %-24s %-20s %d\n", b.Label, strings.Repeat("█", bar), b.Count)
		}
	}
	fmt.Println()
	return nil
}

func runCompare(ctx context.Context, orch *services.Orchestrator, args []string) error {
	opts := orch.LoadCompareCatalog(ctx)
	first, second := orch.Catalog().DefaultPair()
	if len(args) >= 2 {
		i, errI := strconv.Atoi(args[0])
		j, errJ := strconv.Atoi(args[1])
		if errI != nil || errJ != nil {
			return errors.New("compare: indices must be integers")
		}
		first, second = orch.Catalog().Select(i), orch.Catalog().Select(j)
	} else {
		for i, o := range opts {
			fmt.Printf("  [%d] %s\n", i, o.Label)
		}
	}

	cmp, err := orch.CompareSelected(first, second)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  %-14s %-45s %-45s\n", "Attribute", "Product 1", "Product 2")
	for _, r := range cmp.Rows {
		fmt.Printf("  %-14s %-45.45s %-45.45s\n", r.Attribute, r.First, r.Second)
	}
	if cmp.Price != nil {
		fmt.Printf("\n  %s\n", cmp.Price.Summary)
	}
	fmt.Println()
	return nil
}

func runAnalyze(ctx context.Context, cfg *config.Config, orch *services.Orchestrator, logger *utils.Logger, args []string) error {
	kind, platform, category, format := models.AnalysisQuick, "all", "all", export.FormatPDF
	if len(args) > 0 {
		kind = models.ParseAnalysisKind(args[0])
	}
	if len(args) > 1 {
		platform = args[1]
	}
	if len(args) > 2 {
		category = args[2]
	}
	if len(args) > 3 {
		format = args[3]
	}

	view, err := orch.RunAnalysis(ctx, kind, platform, category)
	if err != nil {
		return err
	}
	logger.Info("Analysis complete: %s", view.Scope)

	doc, err := orch.ExportAnalysis(ctx, format)
	if err != nil {
		return err
	}
	return saveDocument(cfg.ExportDir, doc, logger)
}

func runReports(ctx context.Context, orch *services.Orchestrator) error {
	v, err := orch.LoadReports(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\n  %s\n\n", v.Notice)
	for _, r := range v.Reports {
		fmt.Printf("  [%s] %s\n", r.ID, r.Heading)
		if r.PriceSummary != "" {
			fmt.Printf("      %s\n", r.PriceSummary)
		}
		for _, line := range r.Insights {
			fmt.Printf("      - %s\n", line)
		}
		if r.Excerpt != "" {
			fmt.Printf("      %s\n", r.Excerpt)
		}
	}
	fmt.Println()
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, orch *services.Orchestrator, logger *utils.Logger) error {
	srv := server.New(orch, logger)
	orch.RefreshSidebar(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(cfg.HTTPAddr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		return srv.Shutdown()
	}
}

func saveDocument(dir string, doc *services.ExportedDocument, logger *utils.Logger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, doc.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("Saved %s (%d bytes)", path, len(doc.Data))
	return nil
}
