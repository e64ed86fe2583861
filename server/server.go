// Package server exposes the dashboard views as a JSON API.
package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"pricewatch/client"
	"pricewatch/metrics"
	"pricewatch/models"
	"pricewatch/services"
	"pricewatch/utils"
)

// Server wires the orchestrator to HTTP routes.
type Server struct {
	orch   *services.Orchestrator
	logger *utils.Logger
	app    *fiber.App
}

// New builds the fiber app with every route registered.
func New(orch *services.Orchestrator, logger *utils.Logger) *Server {
	s := &Server{
		orch:   orch,
		logger: logger,
		app: fiber.New(fiber.Config{
			AppName:               "pricewatch",
			DisableStartupMessage: true,
			// Deep analyses hold the request for several minutes.
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Minute,
		}),
	}

	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowMethods: "GET, POST, OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	s.app.Use(s.requestLog)

	s.routes()
	return s
}

// App returns the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until the app is shut down.
func (s *Server) Listen(addr string) error {
	s.logger.Info("[server] Listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := s.app.Group("/api")
	api.Get("/sidebar", s.getSidebar)
	api.Get("/dashboard", s.getDashboard)

	api.Get("/analytics", s.getAnalytics)
	api.Get("/analytics/drops", s.getDrops)
	api.Get("/analytics/increases", s.getIncreases)
	api.Get("/analytics/distribution", s.getDistribution)

	api.Post("/search", s.postSearch)
	api.Post("/collect", s.postCollect)
	api.Get("/products", s.getProducts)

	api.Get("/compare/options", s.getCompareOptions)
	api.Get("/compare", s.getCompare)

	api.Get("/analysis", s.getAnalysis)
	api.Post("/analysis/:kind", s.postAnalysis)
	api.Post("/analysis/agents/:index/toggle", s.postToggleAgent)
	api.Get("/analysis/export", s.getExport)

	api.Get("/reports", s.getReports)
	api.Get("/reports/:id/pdf", s.getReportPDF)
}

func (s *Server) requestLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("[server] %s %s -> %d (%s)", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
	return err
}

// fail maps an orchestrator error to an HTTP status and a JSON body.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("[server] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	var ve *services.ValidationError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrActionInProgress):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrNotLoaded), errors.Is(err, services.ErrSameProduct):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrNoAnalysis), errors.Is(err, services.ErrNoPricingData):
		return fiber.StatusNotFound
	case errors.As(err, &apiErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (s *Server) getSidebar(c *fiber.Ctx) error {
	if c.QueryBool("refresh") {
		return c.JSON(s.orch.RefreshSidebar(c.UserContext()))
	}
	return c.JSON(s.orch.Sidebar())
}

func (s *Server) getDashboard(c *fiber.Ctx) error {
	v, err := s.orch.LoadDashboard(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(v)
}

type analyticsResponse struct {
	Drops             *models.DropsView     `json:"drops,omitempty"`
	DropsError        string                `json:"drops_error,omitempty"`
	Increases         *models.IncreasesView `json:"increases,omitempty"`
	IncreasesError    string                `json:"increases_error,omitempty"`
	Distribution      *models.Distribution  `json:"distribution,omitempty"`
	DistributionError string                `json:"distribution_error,omitempty"`
}

func (s *Server) getAnalytics(c *fiber.Ctx) error {
	v := s.orch.LoadAnalytics(c.UserContext(), c.Query("min_percent"))
	resp := analyticsResponse{
		Drops:             v.Drops,
		DropsError:        errString(v.DropsErr),
		Increases:         v.Increases,
		IncreasesError:    errString(v.IncreasesErr),
		Distribution:      v.Distribution,
		DistributionError: errString(v.DistributionErr),
	}
	if resp.Distribution != nil {
		resp.Distribution.Buckets = services.DisplayBuckets(resp.Distribution)
	}
	return c.JSON(resp)
}

func (s *Server) getDrops(c *fiber.Ctx) error {
	v, err := s.orch.LoadPriceDrops(c.UserContext(), c.Query("min_percent"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(v)
}

func (s *Server) getIncreases(c *fiber.Ctx) error {
	v, err := s.orch.LoadPriceIncreases(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(v)
}

func (s *Server) getDistribution(c *fiber.Ctx) error {
	d, err := s.orch.LoadDistribution(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	d.Buckets = services.DisplayBuckets(d)
	return c.JSON(d)
}

type searchBody struct {
	Query      string   `json:"search_query"`
	MaxResults int      `json:"max_results"`
	Category   string   `json:"category"`
	Platforms  []string `json:"platforms"`
}

func (s *Server) postSearch(c *fiber.Ctx) error {
	var body searchBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	v, err := s.orch.MultiSearch(c.UserContext(), services.SearchInput{
		Query:      body.Query,
		MaxResults: body.MaxResults,
		Category:   body.Category,
		Platforms:  body.Platforms,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(v)
}

func (s *Server) postCollect(c *fiber.Ctx) error {
	var body models.CollectRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	v, err := s.orch.Collect(c.UserContext(), services.CollectInput{
		Query:      body.SearchQuery,
		Platform:   body.Platform,
		Category:   body.Category,
		MaxResults: body.MaxResults,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(v)
}

func (s *Server) getProducts(c *fiber.Ctx) error {
	v, err := s.orch.Browse(c.UserContext(), c.Query("platform", "all"), c.Query("view", "all"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(v)
}

type compareOption struct {
	Generation uint64 `json:"generation"`
	Index      int    `json:"index"`
	Label      string `json:"label"`
}

func (s *Server) getCompareOptions(c *fiber.Ctx) error {
	opts := s.orch.LoadCompareCatalog(c.UserContext())
	out := make([]compareOption, len(opts))
	for i, o := range opts {
		out[i] = compareOption{Generation: o.Selection.Generation, Index: o.Selection.Index, Label: o.Label}
	}
	return c.JSON(out)
}

func (s *Server) getCompare(c *fiber.Ctx) error {
	gen := s.orch.Catalog().Generation()
	if raw := c.Query("generation"); raw != "" {
		g, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid generation"})
		}
		gen = g
	}
	first := services.Selection{Generation: gen, Index: c.QueryInt("first", 0)}
	second := services.Selection{Generation: gen, Index: c.QueryInt("second", 1)}

	cmp, err := s.orch.CompareSelected(first, second)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(cmp)
}

func (s *Server) getAnalysis(c *fiber.Ctx) error {
	v, ok := s.orch.Analysis().View()
	if !ok {
		return s.fail(c, services.ErrNoAnalysis)
	}
	return c.JSON(v)
}

func (s *Server) postAnalysis(c *fiber.Ctx) error {
	var body models.AnalysisRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}
	if body.Platform == "" {
		body.Platform = "all"
	}
	if body.Category == "" {
		body.Category = "all"
	}

	kind := models.AnalysisKind(c.Params("kind"))
	if kind != models.AnalysisQuick && kind != models.AnalysisDeep {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown analysis kind: " + string(kind)})
	}
	v, err := s.orch.RunAnalysis(c.UserContext(), kind, body.Platform, body.Category)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(v)
}

func (s *Server) postToggleAgent(c *fiber.Ctx) error {
	i, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid agent index"})
	}
	return c.JSON(fiber.Map{"index": i, "expanded": s.orch.ToggleAgent(i)})
}

func (s *Server) sendDocument(c *fiber.Ctx, doc *services.ExportedDocument) error {
	c.Attachment(doc.Filename)
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Send(doc.Data)
}

func (s *Server) getExport(c *fiber.Ctx) error {
	doc, err := s.orch.ExportAnalysis(c.UserContext(), c.Query("format"))
	if err != nil {
		return s.fail(c, err)
	}
	return s.sendDocument(c, doc)
}

func (s *Server) getReports(c *fiber.Ctx) error {
	v, err := s.orch.LoadReports(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(v)
}

func (s *Server) getReportPDF(c *fiber.Ctx) error {
	doc, err := s.orch.DownloadReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return s.sendDocument(c, doc)
}
