// Package client talks to the price-intelligence backend API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pricewatch/metrics"
	"pricewatch/models"
	"pricewatch/utils"
)

// ProductQuery filters the product listing endpoint. Empty fields are left
// to the backend defaults.
type ProductQuery struct {
	Platform string
	Category string
	View     string
	Limit    int
}

// Client is a thin typed wrapper around the backend JSON API.
type Client struct {
	baseURL string
	logger  *utils.Logger
	retry   *utils.RetryConfig
}

// New creates a Client for the backend at baseURL. GET calls are retried up
// to maxRetries attempts on transport errors and 5xx responses.
func New(baseURL string, maxRetries int, retryBase time.Duration, logger *utils.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   retryBase,
			Logger:      logger,
			ShouldRetry: isRetryable,
		},
	}
}

// send performs one request and returns the raw 2xx body.
func (c *Client) send(ctx context.Context, endpoint, method, path string, query url.Values, body any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &APIError{Endpoint: endpoint, Message: err.Error(), Err: err}
	}

	target := c.baseURL + path
	var a *fiber.Agent
	if method == fiber.MethodPost {
		a = fiber.Post(target)
	} else {
		a = fiber.Get(target)
	}

	reqID := uuid.NewString()
	a.Set("X-Request-ID", reqID)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if len(query) > 0 {
		a.QueryString(query.Encode())
	}
	if body != nil {
		a.JSON(body)
	}
	if deadline, ok := ctx.Deadline(); ok {
		a.Timeout(time.Until(deadline))
	}

	started := time.Now()
	code, payload, errs := a.Bytes()

	var err error
	switch {
	case len(errs) > 0:
		err = transportError(endpoint, errs)
	case code < 200 || code >= 300:
		err = serverError(endpoint, code, payload)
	}
	metrics.ObserveBackend(endpoint, started, err)

	if err != nil {
		c.logger.Debug("[client] %s %s (%s) failed: %v", method, path, reqID, err)
		return nil, err
	}
	c.logger.Debug("[client] %s %s (%s) -> %d in %v", method, path, reqID, code, time.Since(started))
	return payload, nil
}

// getJSON issues a GET with retry and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	return c.retry.Do(ctx, endpoint, func() error {
		payload, err := c.send(ctx, endpoint, fiber.MethodGet, path, query, nil)
		if err != nil {
			return err
		}
		return decode(endpoint, payload, out)
	})
}

// postJSON issues a POST once and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, endpoint, path string, body, out any) error {
	payload, err := c.send(ctx, endpoint, fiber.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return decode(endpoint, payload, out)
}

func decode(endpoint string, payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return &APIError{Endpoint: endpoint, Status: 200,
			Message: fmt.Sprintf("%s: invalid response: %v", endpoint, err), Err: err}
	}
	return nil
}

// Stats fetches the aggregate counters.
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var s models.Stats
	if err := c.getJSON(ctx, "stats", "/api/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Recent fetches the most recently updated products.
func (c *Client) Recent(ctx context.Context, limit int) ([]models.ProductRecord, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var out []models.ProductRecord
	if err := c.getJSON(ctx, "recent", "/api/dashboard/recent", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Collect triggers a scrape-and-store run on the backend.
func (c *Client) Collect(ctx context.Context, req models.CollectRequest) (*models.CollectResponse, error) {
	var out models.CollectResponse
	if err := c.postJSON(ctx, "collect", "/api/collect", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs one query across several platforms.
func (c *Client) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	var out models.SearchResponse
	if err := c.postJSON(ctx, "search", "/api/products/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Products lists stored products.
func (c *Client) Products(ctx context.Context, pq ProductQuery) ([]models.ProductRecord, error) {
	q := url.Values{}
	if pq.Platform != "" {
		q.Set("platform", pq.Platform)
	}
	if pq.Category != "" {
		q.Set("category", pq.Category)
	}
	if pq.View != "" {
		q.Set("view", pq.View)
	}
	if pq.Limit > 0 {
		q.Set("limit", strconv.Itoa(pq.Limit))
	}

	var out []models.ProductRecord
	if err := c.getJSON(ctx, "products", "/api/products", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PriceDrops lists products whose price fell by at least minPercent.
func (c *Client) PriceDrops(ctx context.Context, minPercent float64) ([]models.ProductRecord, error) {
	q := url.Values{}
	q.Set("min_percent", strconv.FormatFloat(minPercent, 'f', -1, 64))

	var out []models.ProductRecord
	if err := c.getJSON(ctx, "price_drops", "/api/products/price-drops", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PriceAnalytics fetches price increases and the raw price distribution.
func (c *Client) PriceAnalytics(ctx context.Context) (*models.PriceAnalytics, error) {
	var out models.PriceAnalytics
	if err := c.getJSON(ctx, "price_analytics", "/api/products/price-analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analyze runs a quick or deep analysis. Deep runs can take several minutes;
// the call blocks until the backend answers.
func (c *Client) Analyze(ctx context.Context, kind models.AnalysisKind, req models.AnalysisRequest) (*models.AnalysisResponse, error) {
	endpoint, path := "analysis_quick", "/api/analysis/quick"
	if kind == models.AnalysisDeep {
		endpoint, path = "analysis_deep", "/api/analysis/deep"
	}

	var out models.AnalysisResponse
	if err := c.postJSON(ctx, endpoint, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reports lists persisted analysis reports.
func (c *Client) Reports(ctx context.Context) ([]models.ReportSummary, error) {
	var out []models.ReportSummary
	if err := c.getJSON(ctx, "reports", "/api/reports", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AnalysisPDF asks the backend to render an analysis as a PDF document.
func (c *Client) AnalysisPDF(ctx context.Context, req models.ExportRequest) ([]byte, error) {
	return c.send(ctx, "analysis_pdf", fiber.MethodPost, "/api/analysis/pdf", nil, req)
}

// ReportPDF downloads a stored report rendered as a PDF document.
func (c *Client) ReportPDF(ctx context.Context, reportID string) ([]byte, error) {
	path := "/api/reports/" + url.PathEscape(reportID) + "/pdf"
	var out []byte
	err := c.retry.Do(ctx, "report_pdf", func() error {
		payload, err := c.send(ctx, "report_pdf", fiber.MethodGet, path, nil, nil)
		out = payload
		return err
	})
	return out, err
}

// Health pings the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.getJSON(ctx, "health", "/api/health", nil, &out)
}
