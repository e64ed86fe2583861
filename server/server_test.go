package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pricewatch/client"
	"pricewatch/models"
	"pricewatch/services"
	"pricewatch/utils"
)

type stubBackend struct {
	products []models.ProductRecord
}

func (b *stubBackend) Stats(ctx context.Context) (*models.Stats, error) {
	return &models.Stats{TotalProducts: 7, Platforms: []string{"amazon"}}, nil
}

func (b *stubBackend) Recent(ctx context.Context, limit int) ([]models.ProductRecord, error) {
	return nil, nil
}

func (b *stubBackend) Collect(ctx context.Context, req models.CollectRequest) (*models.CollectResponse, error) {
	return &models.CollectResponse{Total: 1}, nil
}

func (b *stubBackend) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	return &models.SearchResponse{}, nil
}

func (b *stubBackend) Products(ctx context.Context, q client.ProductQuery) ([]models.ProductRecord, error) {
	return b.products, nil
}

func (b *stubBackend) PriceDrops(ctx context.Context, minPercent float64) ([]models.ProductRecord, error) {
	return nil, nil
}

func (b *stubBackend) PriceAnalytics(ctx context.Context) (*models.PriceAnalytics, error) {
	return &models.PriceAnalytics{PriceDistribution: []float64{500, 2500, 2600, 4999}}, nil
}

func (b *stubBackend) Analyze(ctx context.Context, kind models.AnalysisKind, req models.AnalysisRequest) (*models.AnalysisResponse, error) {
	return &models.AnalysisResponse{Error: "model unavailable"}, nil
}

func (b *stubBackend) Reports(ctx context.Context) ([]models.ReportSummary, error) {
	return nil, nil
}

func (b *stubBackend) ReportPDF(ctx context.Context, reportID string) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func newTestServer() *Server {
	b := &stubBackend{products: []models.ProductRecord{
		{Platform: "AMAZON", Title: "Phone", CurrentPrice: models.Float(1000)},
		{Platform: "FLIPKART", Title: "Phone", CurrentPrice: models.Float(800)},
	}}
	logger := utils.NewDiscardLogger()
	return New(services.NewOrchestrator(b, services.Options{}, logger), logger)
}

func do(t *testing.T, s *Server, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer()
	if code, _ := do(t, s, http.MethodGet, "/health", ""); code != http.StatusOK {
		t.Errorf("health: got %d", code)
	}
	code, body := do(t, s, http.MethodGet, "/metrics", "")
	if code != http.StatusOK || !strings.Contains(string(body), "pricewatch_catalog_generation") {
		t.Errorf("metrics: got %d", code)
	}
}

func TestDistributionEndpoint(t *testing.T) {
	s := newTestServer()
	code, body := do(t, s, http.MethodGet, "/api/analytics/distribution", "")
	if code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", code, body)
	}
	var d models.Distribution
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(d.Buckets) != 3 || d.Buckets[1].Count != 2 {
		t.Errorf("buckets: got %+v", d.Buckets)
	}
}

func TestCompareFlow(t *testing.T) {
	s := newTestServer()
	code, body := do(t, s, http.MethodGet, "/api/compare/options", "")
	if code != http.StatusOK || !strings.Contains(string(body), "FLIPKART — Phone") {
		t.Fatalf("options: got %d %s", code, body)
	}

	code, body = do(t, s, http.MethodGet, "/api/compare?first=0&second=1", "")
	if code != http.StatusOK || !strings.Contains(string(body), `"cheaper":"Product 2"`) {
		t.Errorf("compare: got %d %s", code, body)
	}

	if code, _ = do(t, s, http.MethodGet, "/api/compare?first=1&second=1", ""); code != http.StatusConflict {
		t.Errorf("same product: got %d, want 409", code)
	}
	if code, _ = do(t, s, http.MethodGet, "/api/compare?generation=99", ""); code != http.StatusConflict {
		t.Errorf("stale generation: got %d, want 409", code)
	}
}

func TestValidationIsBadRequest(t *testing.T) {
	s := newTestServer()
	code, body := do(t, s, http.MethodPost, "/api/search", `{"search_query":"phone"}`)
	if code != http.StatusBadRequest || !strings.Contains(string(body), "Select at least one platform") {
		t.Errorf("search: got %d %s", code, body)
	}
}

func TestExportWithoutAnalysisIsNotFound(t *testing.T) {
	s := newTestServer()
	if code, _ := do(t, s, http.MethodGet, "/api/analysis/export?format=pdf", ""); code != http.StatusNotFound {
		t.Errorf("export: got %d, want 404", code)
	}
}

func TestAnalysisBackendErrorIsBadGateway(t *testing.T) {
	s := newTestServer()
	code, body := do(t, s, http.MethodPost, "/api/analysis/quick", "")
	if code != http.StatusBadGateway || !strings.Contains(string(body), "model unavailable") {
		t.Errorf("analysis: got %d %s", code, body)
	}
}

func TestAnalysisRejectsUnknownKind(t *testing.T) {
	s := newTestServer()
	code, body := do(t, s, http.MethodPost, "/api/analysis/bogus", "")
	if code != http.StatusNotFound || !strings.Contains(string(body), "unknown analysis kind") {
		t.Errorf("analysis: got %d %s, want 404", code, body)
	}
}

func TestReportPDFDownload(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/abc/pdf", nil)
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("Content-Type") != "application/pdf" {
		t.Errorf("content type: got %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "report_abc.pdf") {
		t.Errorf("disposition: got %q", resp.Header.Get("Content-Disposition"))
	}
}
