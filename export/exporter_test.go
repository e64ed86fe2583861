package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"pricewatch/models"
	"pricewatch/utils"
)

type fakeRenderer struct {
	req  models.ExportRequest
	data []byte
	err  error
}

func (f *fakeRenderer) AnalysisPDF(ctx context.Context, req models.ExportRequest) ([]byte, error) {
	f.req = req
	return f.data, f.err
}

func quickResult() *models.AnalysisResult {
	return &models.AnalysisResult{Kind: models.AnalysisQuick, Quick: &models.QuickAnalysis{
		PriceRange:      models.PriceRange{Min: models.Float(499), Max: models.Float(2999), Average: models.Float(1500)},
		Insights:        []string{"Prices <dropped> this week"},
		Recommendations: []string{"Buy now"},
	}}
}

func TestRemoteExportSendsLabel(t *testing.T) {
	r := &fakeRenderer{data: []byte("%PDF-1.4")}
	exp := NewRemote(r, utils.NewDiscardLogger())

	doc, err := exp.Export(context.Background(), quickResult(), "AMAZON — ELECTRONICS", "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if r.req.Label != "AMAZON — ELECTRONICS" || r.req.Analysis.Kind != models.AnalysisQuick {
		t.Errorf("request: got %+v", r.req)
	}
	if doc.ContentType != "application/pdf" || !strings.HasSuffix(doc.Filename, ".pdf") {
		t.Errorf("doc: got %s %s", doc.ContentType, doc.Filename)
	}
}

func TestRemoteExportSendsAnalysisVerbatim(t *testing.T) {
	raw := json.RawMessage(`{"total_products":12,"raw_response":"Prices look stable."}`)
	analysis, err := models.DecodeAnalysis(models.AnalysisQuick, raw)
	if err != nil {
		t.Fatalf("DecodeAnalysis: %v", err)
	}
	r := &fakeRenderer{data: []byte("%PDF-1.4")}
	exp := NewRemote(r, utils.NewDiscardLogger())

	if _, err := exp.Export(context.Background(), analysis, "ALL — ALL", "pdf"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	body, err := json.Marshal(r.req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	for _, want := range []string{`"total_products":12`, `"raw_response":"Prices look stable."`} {
		if !bytes.Contains(body, []byte(want)) {
			t.Errorf("request body: got %s, want it to contain %s", body, want)
		}
	}
	if bytes.Contains(body, []byte(`"price_insights":null`)) {
		t.Errorf("request body: got %s, missing lists must stay absent", body)
	}
}

func TestRemoteExportErrors(t *testing.T) {
	r := &fakeRenderer{err: errors.New("500")}
	exp := NewRemote(r, utils.NewDiscardLogger())

	if _, err := exp.Export(context.Background(), quickResult(), "x", "pdf"); err == nil || !strings.HasPrefix(err.Error(), "PDF generation failed") {
		t.Errorf("renderer failure: got %v", err)
	}
	if _, err := exp.Export(context.Background(), quickResult(), "x", "html"); err == nil {
		t.Error("remote exporter should refuse html")
	}
}

func TestLocalExportJSONKeepsBackendShape(t *testing.T) {
	exp := NewLocal(nil, utils.NewDiscardLogger())

	doc, err := exp.Export(context.Background(), quickResult(), "ALL — ALL", "JSON")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var decoded struct {
		Analysis struct {
			Insights []string `json:"price_insights"`
		} `json:"analysis"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(doc.Data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Label != "ALL — ALL" || len(decoded.Analysis.Insights) != 1 {
		t.Errorf("json: got %+v", decoded)
	}
}

func TestLocalExportHTMLEscapes(t *testing.T) {
	exp := NewLocal(nil, utils.NewDiscardLogger())

	doc, err := exp.Export(context.Background(), quickResult(), "AMAZON — ALL", "html")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.Contains(doc.Data, []byte("&lt;dropped&gt;")) {
		t.Error("insight text should be escaped")
	}
	if !bytes.Contains(doc.Data, []byte("₹1,500")) {
		t.Error("average price missing")
	}
}

func TestLocalExportPDFNeedsBrowser(t *testing.T) {
	exp := NewLocal(nil, utils.NewDiscardLogger())
	if _, err := exp.Export(context.Background(), quickResult(), "x", "pdf"); err == nil {
		t.Error("pdf without a browser should fail")
	}
	if _, err := exp.Export(context.Background(), quickResult(), "x", "docx"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestRenderHTMLDeep(t *testing.T) {
	page, err := RenderHTML(&models.AnalysisResult{Kind: models.AnalysisDeep, Deep: &models.DeepAnalysis{
		FinalReport:    "line one\nline two",
		TasksCompleted: 4,
		Details:        []models.AgentOutput{{Agent: "Competitor Analyst", Output: "ok"}},
	}}, "ALL — ALL")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{"<p>line one</p>", "<p>line two</p>", "Competitor Analyst", "4 tasks completed"} {
		if !bytes.Contains(page, []byte(want)) {
			t.Errorf("page missing %q", want)
		}
	}

	if _, err := RenderHTML(nil, "x"); err == nil {
		t.Error("nil analysis should fail")
	}
}
