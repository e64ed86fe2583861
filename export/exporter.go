// Package export renders the current analysis into downloadable documents.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pricewatch/models"
	"pricewatch/services"
	"pricewatch/utils"
)

// Supported document formats.
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatJSON = "json"
)

// PDFRenderer is the backend call that renders an analysis server-side.
type PDFRenderer interface {
	AnalysisPDF(ctx context.Context, req models.ExportRequest) ([]byte, error)
}

// Remote exports through the backend's PDF endpoint.
type Remote struct {
	renderer PDFRenderer
	logger   *utils.Logger
}

// NewRemote creates a Remote exporter.
func NewRemote(renderer PDFRenderer, logger *utils.Logger) *Remote {
	return &Remote{renderer: renderer, logger: logger}
}

func (r *Remote) Export(ctx context.Context, analysis *models.AnalysisResult, label, format string) (*services.ExportedDocument, error) {
	if normalise(format) != FormatPDF {
		return nil, fmt.Errorf("export: backend only renders pdf, not %q", format)
	}

	data, err := r.renderer.AnalysisPDF(ctx, models.ExportRequest{Analysis: analysis, Label: label})
	if err != nil {
		return nil, fmt.Errorf("PDF generation failed: %w", err)
	}
	r.logger.Info("[export] Backend rendered %s (%d bytes)", label, len(data))
	return &services.ExportedDocument{
		Filename:    filename("analysis", FormatPDF),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// Local renders documents in-process: JSON and HTML directly, PDF through
// headless Chrome.
type Local struct {
	chrome *ChromePDF
	logger *utils.Logger
}

// NewLocal creates a Local exporter. chrome may be nil, in which case PDF
// export is refused.
func NewLocal(chrome *ChromePDF, logger *utils.Logger) *Local {
	return &Local{chrome: chrome, logger: logger}
}

func (l *Local) Export(ctx context.Context, analysis *models.AnalysisResult, label, format string) (*services.ExportedDocument, error) {
	switch normalise(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(models.ExportRequest{Analysis: analysis, Label: label}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("export: encode json: %w", err)
		}
		return &services.ExportedDocument{
			Filename:    filename("analysis", FormatJSON),
			ContentType: "application/json",
			Data:        data,
		}, nil

	case FormatHTML:
		page, err := RenderHTML(analysis, label)
		if err != nil {
			return nil, err
		}
		return &services.ExportedDocument{
			Filename:    filename("analysis", FormatHTML),
			ContentType: "text/html; charset=utf-8",
			Data:        page,
		}, nil

	case FormatPDF:
		if l.chrome == nil {
			return nil, fmt.Errorf("export: pdf needs a browser, none configured")
		}
		page, err := RenderHTML(analysis, label)
		if err != nil {
			return nil, err
		}
		data, err := l.chrome.Print(ctx, string(page))
		if err != nil {
			return nil, fmt.Errorf("PDF generation failed: %w", err)
		}
		l.logger.Info("[export] Rendered %s locally (%d bytes)", label, len(data))
		return &services.ExportedDocument{
			Filename:    filename("analysis", FormatPDF),
			ContentType: "application/pdf",
			Data:        data,
		}, nil

	default:
		return nil, fmt.Errorf("export: unsupported format %q", format)
	}
}

func normalise(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return FormatPDF
	}
	return f
}

func filename(prefix, ext string) string {
	return fmt.Sprintf("%s_%d.%s", prefix, time.Now().UnixMilli(), ext)
}
