package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"pricewatch/models"
	"pricewatch/services"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"price": services.FormatPrice,
	"paragraphs": func(s string) []string {
		return strings.Split(s, "\n")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Label}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1f2937; margin: 32px; }
h1 { font-size: 20px; margin-bottom: 4px; }
h2 { font-size: 14px; margin-top: 20px; border-bottom: 1px solid #e5e7eb; padding-bottom: 4px; }
.scope { color: #6b7280; }
.kpi { display: inline-block; margin-right: 24px; }
.agent { margin-top: 12px; }
</style>
</head>
<body>
<h1>Retail Intelligence Report</h1>
<div class="scope">{{.Label}}</div>
{{with .Quick}}
<h2>Price Range</h2>
<div class="kpi">Average: {{price .PriceRange.Average}}</div>
<div class="kpi">Lowest: {{price .PriceRange.Min}}</div>
<div class="kpi">Highest: {{price .PriceRange.Max}}</div>
{{if .TopRated.Title}}<h2>Top Rated Product</h2><p><strong>{{.TopRated.Title}}</strong> {{price .TopRated.Price}}</p>{{end}}
{{if .BestValue.Title}}<h2>Best Value</h2><p><strong>{{.BestValue.Title}}</strong></p>{{if .BestValue.Reason}}<p>{{.BestValue.Reason}}</p>{{end}}{{end}}
{{if .Insights}}<h2>Key Insights</h2><ul>{{range .Insights}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Recommendations}}<h2>Recommendations</h2><ul>{{range .Recommendations}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{end}}
{{with .Deep}}
<h2>Executive Report</h2>
{{range paragraphs .FinalReport}}<p>{{.}}</p>{{end}}
<div class="scope">{{.TasksCompleted}} tasks completed</div>
{{range .Details}}<div class="agent"><h2>{{.Agent}}</h2>{{range paragraphs .Output}}<p>{{.}}</p>{{end}}</div>{{end}}
{{end}}
</body>
</html>
`))

// RenderHTML renders an analysis as a standalone HTML page.
func RenderHTML(analysis *models.AnalysisResult, label string) ([]byte, error) {
	if analysis == nil {
		return nil, fmt.Errorf("export: nothing to render")
	}

	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Label string
		Quick *models.QuickAnalysis
		Deep  *models.DeepAnalysis
	}{label, analysis.Quick, analysis.Deep})
	if err != nil {
		return nil, fmt.Errorf("export: render html: %w", err)
	}
	return buf.Bytes(), nil
}
