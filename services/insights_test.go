package services

import (
	"bytes"
	"strings"
	"testing"

	"pricewatch/models"
)

func TestInsightsEmpty(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalProducts != 0 || r.MostExpensive != nil {
		t.Errorf("empty report: got %+v", r)
	}
}

func TestInsightsPriceStatsSkipAbsentPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate([]models.ProductRecord{
		{Platform: "AMAZON", Title: "A", CurrentPrice: models.Float(100), PriceTrend: "up"},
		{Platform: "AMAZON", Title: "B", CurrentPrice: models.Float(300), PriceTrend: "down"},
		{Platform: "FLIPKART", Title: "C"},
	})

	if r.TotalProducts != 3 || r.PricedProducts != 2 {
		t.Errorf("counts: got %d/%d, want 3/2", r.TotalProducts, r.PricedProducts)
	}
	if r.AveragePrice != 200 || r.MinPrice != 100 || r.MaxPrice != 300 {
		t.Errorf("stats: got avg %.2f min %.2f max %.2f", r.AveragePrice, r.MinPrice, r.MaxPrice)
	}
	if r.MostExpensive == nil || r.MostExpensive.Title != "B" {
		t.Errorf("most expensive: got %+v", r.MostExpensive)
	}
	if r.ByPlatform["AMAZON"] != 2 || r.ByPlatform["FLIPKART"] != 1 {
		t.Errorf("by platform: got %v", r.ByPlatform)
	}
	if r.TrendUp != 1 || r.TrendDown != 1 || r.TrendStable != 1 {
		t.Errorf("trends: got %d/%d/%d", r.TrendUp, r.TrendDown, r.TrendStable)
	}
}

func TestInsightsTopRatedCappedAndSorted(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var records []models.ProductRecord
	for i, rating := range []float64{3.1, 4.9, 0, 4.0, 2.2, 4.5, 3.8} {
		records = append(records, models.ProductRecord{
			Title:         string(rune('A' + i)),
			CurrentRating: models.Float(rating),
		})
	}

	r := svc.Generate(records)
	if len(r.TopRated) != 5 {
		t.Fatalf("top rated: got %d, want 5", len(r.TopRated))
	}
	if *r.TopRated[0].CurrentRating != 4.9 || *r.TopRated[4].CurrentRating != 3.1 {
		t.Errorf("order: first %.1f last %.1f", *r.TopRated[0].CurrentRating, *r.TopRated[4].CurrentRating)
	}
}

func TestInsightsPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate([]models.ProductRecord{
		{Platform: "AMAZON", Title: "Phone", CurrentPrice: models.Float(15000), CurrentRating: models.Float(4.4)},
	})

	var buf bytes.Buffer
	svc.Print(&buf, r)
	out := buf.String()
	for _, want := range []string{"CATALOG INSIGHTS", "₹15,000", "Phone", "AMAZON"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
