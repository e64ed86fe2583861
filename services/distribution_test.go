package services

import (
	"errors"
	"math"
	"testing"

	"pricewatch/models"
)

func TestBuildDistribution(t *testing.T) {
	d, err := BuildDistribution([]float64{500, 2500, 2600, 4999}, 2000)
	if err != nil {
		t.Fatalf("BuildDistribution: %v", err)
	}

	want := []struct {
		label string
		count int
		bar   float64
	}{
		{"₹0 – ₹2,000", 1, 50},
		{"₹2,000 – ₹4,000", 2, 100},
		{"₹4,000 – ₹6,000", 1, 50},
	}
	if len(d.Buckets) != len(want) {
		t.Fatalf("buckets: got %d, want %d", len(d.Buckets), len(want))
	}
	for i, w := range want {
		b := d.Buckets[i]
		if b.Label != w.label || b.Count != w.count || b.BarPercent != w.bar {
			t.Errorf("bucket %d: got %+v, want %+v", i, b, w)
		}
	}
	if d.MaxCount != 2 || d.Total != 4 {
		t.Errorf("max/total: got %d/%d, want 2/4", d.MaxCount, d.Total)
	}
}

func TestBuildDistributionKeepsFirstSeenOrder(t *testing.T) {
	d, err := BuildDistribution([]float64{9000, 100, 9500, 3000}, 2000)
	if err != nil {
		t.Fatalf("BuildDistribution: %v", err)
	}
	lowers := []float64{8000, 0, 2000}
	for i, l := range lowers {
		if d.Buckets[i].Lower != l {
			t.Errorf("bucket %d lower: got %v, want %v", i, d.Buckets[i].Lower, l)
		}
	}

	sum := 0
	for _, b := range d.Buckets {
		sum += b.Count
	}
	if sum != 4 {
		t.Errorf("counts sum: got %d, want 4", sum)
	}
}

func TestBuildDistributionEmptyAndInvalid(t *testing.T) {
	if _, err := BuildDistribution(nil, 2000); !errors.Is(err, ErrNoPricingData) {
		t.Errorf("empty: got %v, want ErrNoPricingData", err)
	}
	if _, err := BuildDistribution([]float64{math.NaN()}, 2000); !errors.Is(err, ErrNoPricingData) {
		t.Errorf("only NaN: got %v, want ErrNoPricingData", err)
	}
	if _, err := BuildDistribution([]float64{1}, 0); err == nil {
		t.Error("zero width should fail")
	}
}

func TestDisplayBucketsCaps(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = float64(i) * 2000
	}
	d, _ := BuildDistribution(prices, 2000)
	if got := len(DisplayBuckets(d)); got != MaxDisplayBuckets {
		t.Errorf("display buckets: got %d, want %d", got, MaxDisplayBuckets)
	}
	if len(d.Buckets) != 30 {
		t.Errorf("underlying buckets trimmed: got %d", len(d.Buckets))
	}
}

func TestDistributionFromAnalytics(t *testing.T) {
	d, err := DistributionFromAnalytics(&models.PriceAnalytics{
		PriceDistribution: []float64{100, 200},
		AvgPrice:          models.Float(150),
		MinPrice:          models.Float(100),
	}, 2000)
	if err != nil {
		t.Fatalf("DistributionFromAnalytics: %v", err)
	}
	if d.AvgPrice != "₹150" || d.MinPrice != "₹100" || d.MaxPrice != Placeholder {
		t.Errorf("kpis: got %s/%s/%s", d.AvgPrice, d.MinPrice, d.MaxPrice)
	}
}
