package services

import (
	"fmt"
	"math"

	"pricewatch/models"
)

const (
	// DefaultBucketWidth is the histogram range width in rupees.
	DefaultBucketWidth = 2000
	// MaxDisplayBuckets caps how many buckets a chart shows.
	MaxDisplayBuckets = 20
)

// BuildDistribution buckets prices into fixed-width ranges keyed by
// floor(price/width)*width and normalises bar lengths against the fullest
// bucket. Buckets keep first-encountered order; empty ranges are never
// materialised. NaN and infinite values are skipped.
func BuildDistribution(prices []float64, width float64) (*models.Distribution, error) {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return nil, fmt.Errorf("distribution: invalid bucket width %v", width)
	}

	index := make(map[float64]int)
	var buckets []models.PriceBucket
	total := 0

	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		key := math.Floor(p/width) * width
		i, seen := index[key]
		if !seen {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, models.PriceBucket{
				Lower: key,
				Upper: key + width,
				Label: fmt.Sprintf("₹%s – ₹%s", FormatNumber(key), FormatNumber(key+width)),
			})
		}
		buckets[i].Count++
		total++
	}

	if total == 0 {
		return nil, ErrNoPricingData
	}

	maxCount := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	for i := range buckets {
		buckets[i].BarPercent = round1(float64(buckets[i].Count) / float64(maxCount) * 100)
	}

	return &models.Distribution{
		Width:    width,
		Buckets:  buckets,
		MaxCount: maxCount,
		Total:    total,
	}, nil
}

// DisplayBuckets returns at most MaxDisplayBuckets buckets for charting.
func DisplayBuckets(d *models.Distribution) []models.PriceBucket {
	if d == nil {
		return nil
	}
	if len(d.Buckets) > MaxDisplayBuckets {
		return d.Buckets[:MaxDisplayBuckets]
	}
	return d.Buckets
}

// DistributionFromAnalytics builds the distribution section from the price
// analytics payload, attaching its average/min/max KPIs.
func DistributionFromAnalytics(pa *models.PriceAnalytics, width float64) (*models.Distribution, error) {
	d, err := BuildDistribution(pa.PriceDistribution, width)
	if err != nil {
		return nil, err
	}
	d.AvgPrice = FormatPrice(pa.AvgPrice)
	d.MinPrice = FormatPrice(pa.MinPrice)
	d.MaxPrice = FormatPrice(pa.MaxPrice)
	return d, nil
}
