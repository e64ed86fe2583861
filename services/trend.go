package services

import "pricewatch/models"

// Trend is the display category of a product's price movement.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// ClassifyTrend maps a backend trend value to a display category. Anything
// that is not exactly "up" or "down", including an empty value, is stable.
func ClassifyTrend(raw string) Trend {
	switch Trend(raw) {
	case TrendUp:
		return TrendUp
	case TrendDown:
		return TrendDown
	default:
		return TrendStable
	}
}

// Label is the badge text for the trend.
func (t Trend) Label() string {
	switch t {
	case TrendUp:
		return "Rise"
	case TrendDown:
		return "Drop"
	default:
		return "Stable"
	}
}

// TrendCounts tallies classified trends over a set of records.
type TrendCounts struct {
	Up     int
	Down   int
	Stable int
}

// CountTrends classifies every record and tallies the result.
func CountTrends(records []models.ProductRecord) TrendCounts {
	var c TrendCounts
	for _, r := range records {
		switch ClassifyTrend(r.PriceTrend) {
		case TrendUp:
			c.Up++
		case TrendDown:
			c.Down++
		default:
			c.Stable++
		}
	}
	return c
}
