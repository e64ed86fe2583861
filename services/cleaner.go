package services

import (
	"math"
	"strings"
	"unicode"

	"pricewatch/models"
	"pricewatch/utils"
)

// Cleaner sanitises backend records before they reach the catalog. Bad
// prices and ratings become absent rather than zero.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean returns sanitised copies of the records. Order and length are kept
// so catalog indices line up with what the backend sent.
func (c *Cleaner) Clean(raw []models.ProductRecord) []models.ProductRecord {
	result := make([]models.ProductRecord, len(raw))
	fixed := 0

	for i, r := range raw {
		before := r
		r.Title = normaliseText(r.Title)
		r.Platform = strings.TrimSpace(r.Platform)
		r.CurrentPrice = cleanPrice(r.CurrentPrice)
		r.HighestPrice = cleanPrice(r.HighestPrice)
		r.LowestPrice = cleanPrice(r.LowestPrice)
		r.Price = cleanPrice(r.Price)
		r.CurrentRating = cleanRating(r.CurrentRating)
		r.Rating = cleanRating(r.Rating)
		if r.PriceChangePercent != nil && !finite(*r.PriceChangePercent) {
			r.PriceChangePercent = nil
		}
		if r.TimesScraped < 0 {
			r.TimesScraped = 0
		}

		if changed(before, r) {
			fixed++
			c.logger.Debug("[cleaner] Sanitised record %d: %s", i, r.Title)
		}
		result[i] = r
	}

	if fixed > 0 {
		c.logger.Info("[cleaner] Sanitised %d of %d records", fixed, len(raw))
	}
	return result
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// cleanPrice drops negative or non-finite prices.
func cleanPrice(p *float64) *float64 {
	if p == nil || !finite(*p) || *p < 0 {
		return nil
	}
	return p
}

// cleanRating drops ratings outside the 0.0–5.0 range.
func cleanRating(r *float64) *float64 {
	if r == nil || !finite(*r) || *r < 0 || *r > 5 {
		return nil
	}
	return r
}

func changed(a, b models.ProductRecord) bool {
	return a.Title != b.Title || a.Platform != b.Platform ||
		a.CurrentPrice != b.CurrentPrice || a.HighestPrice != b.HighestPrice ||
		a.LowestPrice != b.LowestPrice || a.Price != b.Price ||
		a.CurrentRating != b.CurrentRating || a.Rating != b.Rating ||
		a.PriceChangePercent != b.PriceChangePercent || a.TimesScraped != b.TimesScraped
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
