package models

import "strings"

// Known platform identifiers as delivered by the backend.
const (
	PlatformAmazon   = "AMAZON"
	PlatformFlipkart = "FLIPKART"
)

// ProductRecord is a platform-sourced product snapshot with its price history
// metadata. Nil pointer fields mean the backend did not supply a value; an
// absent price is never the same as a zero price.
type ProductRecord struct {
	ID                 string   `json:"_id,omitempty"`
	ProductID          string   `json:"product_id,omitempty"`
	Platform           string   `json:"platform"`
	Category           string   `json:"category,omitempty"`
	Title              string   `json:"title"`
	URL                string   `json:"url,omitempty"`
	CurrentPrice       *float64 `json:"current_price"`
	CurrentRating      *float64 `json:"current_rating"`
	PriceTrend         string   `json:"price_trend"`
	PriceChangePercent *float64 `json:"price_change_percent"`
	HighestPrice       *float64 `json:"highest_price"`
	LowestPrice        *float64 `json:"lowest_price"`
	FirstSeen          string   `json:"first_seen"`
	LastSeen           string   `json:"last_seen"`
	TimesScraped       int      `json:"times_scraped"`

	// Price and Rating are populated on freshly collected rows instead of
	// the current_* fields.
	Price  *float64 `json:"price,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
}

// DisplayPlatform returns the upper-cased platform, or "?" when unknown.
func (p ProductRecord) DisplayPlatform() string {
	if p.Platform == "" {
		return "?"
	}
	return strings.ToUpper(p.Platform)
}

// EffectivePrice prefers the tracked current price and falls back to the
// collected price.
func (p ProductRecord) EffectivePrice() *float64 {
	if p.CurrentPrice != nil {
		return p.CurrentPrice
	}
	return p.Price
}

// EffectiveRating prefers the tracked current rating and falls back to the
// collected rating.
func (p ProductRecord) EffectiveRating() *float64 {
	if p.CurrentRating != nil {
		return p.CurrentRating
	}
	return p.Rating
}

// Float returns a pointer to v. Handy for building records in code and tests.
func Float(v float64) *float64 {
	return &v
}
