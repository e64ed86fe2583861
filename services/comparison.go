package services

import (
	"fmt"
	"math"
	"strconv"

	"pricewatch/models"
)

// Compare resolves two selections against the catalog and compares them.
// Checks run in order: both selections must resolve (ErrNotLoaded), then
// they must point at different indices (ErrSameProduct).
func (c *CatalogCache) Compare(first, second Selection) (*models.Comparison, error) {
	p1, err1 := c.Get(first)
	p2, err2 := c.Get(second)
	if err1 != nil || err2 != nil {
		return nil, ErrNotLoaded
	}
	if first.Index == second.Index {
		return nil, ErrSameProduct
	}
	return CompareRecords(p1, p2), nil
}

// CompareRecords builds the side-by-side table for two products and, when
// both carry a current price, the price delta block.
func CompareRecords(p1, p2 models.ProductRecord) *models.Comparison {
	return &models.Comparison{
		Rows:  comparisonRows(p1, p2),
		Price: comparePrices(p1.CurrentPrice, p2.CurrentPrice),
	}
}

// comparePrices reports Product 1 as cheaper only when price1 < price2.
// Equal prices therefore report Product 2.
// TODO: confirm with product whether equal prices should say "same price".
func comparePrices(price1, price2 *float64) *models.PriceComparison {
	if price1 == nil || price2 == nil {
		return nil
	}
	a, b := *price1, *price2
	if math.IsNaN(a) || math.IsNaN(b) {
		return nil
	}

	cheaper, slot := "Product 2", 2
	if a < b {
		cheaper, slot = "Product 1", 1
	}

	diff := math.Abs(a - b)
	saving := 0.0
	if hi := math.Max(a, b); hi > 0 {
		saving = round1(diff / hi * 100)
	}

	return &models.PriceComparison{
		Cheaper:       cheaper,
		CheaperSlot:   slot,
		Diff:          diff,
		SavingPercent: saving,
		Summary: fmt.Sprintf("%s is %s cheaper (%s saving)",
			cheaper, FormatAmount(diff), FormatPercent(saving)),
	}
}

func comparisonRows(p1, p2 models.ProductRecord) []models.ComparisonRow {
	return []models.ComparisonRow{
		{Attribute: "Title", First: truncate(orUnknown(p1.Title), 65), Second: truncate(orUnknown(p2.Title), 65)},
		{Attribute: "Platform", First: p1.DisplayPlatform(), Second: p2.DisplayPlatform()},
		{Attribute: "Current Price", First: FormatPrice(p1.CurrentPrice), Second: FormatPrice(p2.CurrentPrice)},
		{Attribute: "Rating", First: FormatRating(p1.CurrentRating), Second: FormatRating(p2.CurrentRating)},
		{Attribute: "Trend", First: ClassifyTrend(p1.PriceTrend).Label(), Second: ClassifyTrend(p2.PriceTrend).Label()},
		{Attribute: "Times Scraped", First: strconv.Itoa(p1.TimesScraped), Second: strconv.Itoa(p2.TimesScraped)},
		{Attribute: "First Seen", First: FormatDate(p1.FirstSeen), Second: FormatDate(p2.FirstSeen)},
	}
}
