package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"pricewatch/models"
	"pricewatch/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises a catalog generation. Absent prices and ratings are
// left out of the price statistics and the top-rated list.
func (s *InsightService) Generate(records []models.ProductRecord) *models.InsightReport {
	report := &models.InsightReport{
		ByPlatform: make(map[string]int),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalProducts = len(records)

	var priced []models.ProductRecord
	var rated []models.ProductRecord

	for _, r := range records {
		report.ByPlatform[r.DisplayPlatform()]++
		if r.CurrentPrice != nil {
			priced = append(priced, r)
		}
		if r.CurrentRating != nil && *r.CurrentRating > 0 {
			rated = append(rated, r)
		}
	}

	trends := CountTrends(records)
	report.TrendUp, report.TrendDown, report.TrendStable = trends.Up, trends.Down, trends.Stable

	if len(priced) > 0 {
		report.PricedProducts = len(priced)
		report.MinPrice = *priced[0].CurrentPrice
		report.MaxPrice = *priced[0].CurrentPrice
		mostExpensive := priced[0]
		var total float64
		for _, r := range priced {
			p := *r.CurrentPrice
			total += p
			if p < report.MinPrice {
				report.MinPrice = p
			}
			if p > report.MaxPrice {
				report.MaxPrice = p
				mostExpensive = r
			}
		}
		report.MostExpensive = &mostExpensive
		report.AveragePrice = round2(total / float64(len(priced)))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].CurrentRating > *rated[j].CurrentRating
	})
	if len(rated) > 5 {
		report.TopRated = rated[:5]
	} else {
		report.TopRated = rated
	}

	s.logger.Debug("[insights] %d products, %d priced, %d rated",
		report.TotalProducts, len(priced), len(rated))
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  CATALOG INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Products in catalog : \033[1m%d\033[0m\n", r.TotalProducts)
	fmt.Fprintf(w, "  Trends              : %d rising · %d dropping · %d stable\n",
		r.TrendUp, r.TrendDown, r.TrendStable)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedProducts > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m%s\033[0m\n", FormatAmount(r.AveragePrice))
		fmt.Fprintf(w, "  Minimum price : \033[1;32m%s\033[0m\n", FormatAmount(r.MinPrice))
		fmt.Fprintf(w, "  Maximum price : \033[1;32m%s\033[0m\n", FormatAmount(r.MaxPrice))
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Product\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", shorten(r.MostExpensive.Title, 50))
		fmt.Fprintf(w, "  Platform : %s\n", r.MostExpensive.DisplayPlatform())
		fmt.Fprintf(w, "  Price    : \033[1;31m%s\033[0m\n", FormatPrice(r.MostExpensive.CurrentPrice))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Top 5 Highest Rated Products\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Fprintf(w, "  No rated products found\n")
	} else {
		for i, p := range r.TopRated {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%s ★\033[0m\n",
				i+1, shorten(p.Title, 38), FormatRating(p.CurrentRating))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Products by Platform\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ByPlatform) == 0 {
		fmt.Fprintf(w, "  No platform data\n")
	} else {
		type platformCount struct {
			platform string
			count    int
		}
		var counts []platformCount
		for p, n := range r.ByPlatform {
			counts = append(counts, platformCount{p, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count == counts[j].count {
				return counts[i].platform < counts[j].platform
			}
			return counts[i].count > counts[j].count
		})
		for _, pc := range counts {
			bar := strings.Repeat("█", pc.count)
			fmt.Fprintf(w, "  %-30s %s (%d)\n", shorten(pc.platform, 28), bar, pc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// shorten cuts s to max runes, marking the cut with "...".
func shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
