package models

// InsightReport holds summary analytics over one catalog generation.
type InsightReport struct {
	TotalProducts  int
	PricedProducts int
	AveragePrice   float64
	MinPrice       float64
	MaxPrice       float64
	MostExpensive  *ProductRecord
	TopRated       []ProductRecord
	ByPlatform     map[string]int
	TrendUp        int
	TrendDown      int
	TrendStable    int
}
