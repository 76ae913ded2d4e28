// pkg/scoring/growth.go
package scoring

import "ValueRadar/pkg/model"

// GrowthCalculator 成长分量计算器
// 子指标：营收、净利润、每股收益、自由现金流的同比增速（%）
type GrowthCalculator struct{}

func NewGrowthCalculator() *GrowthCalculator {
	return &GrowthCalculator{}
}

// Calculate 计算成长分量，数据不足返回ErrInsufficientData
func (c *GrowthCalculator) Calculate(f *model.StockFundamentals, sector string) (*model.ComponentScore, error) {
	if f == nil {
		return nil, ErrInsufficientData
	}

	adj := AdjustmentFor(sector)
	growthBands := Bands{Excellent: 25, Good: 15, Average: 8, Poor: 2, VeryPoor: -5}

	metrics := []subMetric{
		{name: "revenue_growth", weight: 0.30, bands: growthBands, value: f.RevenueGrowth},
		{name: "earnings_growth", weight: 0.30, bands: growthBands, value: f.EarningsGrowth},
		{name: "eps_growth", weight: 0.20, bands: growthBands, value: f.EPSGrowth},
		{name: "fcf_growth", weight: 0.20, bands: growthBands, value: f.FCFGrowth},
	}

	score, _, err := combineSubMetrics(f.Symbol, metrics, adj.GrowthMultiplier)
	return score, err
}
