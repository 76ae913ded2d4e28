// pkg/scoring/quality.go
package scoring

import "ValueRadar/pkg/model"

// QualityCalculator 财务质量分量计算器
// 子指标：净资产收益率、产权比率、流动比率、营业利润率
type QualityCalculator struct{}

func NewQualityCalculator() *QualityCalculator {
	return &QualityCalculator{}
}

// Calculate 计算质量分量，数据不足返回ErrInsufficientData
func (c *QualityCalculator) Calculate(f *model.StockFundamentals, sector string) (*model.ComponentScore, error) {
	if f == nil {
		return nil, ErrInsufficientData
	}

	adj := AdjustmentFor(sector)
	metrics := []subMetric{
		{
			name:   "roe",
			weight: 0.35,
			bands:  Bands{Excellent: 22, Good: 16, Average: 11, Poor: 6, VeryPoor: 2},
			value:  f.ROE,
		},
		{
			name:   "debt_to_equity",
			weight: 0.25,
			bands:  Bands{Excellent: 0.3, Good: 0.6, Average: 1.0, Poor: 1.8, VeryPoor: 3.0, LowerIsBetter: true},
			value:  positive(f.DebtToEquity),
		},
		{
			name:   "current_ratio",
			weight: 0.15,
			bands:  Bands{Excellent: 2.5, Good: 2.0, Average: 1.5, Poor: 1.0, VeryPoor: 0.6},
			value:  positive(f.CurrentRatio),
		},
		{
			name:   "operating_margin",
			weight: 0.25,
			bands:  Bands{Excellent: 25, Good: 18, Average: 12, Poor: 6, VeryPoor: 2},
			value:  f.OperatingMargin,
		},
	}

	score, _, err := combineSubMetrics(f.Symbol, metrics, adj.QualityMultiplier)
	return score, err
}
