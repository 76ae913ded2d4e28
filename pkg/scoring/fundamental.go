// pkg/scoring/fundamental.go
package scoring

import "ValueRadar/pkg/model"

// FundamentalCalculator 基本面估值分量计算器
// 子指标：市盈率、市净率、市销率、PEG，均为越低越好
type FundamentalCalculator struct{}

func NewFundamentalCalculator() *FundamentalCalculator {
	return &FundamentalCalculator{}
}

// Calculate 计算估值分量，数据不足返回ErrInsufficientData
func (c *FundamentalCalculator) Calculate(f *model.StockFundamentals, sector string) (*model.ComponentScore, error) {
	if f == nil {
		return nil, ErrInsufficientData
	}

	adj := AdjustmentFor(sector)
	metrics := []subMetric{
		{
			name:   "pe_ratio",
			weight: 0.35,
			bands:  Bands{Excellent: 10, Good: 15, Average: 22, Poor: 30, VeryPoor: 45, LowerIsBetter: true},
			value:  positive(f.PERatio),
		},
		{
			name:   "pb_ratio",
			weight: 0.25,
			bands:  Bands{Excellent: 1.0, Good: 1.8, Average: 3.0, Poor: 5.0, VeryPoor: 8.0, LowerIsBetter: true},
			value:  positive(f.PBRatio),
		},
		{
			name:   "ps_ratio",
			weight: 0.20,
			bands:  Bands{Excellent: 1.0, Good: 2.0, Average: 3.5, Poor: 6.0, VeryPoor: 10.0, LowerIsBetter: true},
			value:  positive(f.PSRatio),
		},
		{
			name:   "peg_ratio",
			weight: 0.20,
			bands:  Bands{Excellent: 0.5, Good: 1.0, Average: 1.5, Poor: 2.5, VeryPoor: 4.0, LowerIsBetter: true},
			value:  positive(f.PEGRatio),
		},
	}

	score, _, err := combineSubMetrics(f.Symbol, metrics, adj.FundamentalMultiplier)
	return score, err
}
