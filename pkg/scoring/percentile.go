// pkg/scoring/percentile.go
package scoring

import "ValueRadar/pkg/model"

// 离群类别在市场分位数上的固定切点（低侧闭区间）
const (
	cutStrongUndervalued = 20.0
	cutUndervalued       = 35.0
	cutFairlyValued      = 65.0
	cutOvervalued        = 80.0
)

// RankAndCategorize 对一轮运行产出的全部结果计算市场/板块分位数并归类
// 分位数每轮从当前结果集重算，股票池变化时跨轮不可比
func RankAndCategorize(rows []*model.CalculatedMetrics) {
	if len(rows) == 0 {
		return
	}

	assignPercentiles(rows, func(row *model.CalculatedMetrics, pct float64) {
		row.MarketPercentile = pct
		row.OutlierCategory = CategorizeMarketPercentile(pct)
	})

	// 板块分位数按板块分组后同法计算
	bySector := make(map[string][]*model.CalculatedMetrics)
	for _, row := range rows {
		bySector[row.Sector] = append(bySector[row.Sector], row)
	}
	for _, group := range bySector {
		assignPercentiles(group, func(row *model.CalculatedMetrics, pct float64) {
			row.SectorPercentile = pct
		})
	}
}

// assignPercentiles 计算升序排名分位数：rank = 不大于自身分数的结果数
func assignPercentiles(rows []*model.CalculatedMetrics, assign func(*model.CalculatedMetrics, float64)) {
	n := float64(len(rows))
	for _, row := range rows {
		rank := 0
		for _, other := range rows {
			if other.CompositeScore <= row.CompositeScore {
				rank++
			}
		}
		assign(row, float64(rank)/n*100)
	}
}

// CategorizeMarketPercentile 市场分位数到离群类别的确定性单调映射
func CategorizeMarketPercentile(pct float64) model.OutlierCategory {
	switch {
	case pct <= cutStrongUndervalued:
		return model.OutlierStrongUndervalued
	case pct <= cutUndervalued:
		return model.OutlierUndervalued
	case pct <= cutFairlyValued:
		return model.OutlierFairlyValued
	case pct <= cutOvervalued:
		return model.OutlierOvervalued
	default:
		return model.OutlierStrongOvervalued
	}
}
