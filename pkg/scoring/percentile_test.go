package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ValueRadar/pkg/model"
)

func metricsRow(symbol, sector string, composite float64) *model.CalculatedMetrics {
	return &model.CalculatedMetrics{Symbol: symbol, Sector: sector, CompositeScore: composite}
}

func TestRankAndCategorizeFiveStocks(t *testing.T) {
	rows := []*model.CalculatedMetrics{
		metricsRow("A", "Technology", 90),
		metricsRow("B", "Technology", 80),
		metricsRow("C", "Technology", 70),
		metricsRow("D", "Technology", 60),
		metricsRow("E", "Technology", 50),
	}

	RankAndCategorize(rows)

	wantPct := []float64{100, 80, 60, 40, 20}
	wantCat := []model.OutlierCategory{
		model.OutlierStrongOvervalued,
		model.OutlierOvervalued,
		model.OutlierFairlyValued,
		model.OutlierFairlyValued,
		model.OutlierStrongUndervalued,
	}
	for i, row := range rows {
		assert.InDelta(t, wantPct[i], row.MarketPercentile, 1e-9, "股票%s市场分位数", row.Symbol)
		assert.Equal(t, wantCat[i], row.OutlierCategory, "股票%s离群类别", row.Symbol)
		// 单一板块时板块分位数与市场分位数一致
		assert.InDelta(t, wantPct[i], row.SectorPercentile, 1e-9)
	}
}

func TestRankAndCategorizeTiedScores(t *testing.T) {
	rows := []*model.CalculatedMetrics{
		metricsRow("A", "Energy", 75),
		metricsRow("B", "Energy", 75),
		metricsRow("C", "Energy", 50),
	}

	RankAndCategorize(rows)

	// 并列分数拿到相同分位数
	assert.InDelta(t, rows[0].MarketPercentile, rows[1].MarketPercentile, 1e-9)
	assert.Less(t, rows[2].MarketPercentile, rows[0].MarketPercentile)
}

func TestSectorPercentilesGroupedBySector(t *testing.T) {
	rows := []*model.CalculatedMetrics{
		metricsRow("T1", "Technology", 90),
		metricsRow("T2", "Technology", 40),
		metricsRow("U1", "Utilities", 60),
	}

	RankAndCategorize(rows)

	// 公用事业板块只有一只股票，板块分位数为100
	assert.InDelta(t, 100.0, rows[2].SectorPercentile, 1e-9)
	// 科技板块内部两只股票各占50/100
	assert.InDelta(t, 100.0, rows[0].SectorPercentile, 1e-9)
	assert.InDelta(t, 50.0, rows[1].SectorPercentile, 1e-9)
}

func TestRankAndCategorizeEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		RankAndCategorize(nil)
		RankAndCategorize([]*model.CalculatedMetrics{})
	})
}

func TestCategorizeMarketPercentileBoundaries(t *testing.T) {
	tests := []struct {
		pct  float64
		want model.OutlierCategory
	}{
		{0, model.OutlierStrongUndervalued},
		{20, model.OutlierStrongUndervalued},
		{20.001, model.OutlierUndervalued},
		{35, model.OutlierUndervalued},
		{35.001, model.OutlierFairlyValued},
		{65, model.OutlierFairlyValued},
		{65.001, model.OutlierOvervalued},
		{80, model.OutlierOvervalued},
		{80.001, model.OutlierStrongOvervalued},
		{100, model.OutlierStrongOvervalued},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeMarketPercentile(tt.pct), "分位数%.3f", tt.pct)
	}
}

func TestCategorizeMarketPercentileMonotonic(t *testing.T) {
	order := map[model.OutlierCategory]int{
		model.OutlierStrongUndervalued: 0,
		model.OutlierUndervalued:       1,
		model.OutlierFairlyValued:      2,
		model.OutlierOvervalued:        3,
		model.OutlierStrongOvervalued:  4,
	}

	prev := -1
	for pct := 0.0; pct <= 100; pct += 0.25 {
		rank := order[CategorizeMarketPercentile(pct)]
		assert.GreaterOrEqual(t, rank, prev, "分位数%.2f处类别映射不单调", pct)
		prev = rank
	}
}
