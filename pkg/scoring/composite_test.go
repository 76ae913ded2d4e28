package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueRadar/pkg/model"
)

func component(score, quality float64) *model.ComponentScore {
	return &model.ComponentScore{Symbol: "AAPL", Score: score, DataQuality: quality}
}

func newTestEngine() *CompositeEngine {
	return NewCompositeEngine(0.3, 0.4, "2.1")
}

func TestComposeFullComponents(t *testing.T) {
	engine := newTestEngine()
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	row, err := engine.Compose("AAPL", "Technology", date,
		component(80, 1.0), component(70, 1.0), component(90, 1.0), component(60, 1.0))
	require.NoError(t, err)

	// 四分量全满质量时权重退化为板块方法论权重
	// Technology: 0.25*80 + 0.20*70 + 0.40*90 + 0.15*60 = 79
	assert.InDelta(t, 79.0, row.CompositeScore, 1e-9)
	assert.InDelta(t, 1.0, row.OverallDataQuality, 1e-9)
	assert.Equal(t, "2.1", row.MethodologyVersion)
	assert.Equal(t, "Technology", row.Sector)
	assert.Equal(t, date, row.CalculationDate)
	assert.InDelta(t, 80.0, *row.FundamentalScore, 1e-9)
	assert.InDelta(t, 60.0, *row.SentimentScore, 1e-9)
}

func TestComposeMissingComponentRenormalizes(t *testing.T) {
	engine := newTestEngine()

	// default板块权重 0.35/0.25/0.25/0.15，成长分量缺失
	row, err := engine.Compose("KO", "Unknown", time.Now(),
		component(80, 0.9), component(70, 0.8), nil, component(60, 0.5))
	require.NoError(t, err)

	// weight_i = 板块权重 × 质量：0.315/0.200/—/0.075
	want := (0.315*80 + 0.200*70 + 0.075*60) / (0.315 + 0.200 + 0.075)
	assert.InDelta(t, want, row.CompositeScore, 1e-9)

	// 综合质量 = 完整度(3/4) × 在场分量平均质量
	assert.InDelta(t, 0.75*(0.9+0.8+0.5)/3, row.OverallDataQuality, 1e-9)
	assert.Nil(t, row.GrowthScore)
	assert.Zero(t, row.GrowthQuality)
}

func TestComposeRejectsLowQualityCoreComponent(t *testing.T) {
	engine := newTestEngine()

	// 基本面分量存在但质量低于下限0.3
	_, err := engine.Compose("XYZ", "Energy", time.Now(),
		component(80, 0.2), component(70, 0.9), component(60, 0.9), component(50, 0.9))
	assert.ErrorIs(t, err, ErrInsufficientData)

	// 同样的质量出现在情绪分量上只降权，不拒绝
	row, err := engine.Compose("XYZ", "Energy", time.Now(),
		component(80, 0.9), component(70, 0.9), component(60, 0.9), component(50, 0.2))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, row.SentimentQuality, 1e-9)
}

func TestComposeRejectsLowOverallQuality(t *testing.T) {
	engine := newTestEngine()

	// 只有情绪分量：完整度1/4，综合质量0.25低于下限0.4
	_, err := engine.Compose("XYZ", "Unknown", time.Now(),
		nil, nil, nil, component(60, 1.0))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComposeRejectsNoComponents(t *testing.T) {
	engine := newTestEngine()
	_, err := engine.Compose("XYZ", "Unknown", time.Now(), nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComposeScoreWithinBounds(t *testing.T) {
	engine := newTestEngine()

	for _, scores := range [][4]float64{
		{0, 0, 0, 0},
		{100, 100, 100, 100},
		{13.7, 91.2, 44.4, 67.8},
	} {
		row, err := engine.Compose("AAPL", "Healthcare", time.Now(),
			component(scores[0], 0.8), component(scores[1], 0.7),
			component(scores[2], 0.9), component(scores[3], 0.6))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, row.CompositeScore, 0.0)
		assert.LessOrEqual(t, row.CompositeScore, 100.0)
	}
}
