package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineSubMetricsRenormalizesWeights(t *testing.T) {
	metrics := []subMetric{
		{name: "a", weight: 0.6, bands: roeBands, value: ptr(22.0)}, // 100分
		{name: "b", weight: 0.4, bands: roeBands, value: nil},       // 缺失
	}

	score, completeness, err := combineSubMetrics("AAPL", metrics, 1.0)
	require.NoError(t, err)

	// 缺失的子指标不拉低得分，权重在剩余子指标上归一化
	assert.InDelta(t, 100.0, score.Score, 1e-9)
	assert.InDelta(t, 0.5, completeness, 1e-9)
	assert.InDelta(t, 0.5, score.DataQuality, 1e-9)
	assert.Len(t, score.SubScores, 1)
	assert.InDelta(t, 100.0, score.SubScores["a"], 1e-9)
}

func TestCombineSubMetricsWeightedAverage(t *testing.T) {
	metrics := []subMetric{
		{name: "a", weight: 0.75, bands: roeBands, value: ptr(22.0)}, // 100分
		{name: "b", weight: 0.25, bands: roeBands, value: ptr(6.0)},  // 50分
	}

	score, _, err := combineSubMetrics("AAPL", metrics, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 87.5, score.Score, 1e-9)
	assert.InDelta(t, 1.0, score.DataQuality, 1e-9)
}

func TestCombineSubMetricsAllMissing(t *testing.T) {
	metrics := []subMetric{
		{name: "a", weight: 0.6, bands: roeBands, value: nil},
		{name: "b", weight: 0.4, bands: roeBands, value: nil},
	}

	_, _, err := combineSubMetrics("AAPL", metrics, 1.0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCombineSubMetricsZeroScoreExcluded(t *testing.T) {
	metrics := []subMetric{
		{name: "a", weight: 0.5, bands: roeBands, value: ptr(22.0)},  // 100分
		{name: "b", weight: 0.5, bands: roeBands, value: ptr(-50.0)}, // 衰减到0分
	}

	score, _, err := combineSubMetrics("AAPL", metrics, 1.0)
	require.NoError(t, err)

	// 零分子指标按无效得分处理，不参与归一化
	assert.InDelta(t, 100.0, score.Score, 1e-9)
	assert.NotContains(t, score.SubScores, "b")
	assert.InDelta(t, 0.5, score.DataQuality, 1e-9)
}

func TestPositiveFiltersNonPositive(t *testing.T) {
	assert.Nil(t, positive(nil))
	assert.Nil(t, positive(ptr(0.0)))
	assert.Nil(t, positive(ptr(-3.5))) // 负市盈率等无意义值
	assert.Equal(t, 12.5, *positive(ptr(12.5)))
}
