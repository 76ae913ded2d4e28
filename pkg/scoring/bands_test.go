package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ROE风格切点：越大越好
var roeBands = Bands{Excellent: 22, Good: 16, Average: 11, Poor: 6, VeryPoor: 2}

// 市盈率风格切点：越小越好
var peBands = Bands{Excellent: 10, Good: 15, Average: 22, Poor: 30, VeryPoor: 45, LowerIsBetter: true}

func TestBandsScoreAnchors(t *testing.T) {
	tests := []struct {
		name  string
		bands Bands
		value float64
		want  float64
	}{
		{name: "Excellent档锚定分", bands: roeBands, value: 22, want: 100},
		{name: "Good档锚定分", bands: roeBands, value: 16, want: 85},
		{name: "Average档锚定分", bands: roeBands, value: 11, want: 70},
		{name: "Poor档锚定分", bands: roeBands, value: 6, want: 50},
		{name: "VeryPoor档锚定分", bands: roeBands, value: 2, want: 25},
		{name: "超过Excellent封顶", bands: roeBands, value: 40, want: 100},
		{name: "LowerIsBetter的Excellent档", bands: peBands, value: 10, want: 100},
		{name: "LowerIsBetter的Good档", bands: peBands, value: 15, want: 85},
		{name: "LowerIsBetter的Poor档", bands: peBands, value: 30, want: 50},
		{name: "LowerIsBetter的VeryPoor档", bands: peBands, value: 45, want: 25},
		{name: "LowerIsBetter低于Excellent封顶", bands: peBands, value: 5, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.bands.Score(tt.value), 1e-9)
		})
	}
}

func TestBandsScoreInterpolation(t *testing.T) {
	// Good(16→85)与Excellent(22→100)中点
	assert.InDelta(t, 92.5, roeBands.Score(19), 1e-9)
	// Poor(6→50)与Average(11→70)中点
	assert.InDelta(t, 60, roeBands.Score(8.5), 1e-9)
	// LowerIsBetter方向的插值同样单调
	assert.InDelta(t, 92.5, peBands.Score(12.5), 1e-9)
}

func TestBandsScoreBelowVeryPoor(t *testing.T) {
	// VeryPoor以下按Poor档斜率继续衰减：span=6-2=4，每降1值降6.25分
	assert.InDelta(t, 18.75, roeBands.Score(1), 1e-9)
	assert.InDelta(t, 12.5, roeBands.Score(0), 1e-9)
	// 衰减到0后不再为负
	assert.Equal(t, 0.0, roeBands.Score(-100))
	assert.Equal(t, 0.0, peBands.Score(1000))
}

func TestBandsScoreMonotonic(t *testing.T) {
	prev := -1.0
	for v := -5.0; v <= 30; v += 0.5 {
		score := roeBands.Score(v)
		assert.GreaterOrEqual(t, score, prev, "值%.1f处打分函数不单调", v)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
		prev = score
	}
}

func TestBandsScaled(t *testing.T) {
	scaled := peBands.Scaled(1.5)
	assert.InDelta(t, 15.0, scaled.Excellent, 1e-9)
	assert.InDelta(t, 67.5, scaled.VeryPoor, 1e-9)
	assert.True(t, scaled.LowerIsBetter)

	// 原切点不受影响
	assert.InDelta(t, 10.0, peBands.Excellent, 1e-9)

	// 系数为1或非法时原样返回
	assert.Equal(t, peBands, peBands.Scaled(1.0))
	assert.Equal(t, peBands, peBands.Scaled(0))
	assert.Equal(t, peBands, peBands.Scaled(-2))
}

func TestBandsScaledLoosensValuation(t *testing.T) {
	// 科技板块放宽估值容忍：同一个市盈率在放宽后的切点下得分更高
	loose := peBands.Scaled(1.5)
	assert.Greater(t, loose.Score(22), peBands.Score(22))
}
