// pkg/scoring/composite.go
package scoring

import (
	"fmt"
	"time"

	"ValueRadar/pkg/model"
)

// CompositeEngine 综合打分引擎
// 按 weight_i = 板块方法论权重_i × 分量数据质量_i 的置信度加权合成综合分
type CompositeEngine struct {
	minComponentQuality float64 // 基本面/质量/成长分量的质量下限
	minOverallQuality   float64 // 综合数据质量下限
	version             string  // 方法论版本号
}

// NewCompositeEngine 创建综合打分引擎
func NewCompositeEngine(minComponentQuality, minOverallQuality float64, version string) *CompositeEngine {
	return &CompositeEngine{
		minComponentQuality: minComponentQuality,
		minOverallQuality:   minOverallQuality,
		version:             version,
	}
}

// Compose 合成单只股票的综合分
// 缺失的分量按零权重参与（权重在剩余分量上归一化）；
// 基本面/质量/成长任一分量存在但质量低于下限，或综合质量不达标时，
// 返回ErrInsufficientData，该股票本轮不产出结果
func (e *CompositeEngine) Compose(symbol, sector string, date time.Time, fundamental, quality, growth, sentiment *model.ComponentScore) (*model.CalculatedMetrics, error) {
	// 核心分量的质量下限检查（情绪分量允许低质量，只会被降权）
	for name, component := range map[string]*model.ComponentScore{
		"fundamental": fundamental,
		"quality":     quality,
		"growth":      growth,
	} {
		if component != nil && component.DataQuality < e.minComponentQuality {
			return nil, fmt.Errorf("%w: %s分量质量%.2f低于下限%.2f",
				ErrInsufficientData, name, component.DataQuality, e.minComponentQuality)
		}
	}

	adj := AdjustmentFor(sector)
	components := []struct {
		score  *model.ComponentScore
		weight float64
	}{
		{fundamental, adj.Weights.Fundamental},
		{quality, adj.Weights.Quality},
		{growth, adj.Weights.Growth},
		{sentiment, adj.Weights.Sentiment},
	}

	var weightedSum, weightSum, qualitySum float64
	present := 0
	for _, c := range components {
		if c.score == nil {
			continue
		}
		present++
		qualitySum += c.score.DataQuality

		w := c.weight * c.score.DataQuality
		if w <= 0 {
			continue
		}
		weightedSum += w * c.score.Score
		weightSum += w
	}

	if present == 0 || weightSum == 0 {
		return nil, fmt.Errorf("%w: 无可用分量", ErrInsufficientData)
	}

	// 综合质量 = 完整度 × 在场分量的平均质量
	completeness := float64(present) / float64(len(components))
	overallQuality := completeness * (qualitySum / float64(present))
	if overallQuality < e.minOverallQuality {
		return nil, fmt.Errorf("%w: 综合数据质量%.2f低于下限%.2f",
			ErrInsufficientData, overallQuality, e.minOverallQuality)
	}

	row := &model.CalculatedMetrics{
		Symbol:             symbol,
		CalculationDate:    date,
		Sector:             sector,
		CompositeScore:     weightedSum / weightSum,
		OverallDataQuality: overallQuality,
		MethodologyVersion: e.version,
	}
	if fundamental != nil {
		row.FundamentalScore = ptr(fundamental.Score)
		row.FundamentalQuality = fundamental.DataQuality
	}
	if quality != nil {
		row.QualityScore = ptr(quality.Score)
		row.QualityQuality = quality.DataQuality
	}
	if growth != nil {
		row.GrowthScore = ptr(growth.Score)
		row.GrowthQuality = growth.DataQuality
	}
	if sentiment != nil {
		row.SentimentScore = ptr(sentiment.Score)
		row.SentimentQuality = sentiment.DataQuality
	}

	return row, nil
}
