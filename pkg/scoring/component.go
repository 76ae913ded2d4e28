// pkg/scoring/component.go
package scoring

import (
	"errors"

	"ValueRadar/pkg/model"
)

// ErrInsufficientData 可计算子指标为零，该分量无法产出
// 调用方据此跳过该分量，不视为计算错误
var ErrInsufficientData = errors.New("数据不足，无法计算分量分数")

// subMetric 一个子指标的定义：权重、五档切点与取值
type subMetric struct {
	name   string
	weight float64
	bands  Bands
	value  *float64 // nil表示缺失
}

// combineSubMetrics 合成子指标得分
// 权重只在产出了有效得分的子指标上重新归一化，缺数据优雅降级而不是整体清零
// 返回分量得分、完整度（可计算子指标占比）与各子指标得分
func combineSubMetrics(symbol string, metrics []subMetric, multiplier float64) (*model.ComponentScore, float64, error) {
	var weightedSum, weightSum float64
	subScores := make(map[string]float64)

	for _, metric := range metrics {
		if metric.value == nil {
			continue
		}
		score := metric.bands.Scaled(multiplier).Score(*metric.value)
		if score <= 0 {
			// 零分视为无效得分，不参与归一化
			continue
		}
		subScores[metric.name] = score
		weightedSum += metric.weight * score
		weightSum += metric.weight
	}

	if weightSum == 0 {
		return nil, 0, ErrInsufficientData
	}

	completeness := float64(len(subScores)) / float64(len(metrics))
	return &model.ComponentScore{
		Symbol:      symbol,
		Score:       weightedSum / weightSum,
		DataQuality: completeness,
		SubScores:   subScores,
	}, completeness, nil
}

// positive 过滤无意义的非正值（负市盈率等），返回可用于打分的指针
func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func ptr(v float64) *float64 {
	return &v
}
