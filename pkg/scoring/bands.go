// pkg/scoring/bands.go
package scoring

import "math"

// 五档切点对应的锚定分
const (
	scoreExcellent = 100.0
	scoreGood      = 85.0
	scoreAverage   = 70.0
	scorePoor      = 50.0
	scoreVeryPoor  = 25.0
)

// Bands 五档分段线性打分函数的切点
// LowerIsBetter时切点递增（如市盈率），否则递减（如ROE）
type Bands struct {
	Excellent     float64
	Good          float64
	Average       float64
	Poor          float64
	VeryPoor      float64
	LowerIsBetter bool
}

// Scaled 按板块系数缩放切点，返回新的切点组，原值不变
func (b Bands) Scaled(multiplier float64) Bands {
	if multiplier <= 0 || multiplier == 1.0 {
		return b
	}
	return Bands{
		Excellent:     b.Excellent * multiplier,
		Good:          b.Good * multiplier,
		Average:       b.Average * multiplier,
		Poor:          b.Poor * multiplier,
		VeryPoor:      b.VeryPoor * multiplier,
		LowerIsBetter: b.LowerIsBetter,
	}
}

// Score 把原始指标值映射到[0,100]
// 档位之间线性插值；超出very_poor档继续线性衰减到0
func (b Bands) Score(value float64) float64 {
	// 统一转换成"越大越好"再打分
	v := value
	e, g, a, p, vp := b.Excellent, b.Good, b.Average, b.Poor, b.VeryPoor
	if b.LowerIsBetter {
		v, e, g, a, p, vp = -v, -e, -g, -a, -p, -vp
	}

	switch {
	case v >= e:
		return scoreExcellent
	case v >= g:
		return lerp(v, g, e, scoreGood, scoreExcellent)
	case v >= a:
		return lerp(v, a, g, scoreAverage, scoreGood)
	case v >= p:
		return lerp(v, p, a, scorePoor, scoreAverage)
	case v >= vp:
		return lerp(v, vp, p, scoreVeryPoor, scorePoor)
	default:
		// very_poor以下按与poor档同斜率继续衰减
		span := p - vp
		if span <= 0 {
			return 0
		}
		score := scoreVeryPoor - (vp-v)/span*(scorePoor-scoreVeryPoor)
		return math.Max(0, score)
	}
}

// lerp 在[x0,x1]区间把x线性映射到[y0,y1]
func lerp(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (x-x0)/(x1-x0)*(y1-y0)
}
