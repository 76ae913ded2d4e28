// pkg/scoring/sector.go
package scoring

// ComponentWeights 四个分量的方法论权重，每个板块的权重和为1.0
type ComponentWeights struct {
	Fundamental float64 `json:"fundamental"`
	Quality     float64 `json:"quality"`
	Growth      float64 `json:"growth"`
	Sentiment   float64 `json:"sentiment"`
}

// Sum 权重和
func (w ComponentWeights) Sum() float64 {
	return w.Fundamental + w.Quality + w.Growth + w.Sentiment
}

// SectorAdjustment 板块调整参数：分量权重与各计算器的阈值缩放系数
// 启动时一次性定义，运行期只读，调用方拿到的是值拷贝
type SectorAdjustment struct {
	Weights ComponentWeights

	// 阈值缩放系数，作用在各计算器的五档切点上
	FundamentalMultiplier float64 // 估值容忍度，科技板块放宽
	QualityMultiplier     float64 // 质量要求，公用事业收紧负债容忍
	GrowthMultiplier      float64 // 成长预期
}

// defaultSector 未知板块的回退配置
const defaultSector = "default"

// sectorAdjustments 板块调整表（不可变，只通过AdjustmentFor访问）
var sectorAdjustments = map[string]SectorAdjustment{
	"Technology": {
		Weights:               ComponentWeights{Fundamental: 0.25, Quality: 0.20, Growth: 0.40, Sentiment: 0.15},
		FundamentalMultiplier: 1.5,
		QualityMultiplier:     1.0,
		GrowthMultiplier:      1.3,
	},
	"Healthcare": {
		Weights:               ComponentWeights{Fundamental: 0.30, Quality: 0.25, Growth: 0.30, Sentiment: 0.15},
		FundamentalMultiplier: 1.3,
		QualityMultiplier:     1.0,
		GrowthMultiplier:      1.1,
	},
	"Financials": {
		Weights:               ComponentWeights{Fundamental: 0.40, Quality: 0.30, Growth: 0.15, Sentiment: 0.15},
		FundamentalMultiplier: 0.8,
		QualityMultiplier:     1.2,
		GrowthMultiplier:      0.8,
	},
	"Energy": {
		Weights:               ComponentWeights{Fundamental: 0.35, Quality: 0.25, Growth: 0.20, Sentiment: 0.20},
		FundamentalMultiplier: 0.9,
		QualityMultiplier:     1.0,
		GrowthMultiplier:      0.9,
	},
	"Utilities": {
		Weights:               ComponentWeights{Fundamental: 0.35, Quality: 0.35, Growth: 0.10, Sentiment: 0.20},
		FundamentalMultiplier: 0.9,
		QualityMultiplier:     0.8,
		GrowthMultiplier:      0.5,
	},
	"Consumer": {
		Weights:               ComponentWeights{Fundamental: 0.30, Quality: 0.25, Growth: 0.25, Sentiment: 0.20},
		FundamentalMultiplier: 1.0,
		QualityMultiplier:     1.0,
		GrowthMultiplier:      1.0,
	},
	"Industrials": {
		Weights:               ComponentWeights{Fundamental: 0.35, Quality: 0.25, Growth: 0.25, Sentiment: 0.15},
		FundamentalMultiplier: 1.0,
		QualityMultiplier:     1.0,
		GrowthMultiplier:      1.0,
	},
	defaultSector: {
		Weights:               ComponentWeights{Fundamental: 0.35, Quality: 0.25, Growth: 0.25, Sentiment: 0.15},
		FundamentalMultiplier: 1.0,
		QualityMultiplier:     1.0,
		GrowthMultiplier:      1.0,
	},
}

// AdjustmentFor 获取板块调整参数，未知板块回退到default
func AdjustmentFor(sector string) SectorAdjustment {
	if adj, ok := sectorAdjustments[sector]; ok {
		return adj
	}
	return sectorAdjustments[defaultSector]
}

// SupportedSectors 全部受支持的板块名（含default）
func SupportedSectors() []string {
	sectors := make([]string, 0, len(sectorAdjustments))
	for sector := range sectorAdjustments {
		sectors = append(sectors, sector)
	}
	return sectors
}
