// pkg/model/metrics.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OutlierCategory 估值离群类别，由市场分位数经固定切点单调映射得到
type OutlierCategory string

const (
	OutlierStrongUndervalued OutlierCategory = "strong_undervalued"
	OutlierUndervalued       OutlierCategory = "undervalued"
	OutlierFairlyValued      OutlierCategory = "fairly_valued"
	OutlierOvervalued        OutlierCategory = "overvalued"
	OutlierStrongOvervalued  OutlierCategory = "strong_overvalued"
)

// ComponentScore 单个分量的计算结果（一次计算运行产出，不落库，组装进CalculatedMetrics）
type ComponentScore struct {
	Symbol      string             `json:"symbol"`
	Score       float64            `json:"score"`        // [0,100]
	DataQuality float64            `json:"data_quality"` // [0,1]，完整度×可靠度
	SubScores   map[string]float64 `json:"sub_scores"`   // 子指标得分，仅含可计算项
}

// CalculatedMetrics 综合打分结果行，按(symbol, calculation_date)追加，不原地覆盖
// 最新结果按created_at最大取
type CalculatedMetrics struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol          string    `gorm:"type:varchar(20);not null;index" json:"symbol"`
	CalculationDate time.Time `gorm:"type:date;not null;index" json:"calculation_date"`
	Sector          string    `gorm:"type:varchar(50);index" json:"sector"`

	FundamentalScore   *float64 `json:"fundamental_score"`
	FundamentalQuality float64  `json:"fundamental_quality"`
	QualityScore       *float64 `json:"quality_score"`
	QualityQuality     float64  `json:"quality_quality"`
	GrowthScore        *float64 `json:"growth_score"`
	GrowthQuality      float64  `json:"growth_quality"`
	SentimentScore     *float64 `json:"sentiment_score"`
	SentimentQuality   float64  `json:"sentiment_quality"`

	CompositeScore     float64 `gorm:"not null" json:"composite_score"`      // [0,100]
	OverallDataQuality float64 `gorm:"not null" json:"overall_data_quality"` // [0,1]

	SectorPercentile float64         `json:"sector_percentile"` // [0,100]
	MarketPercentile float64         `json:"market_percentile"` // [0,100]
	OutlierCategory  OutlierCategory `gorm:"type:varchar(30);index" json:"outlier_category"`

	MethodologyVersion string    `gorm:"type:varchar(10);not null" json:"methodology_version"`
	CreatedAt          time.Time `json:"created_at"`
}

func (m *CalculatedMetrics) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (CalculatedMetrics) TableName() string {
	return "calculated_metrics"
}
