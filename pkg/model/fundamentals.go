// pkg/model/fundamentals.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockFundamentals 个股基本面快照（由外部采集器写入）
// 指标可能缺失，缺失用指针的nil表示，计算器按缺失数据降级处理
type StockFundamentals struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol     string    `gorm:"type:varchar(20);not null;index" json:"symbol"`
	ReportDate time.Time `gorm:"type:date;not null;index" json:"report_date"`

	// 估值指标
	PERatio  *float64 `json:"pe_ratio"`
	PBRatio  *float64 `json:"pb_ratio"`
	PSRatio  *float64 `json:"ps_ratio"`
	PEGRatio *float64 `json:"peg_ratio"`

	// 质量指标
	ROE             *float64 `json:"roe"`              // 净资产收益率（%）
	DebtToEquity    *float64 `json:"debt_to_equity"`   // 产权比率
	CurrentRatio    *float64 `json:"current_ratio"`    // 流动比率
	OperatingMargin *float64 `json:"operating_margin"` // 营业利润率（%）

	// 成长指标（同比，%）
	RevenueGrowth  *float64 `json:"revenue_growth"`
	EarningsGrowth *float64 `json:"earnings_growth"`
	EPSGrowth      *float64 `json:"eps_growth"`
	FCFGrowth      *float64 `json:"fcf_growth"`

	CreatedAt time.Time `json:"created_at"`

	// 关联
	Stock Stock `gorm:"foreignKey:Symbol;references:Symbol" json:"stock,omitempty"`
}

func (f *StockFundamentals) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

func (StockFundamentals) TableName() string {
	return "stock_fundamentals"
}
