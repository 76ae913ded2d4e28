// pkg/database/fundamentals.go
package database

import (
	"fmt"

	"gorm.io/gorm"

	"ValueRadar/pkg/model"
)

type FundamentalsDB struct {
	db *gorm.DB
}

func (t *TimescaleDB) Fundamentals() *FundamentalsDB {
	return &FundamentalsDB{db: t.db}
}

func (f *FundamentalsDB) Save(row *model.StockFundamentals) error {
	return f.db.Save(row).Error
}

// GetLatest 获取个股最新的基本面快照
func (f *FundamentalsDB) GetLatest(symbol string) (*model.StockFundamentals, error) {
	var row model.StockFundamentals
	err := f.db.Where("symbol = ?", symbol).
		Order("report_date DESC").
		First(&row).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询基本面数据失败: %w", err)
	}
	return &row, nil
}
