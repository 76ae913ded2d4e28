// pkg/database/stock.go
package database

import (
	"fmt"

	"gorm.io/gorm"

	"ValueRadar/pkg/model"
)

type StockDB struct {
	db *gorm.DB
}

func (t *TimescaleDB) Stock() *StockDB {
	return &StockDB{db: t.db}
}

func (s *StockDB) Save(stock *model.Stock) error {
	return s.db.Save(stock).Error
}

func (s *StockDB) SaveBatch(stocks []*model.Stock) error {
	return s.db.CreateInBatches(stocks, 500).Error
}

func (s *StockDB) GetBySymbol(symbol string) (*model.Stock, error) {
	var stock model.Stock
	err := s.db.First(&stock, "symbol = ?", symbol).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("股票不存在")
		}
		return nil, fmt.Errorf("获取股票信息失败: %w", err)
	}
	return &stock, nil
}

func (s *StockDB) GetBySector(sector string, limit int) ([]*model.Stock, error) {
	var stocks []*model.Stock
	err := s.db.Where("sector = ? AND is_active = ?", sector, true).
		Limit(limit).
		Find(&stocks).Error

	if err != nil {
		return nil, fmt.Errorf("查询板块股票失败: %w", err)
	}
	return stocks, nil
}

func (s *StockDB) GetActiveStocks() ([]*model.Stock, error) {
	var stocks []*model.Stock
	err := s.db.Where("is_active = ?", true).Find(&stocks).Error
	if err != nil {
		return nil, fmt.Errorf("查询活跃股票失败: %w", err)
	}
	return stocks, nil
}

func (s *StockDB) ExistsBySymbol(symbol string) (bool, error) {
	var count int64
	err := s.db.Model(&model.Stock{}).Where("symbol = ?", symbol).Count(&count).Error
	return count > 0, err
}
