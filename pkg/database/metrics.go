// pkg/database/metrics.go
package database

import (
	"fmt"

	"ValueRadar/pkg/model"

	"gorm.io/gorm"
)

type MetricsDB struct {
	db *gorm.DB
}

func (t *TimescaleDB) Metrics() *MetricsDB {
	return &MetricsDB{db: t.db}
}

// SaveRun 保存一次计算运行的全部结果行
func (m *MetricsDB) SaveRun(rows []*model.CalculatedMetrics) error {
	if len(rows) == 0 {
		return nil
	}
	if err := m.db.CreateInBatches(rows, 500).Error; err != nil {
		return fmt.Errorf("保存计算结果失败: %w", err)
	}
	return nil
}

// GetLatest 获取个股最新的计算结果
func (m *MetricsDB) GetLatest(symbol string) (*model.CalculatedMetrics, error) {
	var row model.CalculatedMetrics
	err := m.db.Where("symbol = ?", symbol).
		Order("created_at DESC").
		First(&row).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询计算结果失败: %w", err)
	}
	return &row, nil
}

// GetLatestAll 获取全部个股的最新计算结果，可按板块/离群类别过滤
// 下游展示层只读取这张表的最新行
func (m *MetricsDB) GetLatestAll(sector string, category model.OutlierCategory) ([]*model.CalculatedMetrics, error) {
	sub := m.db.Model(&model.CalculatedMetrics{}).
		Select("symbol, max(created_at) as max_created").
		Group("symbol")

	query := m.db.Model(&model.CalculatedMetrics{}).
		Joins("JOIN (?) latest ON calculated_metrics.symbol = latest.symbol AND calculated_metrics.created_at = latest.max_created", sub)

	if sector != "" {
		query = query.Where("calculated_metrics.sector = ?", sector)
	}
	if category != "" {
		query = query.Where("calculated_metrics.outlier_category = ?", category)
	}

	var rows []*model.CalculatedMetrics
	if err := query.Order("calculated_metrics.composite_score DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询最新计算结果失败: %w", err)
	}
	return rows, nil
}

// GetRankings 按综合分查询头部/尾部个股
func (m *MetricsDB) GetRankings(limit int, ascending bool) ([]*model.CalculatedMetrics, error) {
	rows, err := m.GetLatestAll("", "")
	if err != nil {
		return nil, err
	}

	if ascending {
		// GetLatestAll按综合分降序返回，反转取尾部
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
