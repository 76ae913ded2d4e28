// pkg/database/mapping.go
package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ValueRadar/pkg/model"
)

type MappingDB struct {
	db *gorm.DB
}

func (t *TimescaleDB) Mapping() *MappingDB {
	return &MappingDB{db: t.db}
}

// SaveBatch 持久化一个批次的全部映射行
// 必须在轮询开始前完成；提交后崩溃留下无映射行的批次视为不一致状态
func (m *MappingDB) SaveBatch(rows []*model.BatchMapping) error {
	if len(rows) == 0 {
		return nil
	}

	err := m.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "batch_id"}, {Name: "custom_id"}},
		DoNothing: true,
	}).CreateInBatches(rows, 500).Error

	if err != nil {
		return fmt.Errorf("保存批次映射失败: %w", err)
	}
	return nil
}

// GetByBatch 查询批次的全部映射行
func (m *MappingDB) GetByBatch(batchID string) ([]*model.BatchMapping, error) {
	var rows []*model.BatchMapping
	err := m.db.Where("batch_id = ?", batchID).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询批次映射失败: %w", err)
	}
	return rows, nil
}

// GetByCustomID 按custom_id反查映射行（O(1)定位原始记录）
func (m *MappingDB) GetByCustomID(batchID, customID string) (*model.BatchMapping, error) {
	var row model.BatchMapping
	err := m.db.Where("batch_id = ? AND custom_id = ?", batchID, customID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询映射行失败: %w", err)
	}
	return &row, nil
}

// MarkStatus 更新映射行状态，幂等：仅pending行会被更新
func (m *MappingDB) MarkStatus(batchID, customID string, status model.MappingStatus) error {
	now := time.Now()
	err := m.db.Model(&model.BatchMapping{}).
		Where("batch_id = ? AND custom_id = ? AND status = ?",
			batchID, customID, model.MappingStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_at": now,
		}).Error

	if err != nil {
		return fmt.Errorf("更新映射行状态失败: %w", err)
	}
	return nil
}

// PendingBatchIDs 查询仍有pending映射行的批次ID（用于重启后恢复轮询）
func (m *MappingDB) PendingBatchIDs() ([]string, error) {
	var batchIDs []string
	err := m.db.Model(&model.BatchMapping{}).
		Where("status = ?", model.MappingStatusPending).
		Distinct("batch_id").
		Pluck("batch_id", &batchIDs).Error

	if err != nil {
		return nil, fmt.Errorf("查询未完成批次失败: %w", err)
	}
	return batchIDs, nil
}

// CountByBatch 统计批次内各状态的映射行数量
func (m *MappingDB) CountByBatch(batchID string) (map[model.MappingStatus]int64, error) {
	type statusCount struct {
		Status model.MappingStatus
		Count  int64
	}

	var rows []statusCount
	err := m.db.Model(&model.BatchMapping{}).
		Select("status, count(*) as count").
		Where("batch_id = ?", batchID).
		Group("status").
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("统计批次映射状态失败: %w", err)
	}

	counts := make(map[model.MappingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
