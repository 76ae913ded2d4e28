// pkg/database/queue.go
package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ValueRadar/pkg/model"
)

type QueueDB struct {
	db *gorm.DB
}

func (t *TimescaleDB) Queue() *QueueDB {
	return &QueueDB{db: t.db}
}

// Enqueue 插入待打分队列项，按(content_type, content_id)去重
// 已存在的项跳过，返回实际新增数量
func (q *QueueDB) Enqueue(items []*model.QueueItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	res := q.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_type"}, {Name: "content_id"}},
		DoNothing: true,
	}).CreateInBatches(items, 500)

	if res.Error != nil {
		return 0, fmt.Errorf("入队失败: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// ClaimPending 原子认领至多maxSize个pending项并标记为processing
// 行数校验保证单写者语义：两个并发调用者不会认领到同一项
func (q *QueueDB) ClaimPending(maxSize int, batchID string) ([]*model.QueueItem, error) {
	var claimed []*model.QueueItem

	err := q.db.Transaction(func(tx *gorm.DB) error {
		var items []*model.QueueItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("processing_status = ?", model.QueueStatusPending).
			Order("created_at ASC").
			Limit(maxSize).
			Find(&items).Error; err != nil {
			return fmt.Errorf("查询pending队列项失败: %w", err)
		}

		if len(items) == 0 {
			return nil
		}

		ids := make([]string, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.QueueID)
		}

		res := tx.Model(&model.QueueItem{}).
			Where("queue_id IN ? AND processing_status = ?", ids, model.QueueStatusPending).
			Updates(map[string]interface{}{
				"processing_status": model.QueueStatusProcessing,
				"batch_id":          batchID,
			})
		if res.Error != nil {
			return fmt.Errorf("更新队列项状态失败: %w", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("认领冲突: 期望更新%d行, 实际%d行", len(ids), res.RowsAffected)
		}

		for _, item := range items {
			item.ProcessingStatus = model.QueueStatusProcessing
			item.BatchID = batchID
		}
		claimed = items
		return nil
	})

	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// ReassignItems 将指定队列项的批次ID替换为服务端返回的批次ID
func (q *QueueDB) ReassignItems(queueIDs []string, batchID string) error {
	if len(queueIDs) == 0 {
		return nil
	}

	err := q.db.Model(&model.QueueItem{}).
		Where("queue_id IN ? AND processing_status = ?", queueIDs, model.QueueStatusProcessing).
		Update("batch_id", batchID).Error

	if err != nil {
		return fmt.Errorf("更新批次ID失败: %w", err)
	}
	return nil
}

// ReleaseClaim 提交失败时回滚认领：processing项退回pending并清空批次ID
// 不回滚的话这些项会永久卡在processing且没有任何映射行可供恢复
func (q *QueueDB) ReleaseClaim(claimID string) error {
	err := q.db.Model(&model.QueueItem{}).
		Where("batch_id = ? AND processing_status = ?", claimID, model.QueueStatusProcessing).
		Updates(map[string]interface{}{
			"processing_status": model.QueueStatusPending,
			"batch_id":          "",
		}).Error

	if err != nil {
		return fmt.Errorf("回滚认领失败: %w", err)
	}
	return nil
}

// MarkTerminal 将队列项置为completed/failed终态
// 幂等：已处于终态的项不再改动，重复调用是空操作
func (q *QueueDB) MarkTerminal(contentType model.ContentType, contentID string, status model.QueueStatus) error {
	if status != model.QueueStatusCompleted && status != model.QueueStatusFailed {
		return fmt.Errorf("非法的终态: %s", status)
	}

	now := time.Now()
	err := q.db.Model(&model.QueueItem{}).
		Where("content_type = ? AND content_id = ? AND processing_status = ?",
			contentType, contentID, model.QueueStatusProcessing).
		Updates(map[string]interface{}{
			"processing_status": status,
			"processed_at":      now,
		}).Error

	if err != nil {
		return fmt.Errorf("更新队列项终态失败: %w", err)
	}
	return nil
}

// GetByBatch 按批次ID查询队列项
func (q *QueueDB) GetByBatch(batchID string) ([]*model.QueueItem, error) {
	var items []*model.QueueItem
	err := q.db.Where("batch_id = ?", batchID).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("查询批次队列项失败: %w", err)
	}
	return items, nil
}

// CountByStatus 统计各状态的队列项数量
func (q *QueueDB) CountByStatus() (map[model.QueueStatus]int64, error) {
	type statusCount struct {
		ProcessingStatus model.QueueStatus
		Count            int64
	}

	var rows []statusCount
	err := q.db.Model(&model.QueueItem{}).
		Select("processing_status, count(*) as count").
		Group("processing_status").
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("统计队列状态失败: %w", err)
	}

	counts := make(map[model.QueueStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.ProcessingStatus] = row.Count
	}
	return counts, nil
}

// PurgeCompleted 清理超过保留期的已完成队列项，failed项保留供排查
func (q *QueueDB) PurgeCompleted(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := q.db.Where("processing_status = ? AND processed_at < ?",
		model.QueueStatusCompleted, cutoff).
		Delete(&model.QueueItem{})

	if res.Error != nil {
		return 0, fmt.Errorf("清理已完成队列项失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}
