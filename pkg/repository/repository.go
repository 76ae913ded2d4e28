package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ValueRadar/pkg/model"
)

// Repository 内存数据仓库
// 提供与数据库层相同形状的队列/映射/结果子存储，供单元测试和本地试跑使用
type Repository struct {
	queue   *QueueRepository
	mapping *MappingRepository
	metrics *MetricsRepository
}

// NewRepository 创建新的内存数据仓库
func NewRepository() *Repository {
	return &Repository{
		queue:   NewQueueRepository(),
		mapping: NewMappingRepository(),
		metrics: NewMetricsRepository(),
	}
}

func (r *Repository) Queue() *QueueRepository     { return r.queue }
func (r *Repository) Mapping() *MappingRepository { return r.mapping }
func (r *Repository) Metrics() *MetricsRepository { return r.metrics }

// QueueRepository 内存情绪队列存储
type QueueRepository struct {
	items map[string]*model.QueueItem // queue_id索引
	index map[string]string           // content_type+content_id -> queue_id
	mutex sync.RWMutex
}

// NewQueueRepository 创建内存队列存储
func NewQueueRepository() *QueueRepository {
	return &QueueRepository{
		items: make(map[string]*model.QueueItem),
		index: make(map[string]string),
	}
}

func contentKey(contentType model.ContentType, contentID string) string {
	return string(contentType) + "|" + contentID
}

// Enqueue 插入pending队列项，按(content_type, content_id)去重
func (r *QueueRepository) Enqueue(items []*model.QueueItem) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	inserted := 0
	for _, item := range items {
		key := contentKey(item.ContentType, item.ContentID)
		if _, exists := r.index[key]; exists {
			continue
		}

		clone := *item
		if clone.QueueID == "" {
			clone.QueueID = uuid.New().String()
		}
		if clone.CreatedAt.IsZero() {
			clone.CreatedAt = time.Now()
		}
		clone.ProcessingStatus = model.QueueStatusPending

		r.items[clone.QueueID] = &clone
		r.index[key] = clone.QueueID
		inserted++
	}
	return inserted, nil
}

// ClaimPending 原子认领至多maxSize个pending项并标记为processing
func (r *QueueRepository) ClaimPending(maxSize int, batchID string) ([]*model.QueueItem, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var pending []*model.QueueItem
	for _, item := range r.items {
		if item.ProcessingStatus == model.QueueStatusPending {
			pending = append(pending, item)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	if len(pending) > maxSize {
		pending = pending[:maxSize]
	}

	claimed := make([]*model.QueueItem, 0, len(pending))
	for _, item := range pending {
		item.ProcessingStatus = model.QueueStatusProcessing
		item.BatchID = batchID
		clone := *item
		claimed = append(claimed, &clone)
	}
	return claimed, nil
}

// ReassignItems 替换指定队列项的批次ID
func (r *QueueRepository) ReassignItems(queueIDs []string, batchID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, queueID := range queueIDs {
		item, exists := r.items[queueID]
		if exists && item.ProcessingStatus == model.QueueStatusProcessing {
			item.BatchID = batchID
		}
	}
	return nil
}

// ReleaseClaim 提交失败时回滚认领：processing项退回pending并清空批次ID
func (r *QueueRepository) ReleaseClaim(claimID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, item := range r.items {
		if item.BatchID == claimID && item.ProcessingStatus == model.QueueStatusProcessing {
			item.ProcessingStatus = model.QueueStatusPending
			item.BatchID = ""
		}
	}
	return nil
}

// MarkTerminal 置终态，幂等：已终态的项为空操作
func (r *QueueRepository) MarkTerminal(contentType model.ContentType, contentID string, status model.QueueStatus) error {
	if status != model.QueueStatusCompleted && status != model.QueueStatusFailed {
		return fmt.Errorf("非法的终态: %s", status)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	queueID, exists := r.index[contentKey(contentType, contentID)]
	if !exists {
		return nil
	}
	item := r.items[queueID]
	if item.ProcessingStatus != model.QueueStatusProcessing {
		return nil // 已终态，空操作
	}

	now := time.Now()
	item.ProcessingStatus = status
	item.ProcessedAt = &now
	return nil
}

// GetByBatch 按批次ID查询队列项
func (r *QueueRepository) GetByBatch(batchID string) ([]*model.QueueItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var items []*model.QueueItem
	for _, item := range r.items {
		if item.BatchID == batchID {
			clone := *item
			items = append(items, &clone)
		}
	}
	return items, nil
}

// CountByStatus 统计各状态的队列项数量
func (r *QueueRepository) CountByStatus() (map[model.QueueStatus]int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	counts := make(map[model.QueueStatus]int64)
	for _, item := range r.items {
		counts[item.ProcessingStatus]++
	}
	return counts, nil
}

// PurgeCompleted 清理超过保留期的已完成队列项
func (r *QueueRepository) PurgeCompleted(retention time.Duration) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	cutoff := time.Now().Add(-retention)
	var purged int64
	for queueID, item := range r.items {
		if item.ProcessingStatus == model.QueueStatusCompleted &&
			item.ProcessedAt != nil && item.ProcessedAt.Before(cutoff) {
			delete(r.items, queueID)
			delete(r.index, contentKey(item.ContentType, item.ContentID))
			purged++
		}
	}
	return purged, nil
}

// MappingRepository 内存批次映射存储
type MappingRepository struct {
	rows  map[string]*model.BatchMapping // batch_id+custom_id索引
	mutex sync.RWMutex
}

// NewMappingRepository 创建内存映射存储
func NewMappingRepository() *MappingRepository {
	return &MappingRepository{
		rows: make(map[string]*model.BatchMapping),
	}
}

func mappingKey(batchID, customID string) string {
	return batchID + "|" + customID
}

// SaveBatch 持久化批次映射行
func (r *MappingRepository) SaveBatch(rows []*model.BatchMapping) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, row := range rows {
		key := mappingKey(row.BatchID, row.CustomID)
		if _, exists := r.rows[key]; exists {
			continue
		}
		clone := *row
		if clone.ID == "" {
			clone.ID = uuid.New().String()
		}
		if clone.CreatedAt.IsZero() {
			clone.CreatedAt = time.Now()
		}
		r.rows[key] = &clone
	}
	return nil
}

// GetByBatch 查询批次的全部映射行
func (r *MappingRepository) GetByBatch(batchID string) ([]*model.BatchMapping, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var rows []*model.BatchMapping
	for _, row := range r.rows {
		if row.BatchID == batchID {
			clone := *row
			rows = append(rows, &clone)
		}
	}
	return rows, nil
}

// MarkStatus 更新映射行状态，仅pending行会被更新
func (r *MappingRepository) MarkStatus(batchID, customID string, status model.MappingStatus) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	row, exists := r.rows[mappingKey(batchID, customID)]
	if !exists || row.Status != model.MappingStatusPending {
		return nil
	}

	now := time.Now()
	row.Status = status
	row.ProcessedAt = &now
	return nil
}

// PendingBatchIDs 查询仍有pending映射行的批次ID
func (r *MappingRepository) PendingBatchIDs() ([]string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	seen := make(map[string]bool)
	var batchIDs []string
	for _, row := range r.rows {
		if row.Status == model.MappingStatusPending && !seen[row.BatchID] {
			seen[row.BatchID] = true
			batchIDs = append(batchIDs, row.BatchID)
		}
	}
	sort.Strings(batchIDs)
	return batchIDs, nil
}

// CountByBatch 统计批次内各状态的映射行数量
func (r *MappingRepository) CountByBatch(batchID string) (map[model.MappingStatus]int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	counts := make(map[model.MappingStatus]int64)
	for _, row := range r.rows {
		if row.BatchID == batchID {
			counts[row.Status]++
		}
	}
	return counts, nil
}

// MetricsRepository 内存计算结果存储
type MetricsRepository struct {
	rows  []*model.CalculatedMetrics
	mutex sync.RWMutex
}

// NewMetricsRepository 创建内存计算结果存储
func NewMetricsRepository() *MetricsRepository {
	return &MetricsRepository{
		rows: make([]*model.CalculatedMetrics, 0),
	}
}

// SaveRun 保存一轮计算结果
func (r *MetricsRepository) SaveRun(rows []*model.CalculatedMetrics) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	for _, row := range rows {
		clone := *row
		if clone.ID == "" {
			clone.ID = uuid.New().String()
		}
		if clone.CreatedAt.IsZero() {
			clone.CreatedAt = now
		}
		r.rows = append(r.rows, &clone)
	}
	return nil
}

// GetLatest 获取个股最新的计算结果
func (r *MetricsRepository) GetLatest(symbol string) (*model.CalculatedMetrics, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var latest *model.CalculatedMetrics
	for _, row := range r.rows {
		if row.Symbol != symbol {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

// All 全部结果行
func (r *MetricsRepository) All() []*model.CalculatedMetrics {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rows := make([]*model.CalculatedMetrics, 0, len(r.rows))
	for _, row := range r.rows {
		clone := *row
		rows = append(rows, &clone)
	}
	return rows
}
