// pkg/sentiment/interfaces.go
package sentiment

import (
	"time"

	"ValueRadar/pkg/model"
)

// QueueStore 情绪队列持久化接口
type QueueStore interface {
	// Enqueue 按(content_type, content_id)去重插入pending项，返回新增数量
	Enqueue(items []*model.QueueItem) (int, error)
	// ClaimPending 原子认领至多maxSize个pending项并标记为processing（单写者语义）
	ClaimPending(maxSize int, batchID string) ([]*model.QueueItem, error)
	// ReassignItems 将指定队列项的批次ID替换为服务端批次ID
	ReassignItems(queueIDs []string, batchID string) error
	// ReleaseClaim 提交失败时回滚认领：processing项退回pending并清空批次ID
	ReleaseClaim(claimID string) error
	// MarkTerminal 置终态，幂等：已终态的项为空操作
	MarkTerminal(contentType model.ContentType, contentID string, status model.QueueStatus) error
	// GetByBatch 按批次ID查询队列项
	GetByBatch(batchID string) ([]*model.QueueItem, error)
	// CountByStatus 各状态数量统计
	CountByStatus() (map[model.QueueStatus]int64, error)
	// PurgeCompleted 清理超过保留期的已完成项
	PurgeCompleted(retention time.Duration) (int64, error)
}

// MappingStore 批次映射持久化接口
type MappingStore interface {
	SaveBatch(rows []*model.BatchMapping) error
	GetByBatch(batchID string) ([]*model.BatchMapping, error)
	MarkStatus(batchID, customID string, status model.MappingStatus) error
	PendingBatchIDs() ([]string, error)
	CountByBatch(batchID string) (map[model.MappingStatus]int64, error)
}

// SentimentWriter 内容记录的情绪字段回写接口（news_events / reddit_posts各一个实现）
type SentimentWriter interface {
	UpdateSentiment(id string, score, confidence float64) error
}

// Publisher 事件发布接口，由messaging.NATSClient实现
type Publisher interface {
	Publish(subject string, data interface{}) error
}
