// pkg/model/queue.go
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentType 待打分文本的内容类型
type ContentType string

const (
	ContentTypeNews   ContentType = "news"
	ContentTypeSocial ContentType = "social"
)

// QueueStatus 队列项处理状态
type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusFailed     QueueStatus = "failed"
)

// QueueItem 情绪打分队列项
// 入队时status=pending，被批次认领后转processing，对账后转completed/failed
type QueueItem struct {
	QueueID          string      `gorm:"type:uuid;primaryKey" json:"queue_id"`
	ContentType      ContentType `gorm:"type:varchar(20);not null;uniqueIndex:idx_queue_content" json:"content_type"`
	ContentID        string      `gorm:"type:uuid;not null;uniqueIndex:idx_queue_content" json:"content_id"`
	Symbol           string      `gorm:"type:varchar(20);not null;index" json:"symbol"`
	TextContent      string      `gorm:"type:text;not null" json:"text_content"`
	ProcessingStatus QueueStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"processing_status"`
	BatchID          string      `gorm:"type:varchar(100);index" json:"batch_id"`
	CreatedAt        time.Time   `json:"created_at"`
	ProcessedAt      *time.Time  `json:"processed_at"`
}

func (q *QueueItem) BeforeCreate(tx *gorm.DB) error {
	if q.QueueID == "" {
		q.QueueID = uuid.New().String()
	}
	return nil
}

func (QueueItem) TableName() string {
	return "temp_sentiment_queue"
}

// CustomID 生成批处理请求的自定义ID，格式 {record_type}_id_{record_id}
// 自定义ID只由内容本身决定，与批次内位置无关，乱序返回也能定位原始记录
func (q *QueueItem) CustomID() string {
	return FormatCustomID(q.ContentType, q.ContentID)
}

// RecordType 内容类型对应的记录类型前缀（社交内容落在reddit_posts表）
func RecordType(contentType ContentType) string {
	if contentType == ContentTypeSocial {
		return "reddit"
	}
	return string(contentType)
}

// FormatCustomID 构造自定义ID
func FormatCustomID(contentType ContentType, recordID string) string {
	return fmt.Sprintf("%s_id_%s", RecordType(contentType), recordID)
}

// ParseCustomID 解析自定义ID，返回记录类型与记录ID
func ParseCustomID(customID string) (recordType, recordID string, err error) {
	idx := strings.Index(customID, "_id_")
	if idx <= 0 || idx+4 >= len(customID) {
		return "", "", fmt.Errorf("无效的custom_id: %s", customID)
	}
	return customID[:idx], customID[idx+4:], nil
}

// MappingStatus 批次映射行状态
type MappingStatus string

const (
	MappingStatusPending   MappingStatus = "pending"
	MappingStatusCompleted MappingStatus = "completed"
	MappingStatusFailed    MappingStatus = "failed"
)

// BatchMapping 批次映射行：每个已提交请求一行
// 不变式：一个custom_id在一种record_type下只对应一个record_id
type BatchMapping struct {
	ID          string        `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID     string        `gorm:"type:varchar(100);not null;uniqueIndex:idx_mapping_batch_custom" json:"batch_id"`
	CustomID    string        `gorm:"type:varchar(100);not null;uniqueIndex:idx_mapping_batch_custom" json:"custom_id"`
	RecordType  string        `gorm:"type:varchar(20);not null" json:"record_type"`
	RecordID    string        `gorm:"type:uuid;not null" json:"record_id"`
	Symbol      string        `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Status      MappingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	ProcessedAt *time.Time    `json:"processed_at"`
}

func (m *BatchMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (BatchMapping) TableName() string {
	return "batch_mapping"
}
