// pkg/model/news.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewsEvent 新闻事件
type NewsEvent struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol      string    `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	Source      string    `json:"source"`
	URL         string    `gorm:"uniqueIndex" json:"url"`
	PublishedAt time.Time `gorm:"not null;index" json:"published_at"`

	// 情绪字段由ResultReconciler回写
	SentimentScore      *float64   `json:"sentiment_score"`      // [-1,1]
	SentimentConfidence *float64   `json:"sentiment_confidence"` // [0,1]
	SentimentScoredAt   *time.Time `json:"sentiment_scored_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Stock Stock `gorm:"foreignKey:Symbol;references:Symbol" json:"stock,omitempty"`
}

func (n *NewsEvent) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

func (NewsEvent) TableName() string {
	return "news_events"
}
