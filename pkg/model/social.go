// pkg/model/social.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RedditPost 社交媒体帖子（当前只接入Reddit）
type RedditPost struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol    string    `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Subreddit string    `gorm:"type:varchar(50)" json:"subreddit"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Score     int       `json:"score"` // Reddit赞数
	Permalink string    `gorm:"uniqueIndex" json:"permalink"`
	PostedAt  time.Time `gorm:"not null;index" json:"posted_at"`

	// 情绪字段由ResultReconciler回写
	SentimentScore      *float64   `json:"sentiment_score"`      // [-1,1]
	SentimentConfidence *float64   `json:"sentiment_confidence"` // [0,1]
	SentimentScoredAt   *time.Time `json:"sentiment_scored_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *RedditPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (RedditPost) TableName() string {
	return "reddit_posts"
}
