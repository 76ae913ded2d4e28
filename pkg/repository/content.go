// pkg/repository/content.go
package repository

import (
	"sync"
	"time"
)

// SentimentRecord 内存中的内容情绪记录
type SentimentRecord struct {
	Score      float64
	Confidence float64
	UpdatedAt  time.Time
	Writes     int // 回写次数，用于验证幂等性
}

// ContentRepository 内存内容情绪存储，实现回写接口
type ContentRepository struct {
	records map[string]*SentimentRecord
	mutex   sync.RWMutex
}

// NewContentRepository 创建内存内容情绪存储
func NewContentRepository() *ContentRepository {
	return &ContentRepository{
		records: make(map[string]*SentimentRecord),
	}
}

// UpdateSentiment 回写情绪分数（幂等更新）
func (c *ContentRepository) UpdateSentiment(id string, score, confidence float64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	record, exists := c.records[id]
	if !exists {
		record = &SentimentRecord{}
		c.records[id] = record
	}
	record.Score = score
	record.Confidence = confidence
	record.UpdatedAt = time.Now()
	record.Writes++
	return nil
}

// Get 读取情绪记录
func (c *ContentRepository) Get(id string) (*SentimentRecord, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	record, exists := c.records[id]
	if !exists {
		return nil, false
	}
	clone := *record
	return &clone, true
}

// Len 记录数量
func (c *ContentRepository) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.records)
}
