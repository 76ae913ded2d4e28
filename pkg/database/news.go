// pkg/database/news.go
package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"ValueRadar/pkg/model"
)

type NewsDB struct {
	db *gorm.DB
}

func (t *TimescaleDB) News() *NewsDB {
	return &NewsDB{db: t.db}
}

func (n *NewsDB) Save(news *model.NewsEvent) error {
	return n.db.Save(news).Error
}

// GetUnscored 获取尚未打分的新闻（入队候选）
func (n *NewsDB) GetUnscored(limit int) ([]*model.NewsEvent, error) {
	var newsEvents []*model.NewsEvent
	err := n.db.Where("sentiment_score IS NULL").
		Order("published_at DESC").
		Limit(limit).
		Find(&newsEvents).Error

	if err != nil {
		return nil, fmt.Errorf("查询未打分新闻失败: %w", err)
	}
	return newsEvents, nil
}

// GetScoredSince 获取某时间后已打分的新闻（情绪计算器输入）
func (n *NewsDB) GetScoredSince(symbol string, since time.Time) ([]*model.NewsEvent, error) {
	var newsEvents []*model.NewsEvent
	err := n.db.Where("symbol = ? AND published_at >= ? AND sentiment_score IS NOT NULL", symbol, since).
		Order("published_at DESC").
		Find(&newsEvents).Error

	if err != nil {
		return nil, fmt.Errorf("查询已打分新闻失败: %w", err)
	}
	return newsEvents, nil
}

// UpdateSentiment 回写情绪分数，可重复执行（幂等更新）
func (n *NewsDB) UpdateSentiment(id string, score, confidence float64) error {
	now := time.Now()
	err := n.db.Model(&model.NewsEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sentiment_score":      score,
			"sentiment_confidence": confidence,
			"sentiment_scored_at":  now,
		}).Error

	if err != nil {
		return fmt.Errorf("回写新闻情绪分数失败: %w", err)
	}
	return nil
}

// 检查新闻是否已存在（根据URL去重）
func (n *NewsDB) ExistsByURL(url string) (bool, error) {
	var count int64
	err := n.db.Model(&model.NewsEvent{}).Where("url = ?", url).Count(&count).Error
	return count > 0, err
}
