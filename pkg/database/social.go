// pkg/database/social.go
package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"ValueRadar/pkg/model"
)

type SocialDB struct {
	db *gorm.DB
}

func (t *TimescaleDB) Social() *SocialDB {
	return &SocialDB{db: t.db}
}

func (s *SocialDB) Save(post *model.RedditPost) error {
	return s.db.Save(post).Error
}

// GetUnscored 获取尚未打分的帖子（入队候选）
func (s *SocialDB) GetUnscored(limit int) ([]*model.RedditPost, error) {
	var posts []*model.RedditPost
	err := s.db.Where("sentiment_score IS NULL").
		Order("posted_at DESC").
		Limit(limit).
		Find(&posts).Error

	if err != nil {
		return nil, fmt.Errorf("查询未打分帖子失败: %w", err)
	}
	return posts, nil
}

// GetScoredSince 获取某时间后已打分的帖子（情绪计算器输入）
func (s *SocialDB) GetScoredSince(symbol string, since time.Time) ([]*model.RedditPost, error) {
	var posts []*model.RedditPost
	err := s.db.Where("symbol = ? AND posted_at >= ? AND sentiment_score IS NOT NULL", symbol, since).
		Order("posted_at DESC").
		Find(&posts).Error

	if err != nil {
		return nil, fmt.Errorf("查询已打分帖子失败: %w", err)
	}
	return posts, nil
}

// UpdateSentiment 回写情绪分数，可重复执行（幂等更新）
func (s *SocialDB) UpdateSentiment(id string, score, confidence float64) error {
	now := time.Now()
	err := s.db.Model(&model.RedditPost{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sentiment_score":      score,
			"sentiment_confidence": confidence,
			"sentiment_scored_at":  now,
		}).Error

	if err != nil {
		return fmt.Errorf("回写帖子情绪分数失败: %w", err)
	}
	return nil
}
