// pkg/sentiment/queue.go
package sentiment

import (
	"fmt"
	"log"
	"strings"
	"time"

	"ValueRadar/pkg/model"
)

// NewsSource 未打分新闻来源
type NewsSource interface {
	GetUnscored(limit int) ([]*model.NewsEvent, error)
}

// SocialSource 未打分帖子来源
type SocialSource interface {
	GetUnscored(limit int) ([]*model.RedditPost, error)
}

// QueueService 情绪打分队列服务
// 负责把缺少情绪分数的内容记录转成队列项，并提供队列维护能力
type QueueService struct {
	store  QueueStore
	news   NewsSource
	social SocialSource
}

// NewQueueService 创建队列服务
func NewQueueService(store QueueStore, news NewsSource, social SocialSource) *QueueService {
	return &QueueService{
		store:  store,
		news:   news,
		social: social,
	}
}

// EnqueueUnscored 扫描新闻和帖子表，把未打分的记录入队
// 按(content_type, content_id)去重，重复扫描不会产生重复队列项
func (s *QueueService) EnqueueUnscored(scanLimit int) (int, error) {
	var items []*model.QueueItem

	newsEvents, err := s.news.GetUnscored(scanLimit)
	if err != nil {
		return 0, fmt.Errorf("扫描未打分新闻失败: %w", err)
	}
	for _, event := range newsEvents {
		items = append(items, &model.QueueItem{
			ContentType:      model.ContentTypeNews,
			ContentID:        event.ID,
			Symbol:           event.Symbol,
			TextContent:      joinText(event.Title, event.Content),
			ProcessingStatus: model.QueueStatusPending,
		})
	}

	posts, err := s.social.GetUnscored(scanLimit)
	if err != nil {
		return 0, fmt.Errorf("扫描未打分帖子失败: %w", err)
	}
	for _, post := range posts {
		items = append(items, &model.QueueItem{
			ContentType:      model.ContentTypeSocial,
			ContentID:        post.ID,
			Symbol:           post.Symbol,
			TextContent:      joinText(post.Title, post.Body),
			ProcessingStatus: model.QueueStatusPending,
		})
	}

	if len(items) == 0 {
		return 0, nil
	}

	inserted, err := s.store.Enqueue(items)
	if err != nil {
		return 0, err
	}

	log.Printf("入队完成: 候选%d条, 新增%d条", len(items), inserted)
	return inserted, nil
}

// Stats 队列状态统计
func (s *QueueService) Stats() (map[model.QueueStatus]int64, error) {
	return s.store.CountByStatus()
}

// Cleanup 清理超过保留期的已完成队列项
func (s *QueueService) Cleanup(retention time.Duration) (int64, error) {
	purged, err := s.store.PurgeCompleted(retention)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		log.Printf("清理已完成队列项%d条", purged)
	}
	return purged, nil
}

// joinText 拼接标题与正文
func joinText(title, body string) string {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if body == "" {
		return title
	}
	if title == "" {
		return body
	}
	return title + "\n\n" + body
}
