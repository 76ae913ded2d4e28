// pkg/scoring/sentiment.go
package scoring

import (
	"math"
	"time"

	"ValueRadar/pkg/model"
)

// SentimentCalculator 市场情绪分量计算器
// 输入是批处理管线回写过情绪分数的新闻与帖子
// 子指标：新闻情绪、社交情绪、情绪动量（近7日对全窗口的偏离）
type SentimentCalculator struct {
	windowDays int
}

// NewSentimentCalculator 创建情绪计算器，windowDays为回看窗口
func NewSentimentCalculator(windowDays int) *SentimentCalculator {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &SentimentCalculator{windowDays: windowDays}
}

// sentimentBands 情绪均值（[-1,1]）的五档切点
var sentimentBands = Bands{Excellent: 0.5, Good: 0.25, Average: 0, Poor: -0.25, VeryPoor: -0.5}

// momentumBands 情绪动量的五档切点
var momentumBands = Bands{Excellent: 0.3, Good: 0.15, Average: 0, Poor: -0.15, VeryPoor: -0.3}

// Calculate 计算情绪分量
// 数据质量 = 可计算子指标占比 × 提及量置信度（提及越少越不可信）
func (c *SentimentCalculator) Calculate(symbol string, news []*model.NewsEvent, posts []*model.RedditPost, now time.Time) (*model.ComponentScore, error) {
	windowStart := now.AddDate(0, 0, -c.windowDays)
	recentStart := now.AddDate(0, 0, -7)

	var all, recent []weightedSentiment
	var newsScores, socialScores []weightedSentiment

	for _, event := range news {
		if event.SentimentScore == nil || event.PublishedAt.Before(windowStart) {
			continue
		}
		ws := weightedSentiment{score: *event.SentimentScore, weight: confidenceOf(event.SentimentConfidence)}
		newsScores = append(newsScores, ws)
		all = append(all, ws)
		if !event.PublishedAt.Before(recentStart) {
			recent = append(recent, ws)
		}
	}

	for _, post := range posts {
		if post.SentimentScore == nil || post.PostedAt.Before(windowStart) {
			continue
		}
		ws := weightedSentiment{score: *post.SentimentScore, weight: confidenceOf(post.SentimentConfidence)}
		socialScores = append(socialScores, ws)
		all = append(all, ws)
		if !post.PostedAt.Before(recentStart) {
			recent = append(recent, ws)
		}
	}

	metrics := []subMetric{
		{name: "news_sentiment", weight: 0.50, bands: sentimentBands, value: weightedMean(newsScores)},
		{name: "social_sentiment", weight: 0.30, bands: sentimentBands, value: weightedMean(socialScores)},
		{name: "sentiment_momentum", weight: 0.20, bands: momentumBands, value: momentum(recent, all)},
	}

	score, completeness, err := combineSubMetrics(symbol, metrics, 1.0)
	if err != nil {
		return nil, err
	}

	// 提及量置信度折扣：样本太少时情绪不可靠
	score.DataQuality = completeness * volumeConfidence(len(all))
	return score, nil
}

type weightedSentiment struct {
	score  float64
	weight float64
}

// confidenceOf 缺失置信度按0.5处理
func confidenceOf(confidence *float64) float64 {
	if confidence == nil {
		return 0.5
	}
	return math.Max(0.05, *confidence)
}

// weightedMean 置信度加权均值，无样本返回nil
func weightedMean(scores []weightedSentiment) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var sum, weightSum float64
	for _, s := range scores {
		sum += s.score * s.weight
		weightSum += s.weight
	}
	if weightSum == 0 {
		return nil
	}
	return ptr(sum / weightSum)
}

// momentum 近7日均值对全窗口均值的偏离
func momentum(recent, all []weightedSentiment) *float64 {
	recentMean := weightedMean(recent)
	allMean := weightedMean(all)
	if recentMean == nil || allMean == nil {
		return nil
	}
	return ptr(*recentMean - *allMean)
}

// volumeConfidence 提及量置信度：20条以上满信，有提及但很少时保底0.1
func volumeConfidence(mentions int) float64 {
	if mentions == 0 {
		return 0
	}
	confidence := float64(mentions) / 20.0
	if confidence > 1 {
		return 1
	}
	return math.Max(0.1, confidence)
}
