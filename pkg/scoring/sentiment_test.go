package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueRadar/pkg/model"
)

func scoredNews(symbol string, score, confidence float64, publishedAt time.Time) *model.NewsEvent {
	return &model.NewsEvent{
		Symbol:              symbol,
		SentimentScore:      ptr(score),
		SentimentConfidence: ptr(confidence),
		PublishedAt:         publishedAt,
	}
}

func scoredPost(symbol string, score, confidence float64, postedAt time.Time) *model.RedditPost {
	return &model.RedditPost{
		Symbol:              symbol,
		SentimentScore:      ptr(score),
		SentimentConfidence: ptr(confidence),
		PostedAt:            postedAt,
	}
}

func TestSentimentCalculateNoData(t *testing.T) {
	calc := NewSentimentCalculator(30)
	_, err := calc.Calculate("AAPL", nil, nil, time.Now())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSentimentCalculateNewsOnly(t *testing.T) {
	calc := NewSentimentCalculator(30)
	now := time.Now()

	// 全部新闻都在近7日内：动量=近7日均值-全窗口均值=0，动量0分70
	news := []*model.NewsEvent{
		scoredNews("AAPL", 0.5, 1.0, now.AddDate(0, 0, -1)),
		scoredNews("AAPL", 0.5, 1.0, now.AddDate(0, 0, -2)),
		scoredNews("AAPL", 0.5, 1.0, now.AddDate(0, 0, -3)),
		scoredNews("AAPL", 0.5, 1.0, now.AddDate(0, 0, -4)),
	}

	score, err := calc.Calculate("AAPL", news, nil, now)
	require.NoError(t, err)

	// 新闻情绪0.5→100分(权重0.5)，动量0→70分(权重0.2)，社交缺失
	assert.InDelta(t, (0.5*100+0.2*70)/0.7, score.Score, 1e-9)

	// 质量 = 完整度(2/3) × 提及量置信度(4/20)
	assert.InDelta(t, (2.0/3.0)*0.2, score.DataQuality, 1e-9)
	assert.Contains(t, score.SubScores, "news_sentiment")
	assert.NotContains(t, score.SubScores, "social_sentiment")
}

func TestSentimentCalculateConfidenceWeighting(t *testing.T) {
	calc := NewSentimentCalculator(30)
	now := time.Now()

	// 高置信的正面新闻应主导低置信的负面新闻
	news := []*model.NewsEvent{
		scoredNews("TSLA", 0.8, 0.9, now.AddDate(0, 0, -1)),
		scoredNews("TSLA", -0.8, 0.1, now.AddDate(0, 0, -2)),
	}

	score, err := calc.Calculate("TSLA", news, nil, now)
	require.NoError(t, err)
	assert.Greater(t, score.SubScores["news_sentiment"], 70.0)
}

func TestSentimentCalculateWindowFilter(t *testing.T) {
	calc := NewSentimentCalculator(30)
	now := time.Now()

	// 窗口外的记录完全不参与
	news := []*model.NewsEvent{
		scoredNews("AAPL", -1.0, 1.0, now.AddDate(0, 0, -45)),
	}
	_, err := calc.Calculate("AAPL", news, nil, now)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSentimentCalculateMomentum(t *testing.T) {
	calc := NewSentimentCalculator(30)
	now := time.Now()

	// 近7日明显转正：动量子指标应高于70分基线
	news := []*model.NewsEvent{
		scoredNews("NVDA", 0.6, 1.0, now.AddDate(0, 0, -1)),
		scoredNews("NVDA", 0.6, 1.0, now.AddDate(0, 0, -2)),
		scoredNews("NVDA", -0.4, 1.0, now.AddDate(0, 0, -20)),
		scoredNews("NVDA", -0.4, 1.0, now.AddDate(0, 0, -25)),
	}

	score, err := calc.Calculate("NVDA", news, nil, now)
	require.NoError(t, err)
	assert.Greater(t, score.SubScores["sentiment_momentum"], 70.0)
}

func TestSentimentCalculateMixedSources(t *testing.T) {
	calc := NewSentimentCalculator(30)
	now := time.Now()

	news := []*model.NewsEvent{scoredNews("AMD", 0.3, 0.8, now.AddDate(0, 0, -2))}
	posts := []*model.RedditPost{scoredPost("AMD", -0.2, 0.6, now.AddDate(0, 0, -3))}

	score, err := calc.Calculate("AMD", news, posts, now)
	require.NoError(t, err)
	assert.Contains(t, score.SubScores, "news_sentiment")
	assert.Contains(t, score.SubScores, "social_sentiment")
	// 两条提及：质量被提及量置信度压到很低
	assert.Less(t, score.DataQuality, 0.2)
}

func TestVolumeConfidence(t *testing.T) {
	assert.Equal(t, 0.0, volumeConfidence(0))
	assert.InDelta(t, 0.1, volumeConfidence(1), 1e-9) // 保底0.1
	assert.InDelta(t, 0.5, volumeConfidence(10), 1e-9)
	assert.InDelta(t, 1.0, volumeConfidence(20), 1e-9)
	assert.InDelta(t, 1.0, volumeConfidence(500), 1e-9)
}
