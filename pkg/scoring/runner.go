// pkg/scoring/runner.go
package scoring

import (
	"errors"
	"log"
	"time"

	"ValueRadar/pkg/model"
)

// SubjectRunCompleted 打分运行完成事件主题
const SubjectRunCompleted = "scores.run.completed"

// RunEvent 打分运行完成事件载荷
type RunEvent struct {
	CalculationDate time.Time `json:"calculation_date"`
	Universe        int       `json:"universe"` // 参与计算的股票数
	Scored          int       `json:"scored"`   // 产出结果的股票数
	Skipped         int       `json:"skipped"`  // 数据不足被跳过的股票数
	Timestamp       time.Time `json:"timestamp"`
}

// StockSource 股票池来源
type StockSource interface {
	GetActiveStocks() ([]*model.Stock, error)
}

// FundamentalsSource 基本面数据来源
type FundamentalsSource interface {
	GetLatest(symbol string) (*model.StockFundamentals, error)
}

// ScoredNewsSource 已打分新闻来源
type ScoredNewsSource interface {
	GetScoredSince(symbol string, since time.Time) ([]*model.NewsEvent, error)
}

// ScoredSocialSource 已打分帖子来源
type ScoredSocialSource interface {
	GetScoredSince(symbol string, since time.Time) ([]*model.RedditPost, error)
}

// MetricsSink 计算结果落库接口
type MetricsSink interface {
	SaveRun(rows []*model.CalculatedMetrics) error
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// Runner 打分运行器：驱动一轮完整的四分量计算、合成、排名与落库
type Runner struct {
	stocks       StockSource
	fundamentals FundamentalsSource
	news         ScoredNewsSource
	social       ScoredSocialSource
	sink         MetricsSink
	publisher    Publisher

	fundamentalCalc *FundamentalCalculator
	qualityCalc     *QualityCalculator
	growthCalc      *GrowthCalculator
	sentimentCalc   *SentimentCalculator
	engine          *CompositeEngine
	windowDays      int
}

// NewRunner 创建打分运行器
func NewRunner(
	stocks StockSource,
	fundamentals FundamentalsSource,
	news ScoredNewsSource,
	social ScoredSocialSource,
	sink MetricsSink,
	publisher Publisher,
	engine *CompositeEngine,
	windowDays int,
) *Runner {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &Runner{
		stocks:          stocks,
		fundamentals:    fundamentals,
		news:            news,
		social:          social,
		sink:            sink,
		publisher:       publisher,
		fundamentalCalc: NewFundamentalCalculator(),
		qualityCalc:     NewQualityCalculator(),
		growthCalc:      NewGrowthCalculator(),
		sentimentCalc:   NewSentimentCalculator(windowDays),
		engine:          engine,
		windowDays:      windowDays,
	}
}

// Run 执行一轮打分运行
// 数据不足的股票记警告日志后跳过，不中断整轮
func (r *Runner) Run(now time.Time) (*RunEvent, error) {
	stocks, err := r.stocks.GetActiveStocks()
	if err != nil {
		return nil, err
	}

	date := now.Truncate(24 * time.Hour)
	windowStart := now.AddDate(0, 0, -r.windowDays)

	var rows []*model.CalculatedMetrics
	skipped := 0

	for _, stock := range stocks {
		row, err := r.scoreStock(stock, date, now, windowStart)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				log.Printf("警告: %s 数据不足，本轮跳过: %v", stock.Symbol, err)
				skipped++
				continue
			}
			return nil, err
		}
		rows = append(rows, row)
	}

	// 分位数从本轮全部结果重算
	RankAndCategorize(rows)

	if err := r.sink.SaveRun(rows); err != nil {
		return nil, err
	}

	event := &RunEvent{
		CalculationDate: date,
		Universe:        len(stocks),
		Scored:          len(rows),
		Skipped:         skipped,
		Timestamp:       time.Now(),
	}
	if r.publisher != nil {
		if err := r.publisher.Publish(SubjectRunCompleted, event); err != nil {
			log.Printf("警告: 发布打分完成事件失败: %v", err)
		}
	}

	log.Printf("打分运行完成: 股票池%d, 产出%d, 跳过%d", event.Universe, event.Scored, event.Skipped)
	return event, nil
}

// scoreStock 计算单只股票的四个分量并合成
func (r *Runner) scoreStock(stock *model.Stock, date, now, windowStart time.Time) (*model.CalculatedMetrics, error) {
	fundamentals, err := r.fundamentals.GetLatest(stock.Symbol)
	if err != nil {
		return nil, err
	}

	fundamental := r.calcOptional(func() (*model.ComponentScore, error) {
		return r.fundamentalCalc.Calculate(fundamentals, stock.Sector)
	})
	quality := r.calcOptional(func() (*model.ComponentScore, error) {
		return r.qualityCalc.Calculate(fundamentals, stock.Sector)
	})
	growth := r.calcOptional(func() (*model.ComponentScore, error) {
		return r.growthCalc.Calculate(fundamentals, stock.Sector)
	})

	news, err := r.news.GetScoredSince(stock.Symbol, windowStart)
	if err != nil {
		return nil, err
	}
	posts, err := r.social.GetScoredSince(stock.Symbol, windowStart)
	if err != nil {
		return nil, err
	}
	sentiment := r.calcOptional(func() (*model.ComponentScore, error) {
		return r.sentimentCalc.Calculate(stock.Symbol, news, posts, now)
	})

	return r.engine.Compose(stock.Symbol, stock.Sector, date, fundamental, quality, growth, sentiment)
}

// calcOptional 分量数据不足时返回nil（零权重参与合成），其他错误也按缺失降级
func (r *Runner) calcOptional(calc func() (*model.ComponentScore, error)) *model.ComponentScore {
	score, err := calc()
	if err != nil {
		if !errors.Is(err, ErrInsufficientData) {
			log.Printf("警告: 分量计算失败: %v", err)
		}
		return nil
	}
	return score
}
