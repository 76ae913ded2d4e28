package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueRadar/pkg/model"
	"ValueRadar/pkg/repository"
)

type stubStocks struct{ stocks []*model.Stock }

func (s *stubStocks) GetActiveStocks() ([]*model.Stock, error) { return s.stocks, nil }

type stubFundamentals struct {
	rows map[string]*model.StockFundamentals
}

func (s *stubFundamentals) GetLatest(symbol string) (*model.StockFundamentals, error) {
	return s.rows[symbol], nil
}

type stubNews struct{ rows map[string][]*model.NewsEvent }

func (s *stubNews) GetScoredSince(symbol string, since time.Time) ([]*model.NewsEvent, error) {
	return s.rows[symbol], nil
}

type stubSocial struct {
	rows map[string][]*model.RedditPost
}

func (s *stubSocial) GetScoredSince(symbol string, since time.Time) ([]*model.RedditPost, error) {
	return s.rows[symbol], nil
}

type capturingPublisher struct {
	subjects []string
	events   []interface{}
}

func (p *capturingPublisher) Publish(subject string, data interface{}) error {
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, data)
	return nil
}

func fullFundamentals(symbol string) *model.StockFundamentals {
	return &model.StockFundamentals{
		Symbol:          symbol,
		PERatio:         ptr(15.0),
		PBRatio:         ptr(2.0),
		PSRatio:         ptr(2.5),
		PEGRatio:        ptr(1.2),
		ROE:             ptr(18.0),
		DebtToEquity:    ptr(0.8),
		CurrentRatio:    ptr(1.8),
		OperatingMargin: ptr(15.0),
		RevenueGrowth:   ptr(12.0),
		EarningsGrowth:  ptr(10.0),
		EPSGrowth:       ptr(9.0),
		FCFGrowth:       ptr(8.0),
	}
}

func newTestRunner(stocks *stubStocks, fundamentals *stubFundamentals, news *stubNews, social *stubSocial, sink MetricsSink, pub Publisher) *Runner {
	engine := NewCompositeEngine(0.3, 0.4, "2.1")
	return NewRunner(stocks, fundamentals, news, social, sink, pub, engine, 30)
}

func TestRunnerScoresFullUniverse(t *testing.T) {
	now := time.Now()
	stocks := &stubStocks{stocks: []*model.Stock{
		{Symbol: "AAPL", Sector: "Technology"},
		{Symbol: "JPM", Sector: "Financials"},
		{Symbol: "XOM", Sector: "Energy"},
	}}
	fundamentals := &stubFundamentals{rows: map[string]*model.StockFundamentals{
		"AAPL": fullFundamentals("AAPL"),
		"JPM":  fullFundamentals("JPM"),
		"XOM":  fullFundamentals("XOM"),
	}}
	news := &stubNews{rows: map[string][]*model.NewsEvent{
		"AAPL": {scoredNews("AAPL", 0.4, 0.9, now.AddDate(0, 0, -2))},
	}}
	social := &stubSocial{rows: map[string][]*model.RedditPost{}}
	sink := repository.NewMetricsRepository()
	pub := &capturingPublisher{}

	runner := newTestRunner(stocks, fundamentals, news, social, sink, pub)

	event, err := runner.Run(now)
	require.NoError(t, err)
	assert.Equal(t, 3, event.Universe)
	assert.Equal(t, 3, event.Scored)
	assert.Equal(t, 0, event.Skipped)

	rows := sink.All()
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.GreaterOrEqual(t, row.CompositeScore, 0.0)
		assert.LessOrEqual(t, row.CompositeScore, 100.0)
		assert.NotEmpty(t, row.OutlierCategory)
		assert.Greater(t, row.MarketPercentile, 0.0)
		assert.Equal(t, "2.1", row.MethodologyVersion)
	}

	// 运行完成后发布事件
	require.Len(t, pub.subjects, 1)
	assert.Equal(t, SubjectRunCompleted, pub.subjects[0])
}

func TestRunnerSkipsInsufficientData(t *testing.T) {
	stocks := &stubStocks{stocks: []*model.Stock{
		{Symbol: "AAPL", Sector: "Technology"},
		{Symbol: "GHOST", Sector: "Unknown"}, // 无任何数据
	}}
	fundamentals := &stubFundamentals{rows: map[string]*model.StockFundamentals{
		"AAPL": fullFundamentals("AAPL"),
	}}
	sink := repository.NewMetricsRepository()

	runner := newTestRunner(stocks, fundamentals,
		&stubNews{}, &stubSocial{}, sink, nil)

	event, err := runner.Run(time.Now())
	require.NoError(t, err)

	// 数据不足的股票跳过，不中断整轮
	assert.Equal(t, 2, event.Universe)
	assert.Equal(t, 1, event.Scored)
	assert.Equal(t, 1, event.Skipped)
	assert.Len(t, sink.All(), 1)
}

func TestRunnerSentimentOptional(t *testing.T) {
	// 没有任何已打分内容时仅靠基本面三分量也能产出
	stocks := &stubStocks{stocks: []*model.Stock{{Symbol: "KO", Sector: "Consumer"}}}
	fundamentals := &stubFundamentals{rows: map[string]*model.StockFundamentals{
		"KO": fullFundamentals("KO"),
	}}
	sink := repository.NewMetricsRepository()

	runner := newTestRunner(stocks, fundamentals, &stubNews{}, &stubSocial{}, sink, nil)

	_, err := runner.Run(time.Now())
	require.NoError(t, err)

	rows := sink.All()
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].SentimentScore)
	assert.NotNil(t, rows[0].FundamentalScore)
	// 完整度3/4打了折扣
	assert.Less(t, rows[0].OverallDataQuality, 1.0)
}
