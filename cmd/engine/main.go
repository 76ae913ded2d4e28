package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ValueRadar/pkg/config"
	"ValueRadar/pkg/database"
	"ValueRadar/pkg/llm"
	"ValueRadar/pkg/messaging"
	"ValueRadar/pkg/scheduler"
	"ValueRadar/pkg/scoring"
	"ValueRadar/pkg/sentiment"
)

func main() {
	log.Println("启动估值打分引擎...")

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v\n", err)
	}

	// 连接数据库
	db, err := database.NewTimescaleDB(cfg)
	if err != nil {
		log.Fatalf("连接数据库失败: %v\n", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("迁移表结构失败: %v\n", err)
	}

	// 连接NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("连接NATS失败: %v\n", err)
	}
	defer natsClient.Close()

	// 组装情绪批处理管线（调度器驱动）
	batchAPI := llm.NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
	queueSvc := sentiment.NewQueueService(db.Queue(), db.News(), db.Social())
	builder := sentiment.NewBatchRequestBuilder(cfg.Anthropic.MaxBatchSize)
	submitter := sentiment.NewBatchSubmitter(batchAPI, db.Queue(), db.Mapping(), builder)
	poller := sentiment.NewBatchStatusPoller(batchAPI, cfg.Anthropic.PollInterval, cfg.Anthropic.MaxPollWait)
	reconciler := sentiment.NewResultReconciler(db.Queue(), db.Mapping(), db.News(), db.Social())

	pipeline := sentiment.NewPipeline(
		sentiment.PipelineConfig{
			MaxBatchSize:   cfg.Anthropic.MaxBatchSize,
			ImmediateLimit: cfg.Anthropic.ImmediateLimit,
			QueueRetention: cfg.Anthropic.QueueRetention,
		},
		batchAPI,
		queueSvc,
		db.Queue(),
		db.Mapping(),
		submitter,
		poller,
		reconciler,
		natsClient,
	)

	// 组装打分运行器
	engine := scoring.NewCompositeEngine(
		cfg.Scoring.MinComponentQuality,
		cfg.Scoring.MinOverallQuality,
		cfg.Scoring.MethodologyVersion,
	)
	runner := scoring.NewRunner(
		db.Stock(),
		db.Fundamentals(),
		db.News(),
		db.Social(),
		db.Metrics(),
		natsClient,
		engine,
		cfg.Scoring.NewsWindowDays,
	)

	// 批次完成事件触发一轮打分，让新情绪分数尽快进入综合分
	err = natsClient.Subscribe(
		messaging.StreamSentiment,
		"engine-batch-completed",
		sentiment.SubjectBatchCompleted,
		func(data []byte) error {
			var event sentiment.BatchEvent
			if err := json.Unmarshal(data, &event); err != nil {
				log.Printf("解析批次事件失败: %v\n", err)
				return nil
			}

			log.Printf("批次 %s 完成(成功%d/失败%d)，触发打分运行\n",
				event.BatchID, event.Completed, event.Failed)
			if _, err := runner.Run(time.Now()); err != nil {
				log.Printf("打分运行失败: %v\n", err)
			}
			return nil
		},
	)
	if err != nil {
		log.Fatalf("订阅批次完成事件失败: %v\n", err)
	}

	// 启动任务调度器
	sched := scheduler.NewScheduler(pipeline, runner)
	sched.Start()
	defer sched.Stop()

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("正在关闭估值打分引擎...")
}
