package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ValueRadar/pkg/config"
	"ValueRadar/pkg/database"
	"ValueRadar/pkg/llm"
	"ValueRadar/pkg/messaging"
	"ValueRadar/pkg/sentiment"
)

func main() {
	log.Println("启动情绪批处理服务...")

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

	// 组装情绪批处理管线
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动时先跟进上次未完成的批次
	if err := pipeline.ResumePending(ctx); err != nil {
		log.Printf("恢复未完成批次失败: %v\n", err)
	}

	// 周期性推进管线
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			if err := pipeline.ProcessQueue(ctx); err != nil {
				log.Printf("情绪管线执行失败: %v\n", err)
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("正在关闭情绪批处理服务...")
	cancel()
}
