package main

import (
	"errors"
	"log"
	"os"
	"time"

	"ValueRadar/pkg/api"
	"ValueRadar/pkg/config"
	"ValueRadar/pkg/database"
	"ValueRadar/pkg/messaging"
	"ValueRadar/pkg/monitor"
	"ValueRadar/pkg/sentiment"
)

func main() {
	log.Println("启动API服务...")

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

	// 连接NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("连接NATS失败: %v\n", err)
	}
	defer natsClient.Close()

	// 注册组件健康检查
	mon := monitor.NewMonitor(func(component, status, message string) {
		log.Printf("组件告警: %s 状态=%s %s\n", component, status, message)
	})
	mon.RegisterComponent("database", db.Ping)
	mon.RegisterComponent("nats", func() error {
		if !natsClient.IsConnected() {
			return errors.New("NATS连接不可用")
		}
		return nil
	})
	mon.RegisterComponent("anthropic", func() error {
		if cfg.Anthropic.APIKey == "" {
			return errors.New("未配置API密钥")
		}
		return nil
	})
	mon.RunChecks()
	mon.StartChecking(30 * time.Second)

	// 创建API处理程序
	queueSvc := sentiment.NewQueueService(db.Queue(), db.News(), db.Social())
	handlers := api.NewHandlers(db.Metrics(), db.Queue(), db.Mapping(), queueSvc, mon)

	// 创建并启动服务器
	server := api.NewServer(cfg.API.Port)
	server.SetupRoutes(handlers)
	server.Start()
}
