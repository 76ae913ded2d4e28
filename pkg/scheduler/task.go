package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"ValueRadar/pkg/scoring"
	"ValueRadar/pkg/sentiment"
)

// Scheduler 任务调度器
// 把批处理管线拆成可恢复的调度步骤：轮询放弃的批次由后续调度继续跟进，
// 进程重启不丢进度
type Scheduler struct {
	cron     *cron.Cron
	pipeline *sentiment.Pipeline
	runner   *scoring.Runner
}

// NewScheduler 创建任务调度器
func NewScheduler(pipeline *sentiment.Pipeline, runner *scoring.Runner) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		pipeline: pipeline,
		runner:   runner,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() {
	// 每小时推进一轮情绪批处理管线
	s.cron.AddFunc("@hourly", func() {
		log.Println("调度: 推进情绪批处理管线...")
		if err := s.pipeline.ProcessQueue(context.Background()); err != nil {
			log.Printf("情绪管线执行失败: %v", err)
		}
	})

	// 每5分钟检查未完成批次（无状态的检查并对账步骤）
	s.cron.AddFunc("@every 5m", func() {
		if err := s.pipeline.ResumePending(context.Background()); err != nil {
			log.Printf("未完成批次跟进失败: %v", err)
		}
	})

	// 每日收盘后执行打分运行
	s.cron.AddFunc("0 18 * * 1-5", func() {
		log.Println("调度: 执行每日打分运行...")
		if _, err := s.runner.Run(time.Now()); err != nil {
			log.Printf("打分运行失败: %v", err)
		}
	})

	// 每日凌晨清理过期的已完成队列项
	s.cron.AddFunc("0 3 * * *", func() {
		if err := s.pipeline.Cleanup(); err != nil {
			log.Printf("队列清理失败: %v", err)
		}
	})

	s.cron.Start()
	log.Println("任务调度器已启动")
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("任务调度器已停止")
}
