// pkg/sentiment/pipeline.go
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ValueRadar/pkg/llm"
	"ValueRadar/pkg/model"
)

// 批次生命周期事件主题
const (
	SubjectBatchSubmitted = "sentiment.batch.submitted"
	SubjectBatchCompleted = "sentiment.batch.completed"
	SubjectBatchFailed    = "sentiment.batch.failed"
)

// BatchEvent 批次生命周期事件载荷
type BatchEvent struct {
	BatchID   string    `json:"batch_id"`
	ItemCount int       `json:"item_count"`
	Completed int       `json:"completed,omitempty"`
	Failed    int       `json:"failed,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PipelineConfig 管线参数
type PipelineConfig struct {
	MaxBatchSize   int           // 供应商单批上限
	ImmediateLimit int           // 低于该数量直接同步打分
	ScanLimit      int           // 单次入队扫描上限
	QueueRetention time.Duration // 已完成队列项保留时长
}

// Pipeline 情绪批处理管线
// 单个逻辑worker顺序推进：入队 → 认领提交 → 轮询 → 对账回写
// 全部状态落库，进程重启后凭batch_id恢复
type Pipeline struct {
	cfg        PipelineConfig
	api        llm.BatchAPI
	queueSvc   *QueueService
	queue      QueueStore
	mappings   MappingStore
	submitter  *BatchSubmitter
	poller     *BatchStatusPoller
	reconciler *ResultReconciler
	publisher  Publisher
}

// NewPipeline 创建管线
func NewPipeline(
	cfg PipelineConfig,
	api llm.BatchAPI,
	queueSvc *QueueService,
	queue QueueStore,
	mappings MappingStore,
	submitter *BatchSubmitter,
	poller *BatchStatusPoller,
	reconciler *ResultReconciler,
	publisher Publisher,
) *Pipeline {
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = 10000
	}
	return &Pipeline{
		cfg:        cfg,
		api:        api,
		queueSvc:   queueSvc,
		queue:      queue,
		mappings:   mappings,
		submitter:  submitter,
		poller:     poller,
		reconciler: reconciler,
		publisher:  publisher,
	}
}

// ProcessQueue 推进一轮完整管线
// 队列很小时走同步直出路径，否则提交批次并阻塞轮询到终态
func (p *Pipeline) ProcessQueue(ctx context.Context) error {
	if _, err := p.queueSvc.EnqueueUnscored(p.cfg.ScanLimit); err != nil {
		return err
	}

	counts, err := p.queue.CountByStatus()
	if err != nil {
		return err
	}
	pending := counts[model.QueueStatusPending]
	if pending == 0 {
		log.Println("队列为空，本轮无需处理")
		return nil
	}

	if pending <= int64(p.cfg.ImmediateLimit) {
		return p.processImmediate(ctx)
	}

	batchID, items, err := p.submitter.Submit(ctx, p.cfg.MaxBatchSize)
	if err != nil {
		return err
	}
	if batchID == "" {
		return nil
	}

	p.publish(SubjectBatchSubmitted, BatchEvent{
		BatchID:   batchID,
		ItemCount: len(items),
		Timestamp: time.Now(),
	})

	status, err := p.poller.WaitForCompletion(ctx, batchID)
	if err != nil {
		if errors.Is(err, ErrPollTimeout) {
			// 未决超时：条目保持processing，由恢复任务继续跟进
			log.Printf("批次%s轮询超时，状态未决，等待调度任务恢复", batchID)
			return nil
		}
		if errors.Is(err, ErrBatchTerminal) {
			p.publish(SubjectBatchFailed, BatchEvent{
				BatchID:   batchID,
				ItemCount: len(items),
				Reason:    string(status.State),
				Timestamp: time.Now(),
			})
		}
		return err
	}

	summary, err := p.reconciler.Reconcile(ctx, p.api, batchID)
	if err != nil {
		return err
	}

	p.publish(SubjectBatchCompleted, BatchEvent{
		BatchID:   batchID,
		ItemCount: summary.Total,
		Completed: summary.Completed,
		Failed:    summary.Failed,
		Timestamp: time.Now(),
	})
	return nil
}

// processImmediate 同步直出路径：逐条调用消息API，复用对账的解析与回写逻辑
// 与批次路径一样发布completed事件，下游的事件触发逻辑不区分两条路径
func (p *Pipeline) processImmediate(ctx context.Context) error {
	claimID := fmt.Sprintf("immediate_%d", time.Now().UnixNano())
	items, err := p.queue.ClaimPending(p.cfg.ImmediateLimit, claimID)
	if err != nil {
		return err
	}

	completed, failed := 0, 0
	for _, item := range items {
		prompt := llm.BuildSentimentPrompt(item.Symbol, item.TextContent)
		text, err := p.api.ScoreText(ctx, prompt)

		result := llm.BatchResult{CustomID: item.CustomID(), Succeeded: err == nil, Text: text}
		if err != nil {
			log.Printf("警告: 条目%s同步打分失败: %v", item.CustomID(), err)
			result.Error = err.Error()
		}

		mapping := &model.BatchMapping{
			BatchID:    claimID,
			CustomID:   item.CustomID(),
			RecordType: model.RecordType(item.ContentType),
			RecordID:   item.ContentID,
			Symbol:     item.Symbol,
			Status:     model.MappingStatusPending,
		}
		if err := p.mappings.SaveBatch([]*model.BatchMapping{mapping}); err != nil {
			return err
		}

		ok, err := p.reconciler.applyResult(mapping, result)
		switch {
		case err != nil:
			log.Printf("警告: 条目%s回写失败: %v", item.CustomID(), err)
			failed++
		case ok:
			completed++
		default:
			failed++
		}
	}

	p.publish(SubjectBatchCompleted, BatchEvent{
		BatchID:   claimID,
		ItemCount: len(items),
		Completed: completed,
		Failed:    failed,
		Timestamp: time.Now(),
	})

	log.Printf("同步直出完成: 共%d条, 成功%d, 失败%d", len(items), completed, failed)
	return nil
}

// ResumePending 恢复所有未完成批次的跟进（重启后或调度任务调用）
// 对每个仍有pending映射行的批次做单次状态检查，已结束的立即对账
func (p *Pipeline) ResumePending(ctx context.Context) error {
	batchIDs, err := p.mappings.PendingBatchIDs()
	if err != nil {
		return err
	}

	var firstErr error
	for _, batchID := range batchIDs {
		// 同步直出的本地批次ID不对应任何服务端批次，不能拿去轮询
		if strings.HasPrefix(batchID, "immediate_") {
			continue
		}
		if err := p.CheckAndReconcile(ctx, batchID); err != nil {
			log.Printf("警告: 批次%s恢复处理失败: %v", batchID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// CheckAndReconcile 无状态的"检查并对账"步骤
// in_progress直接返回等下一轮调度；ended触发对账；失败终态上抛要求人工处理
func (p *Pipeline) CheckAndReconcile(ctx context.Context, batchID string) error {
	status, err := p.poller.CheckOnce(ctx, batchID)
	if err != nil {
		return err
	}

	switch {
	case !status.State.IsTerminal():
		log.Printf("批次%s仍在处理中: 已成功%d/%d", batchID, status.Succeeded, status.Submitted)
		return nil
	case status.State == llm.BatchStateEnded:
		summary, err := p.reconciler.Reconcile(ctx, p.api, batchID)
		if err != nil {
			return err
		}
		p.publish(SubjectBatchCompleted, BatchEvent{
			BatchID:   batchID,
			ItemCount: summary.Total,
			Completed: summary.Completed,
			Failed:    summary.Failed,
			Timestamp: time.Now(),
		})
		return nil
	default:
		// failed/expired/cancelled：条目保持processing，需要人工重新提交
		p.publish(SubjectBatchFailed, BatchEvent{
			BatchID:   batchID,
			Reason:    string(status.State),
			Timestamp: time.Now(),
		})
		return fmt.Errorf("%w: batch_id=%s, state=%s", ErrBatchTerminal, batchID, status.State)
	}
}

// VerifyMapping 校验已提交批次存在映射行，缺失视为不一致状态
func (p *Pipeline) VerifyMapping(batchID string) error {
	rows, err := p.mappings.GetByBatch(batchID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: batch_id=%s", ErrMissingMapping, batchID)
	}
	return nil
}

// Cleanup 清理超过保留期的已完成队列项
func (p *Pipeline) Cleanup() error {
	_, err := p.queueSvc.Cleanup(p.cfg.QueueRetention)
	return err
}

// publish 发布事件，发布失败只记日志不阻断管线
func (p *Pipeline) publish(subject string, event BatchEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(subject, event); err != nil {
		log.Printf("警告: 发布事件%s失败: %v", subject, err)
	}
}
