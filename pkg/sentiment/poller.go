// pkg/sentiment/poller.go
package sentiment

import (
	"context"
	"fmt"
	"log"
	"time"

	"ValueRadar/pkg/llm"
)

// BatchStatusPoller 批次状态轮询器
// 协作式轮询：in_progress时休眠固定间隔后重查，超过最长等待后放弃
// 放弃不等于失败，批次可能仍在服务端运行，凭batch_id可随时恢复轮询
type BatchStatusPoller struct {
	api      llm.BatchAPI
	interval time.Duration
	maxWait  time.Duration
}

// NewBatchStatusPoller 创建轮询器
func NewBatchStatusPoller(api llm.BatchAPI, interval, maxWait time.Duration) *BatchStatusPoller {
	return &BatchStatusPoller{
		api:      api,
		interval: interval,
		maxWait:  maxWait,
	}
}

// CheckOnce 单次状态检查，供可恢复的调度任务使用
func (p *BatchStatusPoller) CheckOnce(ctx context.Context, batchID string) (*llm.BatchStatus, error) {
	return p.api.GetBatchStatus(ctx, batchID)
}

// WaitForCompletion 阻塞等待批次到达终态
// 超过maxWait返回ErrPollTimeout并附带最后一次状态；终态为非ended时返回ErrBatchTerminal
func (p *BatchStatusPoller) WaitForCompletion(ctx context.Context, batchID string) (*llm.BatchStatus, error) {
	deadline := time.Now().Add(p.maxWait)

	for {
		status, err := p.api.GetBatchStatus(ctx, batchID)
		if err != nil {
			return nil, fmt.Errorf("查询批次状态失败: %w", err)
		}

		if status.State.IsTerminal() {
			if status.State != llm.BatchStateEnded {
				return status, fmt.Errorf("%w: batch_id=%s, state=%s", ErrBatchTerminal, batchID, status.State)
			}
			return status, nil
		}

		if time.Now().After(deadline) {
			// 未决超时：不标记失败，留待后续恢复轮询
			return status, fmt.Errorf("%w: batch_id=%s, 已等待%s", ErrPollTimeout, batchID, p.maxWait)
		}

		log.Printf("批次%s处理中: 已提交%d, 已成功%d, 出错%d, %s后重查",
			batchID, status.Submitted, status.Succeeded, status.Errored, p.interval)

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
