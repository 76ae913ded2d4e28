// pkg/llm/types.go
package llm

import "context"

// BatchRequest 单条批处理请求，custom_id由调用方生成并随结果原样返回
type BatchRequest struct {
	CustomID string `json:"custom_id"`
	Prompt   string `json:"prompt"`
}

// BatchState 批次状态机状态
// submitted → in_progress → {ended | failed | expired | cancelled}
type BatchState string

const (
	BatchStateSubmitted  BatchState = "submitted"
	BatchStateInProgress BatchState = "in_progress"
	BatchStateEnded      BatchState = "ended"
	BatchStateFailed     BatchState = "failed"
	BatchStateExpired    BatchState = "expired"
	BatchStateCancelled  BatchState = "cancelled"
)

// IsTerminal 是否为终态
func (s BatchState) IsTerminal() bool {
	switch s {
	case BatchStateEnded, BatchStateFailed, BatchStateExpired, BatchStateCancelled:
		return true
	}
	return false
}

// BatchStatus 批次状态快照
type BatchStatus struct {
	BatchID   string     `json:"batch_id"`
	State     BatchState `json:"state"`
	Submitted int64      `json:"submitted"` // 已提交请求数
	Succeeded int64      `json:"succeeded"` // 已成功请求数
	Errored   int64      `json:"errored"`   // 出错请求数
}

// BatchResult 单条批处理结果
type BatchResult struct {
	CustomID  string `json:"custom_id"`
	Succeeded bool   `json:"succeeded"`
	Text      string `json:"text,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchAPI 批处理服务接口
type BatchAPI interface {
	// SubmitBatch 提交一个批次，返回服务端批次ID
	SubmitBatch(ctx context.Context, requests []BatchRequest) (string, error)
	// GetBatchStatus 查询批次状态
	GetBatchStatus(ctx context.Context, batchID string) (*BatchStatus, error)
	// GetBatchResults 拉取批次的全部结果（仅终态ended后调用）
	GetBatchResults(ctx context.Context, batchID string) ([]BatchResult, error)
	// ScoreText 单条同步打分（小批量直出路径）
	ScoreText(ctx context.Context, prompt string) (string, error)
}
