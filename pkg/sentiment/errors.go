// pkg/sentiment/errors.go
package sentiment

import "errors"

var (
	// ErrPollTimeout 轮询超出最长等待时间。批次未失败，服务端可能仍在处理，
	// 调用方应稍后用同一batch_id恢复轮询
	ErrPollTimeout = errors.New("批次轮询超时，状态未决")

	// ErrBatchTerminal 批次以failed/expired/cancelled终态结束，
	// 整批条目保持processing，需要人工重新提交，不做自动重试
	ErrBatchTerminal = errors.New("批次以失败终态结束")

	// ErrMissingMapping 已提交批次没有任何映射行：提交后、持久化前崩溃留下的
	// 不一致状态，需要人工对账，不做自动修复
	ErrMissingMapping = errors.New("批次缺少映射行，状态不一致")
)
