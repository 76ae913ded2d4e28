// pkg/llm/anthropic.go
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient Anthropic消息批处理API客户端
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicClient 创建新的Anthropic客户端
func NewAnthropicClient(apiKey, model string, maxTokens int) *AnthropicClient {
	return &AnthropicClient{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

// SubmitBatch 提交一个批次，返回服务端批次ID
func (c *AnthropicClient) SubmitBatch(ctx context.Context, requests []BatchRequest) (string, error) {
	if len(requests) == 0 {
		return "", fmt.Errorf("批次请求列表为空")
	}

	params := make([]anthropic.MessageBatchNewParamsRequest, 0, len(requests))
	for _, req := range requests {
		params = append(params, anthropic.MessageBatchNewParamsRequest{
			CustomID: req.CustomID,
			Params: anthropic.MessageBatchNewParamsRequestParams{
				Model:     anthropic.Model(c.model),
				MaxTokens: c.maxTokens,
				System: []anthropic.TextBlockParam{
					{Text: sentimentSystemPrompt},
				},
				Messages: []anthropic.MessageParam{
					anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
				},
			},
		})
	}

	batch, err := c.client.Messages.Batches.New(ctx, anthropic.MessageBatchNewParams{
		Requests: params,
	})
	if err != nil {
		return "", fmt.Errorf("提交批次失败: %w", err)
	}

	return batch.ID, nil
}

// GetBatchStatus 查询批次状态并映射到内部状态机
func (c *AnthropicClient) GetBatchStatus(ctx context.Context, batchID string) (*BatchStatus, error) {
	batch, err := c.client.Messages.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("查询批次状态失败: %w", err)
	}

	counts := batch.RequestCounts
	status := &BatchStatus{
		BatchID:   batch.ID,
		Submitted: counts.Processing + counts.Succeeded + counts.Errored + counts.Canceled + counts.Expired,
		Succeeded: counts.Succeeded,
		Errored:   counts.Errored,
	}

	switch batch.ProcessingStatus {
	case anthropic.MessageBatchProcessingStatusInProgress:
		status.State = BatchStateInProgress
	case anthropic.MessageBatchProcessingStatusCanceling:
		status.State = BatchStateCancelled
	case anthropic.MessageBatchProcessingStatusEnded:
		// ended细分：一条都没成功时按失败原因归类
		switch {
		case counts.Succeeded == 0 && counts.Expired > 0:
			status.State = BatchStateExpired
		case counts.Succeeded == 0 && counts.Canceled > 0:
			status.State = BatchStateCancelled
		case counts.Succeeded == 0 && counts.Errored > 0:
			status.State = BatchStateFailed
		default:
			status.State = BatchStateEnded
		}
	default:
		status.State = BatchStateInProgress
	}

	return status, nil
}

// GetBatchResults 拉取批次的全部结果
func (c *AnthropicClient) GetBatchResults(ctx context.Context, batchID string) ([]BatchResult, error) {
	stream := c.client.Messages.Batches.ResultsStreaming(ctx, batchID)

	var results []BatchResult
	for stream.Next() {
		entry := stream.Current()

		result := BatchResult{CustomID: entry.CustomID}
		switch entry.Result.Type {
		case "succeeded":
			result.Succeeded = true
			result.Text = messageText(entry.Result.Message)
		default:
			result.Error = string(entry.Result.Type)
		}
		results = append(results, result)
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("读取批次结果失败: %w", err)
	}

	return results, nil
}

// ScoreText 单条同步打分（队列很小时不值得开批次）
func (c *AnthropicClient) ScoreText(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: sentimentSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("发送打分请求失败: %w", err)
	}

	text := messageText(*msg)
	if text == "" {
		return "", fmt.Errorf("API返回空响应")
	}
	return text, nil
}

// messageText 拼接消息中的全部文本块
func messageText(msg anthropic.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}
