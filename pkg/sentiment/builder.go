// pkg/sentiment/builder.go
package sentiment

import (
	"ValueRadar/pkg/llm"
	"ValueRadar/pkg/model"
)

// BatchRequestBuilder 把队列项转成批处理请求
// custom_id由(content_type, content_id)决定，与批次内位置无关
type BatchRequestBuilder struct {
	maxBatchSize int
}

// NewBatchRequestBuilder 创建请求构造器，maxBatchSize为供应商单批上限
func NewBatchRequestBuilder(maxBatchSize int) *BatchRequestBuilder {
	return &BatchRequestBuilder{maxBatchSize: maxBatchSize}
}

// Build 构造一个批次的请求与映射行，两者一一对应
func (b *BatchRequestBuilder) Build(items []*model.QueueItem) ([]llm.BatchRequest, []*model.BatchMapping) {
	requests := make([]llm.BatchRequest, 0, len(items))
	mappings := make([]*model.BatchMapping, 0, len(items))

	for _, item := range items {
		customID := item.CustomID()
		requests = append(requests, llm.BatchRequest{
			CustomID: customID,
			Prompt:   llm.BuildSentimentPrompt(item.Symbol, item.TextContent),
		})
		mappings = append(mappings, &model.BatchMapping{
			CustomID:   customID,
			RecordType: model.RecordType(item.ContentType),
			RecordID:   item.ContentID,
			Symbol:     item.Symbol,
			Status:     model.MappingStatusPending,
		})
	}

	return requests, mappings
}

// Chunk 按供应商单批上限切分队列项
func (b *BatchRequestBuilder) Chunk(items []*model.QueueItem) [][]*model.QueueItem {
	if len(items) == 0 {
		return nil
	}
	if b.maxBatchSize <= 0 || len(items) <= b.maxBatchSize {
		return [][]*model.QueueItem{items}
	}

	var chunks [][]*model.QueueItem
	for start := 0; start < len(items); start += b.maxBatchSize {
		end := start + b.maxBatchSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
