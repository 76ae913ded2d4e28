// pkg/sentiment/reconciler.go
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ValueRadar/pkg/llm"
	"ValueRadar/pkg/model"
)

// SentimentResult 从模型响应解析出的情绪结果
type SentimentResult struct {
	SentimentScore float64 `json:"sentiment_score"` // [-1,1]
	Confidence     float64 `json:"confidence"`      // [0,1]
}

// ReconcileSummary 一次对账的结果统计
type ReconcileSummary struct {
	BatchID   string `json:"batch_id"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"` // 结果中找不到映射行的条目
}

// ResultReconciler 批次结果对账器
// 把每条结果解析后回写到原始内容记录，并推进队列项与映射行状态
// 整个过程可安全重跑：回写是幂等更新，状态推进只作用于未终态的行
type ResultReconciler struct {
	queue    QueueStore
	mappings MappingStore
	news     SentimentWriter
	social   SentimentWriter
}

// NewResultReconciler 创建对账器
func NewResultReconciler(queue QueueStore, mappings MappingStore, news, social SentimentWriter) *ResultReconciler {
	return &ResultReconciler{
		queue:    queue,
		mappings: mappings,
		news:     news,
		social:   social,
	}
}

// Reconcile 对账一个已结束批次的全部结果
func (r *ResultReconciler) Reconcile(ctx context.Context, api llm.BatchAPI, batchID string) (*ReconcileSummary, error) {
	mappings, err := r.mappings.GetByBatch(batchID)
	if err != nil {
		return nil, err
	}
	if len(mappings) == 0 {
		// 已提交批次没有映射行：提交后崩溃留下的不一致状态
		return nil, fmt.Errorf("%w: batch_id=%s", ErrMissingMapping, batchID)
	}

	byCustomID := make(map[string]*model.BatchMapping, len(mappings))
	for _, mapping := range mappings {
		byCustomID[mapping.CustomID] = mapping
	}

	results, err := api.GetBatchResults(ctx, batchID)
	if err != nil {
		return nil, err
	}

	summary := &ReconcileSummary{BatchID: batchID, Total: len(results)}
	for _, result := range results {
		mapping, ok := byCustomID[result.CustomID]
		if !ok {
			log.Printf("警告: 批次%s返回了未知custom_id: %s", batchID, result.CustomID)
			summary.Skipped++
			continue
		}

		completed, err := r.applyResult(mapping, result)
		if err != nil {
			log.Printf("警告: 条目%s对账失败: %v", result.CustomID, err)
			summary.Failed++
			continue
		}

		if completed {
			summary.Completed++
		} else {
			summary.Failed++
		}
	}

	log.Printf("批次%s对账完成: 共%d条, 成功%d, 失败%d, 跳过%d",
		batchID, summary.Total, summary.Completed, summary.Failed, summary.Skipped)
	return summary, nil
}

// applyResult 处理单条结果：成功则解析回写，失败则置failed
// 返回该条目是否以completed收尾；单条解析失败不中断整批
func (r *ResultReconciler) applyResult(mapping *model.BatchMapping, result llm.BatchResult) (bool, error) {
	contentType := contentTypeOf(mapping.RecordType)

	if !result.Succeeded {
		r.markFailed(mapping, contentType)
		return false, nil
	}

	parsed, err := ParseSentimentResponse(result.Text)
	if err != nil {
		// 解析失败按失败条目处理：零分低置信度，不中断批次
		log.Printf("警告: 条目%s响应解析失败, 按零分记failed: %v", mapping.CustomID, err)
		r.markFailed(mapping, contentType)
		return false, nil
	}

	writer := r.writerFor(mapping.RecordType)
	if writer == nil {
		return false, fmt.Errorf("未知的record_type: %s", mapping.RecordType)
	}
	if err := writer.UpdateSentiment(mapping.RecordID, parsed.SentimentScore, parsed.Confidence); err != nil {
		return false, err
	}

	if err := r.mappings.MarkStatus(mapping.BatchID, mapping.CustomID, model.MappingStatusCompleted); err != nil {
		return false, err
	}
	if err := r.queue.MarkTerminal(contentType, mapping.RecordID, model.QueueStatusCompleted); err != nil {
		return false, err
	}
	return true, nil
}

// markFailed 条目置failed，状态推进失败只记日志
func (r *ResultReconciler) markFailed(mapping *model.BatchMapping, contentType model.ContentType) {
	if err := r.mappings.MarkStatus(mapping.BatchID, mapping.CustomID, model.MappingStatusFailed); err != nil {
		log.Printf("警告: 映射行%s置failed失败: %v", mapping.CustomID, err)
	}
	if err := r.queue.MarkTerminal(contentType, mapping.RecordID, model.QueueStatusFailed); err != nil {
		log.Printf("警告: 队列项%s置failed失败: %v", mapping.CustomID, err)
	}
}

// writerFor 按记录类型选择回写目标表
func (r *ResultReconciler) writerFor(recordType string) SentimentWriter {
	switch recordType {
	case "news":
		return r.news
	case "reddit":
		return r.social
	}
	return nil
}

// contentTypeOf 记录类型前缀映射回内容类型
func contentTypeOf(recordType string) model.ContentType {
	if recordType == "reddit" {
		return model.ContentTypeSocial
	}
	return model.ContentType(recordType)
}

// ParseSentimentResponse 从模型响应文本中提取情绪JSON
// 容忍JSON前后夹杂说明性文字；越界数值截断到合法区间而不是拒绝
func ParseSentimentResponse(text string) (*SentimentResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("响应为空")
	}

	// 先按纯JSON解析，失败再截取首个'{'到最后一个'}'之间的片段
	candidates := []string{text}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	for _, candidate := range candidates {
		var result SentimentResult
		if err := json.Unmarshal([]byte(candidate), &result); err == nil {
			result.SentimentScore = clamp(result.SentimentScore, -1, 1)
			result.Confidence = clamp(result.Confidence, 0, 1)
			return &result, nil
		}
	}

	return nil, fmt.Errorf("响应中找不到合法的情绪JSON")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
