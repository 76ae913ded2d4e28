// pkg/sentiment/submitter.go
package sentiment

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"ValueRadar/pkg/llm"
	"ValueRadar/pkg/model"
)

// BatchSubmitter 批次提交器
// 认领队列项 → 提交到批处理API → 持久化映射行（轮询开始前必须完成）
type BatchSubmitter struct {
	api      llm.BatchAPI
	queue    QueueStore
	mappings MappingStore
	builder  *BatchRequestBuilder
}

// NewBatchSubmitter 创建批次提交器
func NewBatchSubmitter(api llm.BatchAPI, queue QueueStore, mappings MappingStore, builder *BatchRequestBuilder) *BatchSubmitter {
	return &BatchSubmitter{
		api:      api,
		queue:    queue,
		mappings: mappings,
		builder:  builder,
	}
}

// Submit 认领至多maxSize个pending项并提交一个批次
// 认领数超出供应商单批上限时只提交首块，尾部退回pending由下一轮认领
// 返回服务端批次ID与已提交的队列项；队列为空时返回("", nil, nil)
func (s *BatchSubmitter) Submit(ctx context.Context, maxSize int) (string, []*model.QueueItem, error) {
	// 认领时批次ID尚不存在，先用本地临时ID标记，提交成功后替换
	claimID := "claim_" + uuid.New().String()

	items, err := s.queue.ClaimPending(maxSize, claimID)
	if err != nil {
		return "", nil, fmt.Errorf("认领队列项失败: %w", err)
	}
	if len(items) == 0 {
		return "", nil, nil
	}

	chunks := s.builder.Chunk(items)
	head := chunks[0]
	requests, mappings := s.builder.Build(head)

	batchID, err := s.api.SubmitBatch(ctx, requests)
	if err != nil {
		// 提交失败必须释放认领，否则这批项卡在processing且没有映射行驱动恢复
		if relErr := s.queue.ReleaseClaim(claimID); relErr != nil {
			log.Printf("警告: 批次提交失败后回滚认领失败: %v", relErr)
		}
		return "", nil, fmt.Errorf("提交批次失败: %w", err)
	}

	// 提交成功后立即持久化映射行；这里失败意味着出现了"已提交但无映射"
	// 的不一致状态，向上抛致命错误交由人工对账
	for _, mapping := range mappings {
		mapping.BatchID = batchID
	}
	if err := s.mappings.SaveBatch(mappings); err != nil {
		return batchID, head, fmt.Errorf("%w: 批次%s已提交但映射行写入失败: %v", ErrMissingMapping, batchID, err)
	}

	headIDs := make([]string, 0, len(head))
	for _, item := range head {
		headIDs = append(headIDs, item.QueueID)
	}
	if err := s.queue.ReassignItems(headIDs, batchID); err != nil {
		log.Printf("警告: 批次%s队列项批次ID回填失败: %v", batchID, err)
	}

	// 首块之外的条目仍挂在claimID下，整体释放回pending
	if len(chunks) > 1 {
		if err := s.queue.ReleaseClaim(claimID); err != nil {
			log.Printf("警告: 批次%s超限尾部释放失败: %v", batchID, err)
		} else {
			log.Printf("批次%s认领数%d超出单批上限，尾部%d条退回pending", batchID, len(items), len(items)-len(head))
		}
	}

	log.Printf("批次提交成功: batch_id=%s, 条目数=%d", batchID, len(head))
	return batchID, head, nil
}
