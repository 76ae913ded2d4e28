package sentiment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueRadar/pkg/model"
	"ValueRadar/pkg/repository"
)

func TestEnqueueUnscoredDeduplicates(t *testing.T) {
	repo := repository.NewRepository()
	svc := NewQueueService(repo.Queue(),
		&stubNewsSource{events: unscoredNews(4)},
		&stubSocialSource{})

	inserted, err := svc.EnqueueUnscored(100)
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)

	// 同样的内容再扫描一遍不产生重复队列项
	inserted, err = svc.EnqueueUnscored(100)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats[model.QueueStatusPending])
}

func TestSubmitAssignsServerBatchID(t *testing.T) {
	repo := repository.NewRepository()
	api := newFakeBatchAPI()
	submitter := NewBatchSubmitter(api, repo.Queue(), repo.Mapping(), NewBatchRequestBuilder(100))

	_, err := repo.Queue().Enqueue([]*model.QueueItem{
		newsItem("n1", "AAPL", "文本一"),
		newsItem("n2", "AAPL", "文本二"),
	})
	require.NoError(t, err)

	batchID, items, err := submitter.Submit(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "msgbatch_fake_1", batchID)
	require.Len(t, items, 2)

	// 认领用的临时claim_前缀ID被服务端批次ID替换
	queued, err := repo.Queue().GetByBatch(batchID)
	require.NoError(t, err)
	assert.Len(t, queued, 2)
	for _, item := range queued {
		assert.Equal(t, model.QueueStatusProcessing, item.ProcessingStatus)
		assert.False(t, strings.HasPrefix(item.BatchID, "claim_"))
	}

	// 映射行与队列项同批落库
	mappings, err := repo.Mapping().GetByBatch(batchID)
	require.NoError(t, err)
	assert.Len(t, mappings, 2)
}

func TestSubmitFailureReleasesClaim(t *testing.T) {
	repo := repository.NewRepository()
	api := newFakeBatchAPI()
	api.submitErr = fmt.Errorf("网络超时")
	submitter := NewBatchSubmitter(api, repo.Queue(), repo.Mapping(), NewBatchRequestBuilder(100))

	var items []*model.QueueItem
	for i := 0; i < 10; i++ {
		items = append(items, newsItem(fmt.Sprintf("n%d", i), "AAPL", "文本"))
	}
	_, err := repo.Queue().Enqueue(items)
	require.NoError(t, err)

	_, _, err = submitter.Submit(context.Background(), 100)
	require.Error(t, err)

	// 提交失败后认领整体回滚：没有条目滞留在processing
	stats, err := repo.Queue().CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats[model.QueueStatusPending])
	assert.Zero(t, stats[model.QueueStatusProcessing])

	// 也没有留下半截映射行等恢复任务白跑
	batchIDs, err := repo.Mapping().PendingBatchIDs()
	require.NoError(t, err)
	assert.Empty(t, batchIDs)

	// 故障恢复后同一批条目可以重新认领提交
	api.submitErr = nil
	batchID, submitted, err := submitter.Submit(context.Background(), 100)
	require.NoError(t, err)
	assert.NotEmpty(t, batchID)
	assert.Len(t, submitted, 10)
}

func TestSubmitCapsAtProviderBatchLimit(t *testing.T) {
	repo := repository.NewRepository()
	api := newFakeBatchAPI()
	submitter := NewBatchSubmitter(api, repo.Queue(), repo.Mapping(), NewBatchRequestBuilder(10))

	var items []*model.QueueItem
	for i := 0; i < 12; i++ {
		items = append(items, newsItem(fmt.Sprintf("n%d", i), "AAPL", "文本"))
	}
	_, err := repo.Queue().Enqueue(items)
	require.NoError(t, err)

	// 认领上限大于单批上限时由构造器切块兜底：只提交一个满批
	batchID, submitted, err := submitter.Submit(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, submitted, 10)
	assert.Len(t, api.submitted[batchID], 10)

	mappings, err := repo.Mapping().GetByBatch(batchID)
	require.NoError(t, err)
	assert.Len(t, mappings, 10)

	// 超限尾部退回pending，下一轮再认领
	stats, err := repo.Queue().CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats[model.QueueStatusProcessing])
	assert.Equal(t, int64(2), stats[model.QueueStatusPending])
}

func TestSubmitEmptyQueue(t *testing.T) {
	repo := repository.NewRepository()
	submitter := NewBatchSubmitter(newFakeBatchAPI(), repo.Queue(), repo.Mapping(), NewBatchRequestBuilder(100))

	batchID, items, err := submitter.Submit(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, batchID)
	assert.Nil(t, items)
}

func TestClaimPendingSingleWriter(t *testing.T) {
	repo := repository.NewRepository()
	_, err := repo.Queue().Enqueue(func() []*model.QueueItem {
		var items []*model.QueueItem
		for _, event := range unscoredNews(50) {
			items = append(items, &model.QueueItem{
				ContentType: model.ContentTypeNews,
				ContentID:   event.ID,
				Symbol:      event.Symbol,
				TextContent: event.Title,
			})
		}
		return items
	}())
	require.NoError(t, err)

	// 并发认领互不重叠：每个队列项恰好被认领一次
	var wg sync.WaitGroup
	claimed := make([][]*model.QueueItem, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			items, err := repo.Queue().ClaimPending(10, "claim_w")
			if assert.NoError(t, err) {
				claimed[worker] = items
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	total := 0
	for _, items := range claimed {
		for _, item := range items {
			assert.False(t, seen[item.ContentID], "队列项%s被重复认领", item.ContentID)
			seen[item.ContentID] = true
			total++
		}
	}
	assert.Equal(t, 50, total)
}

func TestCleanupPurgesOldCompleted(t *testing.T) {
	repo := repository.NewRepository()
	svc := NewQueueService(repo.Queue(), &stubNewsSource{}, &stubSocialSource{})

	_, err := repo.Queue().Enqueue([]*model.QueueItem{
		newsItem("n1", "AAPL", "文本"),
		newsItem("n2", "AAPL", "文本"),
	})
	require.NoError(t, err)

	_, err = repo.Queue().ClaimPending(10, "b1")
	require.NoError(t, err)
	require.NoError(t, repo.Queue().MarkTerminal(model.ContentTypeNews, "n1", model.QueueStatusCompleted))

	// 保留期内不清理
	purged, err := svc.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, purged)

	// 零保留期清理全部已完成项，processing项不动
	purged, err = svc.Cleanup(-time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[model.QueueStatusProcessing])
	assert.Zero(t, stats[model.QueueStatusCompleted])
}

func TestMarkTerminalIdempotent(t *testing.T) {
	repo := repository.NewRepository()
	_, err := repo.Queue().Enqueue([]*model.QueueItem{newsItem("n1", "AAPL", "文本")})
	require.NoError(t, err)
	_, err = repo.Queue().ClaimPending(10, "b1")
	require.NoError(t, err)

	require.NoError(t, repo.Queue().MarkTerminal(model.ContentTypeNews, "n1", model.QueueStatusCompleted))
	// 已终态后的再次标记是空操作，不会把completed翻转成failed
	require.NoError(t, repo.Queue().MarkTerminal(model.ContentTypeNews, "n1", model.QueueStatusFailed))

	stats, err := repo.Queue().CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[model.QueueStatusCompleted])
	assert.Zero(t, stats[model.QueueStatusFailed])

	// 非法终态被拒绝
	assert.Error(t, repo.Queue().MarkTerminal(model.ContentTypeNews, "n1", model.QueueStatusPending))
}
