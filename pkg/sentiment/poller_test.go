package sentiment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueRadar/pkg/llm"
)

func TestBatchStateIsTerminal(t *testing.T) {
	assert.False(t, llm.BatchStateSubmitted.IsTerminal())
	assert.False(t, llm.BatchStateInProgress.IsTerminal())
	assert.True(t, llm.BatchStateEnded.IsTerminal())
	assert.True(t, llm.BatchStateFailed.IsTerminal())
	assert.True(t, llm.BatchStateExpired.IsTerminal())
	assert.True(t, llm.BatchStateCancelled.IsTerminal())
}

func TestWaitForCompletionEnded(t *testing.T) {
	api := newFakeBatchAPI()
	api.states["b1"] = []llm.BatchState{
		llm.BatchStateSubmitted,
		llm.BatchStateInProgress,
		llm.BatchStateEnded,
	}

	poller := NewBatchStatusPoller(api, time.Millisecond, time.Second)
	status, err := poller.WaitForCompletion(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, llm.BatchStateEnded, status.State)
}

func TestWaitForCompletionTimeout(t *testing.T) {
	api := newFakeBatchAPI()
	api.states["b1"] = []llm.BatchState{llm.BatchStateInProgress}

	poller := NewBatchStatusPoller(api, time.Millisecond, 20*time.Millisecond)
	status, err := poller.WaitForCompletion(context.Background(), "b1")

	// 超时不是失败：返回最后一次状态供调用方记录
	assert.ErrorIs(t, err, ErrPollTimeout)
	require.NotNil(t, status)
	assert.Equal(t, llm.BatchStateInProgress, status.State)
}

func TestWaitForCompletionTerminalFailure(t *testing.T) {
	api := newFakeBatchAPI()

	for _, state := range []llm.BatchState{
		llm.BatchStateFailed,
		llm.BatchStateExpired,
		llm.BatchStateCancelled,
	} {
		api.states["b1"] = []llm.BatchState{state}

		poller := NewBatchStatusPoller(api, time.Millisecond, time.Second)
		status, err := poller.WaitForCompletion(context.Background(), "b1")
		assert.ErrorIs(t, err, ErrBatchTerminal, "终态%s", state)
		require.NotNil(t, status)
		assert.Equal(t, state, status.State)
	}
}

func TestWaitForCompletionContextCancelled(t *testing.T) {
	api := newFakeBatchAPI()
	api.states["b1"] = []llm.BatchState{llm.BatchStateInProgress}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	poller := NewBatchStatusPoller(api, time.Hour, time.Hour)
	_, err := poller.WaitForCompletion(ctx, "b1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckOnce(t *testing.T) {
	api := newFakeBatchAPI()
	api.states["b1"] = []llm.BatchState{llm.BatchStateInProgress}

	poller := NewBatchStatusPoller(api, time.Millisecond, time.Second)
	status, err := poller.CheckOnce(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, llm.BatchStateInProgress, status.State)

	_, err = poller.CheckOnce(context.Background(), "unknown")
	assert.Error(t, err)
}
