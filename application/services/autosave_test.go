package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDebounce = 20 * time.Millisecond

func TestSaveState_String(t *testing.T) {
	assert.Equal(t, "idle", SaveStateIdle.String())
	assert.Equal(t, "dirty", SaveStateDirty.String())
	assert.Equal(t, "saving", SaveStateSaving.String())
	assert.Equal(t, "error", SaveStateError.String())
}

func TestAutosaver_DebounceCollapsesBursts(t *testing.T) {
	var saves int64
	saver := NewAutosaver(func(ctx context.Context) error {
		atomic.AddInt64(&saves, 1)
		return nil
	}, testDebounce, zap.NewNop())

	// A burst of edits within the window triggers exactly one save
	for i := 0; i < 10; i++ {
		saver.MarkDirty()
	}
	assert.Equal(t, SaveStateDirty, saver.State())

	require.Eventually(t, func() bool {
		return saver.State() == SaveStateIdle
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&saves))
}

func TestAutosaver_FlushBypassesDebounce(t *testing.T) {
	var saves int64
	saver := NewAutosaver(func(ctx context.Context) error {
		atomic.AddInt64(&saves, 1)
		return nil
	}, time.Hour, zap.NewNop())

	saver.MarkDirty()
	require.NoError(t, saver.Flush(context.Background()))

	assert.Equal(t, int64(1), atomic.LoadInt64(&saves))
	assert.Equal(t, SaveStateIdle, saver.State())
}

func TestAutosaver_FlushWithoutChangesIsNoOp(t *testing.T) {
	var saves int64
	saver := NewAutosaver(func(ctx context.Context) error {
		atomic.AddInt64(&saves, 1)
		return nil
	}, testDebounce, zap.NewNop())

	require.NoError(t, saver.Flush(context.Background()))

	assert.Equal(t, int64(0), atomic.LoadInt64(&saves))
}

func TestAutosaver_FailedSaveEntersErrorStateAndRetries(t *testing.T) {
	var saves int64
	var failing int32 = 1
	saver := NewAutosaver(func(ctx context.Context) error {
		atomic.AddInt64(&saves, 1)
		if atomic.LoadInt32(&failing) == 1 {
			return errors.New("store unavailable")
		}
		return nil
	}, time.Hour, zap.NewNop())

	saver.MarkDirty()
	err := saver.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, SaveStateError, saver.State())
	assert.Error(t, saver.Err())

	// The next flush retries and recovers
	atomic.StoreInt32(&failing, 0)
	require.NoError(t, saver.Flush(context.Background()))
	assert.Equal(t, SaveStateIdle, saver.State())
	assert.NoError(t, saver.Err())
	assert.Equal(t, int64(2), atomic.LoadInt64(&saves))
}

func TestAutosaver_EditDuringSaveQueuesFollowUp(t *testing.T) {
	var saves int64
	var saver *Autosaver
	saver = NewAutosaver(func(ctx context.Context) error {
		if atomic.AddInt64(&saves, 1) == 1 {
			// An edit arriving while the save is in flight
			saver.MarkDirty()
		}
		return nil
	}, testDebounce, zap.NewNop())

	saver.MarkDirty()
	require.NoError(t, saver.Flush(context.Background()))

	// The mid-save edit leaves the autosaver dirty, and a second save follows
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&saves) == 2 && saver.State() == SaveStateIdle
	}, time.Second, 5*time.Millisecond)
}

func TestAutosaver_CloseFlushesPendingWork(t *testing.T) {
	var saves int64
	saver := NewAutosaver(func(ctx context.Context) error {
		atomic.AddInt64(&saves, 1)
		return nil
	}, time.Hour, zap.NewNop())

	saver.MarkDirty()
	require.NoError(t, saver.Close(context.Background()))
	assert.Equal(t, int64(1), atomic.LoadInt64(&saves))

	// Marks after close are ignored
	saver.MarkDirty()
	assert.Equal(t, SaveStateIdle, saver.State())
}
