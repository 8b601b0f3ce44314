package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SaveState describes where unsaved work stands
type SaveState int

const (
	// SaveStateIdle means all changes are persisted
	SaveStateIdle SaveState = iota
	// SaveStateDirty means changes are waiting for the debounce window
	SaveStateDirty
	// SaveStateSaving means a save is in flight
	SaveStateSaving
	// SaveStateError means the last save failed and will be retried
	SaveStateError
)

// String returns the state's display name
func (s SaveState) String() string {
	switch s {
	case SaveStateIdle:
		return "idle"
	case SaveStateDirty:
		return "dirty"
	case SaveStateSaving:
		return "saving"
	case SaveStateError:
		return "error"
	default:
		return "unknown"
	}
}

// SaveFunc persists the current document state
type SaveFunc func(ctx context.Context) error

// Autosaver coalesces rapid edits into debounced saves. Marking dirty
// arms a timer; further marks within the window collapse into one save.
// At most one save is ever in flight; edits made while saving trigger a
// follow-up save once the current one finishes. A failed save parks the
// autosaver in the error state until the next mark or flush retries it.
type Autosaver struct {
	mu       sync.Mutex
	save     SaveFunc
	debounce time.Duration
	timer    *time.Timer
	state    SaveState
	lastErr  error
	pending  bool
	closed   bool
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// NewAutosaver creates an autosaver with the given debounce window
func NewAutosaver(save SaveFunc, debounce time.Duration, logger *zap.Logger) *Autosaver {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autosaver{
		save:     save,
		debounce: debounce,
		state:    SaveStateIdle,
		logger:   logger,
	}
}

// MarkDirty notes that the document changed and (re)arms the debounce
// timer. Safe to call from any goroutine.
func (a *Autosaver) MarkDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	if a.state == SaveStateSaving {
		a.pending = true
		return
	}

	a.state = SaveStateDirty
	a.armTimerLocked()
}

// Flush saves immediately if there is unsaved work, bypassing the
// debounce window. Returns the save error, if any. A flush while a save
// is already in flight queues a follow-up save and returns nil.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	if a.state == SaveStateSaving {
		a.pending = true
		a.mu.Unlock()
		return nil
	}
	if a.state != SaveStateDirty && a.state != SaveStateError {
		a.mu.Unlock()
		return nil
	}
	a.stopTimerLocked()
	a.mu.Unlock()

	return a.doSave(ctx)
}

// State returns the current save state
func (a *Autosaver) State() SaveState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the error from the last failed save, if the autosaver is in
// the error state
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != SaveStateError {
		return nil
	}
	return a.lastErr
}

// Close flushes unsaved work and stops the autosaver. After Close all
// marks are ignored.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.stopTimerLocked()
	a.mu.Unlock()

	// Let an in-flight save finish before deciding whether to flush again
	a.wg.Wait()

	var err error
	a.mu.Lock()
	needsSave := a.state == SaveStateDirty || a.state == SaveStateError || a.pending
	a.mu.Unlock()
	if needsSave {
		err = a.doSave(ctx)
	}

	a.mu.Lock()
	a.closed = true
	a.stopTimerLocked()
	a.mu.Unlock()
	return err
}

// armTimerLocked (re)starts the debounce timer. Caller holds the mutex.
func (a *Autosaver) armTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.onTimer)
}

// stopTimerLocked stops any pending timer. Caller holds the mutex.
func (a *Autosaver) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Autosaver) onTimer() {
	a.mu.Lock()
	if a.closed || a.state != SaveStateDirty {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	if err := a.doSave(context.Background()); err != nil {
		a.logger.Warn("Autosave failed", zap.Error(err))
	}
}

// doSave performs one save. It claims the saving state, runs the save
// function without holding the mutex, then settles the next state.
func (a *Autosaver) doSave(ctx context.Context) error {
	a.mu.Lock()
	if a.state == SaveStateSaving {
		a.pending = true
		a.mu.Unlock()
		return nil
	}
	a.state = SaveStateSaving
	a.pending = false
	a.wg.Add(1)
	a.mu.Unlock()

	err := a.save(ctx)

	a.mu.Lock()
	a.wg.Done()
	if err != nil {
		a.state = SaveStateError
		a.lastErr = err
		a.mu.Unlock()
		return err
	}

	if a.pending && !a.closed {
		// Edits arrived mid-save; go back to dirty and re-arm
		a.pending = false
		a.state = SaveStateDirty
		a.armTimerLocked()
	} else {
		a.state = SaveStateIdle
		a.lastErr = nil
	}
	a.mu.Unlock()
	return nil
}
