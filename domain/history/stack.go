package history

import "sync"

// DefaultDepth is the number of undo steps kept when none is configured
const DefaultDepth = 100

// Stack is a bounded undo/redo stack of document snapshots.
//
// Callers record the pre-mutation snapshot before each edit. Undo and Redo
// exchange the caller's current state for a stored one, so the two stacks
// stay inverse of each other. When the stack is full the oldest snapshot
// is evicted.
type Stack struct {
	mu       sync.Mutex
	maxDepth int
	undo     []Snapshot
	redo     []Snapshot
}

// NewStack creates a stack bounded to maxDepth undo steps
func NewStack(maxDepth int) *Stack {
	if maxDepth <= 0 {
		maxDepth = DefaultDepth
	}
	return &Stack{maxDepth: maxDepth}
}

// Record pushes the pre-mutation snapshot onto the undo stack and clears
// the redo stack. Recording a snapshot identical to the last recorded one
// is a no-op, so edits that change nothing never create history entries.
func (s *Stack) Record(before Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) > 0 && s.undo[len(s.undo)-1].Equals(before) {
		return
	}

	s.undo = append(s.undo, before)
	if len(s.undo) > s.maxDepth {
		s.undo = s.undo[1:]
	}
	s.redo = s.redo[:0]
}

// Undo exchanges the caller's current state for the most recent recorded
// one. Returns false when there is nothing to undo.
func (s *Stack) Undo(current Snapshot) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return Snapshot{}, false
	}

	top := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, current)
	return top, true
}

// Redo exchanges the caller's current state for the most recently undone
// one. Returns false when there is nothing to redo.
func (s *Stack) Redo(current Snapshot) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return Snapshot{}, false
	}

	top := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, current)
	if len(s.undo) > s.maxDepth {
		s.undo = s.undo[1:]
	}
	return top, true
}

// CanUndo reports whether an undo step is available
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether a redo step is available
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Len returns the number of undo steps held
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

// Clear drops all history, for example after loading a different board
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = s.undo[:0]
	s.redo = s.redo[:0]
}
