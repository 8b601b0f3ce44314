package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/valueobjects"
)

// snapshotWithNode builds a one-node snapshot whose identity is the label
func snapshotWithNode(t *testing.T, label string) Snapshot {
	t.Helper()
	id, err := valueobjects.NewNodeIDFromString(label)
	require.NoError(t, err)
	node, err := entities.ReconstructNode(id, "sticky", valueobjects.NewPosition(0, 0), nil, nil, nil)
	require.NoError(t, err)
	return NewSnapshot(map[valueobjects.NodeID]*entities.Node{id: node}, nil)
}

func TestStack_UndoRedoAreInverse(t *testing.T) {
	stack := NewStack(10)
	s0 := snapshotWithNode(t, "state-0")
	s1 := snapshotWithNode(t, "state-1")

	stack.Record(s0)

	restored, ok := stack.Undo(s1)
	require.True(t, ok)
	assert.True(t, restored.Equals(s0))

	replayed, ok := stack.Redo(restored)
	require.True(t, ok)
	assert.True(t, replayed.Equals(s1))
}

func TestStack_EmptyUndoAndRedo(t *testing.T) {
	stack := NewStack(10)
	current := snapshotWithNode(t, "current")

	_, ok := stack.Undo(current)
	assert.False(t, ok)
	_, ok = stack.Redo(current)
	assert.False(t, ok)
}

func TestStack_RecordClearsRedo(t *testing.T) {
	stack := NewStack(10)
	s0 := snapshotWithNode(t, "state-0")
	s1 := snapshotWithNode(t, "state-1")
	s2 := snapshotWithNode(t, "state-2")

	stack.Record(s0)
	_, ok := stack.Undo(s1)
	require.True(t, ok)
	require.True(t, stack.CanRedo())

	// A fresh edit after undo invalidates the redo branch
	stack.Record(s2)

	assert.False(t, stack.CanRedo())
}

func TestStack_NoOpRecordIsSkipped(t *testing.T) {
	stack := NewStack(10)
	s0 := snapshotWithNode(t, "state-0")

	stack.Record(s0)
	stack.Record(s0)

	assert.Equal(t, 1, stack.Len())
}

func TestStack_EvictsOldestWhenFull(t *testing.T) {
	stack := NewStack(3)
	oldest := snapshotWithNode(t, "state-0")
	stack.Record(oldest)
	for i := 1; i < 4; i++ {
		stack.Record(snapshotWithNode(t, fmt.Sprintf("state-%d", i)))
	}

	require.Equal(t, 3, stack.Len())

	// Walk all the way back; the oldest state must be gone
	current := snapshotWithNode(t, "current")
	var last Snapshot
	for {
		restored, ok := stack.Undo(current)
		if !ok {
			break
		}
		last = restored
		current = restored
	}
	assert.False(t, last.Equals(oldest))
	assert.True(t, last.Equals(snapshotWithNode(t, "state-1")))
}

func TestStack_Clear(t *testing.T) {
	stack := NewStack(10)
	stack.Record(snapshotWithNode(t, "state-0"))
	_, ok := stack.Undo(snapshotWithNode(t, "state-1"))
	require.True(t, ok)

	stack.Clear()

	assert.False(t, stack.CanUndo())
	assert.False(t, stack.CanRedo())
	assert.Equal(t, 0, stack.Len())
}

func TestSnapshot_DeepCopiesSource(t *testing.T) {
	id, err := valueobjects.NewNodeIDFromString("n1")
	require.NoError(t, err)
	node, err := entities.ReconstructNode(id, "sticky", valueobjects.NewPosition(0, 0),
		map[string]interface{}{"text": "before"}, nil, nil)
	require.NoError(t, err)
	source := map[valueobjects.NodeID]*entities.Node{id: node}

	snap := NewSnapshot(source, nil)
	node.MergeData(map[string]interface{}{"text": "after"})

	assert.Equal(t, "before", snap.Nodes()[id].Data()["text"])
}
