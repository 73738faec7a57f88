package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/secp/services/canvas/internal/models"
)

func TestBeginAndCommitStroke(t *testing.T) {
	room := NewRoom("R", 50)
	room.AddMember("a")

	room.BeginStroke("a", models.Point{X: 0, Y: 0}, "#000", 5, 1234)
	room.AppendPoint("a", models.Point{X: 10, Y: 10})

	stroke, ok := room.CommitActive("a", "stroke-1")
	require.True(t, ok)
	assert.Equal(t, "stroke-1", stroke.ID)
	assert.Equal(t, "a", stroke.UserID)
	assert.Equal(t, "#000", stroke.Color)
	assert.Equal(t, float64(5), stroke.Size)
	assert.Equal(t, int64(1234), stroke.Timestamp)
	assert.Equal(t, []models.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}, stroke.Points)

	snapshot := room.HistorySnapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "stroke-1", snapshot[0].ID)
	assert.False(t, room.hasActiveStroke("a"))
}

func TestPointsAccumulateInCallOrder(t *testing.T) {
	room := NewRoom("R", 50)
	room.BeginStroke("a", models.Point{X: 1, Y: 1}, "#fff", 2, 0)
	room.AppendPoint("a", models.Point{X: 2, Y: 2})
	room.AppendPoint("a", models.Point{X: 3, Y: 3})

	stroke, ok := room.CommitActive("a", "s")
	require.True(t, ok)
	assert.Equal(t, []models.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}, stroke.Points)
}

func TestCommitWithoutActiveStroke(t *testing.T) {
	room := NewRoom("R", 50)
	_, ok := room.CommitActive("a", "s")
	assert.False(t, ok)
	assert.Empty(t, room.HistorySnapshot())
}

func TestAppendPointWithoutActiveStrokeIsDropped(t *testing.T) {
	room := NewRoom("R", 50)
	room.AppendPoint("a", models.Point{X: 1, Y: 1})
	assert.False(t, room.hasActiveStroke("a"))
}

func TestBeginOverwritesUnfinishedStroke(t *testing.T) {
	room := NewRoom("R", 50)
	room.BeginStroke("a", models.Point{X: 1, Y: 1}, "#111", 1, 0)
	room.BeginStroke("a", models.Point{X: 9, Y: 9}, "#222", 2, 0)

	stroke, ok := room.CommitActive("a", "s")
	require.True(t, ok)
	assert.Equal(t, "#222", stroke.Color)
	assert.Equal(t, []models.Point{{X: 9, Y: 9}}, stroke.Points)
}

func TestRemoveMemberDiscardsActiveStroke(t *testing.T) {
	room := NewRoom("R", 50)
	room.AddMember("a")
	room.BeginStroke("a", models.Point{X: 1, Y: 1}, "#000", 5, 0)

	room.RemoveMember("a")
	assert.False(t, room.hasActiveStroke("a"))
	assert.Equal(t, 0, room.MemberCount())

	// A late commit attempt after removal must not resurrect the stroke.
	_, ok := room.CommitActive("a", "s")
	assert.False(t, ok)
	assert.Empty(t, room.HistorySnapshot())
}

func TestActiveStrokesAreIndependentPerSession(t *testing.T) {
	room := NewRoom("R", 50)
	room.BeginStroke("a", models.Point{X: 1, Y: 1}, "#aaa", 1, 0)
	room.BeginStroke("b", models.Point{X: 2, Y: 2}, "#bbb", 2, 0)
	room.AppendPoint("a", models.Point{X: 3, Y: 3})

	strokeB, ok := room.CommitActive("b", "sb")
	require.True(t, ok)
	assert.Equal(t, []models.Point{{X: 2, Y: 2}}, strokeB.Points)

	strokeA, ok := room.CommitActive("a", "sa")
	require.True(t, ok)
	assert.Equal(t, []models.Point{{X: 1, Y: 1}, {X: 3, Y: 3}}, strokeA.Points)
}

func TestClearUndoRedoPassThrough(t *testing.T) {
	room := NewRoom("R", 50)
	room.BeginStroke("a", models.Point{X: 0, Y: 0}, "#000", 1, 0)
	_, ok := room.CommitActive("a", "s1")
	require.True(t, ok)

	snapshot := room.UndoStroke()
	assert.Empty(t, snapshot)

	snapshot = room.RedoStroke()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "s1", snapshot[0].ID)

	snapshot = room.ClearHistory()
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)
	assert.Empty(t, room.RedoStroke())
}
