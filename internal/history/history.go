// Package history implements the bounded per-room stroke log with linear
// undo/redo.
package history

import "gitlab.com/secp/services/canvas/internal/models"

// DefaultLimit is the number of committed strokes a room retains.
const DefaultLimit = 50

// Log is an ordered, bounded log of committed strokes plus the stack of
// strokes removed by undo. When the log exceeds its limit the oldest
// stroke is evicted.
//
// Log is not safe for concurrent use; the owning room serializes access.
type Log struct {
	strokes []models.Stroke
	redo    []models.Stroke
	limit   int
}

// NewLog creates a log bounded to limit strokes. A non-positive limit
// falls back to DefaultLimit.
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Append commits a stroke. Any pending redo strokes are discarded: a new
// action invalidates the redo branch.
func (l *Log) Append(stroke models.Stroke) {
	l.strokes = append(l.strokes, stroke)
	l.redo = nil
	if len(l.strokes) > l.limit {
		l.strokes = l.strokes[1:]
	}
}

// Undo removes the most recently committed stroke and parks it on the redo
// stack. Reports false if the log is empty.
func (l *Log) Undo() (models.Stroke, bool) {
	if len(l.strokes) == 0 {
		return models.Stroke{}, false
	}
	last := l.strokes[len(l.strokes)-1]
	l.strokes = l.strokes[:len(l.strokes)-1]
	l.redo = append(l.redo, last)
	return last, true
}

// Redo re-commits the most recently undone stroke, subject to the same
// capacity bound as Append. Reports false if nothing has been undone.
func (l *Log) Redo() (models.Stroke, bool) {
	if len(l.redo) == 0 {
		return models.Stroke{}, false
	}
	last := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.strokes = append(l.strokes, last)
	if len(l.strokes) > l.limit {
		l.strokes = l.strokes[1:]
	}
	return last, true
}

// Snapshot returns a copy of the committed log, oldest first. Never nil,
// so it serializes as [] rather than null.
func (l *Log) Snapshot() []models.Stroke {
	out := make([]models.Stroke, len(l.strokes))
	copy(out, l.strokes)
	return out
}

// Clear empties the log and the redo stack.
func (l *Log) Clear() {
	l.strokes = nil
	l.redo = nil
}

// Len returns the number of committed strokes.
func (l *Log) Len() int {
	return len(l.strokes)
}

// RedoLen returns the number of strokes available to redo.
func (l *Log) RedoLen() int {
	return len(l.redo)
}
