package canvas

import (
	"sync"

	"gitlab.com/secp/services/canvas/internal/history"
	"gitlab.com/secp/services/canvas/internal/models"
)

// activeStroke is a gesture in progress: points accumulate between
// draw_start and draw_end. At most one exists per session.
type activeStroke struct {
	points    []models.Point
	color     string
	size      float64
	startedAt int64
}

// Room is one isolated drawing domain: a member set, the committed stroke
// log, and the in-progress strokes keyed by session id. Rooms are created
// lazily on first join and stay resident after the last member leaves;
// rooms are expected to be few and long-lived, so empty entries are an
// accepted bounded-resource caveat rather than something to evict.
//
// Each mutating method holds the room mutex for the full operation,
// including any snapshot it returns, so two events for the same room never
// interleave and no snapshot observes a torn state.
type Room struct {
	ID string

	mu      sync.Mutex
	members map[string]bool
	log     *history.Log
	active  map[string]*activeStroke
}

// NewRoom creates an empty room whose stroke log holds up to historyLimit
// strokes.
func NewRoom(id string, historyLimit int) *Room {
	return &Room{
		ID:      id,
		members: make(map[string]bool),
		log:     history.NewLog(historyLimit),
		active:  make(map[string]*activeStroke),
	}
}

// AddMember adds a session to the room.
func (r *Room) AddMember(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[sessionID] = true
}

// RemoveMember removes a session from the room and discards any stroke it
// was drawing. Committed strokes by the session are unaffected.
func (r *Room) RemoveMember(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, sessionID)
	delete(r.active, sessionID)
}

// MemberCount returns the number of sessions in the room.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// BeginStroke starts a new in-progress stroke for the session, seeded with
// its first point. A leftover unfinished stroke is overwritten: it means a
// prior end or cleanup was missed, which is tolerated rather than fatal.
func (r *Room) BeginStroke(sessionID string, first models.Point, color string, size float64, startedAt int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[sessionID] = &activeStroke{
		points:    []models.Point{first},
		color:     color,
		size:      size,
		startedAt: startedAt,
	}
}

// AppendPoint extends the session's in-progress stroke. A chunk arriving
// after the stroke ended (or never started) is dropped.
func (r *Room) AppendPoint(sessionID string, p models.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stroke, ok := r.active[sessionID]; ok {
		stroke.points = append(stroke.points, p)
	}
}

// CommitActive promotes the session's in-progress stroke to a committed
// stroke under the given id and appends it to the log, all in one step.
// Reports false, committing nothing, if the session has no in-progress
// stroke or the stroke has no points.
func (r *Room) CommitActive(sessionID, strokeID string) (models.Stroke, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active, ok := r.active[sessionID]
	if !ok {
		return models.Stroke{}, false
	}
	delete(r.active, sessionID)
	if len(active.points) == 0 {
		return models.Stroke{}, false
	}

	stroke := models.Stroke{
		ID:        strokeID,
		UserID:    sessionID,
		Color:     active.color,
		Size:      active.size,
		Points:    active.points,
		Timestamp: active.startedAt,
	}
	r.log.Append(stroke)
	return stroke, true
}

// HistorySnapshot returns the committed log, oldest first.
func (r *Room) HistorySnapshot() []models.Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.Snapshot()
}

// ClearHistory empties the log and redo stack and returns the resulting
// (empty) snapshot for broadcast.
func (r *Room) ClearHistory() []models.Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Clear()
	return r.log.Snapshot()
}

// UndoStroke undoes the most recent commit, if any, and returns the new
// snapshot. An undo on an empty log is a no-op.
func (r *Room) UndoStroke() []models.Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Undo()
	return r.log.Snapshot()
}

// RedoStroke redoes the most recent undo, if any, and returns the new
// snapshot. A redo with nothing undone is a no-op.
func (r *Room) RedoStroke() []models.Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Redo()
	return r.log.Snapshot()
}

// hasActiveStroke reports whether the session is mid-gesture.
func (r *Room) hasActiveStroke(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[sessionID]
	return ok
}
