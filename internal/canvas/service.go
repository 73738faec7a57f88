// Package canvas implements the room coordinator for collaborative
// drawing sessions: session registry, per-room stroke history with linear
// undo/redo, and live stroke/cursor relay.
package canvas

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/secp/services/canvas/internal/models"
)

// Broadcaster delivers events to connected sessions. The transport adapter
// implements it; the coordinator never sees connection details. Delivery is
// fire-and-forget: a failed or slow recipient must not affect the sender's
// event or other recipients.
//
// The transport owns the named broadcast groups that BroadcastToRoom
// targets, so the coordinator tells it when a session enters or leaves a
// room via JoinRoom/LeaveRoom.
type Broadcaster interface {
	SendTo(sessionID string, event *models.Event)
	BroadcastToRoom(roomID string, event *models.Event, excludeSessionID string)
	JoinRoom(roomID, sessionID string)
	LeaveRoom(roomID, sessionID string)
}

// Session is one connected participant: its connection identity, the room
// it has joined (empty until join_room), and its display color, assigned
// once at first join and stable for the session's lifetime.
type Session struct {
	ID     string
	RoomID string
	Color  string
}

// Stats is a point-in-time view of coordinator state for the stats
// endpoint.
type Stats struct {
	Sessions    int            `json:"sessions"`
	Rooms       int            `json:"rooms"`
	RoomMembers map[string]int `json:"roomMembers"`
}

// Service is the session registry and room coordinator. It owns all
// Session records and the room table; rooms own their own stroke state.
// One instance is constructed per process and handed its Broadcaster
// explicitly.
type Service struct {
	broadcaster  Broadcaster
	historyLimit int

	mu       sync.RWMutex
	sessions map[string]*Session
	rooms    map[string]*Room

	now func() time.Time
}

// NewService creates a coordinator that emits through b. historyLimit
// bounds each room's stroke log; non-positive means the default.
func NewService(b Broadcaster, historyLimit int) *Service {
	return &Service{
		broadcaster:  b,
		historyLimit: historyLimit,
		sessions:     make(map[string]*Session),
		rooms:        make(map[string]*Room),
		now:          time.Now,
	}
}

// Connect registers a new session in the unjoined state.
func (s *Service) Connect(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &Session{ID: sessionID}
	log.Printf("[Canvas] Session connected: %s (total: %d)", sessionID, len(s.sessions))
}

// Disconnect destroys the session: its in-progress stroke is discarded and
// it is removed from its room's membership. Nothing is broadcast; committed
// strokes by the session remain in the room history.
func (s *Service) Disconnect(sessionID string) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, sessionID)
	var room *Room
	if sess.RoomID != "" {
		room = s.rooms[sess.RoomID]
	}
	total := len(s.sessions)
	s.mu.Unlock()

	if room != nil {
		room.RemoveMember(sessionID)
		s.broadcaster.LeaveRoom(room.ID, sessionID)
	}
	log.Printf("[Canvas] Session disconnected: %s (total: %d)", sessionID, total)
}

// HandleEvent processes one decoded client event. Unknown sessions and
// events whose preconditions do not hold are ignored: malformed or
// out-of-order input degrades to a no-op, never an error to the client.
func (s *Service) HandleEvent(sessionID string, event models.Inbound) {
	switch ev := event.(type) {
	case models.JoinRoom:
		s.handleJoin(sessionID, ev)
	case models.DrawStart:
		s.handleDrawStart(sessionID, ev)
	case models.DrawChunk:
		s.handleDrawChunk(sessionID, ev)
	case models.DrawEnd:
		s.handleDrawEnd(sessionID)
	case models.CursorMove:
		s.handleCursorMove(sessionID, ev)
	case models.ClearCanvas:
		s.handleClear(sessionID)
	case models.Undo:
		s.handleUndo(sessionID)
	case models.Redo:
		s.handleRedo(sessionID)
	default:
		log.Printf("[Canvas] Unknown event from session %s: %T", sessionID, event)
	}
}

func (s *Service) handleJoin(sessionID string, ev models.JoinRoom) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}

	// Leave the previous room before joining the new one, so membership
	// never leaks across rooms.
	if sess.RoomID != "" && sess.RoomID != ev.RoomID {
		if old := s.rooms[sess.RoomID]; old != nil {
			old.RemoveMember(sessionID)
		}
		s.broadcaster.LeaveRoom(sess.RoomID, sessionID)
	}

	room := s.rooms[ev.RoomID]
	if room == nil {
		room = NewRoom(ev.RoomID, s.historyLimit)
		s.rooms[ev.RoomID] = room
		log.Printf("[Canvas] Created room: %s", ev.RoomID)
	}

	if sess.Color == "" {
		sess.Color = randomColor()
	}
	sess.RoomID = ev.RoomID
	color := sess.Color
	s.mu.Unlock()

	room.AddMember(sessionID)
	s.broadcaster.JoinRoom(ev.RoomID, sessionID)

	// Snapshot first, then the join confirmation, matching the order the
	// joiner applies them.
	s.broadcaster.SendTo(sessionID, models.NewEvent(models.EventHistoryUpdate, room.HistorySnapshot()))
	s.broadcaster.SendTo(sessionID, models.NewEvent(models.EventRoomJoined, models.RoomJoined{
		RoomID: ev.RoomID,
		UserID: sessionID,
		Color:  color,
	}))

	log.Printf("[Canvas] Session %s joined room %s with color %s", sessionID, ev.RoomID, color)
}

func (s *Service) handleDrawStart(sessionID string, ev models.DrawStart) {
	_, room, ok := s.joinedRoom(sessionID)
	if !ok {
		return
	}
	room.BeginStroke(sessionID, models.Point{X: ev.X, Y: ev.Y}, ev.Color, ev.Size, s.now().UnixMilli())
	s.broadcaster.BroadcastToRoom(room.ID, models.NewEvent(models.EventDrawStart, ev), sessionID)
}

func (s *Service) handleDrawChunk(sessionID string, ev models.DrawChunk) {
	_, room, ok := s.joinedRoom(sessionID)
	if !ok {
		return
	}
	room.AppendPoint(sessionID, models.Point{X: ev.X, Y: ev.Y})
	s.broadcaster.BroadcastToRoom(room.ID, models.NewEvent(models.EventDrawChunk, ev), sessionID)
}

func (s *Service) handleDrawEnd(sessionID string) {
	_, room, ok := s.joinedRoom(sessionID)
	if !ok {
		return
	}
	if stroke, committed := room.CommitActive(sessionID, uuid.New().String()); committed {
		log.Printf("[Canvas] Stroke %s committed to room %s (%d points)", stroke.ID, room.ID, len(stroke.Points))
	}
	s.broadcaster.BroadcastToRoom(room.ID, models.NewEvent(models.EventDrawEnd, nil), sessionID)
}

func (s *Service) handleCursorMove(sessionID string, ev models.CursorMove) {
	sess, room, ok := s.joinedRoom(sessionID)
	if !ok {
		return
	}
	s.broadcaster.BroadcastToRoom(room.ID, models.NewEvent(models.EventCursorMove, models.CursorUpdate{
		X:      ev.X,
		Y:      ev.Y,
		UserID: sess.ID,
		Color:  sess.Color,
	}), sessionID)
}

// handleClear wipes the room history and resyncs everyone, sender
// included: after a non-linear operation the snapshot is the single source
// of truth, so the sender's local state is overwritten like everyone
// else's.
func (s *Service) handleClear(sessionID string) {
	_, room, ok := s.joinedRoom(sessionID)
	if !ok {
		return
	}
	snapshot := room.ClearHistory()
	s.broadcaster.BroadcastToRoom(room.ID, models.NewEvent(models.EventHistoryUpdate, snapshot), "")
	s.broadcaster.BroadcastToRoom(room.ID, models.NewEvent(models.EventClearCanvas, nil), "")
	log.Printf("[Canvas] Room %s cleared by session %s", room.ID, sessionID)
}

func (s *Service) handleUndo(sessionID string) {
	_, room, ok := s.joinedRoom(sessionID)
	if !ok {
		return
	}
	snapshot := room.UndoStroke()
	s.broadcaster.BroadcastToRoom(room.ID, models.NewEvent(models.EventHistoryUpdate, snapshot), "")
}

func (s *Service) handleRedo(sessionID string) {
	_, room, ok := s.joinedRoom(sessionID)
	if !ok {
		return
	}
	snapshot := room.RedoStroke()
	s.broadcaster.BroadcastToRoom(room.ID, models.NewEvent(models.EventHistoryUpdate, snapshot), "")
}

// joinedRoom resolves the session and the room it has joined. Reports
// false for unknown or unjoined sessions.
func (s *Service) joinedRoom(sessionID string) (*Session, *Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.RoomID == "" {
		return nil, nil, false
	}
	room := s.rooms[sess.RoomID]
	if room == nil {
		return nil, nil, false
	}
	return sess, room, true
}

// Stats returns current session and room counts.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	sessions := len(s.sessions)
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	s.mu.RUnlock()

	stats := Stats{
		Sessions:    sessions,
		Rooms:       len(rooms),
		RoomMembers: make(map[string]int, len(rooms)),
	}
	for _, room := range rooms {
		stats.RoomMembers[room.ID] = room.MemberCount()
	}
	return stats
}

// randomColor picks a display color from the full RGB space. Collisions
// across sessions are an accepted cosmetic limitation; colors are never
// used as identifiers.
func randomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}
