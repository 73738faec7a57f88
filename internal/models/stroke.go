package models

// Point is a 2D canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is a finished pen gesture. Immutable once committed; only the
// coordinator produces them, by promoting an in-progress stroke at draw_end.
type Stroke struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	Color     string  `json:"color"`
	Size      float64 `json:"size"`
	Points    []Point `json:"points"`
	Timestamp int64   `json:"timestamp"`
}

// RoomJoined confirms a join to the joining session.
type RoomJoined struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Color  string `json:"color"`
}

// CursorUpdate is a cursor_move relayed to the rest of the room, enriched
// with the sender's identity and display color.
type CursorUpdate struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	UserID string  `json:"userId"`
	Color  string  `json:"color"`
}
