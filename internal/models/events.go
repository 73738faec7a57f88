package models

import (
	"encoding/json"
	"fmt"
)

// Event type names on the wire. Inbound and outbound share the drawing
// event names; the server relays them to the rest of the room.
const (
	EventJoinRoom      = "join_room"
	EventDrawStart     = "draw_start"
	EventDrawChunk     = "draw_chunk"
	EventDrawEnd       = "draw_end"
	EventCursorMove    = "cursor_move"
	EventClearCanvas   = "clear_canvas"
	EventUndo          = "undo"
	EventRedo          = "redo"
	EventRoomJoined    = "room_joined"
	EventHistoryUpdate = "history_update"
)

// Event is the outbound wire envelope. Data is marshaled by the transport
// at send time.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// NewEvent builds an outbound event with the given payload.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{Type: eventType, Data: data}
}

// envelope is the inbound wire framing before payload decoding.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound is a decoded client event. Exactly one concrete type exists per
// inbound event name; payloads are validated at the transport boundary so
// the coordinator never sees untyped data.
type Inbound interface {
	inboundEvent()
}

// JoinRoom asks to join (or switch to) a room.
type JoinRoom struct {
	RoomID string `json:"roomId"`
}

// DrawStart begins a stroke at the given point.
type DrawStart struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}

// DrawChunk appends a point to the sender's in-progress stroke.
type DrawChunk struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DrawEnd finishes the sender's in-progress stroke.
type DrawEnd struct{}

// CursorMove reports the sender's cursor position.
type CursorMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClearCanvas wipes the room's committed history.
type ClearCanvas struct{}

// Undo removes the most recently committed stroke.
type Undo struct{}

// Redo restores the most recently undone stroke.
type Redo struct{}

func (JoinRoom) inboundEvent()    {}
func (DrawStart) inboundEvent()   {}
func (DrawChunk) inboundEvent()   {}
func (DrawEnd) inboundEvent()     {}
func (CursorMove) inboundEvent()  {}
func (ClearCanvas) inboundEvent() {}
func (Undo) inboundEvent()        {}
func (Redo) inboundEvent()        {}

// DecodeInbound parses a raw client message into its typed event.
func DecodeInbound(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid event framing: %w", err)
	}

	switch env.Type {
	case EventJoinRoom:
		var ev JoinRoom
		if err := unmarshalData(env.Data, &ev); err != nil {
			return nil, err
		}
		if ev.RoomID == "" {
			return nil, fmt.Errorf("join_room: missing roomId")
		}
		return ev, nil

	case EventDrawStart:
		var ev DrawStart
		if err := unmarshalData(env.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case EventDrawChunk:
		var ev DrawChunk
		if err := unmarshalData(env.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case EventDrawEnd:
		return DrawEnd{}, nil

	case EventCursorMove:
		var ev CursorMove
		if err := unmarshalData(env.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case EventClearCanvas:
		return ClearCanvas{}, nil

	case EventUndo:
		return Undo{}, nil

	case EventRedo:
		return Redo{}, nil

	default:
		return nil, fmt.Errorf("unknown event type: %q", env.Type)
	}
}

func unmarshalData(data json.RawMessage, dst interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("missing event data")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid event data: %w", err)
	}
	return nil
}
