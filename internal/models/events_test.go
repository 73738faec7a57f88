package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJoinRoom(t *testing.T) {
	ev, err := DecodeInbound([]byte(`{"type":"join_room","data":{"roomId":"lobby"}}`))
	require.NoError(t, err)
	assert.Equal(t, JoinRoom{RoomID: "lobby"}, ev)
}

func TestDecodeJoinRoomRequiresRoomID(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"type":"join_room","data":{}}`))
	assert.Error(t, err)
}

func TestDecodeDrawStart(t *testing.T) {
	ev, err := DecodeInbound([]byte(`{"type":"draw_start","data":{"x":1.5,"y":2,"color":"#ff00aa","size":4}}`))
	require.NoError(t, err)
	assert.Equal(t, DrawStart{X: 1.5, Y: 2, Color: "#ff00aa", Size: 4}, ev)
}

func TestDecodeDrawChunk(t *testing.T) {
	ev, err := DecodeInbound([]byte(`{"type":"draw_chunk","data":{"x":10,"y":10}}`))
	require.NoError(t, err)
	assert.Equal(t, DrawChunk{X: 10, Y: 10}, ev)
}

func TestDecodePayloadFreeEvents(t *testing.T) {
	cases := map[string]Inbound{
		`{"type":"draw_end"}`:           DrawEnd{},
		`{"type":"draw_end","data":{}}`: DrawEnd{},
		`{"type":"clear_canvas"}`:       ClearCanvas{},
		`{"type":"undo"}`:               Undo{},
		`{"type":"redo"}`:               Redo{},
	}
	for raw, want := range cases {
		ev, err := DecodeInbound([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, ev, raw)
	}
}

func TestDecodeCursorMove(t *testing.T) {
	ev, err := DecodeInbound([]byte(`{"type":"cursor_move","data":{"x":-3,"y":7.25}}`))
	require.NoError(t, err)
	assert.Equal(t, CursorMove{X: -3, Y: 7.25}, ev)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"type":"teleport","data":{}}`))
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"type":"draw_start"}`,
		`{"type":"draw_start","data":{"x":"NaN"}}`,
		`{"type":"cursor_move","data":[1,2]}`,
	} {
		_, err := DecodeInbound([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestStrokeWireFormat(t *testing.T) {
	stroke := Stroke{
		ID:        "s1",
		UserID:    "u1",
		Color:     "#010203",
		Size:      3,
		Points:    []Point{{X: 1, Y: 2}},
		Timestamp: 42,
	}
	data, err := json.Marshal(NewEvent(EventHistoryUpdate, []Stroke{stroke}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"history_update","data":[{"id":"s1","userId":"u1","color":"#010203","size":3,"points":[{"x":1,"y":2}],"timestamp":42}]}`,
		string(data))
}

func TestEventOmitsEmptyData(t *testing.T) {
	data, err := json.Marshal(NewEvent(EventClearCanvas, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"clear_canvas"}`, string(data))
}
