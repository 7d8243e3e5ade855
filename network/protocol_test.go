package network

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	data, err := Encode(EventRoomCreated, map[string]string{"roomId": "ABC123"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"room_created","data":{"roomId":"ABC123"}}`, string(data))

	data, err = Encode(EventClearCanvas, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"clear_canvas"}`, string(data))
}

func TestIsRecoverable(t *testing.T) {
	var p Packet
	err := json.Unmarshal([]byte("{not json"), &p)
	assert.True(t, IsRecoverable(err))
	assert.True(t, IsRecoverable(ErrEmptyEvent))
	assert.False(t, IsRecoverable(errors.New("websocket: close 1006")))
}
