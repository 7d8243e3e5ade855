package network

import "encoding/json"

// Inbound events.
const (
	EventCreateRoom   = "create_room"
	EventJoinRoom     = "join_room"
	EventLeaveRoom    = "leave_room"
	EventStartGame    = "start_game"
	EventDraw         = "draw_event"
	EventClearCanvas  = "clear_canvas"
	EventWordSelected = "word_selected"
	EventGuessWord    = "guess_word"
	EventSendMessage  = "send_message"
	EventTurnEnd      = "turn_end"
	EventDisconnect   = "disconnect" // synthesized when the transport closes
)

// Outbound events.
const (
	EventRoomCreated     = "room_created"
	EventRoomJoined      = "room_joined"
	EventRoomLeft        = "room_left"
	EventPlayerJoined    = "player_joined"
	EventPlayerLeft      = "player_left"
	EventRoomStateUpdate = "room_state_update"
	EventGameStarted     = "game_started"
	EventRoundStart      = "round_start"
	EventTurnStart       = "turn_start"
	EventWordGuessed     = "word_guessed"
	EventReceiveMessage  = "receive_message"
	EventScoreUpdate     = "score_update"
	EventGameEnd         = "game_end"
	EventError           = "error"
)

// Packet is the JSON frame exchanged over the socket.
type Packet struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound is a packet tagged with the connection it arrived on.
type Inbound struct {
	ConnID string
	Event  string
	Data   json.RawMessage
}

// Outbound is one event addressed to a list of connections.
type Outbound struct {
	To      []string
	Event   string
	Payload any
}

// Encode renders an outbound event as a frame body.
func Encode(event string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(Packet{Event: event, Data: data})
}
