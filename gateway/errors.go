package gateway

import (
	"errors"

	"github.com/wfunc/drawserver/game"
	"github.com/wfunc/drawserver/room"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrRateLimited      = errors.New("rate limited")
)

var clientMessages = []struct {
	err     error
	message string
}{
	{room.ErrRoomNotFound, "Room does not exist"},
	{room.ErrRoomFull, "Room is full"},
	{room.ErrNotInRoom, "You are not in this room"},
	{room.ErrCodeSpaceExhausted, "Could not create a room, try again"},
	{game.ErrInsufficientPlayers, "Not enough players to start the game"},
	{game.ErrInvalidTransition, "That action is not allowed right now"},
	{game.ErrNotYourTurn, "It is not your turn"},
	{game.ErrDrawerCannotGuess, "The drawer cannot guess"},
	{game.ErrAlreadyGuessed, "You already guessed the word"},
	{game.ErrEmptyWord, "Invalid request"},
	{ErrMalformedPayload, "Invalid request"},
	{ErrUnknownEvent, "Unknown event"},
	{ErrRateLimited, "You are sending messages too fast"},
}

// ClientMessage maps err to the text sent in an error event. Unknown errors
// never leak their text.
func ClientMessage(err error) string {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	return "Internal server error"
}
