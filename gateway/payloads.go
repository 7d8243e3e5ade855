package gateway

import "github.com/wfunc/drawserver/models"

type createRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type joinRoomRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// roomRequest covers events that only carry the room code.
type roomRequest struct {
	RoomID string `json:"roomId"`
}

type selectWordRequest struct {
	RoomID string `json:"roomId"`
	Word   string `json:"word"`
}

type guessRequest struct {
	RoomID     string `json:"roomId"`
	Word       string `json:"word"`
	PlayerName string `json:"playerName"`
}

type chatRequest struct {
	RoomID     string `json:"roomId"`
	Message    string `json:"message"`
	PlayerName string `json:"playerName"`
}

type RoomRef struct {
	RoomID string `json:"roomId"`
}

type PlayerRef struct {
	ID         string `json:"id"`
	PlayerName string `json:"playerName"`
}

type GameStarted struct {
	RoomID       string `json:"roomId"`
	CurrentRound int    `json:"currentRound"`
	CurrentTurn  string `json:"currentTurn"`
}

type RoundStart struct {
	Round int `json:"round"`
}

type TurnStart struct {
	CurrentTurn string `json:"currentTurn"`
}

type WordSelected struct {
	Word     string   `json:"word"`
	IsDrawer bool     `json:"isDrawer"`
	Choices  []string `json:"choices,omitempty"`
}

type WordGuessed struct {
	PlayerName string `json:"playerName"`
	Correct    bool   `json:"correct"`
	Guess      string `json:"guess,omitempty"`
}

type ChatMessage struct {
	Message    string `json:"message"`
	PlayerName string `json:"playerName"`
}

type GameEnd struct {
	Winner      *models.PlayerView  `json:"winner"`
	FinalScores []models.PlayerView `json:"finalScores"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
