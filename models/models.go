// models/models.go
package models

// PlayerView is one entry of the player list sent to clients.
type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoomState is the read-only room projection broadcast as room_state_update and score_update.
type RoomState struct {
	Players      []PlayerView `json:"players"`
	GameState    string       `json:"gameState"`
	CurrentRound int          `json:"currentRound"`
	CurrentTurn  string       `json:"currentTurn,omitempty"`
	MaxRounds    int          `json:"maxRounds"`
	TotalPlayers int          `json:"totalPlayers"`
}

// GameResult is the payload of game_end.
type GameResult struct {
	Winner      *PlayerView  `json:"winner"`
	FinalScores []PlayerView `json:"finalScores"`
}
