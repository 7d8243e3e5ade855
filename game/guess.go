package game

import (
	"strings"

	"github.com/wfunc/drawserver/room"
)

type Outcome int

const (
	Rejected Outcome = iota
	Incorrect
	Correct
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "rejected"
	}
}

// GuessResult describes what a guess did to the room.
type GuessResult struct {
	Outcome      Outcome
	Points       int  // awarded to the guesser
	DrawerPoints int  // awarded to the drawer
	TurnComplete bool // every non-drawer has now guessed
	Err          error
}

// Normalize trims surrounding whitespace and lower-cases s. Punctuation and
// accents are compared as-is.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Matches compares a guess with the secret word.
func Matches(guess, word string) bool {
	w := Normalize(word)
	return w != "" && Normalize(guess) == w
}

// IsGuessAttempt reports whether chat text should be treated as a guess
// instead of being broadcast.
func IsGuessAttempt(r *room.Room, text string) bool {
	return r.IsPlaying() && Matches(text, r.CurrentWord)
}

// SubmitGuess evaluates raw against the active word and applies the score.
func SubmitGuess(r *room.Room, connID, raw string) GuessResult {
	if !r.IsPlaying() {
		return GuessResult{Outcome: Rejected, Err: ErrInvalidTransition}
	}
	if !r.HasPlayer(connID) {
		return GuessResult{Outcome: Rejected, Err: room.ErrNotInRoom}
	}
	if r.CurrentTurn == connID {
		return GuessResult{Outcome: Rejected, Err: ErrDrawerCannotGuess}
	}
	if r.HasGuessed(connID) {
		return GuessResult{Outcome: Rejected, Err: ErrAlreadyGuessed}
	}
	if !Matches(raw, r.CurrentWord) {
		return GuessResult{Outcome: Incorrect}
	}

	total := r.PlayerCount()
	points := GuessPoints(len(r.CorrectGuessers), total)
	r.CorrectGuessers[connID] = struct{}{}
	r.Players[connID].Score += points

	result := GuessResult{Outcome: Correct, Points: points}
	if drawer, ok := r.Players[r.CurrentTurn]; ok {
		drawer.Score += DrawerBonus
		result.DrawerPoints = DrawerBonus
	}
	result.TurnComplete = AllGuessed(len(r.CorrectGuessers), total)
	return result
}
