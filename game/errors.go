package game

import (
	"errors"

	"github.com/wfunc/drawserver/state"
)

var (
	ErrInsufficientPlayers = errors.New("not enough players to start the game")
	ErrInvalidTransition   = errors.New("action not allowed in the current game state")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrDrawerCannotGuess   = errors.New("the drawer cannot guess")
	ErrAlreadyGuessed      = errors.New("already guessed correctly")
	ErrEmptyWord           = errors.New("word is empty")
)

// invalidTransition ties a rejected state change to ErrInvalidTransition while
// keeping the machine's error in the chain.
func invalidTransition(err error) error {
	if err == nil {
		return ErrInvalidTransition
	}
	if errors.Is(err, state.ErrTransitionNotAllowed) {
		return errors.Join(ErrInvalidTransition, err)
	}
	return err
}
