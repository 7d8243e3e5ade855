package game

import (
	"sort"
	"strings"

	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/models"
	"github.com/wfunc/drawserver/room"
	"github.com/wfunc/drawserver/state"
)

// WordProvider supplies secret words from a fixed vocabulary.
type WordProvider interface {
	RandomWord() string
	RandomWords(n int) []string
}

type Rules struct {
	MinPlayers  int // players required by StartGame
	WordChoices int // words offered to the drawer each turn; <= 1 disables choices
}

// TurnOutcome describes the transition AdvanceTurn applied.
type TurnOutcome struct {
	GameEnded  bool
	NewRound   bool
	Drawer     string
	Generation uint64
	Result     models.GameResult // set when GameEnded
}

// TurnScheduler drives the Waiting -> Playing -> Ended lifecycle and the turn
// rotation inside Playing.
type TurnScheduler struct {
	words WordProvider
	rules Rules
}

func NewTurnScheduler(words WordProvider, rules Rules) *TurnScheduler {
	if rules.MinPlayers < 1 {
		rules.MinPlayers = 1
	}
	return &TurnScheduler{words: words, rules: rules}
}

// StartGame resets scores and hands the first turn to the earliest joiner.
func (s *TurnScheduler) StartGame(r *room.Room) error {
	if !r.Machine.CanChange(state.Playing) {
		return ErrInvalidTransition
	}
	if r.PlayerCount() < s.rules.MinPlayers {
		return ErrInsufficientPlayers
	}

	for _, p := range r.Players {
		p.Score = 0
	}
	r.CurrentRound = 1
	r.CurrentTurn = r.OrderedPlayers[0]
	r.ResetTurn()
	s.assignWord(r)
	r.Generation++

	if err := r.Machine.ChangeState(state.Playing); err != nil {
		return invalidTransition(err)
	}
	logger.Log.Infof("Room %s started: %d players, drawer %s", r.Code, r.PlayerCount(), r.CurrentTurn)
	return nil
}

// AdvanceTurn passes the turn to the next player in join order. Wrapping back to
// the first player starts a new round; wrapping past MaxRounds ends the game.
func (s *TurnScheduler) AdvanceTurn(r *room.Room) (TurnOutcome, error) {
	if !r.IsPlaying() {
		return TurnOutcome{}, ErrInvalidTransition
	}
	current := r.IndexOf(r.CurrentTurn)
	if current < 0 {
		logger.Log.Warnf("Room %s: drawer %s missing from turn order, restarting rotation from index 0", r.Code, r.CurrentTurn)
		current = 0
	}
	return s.moveTo(r, current+1)
}

// AdvanceAfterDeparture is used once the drawer has been removed: the player who
// slid into the departed slot draws next.
func (s *TurnScheduler) AdvanceAfterDeparture(r *room.Room, departedIndex int) (TurnOutcome, error) {
	if !r.IsPlaying() {
		return TurnOutcome{}, ErrInvalidTransition
	}
	if departedIndex < 0 {
		return s.AdvanceTurn(r)
	}
	return s.moveTo(r, departedIndex)
}

func (s *TurnScheduler) moveTo(r *room.Room, next int) (TurnOutcome, error) {
	n := r.PlayerCount()
	if n == 0 {
		result, err := s.EndGame(r)
		return TurnOutcome{GameEnded: true, Result: result, Generation: r.Generation}, err
	}

	outcome := TurnOutcome{}
	if next >= n {
		next %= n
		if r.CurrentRound+1 > r.MaxRounds {
			result, err := s.EndGame(r)
			return TurnOutcome{GameEnded: true, Result: result, Generation: r.Generation}, err
		}
		r.CurrentRound++
		outcome.NewRound = true
	}

	r.CurrentTurn = r.OrderedPlayers[next]
	r.ResetTurn()
	s.assignWord(r)
	r.Generation++

	outcome.Drawer = r.CurrentTurn
	outcome.Generation = r.Generation
	logger.Log.Debugf("Room %s: round %d, drawer %s", r.Code, r.CurrentRound, r.CurrentTurn)
	return outcome, nil
}

// EndGame moves the room to Ended and ranks the players.
func (s *TurnScheduler) EndGame(r *room.Room) (models.GameResult, error) {
	if err := r.Machine.ChangeState(state.Ended); err != nil {
		return models.GameResult{}, invalidTransition(err)
	}
	r.CurrentTurn = ""
	r.ResetTurn()
	r.Generation++

	result := Standings(r)
	if result.Winner != nil {
		logger.Log.Infof("Room %s ended, winner %s with %d points", r.Code, result.Winner.Name, result.Winner.Score)
	}
	return result, nil
}

// Standings returns the winner (strictly highest score, earliest joiner on ties)
// and the scores sorted from highest to lowest.
func Standings(r *room.Room) models.GameResult {
	snapshot := r.Snapshot()
	result := models.GameResult{FinalScores: snapshot.Players}

	for i := range snapshot.Players {
		if result.Winner == nil || snapshot.Players[i].Score > result.Winner.Score {
			winner := snapshot.Players[i]
			result.Winner = &winner
		}
	}

	sort.SliceStable(result.FinalScores, func(i, j int) bool {
		return result.FinalScores[i].Score > result.FinalScores[j].Score
	})
	return result
}

// SelectWord lets the drawer replace the secret word before anyone has guessed it.
func (s *TurnScheduler) SelectWord(r *room.Room, connID, word string) error {
	if !r.IsPlaying() {
		return ErrInvalidTransition
	}
	if r.CurrentTurn != connID {
		return ErrNotYourTurn
	}
	if len(r.CorrectGuessers) > 0 {
		return ErrInvalidTransition
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return ErrEmptyWord
	}
	r.CurrentWord = word
	return nil
}

func (s *TurnScheduler) assignWord(r *room.Room) {
	if s.rules.WordChoices > 1 {
		choices := s.words.RandomWords(s.rules.WordChoices)
		if len(choices) > 0 {
			r.WordChoices = choices
			r.CurrentWord = choices[0]
			return
		}
	}
	r.CurrentWord = s.words.RandomWord()
}
