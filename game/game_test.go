package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/drawserver/room"
	"github.com/wfunc/drawserver/state"
)

// stubWords returns words from a fixed cycle so tests can predict the secret.
type stubWords struct {
	words []string
	next  int
}

func (s *stubWords) RandomWord() string {
	w := s.words[s.next%len(s.words)]
	s.next++
	return w
}

func (s *stubWords) RandomWords(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.RandomWord())
	}
	return out
}

func newRoom(maxRounds int, ids ...string) *room.Room {
	r := room.NewRoom("ROOM01", 0, maxRounds, time.Now())
	for _, id := range ids {
		r.AddPlayer(&room.Player{ID: id, Name: "name-" + id})
	}
	return r
}

func newScheduler(minPlayers int) *TurnScheduler {
	return NewTurnScheduler(&stubWords{words: []string{"cat", "dog", "tree"}}, Rules{MinPlayers: minPlayers})
}

func TestGuessPoints(t *testing.T) {
	tests := []struct {
		correctBefore, total, want int
	}{
		{0, 3, 15},
		{1, 3, 12},
		{2, 3, 10},
		{0, 2, 15},
		{0, 1, 15},
		{3, 5, 11},
		{9, 3, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.correctBefore, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, GuessPoints(tt.correctBefore, tt.total))
		})
	}
}

func TestGuessPoints_Bounds(t *testing.T) {
	for total := 1; total <= 10; total++ {
		for before := 0; before < total; before++ {
			p := GuessPoints(before, total)
			assert.GreaterOrEqual(t, p, BaseGuessPoints)
			assert.LessOrEqual(t, p, BaseGuessPoints+MaxGuessBonus)
		}
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(" Cat ", "cat"))
	assert.True(t, Matches("CAT", "Cat"))
	assert.False(t, Matches("cats", "cat"))
	assert.False(t, Matches("c-a-t", "cat"))
	assert.False(t, Matches("", ""))
}

func TestStartGame(t *testing.T) {
	r := newRoom(3, "a", "b", "c")
	r.Players["b"].Score = 40

	require.NoError(t, newScheduler(2).StartGame(r))

	assert.Equal(t, state.Playing, r.GameState())
	assert.Equal(t, 1, r.CurrentRound)
	assert.Equal(t, "a", r.CurrentTurn)
	assert.Equal(t, "cat", r.CurrentWord)
	assert.Empty(t, r.CorrectGuessers)
	assert.Equal(t, 0, r.Players["b"].Score)
	assert.Equal(t, uint64(1), r.Generation)
}

func TestStartGame_Errors(t *testing.T) {
	solo := newRoom(3, "a")
	assert.ErrorIs(t, newScheduler(2).StartGame(solo), ErrInsufficientPlayers)
	assert.NoError(t, newScheduler(1).StartGame(newRoom(3, "a")), "single-player games are allowed when configured")

	r := newRoom(3, "a", "b")
	s := newScheduler(2)
	require.NoError(t, s.StartGame(r))
	assert.ErrorIs(t, s.StartGame(r), ErrInvalidTransition)
}

func TestSubmitGuess_Scenario(t *testing.T) {
	r := newRoom(3, "a", "b", "c")
	s := newScheduler(2)
	require.NoError(t, s.StartGame(r))

	res := SubmitGuess(r, "b", "dog")
	assert.Equal(t, Incorrect, res.Outcome)

	res = SubmitGuess(r, "b", " CAT ")
	require.Equal(t, Correct, res.Outcome)
	assert.Equal(t, 15, res.Points)
	assert.Equal(t, 5, res.DrawerPoints)
	assert.False(t, res.TurnComplete)
	assert.Equal(t, 15, r.Players["b"].Score)
	assert.Equal(t, 5, r.Players["a"].Score)

	res = SubmitGuess(r, "b", "cat")
	assert.Equal(t, Rejected, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrAlreadyGuessed)

	res = SubmitGuess(r, "a", "cat")
	assert.ErrorIs(t, res.Err, ErrDrawerCannotGuess)
	assert.False(t, r.HasGuessed("a"))

	res = SubmitGuess(r, "c", "cat")
	require.Equal(t, Correct, res.Outcome)
	assert.Equal(t, 12, res.Points)
	assert.True(t, res.TurnComplete)
	assert.Equal(t, 10, r.Players["a"].Score)

	outcome, err := s.AdvanceTurn(r)
	require.NoError(t, err)
	assert.False(t, outcome.NewRound)
	assert.Equal(t, "b", r.CurrentTurn)
	assert.Equal(t, 1, r.CurrentRound)
	assert.Empty(t, r.CorrectGuessers)
}

func TestSubmitGuess_NotPlaying(t *testing.T) {
	r := newRoom(3, "a", "b")
	res := SubmitGuess(r, "b", "cat")
	assert.Equal(t, Rejected, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrInvalidTransition)
}

func TestAdvanceTurn_TwoPlayerRotation(t *testing.T) {
	r := newRoom(3, "a", "b")
	s := newScheduler(2)
	require.NoError(t, s.StartGame(r))

	_, err := s.AdvanceTurn(r)
	require.NoError(t, err)
	assert.Equal(t, "b", r.CurrentTurn)
	assert.Equal(t, 1, r.CurrentRound)

	outcome, err := s.AdvanceTurn(r)
	require.NoError(t, err)
	assert.True(t, outcome.NewRound)
	assert.Equal(t, "a", r.CurrentTurn)
	assert.Equal(t, 2, r.CurrentRound)
}

func TestAdvanceTurn_EndsAfterMaxRounds(t *testing.T) {
	r := newRoom(2, "a", "b")
	s := newScheduler(2)
	require.NoError(t, s.StartGame(r))
	r.Players["b"].Score = 7

	lastRound := 0
	var outcome TurnOutcome
	for i := 0; i < 4; i++ {
		var err error
		outcome, err = s.AdvanceTurn(r)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.CurrentRound, lastRound, "round must never decrease")
		assert.LessOrEqual(t, r.CurrentRound, r.MaxRounds)
		lastRound = r.CurrentRound
		if outcome.GameEnded {
			break
		}
		assert.Contains(t, r.OrderedPlayers, r.CurrentTurn)
	}

	require.True(t, outcome.GameEnded)
	assert.Equal(t, state.Ended, r.GameState())
	assert.Equal(t, 2, r.CurrentRound)
	assert.Empty(t, r.CurrentTurn)
	require.NotNil(t, outcome.Result.Winner)
	assert.Equal(t, "b", outcome.Result.Winner.ID)

	_, err := s.AdvanceTurn(r)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdvanceTurn_MissingDrawerFallsBack(t *testing.T) {
	r := newRoom(3, "a", "b", "c")
	s := newScheduler(2)
	require.NoError(t, s.StartGame(r))
	r.CurrentTurn = "ghost"

	_, err := s.AdvanceTurn(r)
	require.NoError(t, err)
	assert.Equal(t, "b", r.CurrentTurn)
}

func TestAdvanceAfterDeparture(t *testing.T) {
	r := newRoom(3, "a", "b", "c")
	s := newScheduler(2)
	require.NoError(t, s.StartGame(r))
	r.CorrectGuessers["c"] = struct{}{}

	_, idx := r.RemovePlayer("a")
	outcome, err := s.AdvanceAfterDeparture(r, idx)
	require.NoError(t, err)
	assert.False(t, outcome.NewRound)
	assert.Equal(t, "b", r.CurrentTurn)
	assert.Empty(t, r.CorrectGuessers)
	assert.NotEmpty(t, r.CurrentWord)

	// last in order leaves while drawing: rotation wraps to a new round
	s.AdvanceTurn(r)
	require.Equal(t, "c", r.CurrentTurn)
	_, idx = r.RemovePlayer("c")
	outcome, err = s.AdvanceAfterDeparture(r, idx)
	require.NoError(t, err)
	assert.True(t, outcome.NewRound)
	assert.Equal(t, "b", r.CurrentTurn)
	assert.Equal(t, 2, r.CurrentRound)
}

func TestStandings_TieGoesToEarliestJoiner(t *testing.T) {
	r := newRoom(3, "a", "b", "c")
	r.Players["a"].Score = 10
	r.Players["b"].Score = 20
	r.Players["c"].Score = 20

	result := Standings(r)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "b", result.Winner.ID)
	assert.Equal(t, []string{"b", "c", "a"}, []string{
		result.FinalScores[0].ID, result.FinalScores[1].ID, result.FinalScores[2].ID,
	})
}

func TestSelectWord(t *testing.T) {
	r := newRoom(3, "a", "b", "c")
	s := newScheduler(2)
	assert.ErrorIs(t, s.SelectWord(r, "a", "sun"), ErrInvalidTransition)

	require.NoError(t, s.StartGame(r))
	assert.ErrorIs(t, s.SelectWord(r, "b", "sun"), ErrNotYourTurn)
	assert.ErrorIs(t, s.SelectWord(r, "a", "  "), ErrEmptyWord)
	require.NoError(t, s.SelectWord(r, "a", " sun "))
	assert.Equal(t, "sun", r.CurrentWord)

	SubmitGuess(r, "b", "sun")
	assert.ErrorIs(t, s.SelectWord(r, "a", "moon"), ErrInvalidTransition)
}

func TestWordChoices(t *testing.T) {
	r := newRoom(3, "a", "b")
	s := NewTurnScheduler(&stubWords{words: []string{"cat", "dog", "tree"}}, Rules{MinPlayers: 2, WordChoices: 3})
	require.NoError(t, s.StartGame(r))

	assert.Equal(t, []string{"cat", "dog", "tree"}, r.WordChoices)
	assert.Equal(t, "cat", r.CurrentWord)
}

func TestIsGuessAttempt(t *testing.T) {
	r := newRoom(3, "a", "b")
	assert.False(t, IsGuessAttempt(r, "cat"))
	require.NoError(t, newScheduler(2).StartGame(r))
	assert.True(t, IsGuessAttempt(r, " Cat"))
	assert.False(t, IsGuessAttempt(r, "hello"))
}
