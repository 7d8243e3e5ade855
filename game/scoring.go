package game

const (
	// BaseGuessPoints is what every correct guess earns.
	BaseGuessPoints = 10
	// MaxGuessBonus decays from 5 to 0 as more players guess the word.
	MaxGuessBonus = 5
	// DrawerBonus is awarded to the drawer for each distinct correct guess.
	DrawerBonus = 5
)

// GuessPoints scores a correct guess. correctBefore counts the guessers who beat
// this one; totalPlayers includes the drawer.
//
//	floor(10 + 5 * (1 - correctBefore / (totalPlayers - 1)))
func GuessPoints(correctBefore, totalPlayers int) int {
	guessers := totalPlayers - 1
	if guessers < 1 {
		guessers = 1
	}
	if correctBefore < 0 {
		correctBefore = 0
	}
	if correctBefore > guessers {
		correctBefore = guessers
	}
	// Integer division floors because the numerator is never negative.
	return BaseGuessPoints + MaxGuessBonus*(guessers-correctBefore)/guessers
}

// AllGuessed reports whether every non-drawer has found the word.
func AllGuessed(correctCount, totalPlayers int) bool {
	return totalPlayers > 1 && correctCount >= totalPlayers-1
}
