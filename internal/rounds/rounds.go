// Package rounds holds the pure turn arithmetic for a game: how many
// rounds a room plays, what kind of task each round is, and which seat
// holds which chain on a given round. Nothing in here touches a room,
// a store, or a clock, so the whole package is testable with integers.
package rounds

type Category string

const (
	CategoryWord  Category = "word"
	CategoryDraw  Category = "draw"
	CategoryGuess Category = "guess"
)

// TotalRounds returns how many rounds a game with n players lasts.
// Odd player counts play n rounds; even counts play one extra so the
// final round still lands on a guess (see EffectiveRound for the
// matching rotation skip).
func TotalRounds(n int) int {
	if n%2 == 0 {
		return n + 1
	}
	return n
}

// TaskCategory returns what every player is doing on the given round.
// Round 0 is always the starting word; after that the category strictly
// alternates draw/guess on round parity regardless of player count.
func TaskCategory(round, n int) Category {
	if round == 0 {
		return CategoryWord
	}
	if round%2 == 1 {
		return CategoryDraw
	}
	return CategoryGuess
}

// IsComplete reports whether the given round number is past the end of
// the game.
func IsComplete(round, n int) bool {
	return round >= TotalRounds(n)
}
