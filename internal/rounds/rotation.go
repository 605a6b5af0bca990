package rounds

// Chains rotate one seat per round in a fixed direction. With an even
// player count the chain owner would never draw on their own chain
// under the naive shift-by-round rule, so round 1 holds rotation for
// one turn and everything after is computed one round behind.

// EffectiveRound is the rotation-adjusted round number. Odd player
// counts use the round as-is; even counts skip rotation on round 1.
func EffectiveRound(round, n int) int {
	if n%2 != 0 {
		return round
	}
	if round == 0 {
		return 0
	}
	return round - 1
}

// ChainOwnerOf returns the seat whose chain the given seat is holding
// on the given round.
func ChainOwnerOf(seat, round, n int) int {
	return ((seat-EffectiveRound(round, n))%n + n) % n
}

// CurrentHolderOf is the inverse of ChainOwnerOf: the seat currently
// holding the given owner's chain.
func CurrentHolderOf(ownerSeat, round, n int) int {
	return (ownerSeat + EffectiveRound(round, n)) % n
}

// NextHolder returns the seat a chain passes to when the round
// advances. Rotation direction is fixed regardless of parity.
func NextHolder(currentSeat, n int) int {
	return (currentSeat + 1) % n
}
