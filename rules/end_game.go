package rules

// CheckForGameOver checks if the match has ended, which is when no more than
// one cycle is left.
func CheckForGameOver(frame *Frame) bool {
	return len(frame.AliveCycles()) <= 1
}

// Winner returns the number of the last player standing, or 0 when the match
// is still going or nobody survived.
func Winner(frame *Frame) int {
	alive := frame.AliveCycles()
	if len(alive) != 1 {
		return 0
	}
	return alive[0].Player
}
