package rules

// MatchStatus is where a match is in its lifecycle.
type MatchStatus string

const (
	// MatchStatusStopped represents a created match nobody has started yet
	MatchStatusStopped MatchStatus = "stopped"
	// MatchStatusRunning represents a match a worker should be ticking
	MatchStatusRunning MatchStatus = "running"
	// MatchStatusError represents a match that ended because of an error
	MatchStatusError MatchStatus = "error"
	// MatchStatusComplete represents a match that is done
	MatchStatusComplete MatchStatus = "complete"
)
