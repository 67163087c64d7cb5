package rules

const (
	// DeathCauseCycleCollision is the death reason when a cycle drives into
	// another cycle's trail
	DeathCauseCycleCollision = "cycle-collision"
	// DeathCauseSelfCollision is the death reason when a cycle drives into its
	// own trail
	DeathCauseSelfCollision = "self-collision"
	// DeathCauseHeadToHeadCollision is when both heads end up on the same cell
	DeathCauseHeadToHeadCollision = "head-collision"
	// DeathCauseWallCollision is when a cycle runs off a walled board
	DeathCauseWallCollision = "wall-collision"
)
