package casting

import "github.com/lightcycles/engine/config"

// Settings are the fixed values a cycle is laid out with.
type Settings struct {
	MaxX        int
	MaxY        int
	CellSize    int
	CycleLength int
}

// DefaultSettings returns the settings from the environment tuned config.
func DefaultSettings() Settings {
	return Settings{
		MaxX:        config.MaxX,
		MaxY:        config.MaxY,
		CellSize:    config.CellSize,
		CycleLength: config.CycleLength,
	}
}
