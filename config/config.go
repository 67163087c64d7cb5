// Package config holds the environment tuned settings of the engine.
package config

import (
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Board and cycle layout. These are the defaults for new matches.
var (
	MaxX         = getEnvInt("CYCLES_MAX_X", 900)
	MaxY         = getEnvInt("CYCLES_MAX_Y", 600)
	CellSize     = getEnvInt("CYCLES_CELL_SIZE", 15)
	CycleLength  = getEnvInt("CYCLES_LENGTH", 8)
	TrailGrowth  = getEnvInt("CYCLES_TRAIL_GROWTH", 1)
	TickInterval = time.Duration(getEnvInt("CYCLES_TICK_MS", 80)) * time.Millisecond
)

// Configuration variables. These aren't user facing but useful for tuning the
// details of engine performance.
var (
	MaxOpenConns = getEnvInt("MAX_OPEN_CONNS", 20)
	MaxIdleConns = getEnvInt("MAX_IDLE_CONNS", 20)
	PopRate      = rate.Limit(getEnvInt("POP_RPS", 40))
	PopBurstRate = getEnvInt("POP_BURST", 10)
)

func getEnvInt(varName string, defaults int) int {
	val := os.Getenv(varName)
	if val == "" {
		return defaults
	}
	intVal, err := strconv.ParseInt(val, 10, 32)
	if err != nil {
		return defaults
	}
	return int(intVal)
}
