package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/lightcycles/engine/casting"
	"github.com/lightcycles/engine/config"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
)

// PlayerCount is the number of cycles in every match.
const PlayerCount = 2

var (
	// ErrPlayerCount is returned when a match is not created with exactly two
	// players.
	ErrPlayerCount = fmt.Errorf("rules: a match needs exactly %d players", PlayerCount)
	// ErrInvalidBoard is returned for boards that don't fit the cell lattice.
	ErrInvalidBoard = errors.New("rules: board must be a positive multiple of the cell size")
	// ErrInvalidArena is returned for anything but a walled or wrapped arena.
	ErrInvalidArena = errors.New("rules: unknown arena")
	// ErrInvalidDriver is returned for a driver that is neither bot, human nor
	// a URL.
	ErrInvalidDriver = errors.New("rules: driver must be bot, human or a url")
)

// CreateRequest describes a match to create. Zero values are replaced by the
// configured defaults.
type CreateRequest struct {
	Width        int
	Height       int
	CellSize     int
	CycleLength  int
	Arena        Arena
	TrailGrowth  int
	TickInterval int64
	Players      []PlayerOptions
}

// PlayerOptions describes a player in a CreateRequest.
type PlayerOptions struct {
	Name   string
	Driver string
}

// CreateInitialMatch creates a new match based on the create request passed
// in, along with its first frame.
func CreateInitialMatch(req *CreateRequest) (*Match, *Frame, error) {
	match, err := newMatch(req)
	if err != nil {
		return nil, nil, err
	}

	settings := match.Settings()
	frame := &Frame{Turn: 0}
	for _, p := range match.Players {
		c := casting.NewCycle(p.Number, settings)
		frame.Cycles = append(frame.Cycles, StateFromCycle(c, p.Name, nil))
	}

	log.WithFields(log.Fields{
		"MatchID": match.ID,
		"Width":   match.Width,
		"Height":  match.Height,
		"Arena":   match.Arena,
	}).Info("match created")
	return match, frame, nil
}

func newMatch(req *CreateRequest) (*Match, error) {
	if len(req.Players) != PlayerCount {
		return nil, ErrPlayerCount
	}

	match := &Match{
		ID:           uuid.NewV4().String(),
		Status:       MatchStatusStopped,
		Width:        orDefault(req.Width, config.MaxX),
		Height:       orDefault(req.Height, config.MaxY),
		CellSize:     orDefault(req.CellSize, config.CellSize),
		CycleLength:  orDefault(req.CycleLength, config.CycleLength),
		Arena:        req.Arena,
		TrailGrowth:  req.TrailGrowth,
		TickInterval: req.TickInterval,
	}
	if match.Arena == "" {
		match.Arena = ArenaWalled
	}
	if match.Arena != ArenaWalled && match.Arena != ArenaWrapped {
		return nil, ErrInvalidArena
	}
	if match.TrailGrowth <= 0 {
		match.TrailGrowth = config.TrailGrowth
	}
	if match.TickInterval <= 0 {
		match.TickInterval = int64(config.TickInterval / time.Millisecond)
	}
	if !validBoard(match) {
		return nil, ErrInvalidBoard
	}

	for i, opts := range req.Players {
		p := &Player{
			Number: i + 1,
			Name:   opts.Name,
			Driver: opts.Driver,
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("Player %d", p.Number)
		}
		if p.Driver == "" {
			p.Driver = DriverBot
		}
		if p.Driver != DriverBot && p.Driver != DriverHuman && !IsValidURL(p.Driver) {
			return nil, ErrInvalidDriver
		}
		match.Players = append(match.Players, p)
	}
	return match, nil
}

func validBoard(m *Match) bool {
	if m.CellSize <= 0 || m.Width <= 0 || m.Height <= 0 || m.CycleLength <= 0 {
		return false
	}
	// Both starting rows have to land on the lattice too.
	return m.Height/4 >= m.CellSize &&
		m.Width%m.CellSize == 0 &&
		m.Height%m.CellSize == 0 &&
		(m.Width/2)%m.CellSize == 0 &&
		(m.Height/4)%m.CellSize == 0 &&
		m.Width/2-(m.CycleLength-1)*m.CellSize >= 0
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
