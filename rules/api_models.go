package rules

// MoveResponse the message format of the move response from a remote driver
type MoveResponse struct {
	Move string `json:"move"`
}

// SteerRequest the message sent for all remote driver calls
type SteerRequest struct {
	Match MatchInfo `json:"match"`
	Turn  int64     `json:"turn"`
	Board Board     `json:"board"`
	You   Cycle     `json:"you"`
}

// MatchInfo identifies the match
type MatchInfo struct {
	ID    string `json:"id"`
	Arena string `json:"arena"`
}

// Board provides information about the board, in cells
type Board struct {
	Height int     `json:"height"`
	Width  int     `json:"width"`
	Cycles []Cycle `json:"cycles"`
}

// Cycle represents information about a cycle in the match
type Cycle struct {
	Player  int      `json:"player"`
	Name    string   `json:"name"`
	Alive   bool     `json:"alive"`
	Heading string   `json:"heading"`
	Body    []Coords `json:"body"`
}

// Coords represents a cell on the board
type Coords struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// buildSteerRequest converts a frame to cell coordinates, remote drivers
// don't need to know about the cell size.
func buildSteerRequest(match *Match, frame *Frame, player int) SteerRequest {
	req := SteerRequest{
		Match: MatchInfo{ID: match.ID, Arena: string(match.Arena)},
		Turn:  frame.Turn,
		Board: Board{
			Width:  match.Width / match.CellSize,
			Height: match.Height / match.CellSize,
			Cycles: []Cycle{},
		},
	}
	for _, cs := range frame.Cycles {
		c := convertCycle(cs, match.CellSize)
		req.Board.Cycles = append(req.Board.Cycles, c)
		if cs.Player == player {
			req.You = c
		}
	}
	return req
}

func convertCycle(cs *CycleState, cellSize int) Cycle {
	c := Cycle{
		Player: cs.Player,
		Name:   cs.Name,
		Alive:  cs.Alive,
		Body:   []Coords{},
	}
	for i, s := range cs.Segments {
		if i == 0 {
			c.Heading = VelocityDirection(s.Velocity)
		}
		c.Body = append(c.Body, Coords{X: s.Position.X / cellSize, Y: s.Position.Y / cellSize})
	}
	return c
}
