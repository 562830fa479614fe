package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
	MoveArc                     // G2/G3: circular feed in the XY plane
)

// Move represents a single parsed movement from G-code.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64

	// Arc centre offset from the start point, and direction. Only set for MoveArc.
	I, J      float64
	Clockwise bool
}

var coordRe = regexp.MustCompile(`([XYZFIJ])(-?\d+\.?\d*)`)

// commandWord returns the G word of a line ("G0", "G1", "G2", "G3") with
// leading zeros stripped, or "" for anything else.
func commandWord(upper string) string {
	field := upper
	if i := strings.IndexByte(upper, ' '); i >= 0 {
		field = upper[:i]
	}
	if !strings.HasPrefix(field, "G") {
		return ""
	}
	n, err := strconv.Atoi(field[1:])
	if err != nil || n < 0 || n > 3 {
		return ""
	}
	return "G" + strconv.Itoa(n)
}

// ParseGCode parses a G-code string into a slice of structured moves.
// It tracks absolute position state and classifies each G0-G3 command
// by its movement characteristics.
func ParseGCode(code string) []Move {
	var moves []Move

	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0

	for _, line := range strings.Split(code, "\n") {
		// Strip inline comments (semicolon or parenthetical)
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		if idx := strings.Index(line, "("); idx >= 0 {
			if end := strings.Index(line, ")"); end > idx {
				line = line[:idx] + line[end+1:]
			} else {
				line = line[:idx]
			}
		}
		upper := strings.ToUpper(strings.TrimSpace(line))
		if upper == "" {
			continue
		}

		cmd := commandWord(upper)
		if cmd == "" {
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		var i, j float64
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				newX = val
			case "Y":
				newY = val
			case "Z":
				newZ = val
			case "F":
				newFeed = val
			case "I":
				i = val
			case "J":
				j = val
			}
		}

		move := Move{
			FromX: curX, FromY: curY, FromZ: curZ,
			ToX: newX, ToY: newY, ToZ: newZ,
			FeedRate: newFeed,
		}
		switch cmd {
		case "G2", "G3":
			move.Type = MoveArc
			move.I, move.J = i, j
			move.Clockwise = cmd == "G2"
		default:
			move.Type = classifyMove(cmd == "G0", curZ, newZ, curX, curY, newX, newY)
		}
		moves = append(moves, move)

		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}

	return moves
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Length returns the XY path length of m. Arcs whose end equals their start
// are full circles.
func (m Move) Length() float64 {
	if m.Type != MoveArc {
		return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
	}

	cx, cy := m.FromX+m.I, m.FromY+m.J
	r := math.Hypot(m.I, m.J)
	start := math.Atan2(m.FromY-cy, m.FromX-cx)
	end := math.Atan2(m.ToY-cy, m.ToX-cx)

	sweep := end - start
	if m.Clockwise {
		sweep = -sweep
	}
	for sweep <= 1e-9 {
		sweep += 2 * math.Pi
	}
	return r * sweep
}

// Stats summarises a parsed program.
type Stats struct {
	Moves       int
	CutLength   float64 // mm travelled while feeding in XY
	RapidLength float64 // mm travelled at rapid
	Plunges     int
}

// Summarize totals the XY distances of moves.
func Summarize(moves []Move) Stats {
	s := Stats{Moves: len(moves)}
	for _, m := range moves {
		switch m.Type {
		case MoveFeed, MoveArc:
			s.CutLength += m.Length()
		case MoveRapid:
			s.RapidLength += m.Length()
		case MovePlunge:
			s.Plunges++
		}
	}
	return s
}
