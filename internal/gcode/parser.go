package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
	MoveDrill                   // One hole of a G81/G82/G83 canned cycle
)

func (t MoveType) String() string {
	switch t {
	case MoveRapid:
		return "rapid"
	case MoveFeed:
		return "feed"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	case MoveDrill:
		return "drill"
	}
	return "unknown"
}

// GCodeMove represents a single parsed movement from GCode.
type GCodeMove struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

// XYLength is the planar length of the move.
func (m GCodeMove) XYLength() float64 {
	return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
}

var (
	wordRe  = regexp.MustCompile(`([XYZFR])(-?\d+\.?\d*)`)
	gWordRe = regexp.MustCompile(`G(\d+)`)
)

// ParseGCode parses a GCode string into a slice of structured moves.
// It tracks absolute position state and classifies each command by its
// movement characteristics. Drill cycles stay modal until G80 or the next
// G0/G1; each hole is reported as one MoveDrill ending at the hole depth,
// while the parser's Z returns to the cycle's R plane.
func ParseGCode(code string) []GCodeMove {
	var moves []GCodeMove

	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0
	motion := -1
	drillZ, drillR := 0.0, 0.0

	for _, line := range strings.Split(code, "\n") {
		line = stripComment(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		moving := strings.ContainsAny(upper[:1], "XYZ")
		for _, g := range gWordRe.FindAllStringSubmatch(upper, -1) {
			switch n, _ := strconv.Atoi(g[1]); n {
			case 0, 1, 81, 82, 83:
				motion, moving = n, true
			case 80:
				motion = -1
			}
		}
		if motion < 0 || !moving {
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		hasXY := false
		for _, m := range wordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				newX, hasXY = val, true
			case "Y":
				newY, hasXY = val, true
			case "Z":
				newZ = val
			case "F":
				newFeed = val
			case "R":
				drillR = val
			}
		}

		if motion >= 81 {
			if newZ != curZ {
				drillZ = newZ
			}
			if !hasXY && newZ == curZ {
				continue
			}
			moves = append(moves, GCodeMove{
				Type:     MoveDrill,
				FromX:    curX,
				FromY:    curY,
				FromZ:    drillR,
				ToX:      newX,
				ToY:      newY,
				ToZ:      drillZ,
				FeedRate: newFeed,
			})
			curX, curY, curZ, curFeed = newX, newY, drillR, newFeed
			continue
		}

		moves = append(moves, GCodeMove{
			Type:     classifyMove(motion == 0, curZ, newZ, curX, curY, newX, newY),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
		})

		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}

	return moves
}

// stripComment removes semicolon and parenthetical comments.
func stripComment(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, "("); idx >= 0 {
		if end := strings.Index(line, ")"); end > idx {
			line = line[:idx] + line[end+1:]
		}
	}
	return strings.TrimSpace(line)
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

// Summary totals a parsed program.
type Summary struct {
	Rapids      int
	Feeds       int
	Plunges     int
	Retracts    int
	Drills      int
	CutLength   float64 // mm of XY feed
	RapidLength float64 // mm of XY rapid
	CutTime     time.Duration
}

// Summarize counts the moves of a program and estimates its cutting time
// from the feed rates. Rapid travel and drill cycles are not timed.
func Summarize(moves []GCodeMove) Summary {
	counts := lo.CountValuesBy(moves, func(m GCodeMove) MoveType { return m.Type })
	feeds := lo.Filter(moves, func(m GCodeMove, _ int) bool {
		return m.Type == MoveFeed || m.Type == MovePlunge
	})
	rapids := lo.Filter(moves, func(m GCodeMove, _ int) bool { return m.Type == MoveRapid })

	minutes := lo.Map(feeds, func(m GCodeMove, _ int) float64 {
		if m.FeedRate <= 0 {
			return 0
		}
		l := math.Sqrt(m.XYLength()*m.XYLength() + (m.ToZ-m.FromZ)*(m.ToZ-m.FromZ))
		return l / m.FeedRate
	})

	return Summary{
		Rapids:   counts[MoveRapid],
		Feeds:    counts[MoveFeed],
		Plunges:  counts[MovePlunge],
		Retracts: counts[MoveRetract],
		Drills:   counts[MoveDrill],
		CutLength: floats.Sum(lo.Map(feeds, func(m GCodeMove, _ int) float64 {
			return m.XYLength()
		})),
		RapidLength: floats.Sum(lo.Map(rapids, func(m GCodeMove, _ int) float64 {
			return m.XYLength()
		})),
		CutTime: time.Duration(floats.Sum(minutes) * float64(time.Minute)),
	}
}
