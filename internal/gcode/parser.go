package gcode

import (
	"bufio"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/SeamNest/internal/model"
)

// wordRe matches one address word such as G1, X-12.5 or F3000.
var wordRe = regexp.MustCompile(`([A-Z])([-+]?(?:\d+\.?\d*|\.\d+))`)

// MoveType represents the type of knife movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0 travel with the knife raised
	MoveFeed                    // G1 drag in the XY plane
	MovePlunge                  // G1 lowering the knife without XY travel
	MoveRetract                 // any move lifting the knife
)

// GCodeMove represents a single parsed movement.
type GCodeMove struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
	Engaged  bool // knife enabled by its solenoid command, always true without one
}

type position struct{ X, Y, Z float64 }

// Parser reads knife cutter programs back into moves. With a solenoid
// profile a drag only cuts between the profile's knife-down and knife-up
// commands; otherwise the knife follows Z alone.
type Parser struct {
	knifeDown string
	knifeUp   string
}

// NewParser returns a parser for programs written with profile.
func NewParser(profile model.CutterProfile) *Parser {
	return &Parser{
		knifeDown: strings.ToUpper(strings.TrimSpace(profile.KnifeDown)),
		knifeUp:   strings.ToUpper(strings.TrimSpace(profile.KnifeUp)),
	}
}

// Parse reads a program whose knife follows Z alone.
func Parse(code string) []GCodeMove {
	return (&Parser{}).Parse(code)
}

// Parse returns the G0/G1 moves of code in order. Motion is modal: a line
// with coordinates and no G word repeats the previous motion command.
func (p *Parser) Parse(code string) []GCodeMove {
	var moves []GCodeMove

	var cur position
	feed := 0.0
	motion := -1
	engaged := p.knifeDown == ""

	sc := bufio.NewScanner(strings.NewReader(code))
	for sc.Scan() {
		line := strings.ToUpper(stripComments(sc.Text()))
		if line == "" {
			continue
		}
		if p.knifeDown != "" {
			switch line {
			case p.knifeDown:
				engaged = true
				continue
			case p.knifeUp:
				engaged = false
				continue
			}
		}

		next := cur
		hasAxis, other := false, false
		for _, w := range wordRe.FindAllStringSubmatch(line, -1) {
			v, err := strconv.ParseFloat(w[2], 64)
			if err != nil {
				continue
			}
			switch w[1] {
			case "G":
				switch v {
				case 0, 1:
					motion = int(v)
				default:
					other = true
				}
			case "X":
				next.X, hasAxis = v, true
			case "Y":
				next.Y, hasAxis = v, true
			case "Z":
				next.Z, hasAxis = v, true
			case "F":
				feed = v
			}
		}
		// Homing and other non-motion G words reuse the axis letters.
		if other || !hasAxis || motion < 0 {
			continue
		}

		moves = append(moves, GCodeMove{
			Type:     classify(motion == 0, cur, next),
			FromX:    cur.X,
			FromY:    cur.Y,
			FromZ:    cur.Z,
			ToX:      next.X,
			ToY:      next.Y,
			ToZ:      next.Z,
			FeedRate: feed,
			Engaged:  engaged,
		})
		cur = next
	}
	return moves
}

// stripComments removes ';' line comments and '(...)' comments, which
// may nest when a piece label carries parentheses.
func stripComments(line string) string {
	var b strings.Builder
	depth := 0
	for _, r := range line {
		switch {
		case r == ';' && depth == 0:
			return strings.TrimSpace(b.String())
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
			if depth == 0 {
				b.WriteByte(' ')
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

const zEpsilon = 0.001

func classify(rapid bool, from, to position) MoveType {
	dz := to.Z - from.Z
	travels := from.X != to.X || from.Y != to.Y

	switch {
	case dz > zEpsilon && (rapid || !travels):
		return MoveRetract
	case rapid:
		return MoveRapid
	case dz < -zEpsilon && !travels:
		return MovePlunge
	default:
		return MoveFeed
	}
}

// Cutting reports whether the move drags the enabled knife through fabric.
func (m GCodeMove) Cutting() bool {
	return m.Type == MoveFeed && m.Engaged && m.FromZ <= 0 && m.ToZ <= 0
}

// Length is the XY distance covered by the move.
func (m GCodeMove) Length() float64 {
	return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
}

// CutLength sums the XY length of all cutting moves.
func CutLength(moves []GCodeMove) float64 {
	total := 0.0
	for _, m := range moves {
		if m.Cutting() {
			total += m.Length()
		}
	}
	return total
}

// Bounds returns the XY extent of all cutting moves. ok is false when the
// program never cuts.
func Bounds(moves []GCodeMove) (min, max model.Point2D, ok bool) {
	var pts model.Outline
	for _, m := range moves {
		if m.Cutting() {
			pts = append(pts, model.Point2D{X: m.FromX, Y: m.FromY}, model.Point2D{X: m.ToX, Y: m.ToY})
		}
	}
	if len(pts) == 0 {
		return model.Point2D{}, model.Point2D{}, false
	}
	min, max = pts.BoundingBox()
	return min, max, true
}

// ProgramStats summarizes what a program cuts.
type ProgramStats struct {
	Moves     int
	CutLength float64
	Min, Max  model.Point2D
	Cuts      bool
}

// Stats parses code with the generator's profile and summarizes it.
func (g *Generator) Stats(code string) ProgramStats {
	moves := g.Parser().Parse(code)
	st := ProgramStats{Moves: len(moves), CutLength: CutLength(moves)}
	st.Min, st.Max, st.Cuts = Bounds(moves)
	return st
}
