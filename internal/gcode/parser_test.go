package gcode

import (
	"math"
	"testing"

	"github.com/piwi3910/SeamNest/internal/model"
)

func TestParse_Empty(t *testing.T) {
	moves := Parse("")
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for empty input, got %d", len(moves))
	}
}

func TestParse_CommentsOnly(t *testing.T) {
	code := `; SeamNest G-code - Sheet 1
( Piece 1: Front (mirrored), 4 vertices)
(parenthetical comment)
`
	moves := Parse(code)
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for comments-only input, got %d", len(moves))
	}
}

func TestParse_RapidMove(t *testing.T) {
	moves := Parse("G0 X10.000 Y20.000\n")
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	m := moves[0]
	if m.Type != MoveRapid {
		t.Errorf("expected MoveRapid, got %d", m.Type)
	}
	if m.FromX != 0 || m.FromY != 0 {
		t.Errorf("expected from (0,0), got (%.3f, %.3f)", m.FromX, m.FromY)
	}
	if m.ToX != 10 || m.ToY != 20 {
		t.Errorf("expected to (10,20), got (%.3f, %.3f)", m.ToX, m.ToY)
	}
}

func TestParse_KnifeDownAndUp(t *testing.T) {
	code := `G0 Z5.000
G0 X10.000 Y10.000
G1 Z-1.000 F3000.000
M3
G1 X110.000 Y10.000 F12000.000
M5
G0 Z5.000
`
	moves := Parse(code)
	if len(moves) != 5 {
		t.Fatalf("expected 5 moves, got %d", len(moves))
	}
	want := []MoveType{MoveRetract, MoveRapid, MovePlunge, MoveFeed, MoveRetract}
	for i, w := range want {
		if moves[i].Type != w {
			t.Errorf("move %d: expected type %d, got %d", i, w, moves[i].Type)
		}
	}
	if moves[2].FeedRate != 3000 {
		t.Errorf("expected plunge feed 3000, got %.1f", moves[2].FeedRate)
	}
	if moves[3].FeedRate != 12000 {
		t.Errorf("expected cut feed 12000, got %.1f", moves[3].FeedRate)
	}
	if !moves[3].Cutting() {
		t.Error("expected feed move at knife depth to be cutting")
	}
}

func TestParse_InlineComment(t *testing.T) {
	moves := Parse("G1 X50.000 Y0.000 F800 ; trailing\nG1 X60.000 (inline) Y5.000\n")
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[1].ToX != 60 || moves[1].ToY != 5 {
		t.Errorf("expected to (60,5), got (%.3f, %.3f)", moves[1].ToX, moves[1].ToY)
	}
}

func TestParse_NonMovementLines(t *testing.T) {
	moves := Parse("G90\nG21\nM3\nM5\nG28 X0 Y0\nM30\n")
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for non-movement commands, got %d", len(moves))
	}
}

func TestParse_FeedRateSticky(t *testing.T) {
	moves := Parse("G1 X10 Y0 F1500\nG1 X20 Y0\n")
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[1].FeedRate != 1500 {
		t.Errorf("expected sticky feed rate 1500, got %.1f", moves[1].FeedRate)
	}
	if moves[1].FromX != 10 {
		t.Errorf("expected state carried from previous move, got from X %.3f", moves[1].FromX)
	}
}

func TestCutLengthAndBounds(t *testing.T) {
	code := `G0 Z5.000
G0 X10.000 Y20.000
G1 Z-1.000 F3000.000
G1 X110.000 Y20.000 F12000.000
G1 X110.000 Y70.000
G1 X10.000 Y70.000
G1 X10.000 Y20.000
G0 Z5.000
G0 X500.000 Y500.000
`
	moves := Parse(code)

	if got := CutLength(moves); math.Abs(got-300) > 1e-9 {
		t.Errorf("expected cut length 300, got %.3f", got)
	}

	min, max, ok := Bounds(moves)
	if !ok {
		t.Fatal("expected bounds for a program that cuts")
	}
	if min.X != 10 || min.Y != 20 || max.X != 110 || max.Y != 70 {
		t.Errorf("expected bounds (10,20)-(110,70), got (%.1f,%.1f)-(%.1f,%.1f)", min.X, min.Y, max.X, max.Y)
	}
}

func TestBounds_NoCuts(t *testing.T) {
	if _, _, ok := Bounds(Parse("G0 X10 Y10\nG0 Z5\n")); ok {
		t.Error("expected no bounds for a program without cutting moves")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		rapid bool
		from  position
		to    position
		want  MoveType
	}{
		{"rapid XY", true, position{0, 0, 5}, position{10, 20, 5}, MoveRapid},
		{"rapid lift", true, position{10, 20, -1}, position{10, 20, 5}, MoveRetract},
		{"knife drag", false, position{0, 0, -1}, position{100, 0, -1}, MoveFeed},
		{"knife down", false, position{10, 20, 5}, position{10, 20, -1}, MovePlunge},
		{"feed lift", false, position{10, 20, -1}, position{10, 20, 0}, MoveRetract},
		{"drag with slight Z", false, position{0, 0, -1}, position{100, 0, -1.0001}, MoveFeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.rapid, tt.from, tt.to); got != tt.want {
				t.Errorf("classify() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParser_SolenoidKnife(t *testing.T) {
	// Depth alone is not enough: the second drag runs after the knife
	// solenoid was released.
	code := `G0 X0 Y0
G1 Z-1.000 F3000
M3
G1 X100.000 Y0.000 F12000
M5
G1 X100.000 Y50.000
`
	tangential := NewParser(model.GetCutterProfile("Tangential"))
	moves := tangential.Parse(code)
	if len(moves) != 4 {
		t.Fatalf("expected 4 moves, got %d", len(moves))
	}
	if moves[1].Engaged {
		t.Error("expected knife disabled while plunging")
	}
	if !moves[2].Cutting() {
		t.Error("expected drag between M3 and M5 to cut")
	}
	if moves[3].Cutting() {
		t.Error("expected drag after M5 not to cut")
	}
	if got := CutLength(moves); math.Abs(got-100) > 1e-9 {
		t.Errorf("expected cut length 100, got %.3f", got)
	}

	if got := CutLength(Parse(code)); math.Abs(got-150) > 1e-9 {
		t.Errorf("expected depth-only cut length 150, got %.3f", got)
	}
}

func TestParse_ModalMotion(t *testing.T) {
	moves := Parse("G1 Z-1 F500\nX10 Y0\nY10\nG0 Z5\nX0 Y0\n")
	if len(moves) != 5 {
		t.Fatalf("expected 5 moves, got %d", len(moves))
	}
	want := []MoveType{MovePlunge, MoveFeed, MoveFeed, MoveRetract, MoveRapid}
	for i, w := range want {
		if moves[i].Type != w {
			t.Errorf("move %d: expected type %d, got %d", i, w, moves[i].Type)
		}
	}
	if got := CutLength(moves); math.Abs(got-20) > 1e-9 {
		t.Errorf("expected cut length 20, got %.3f", got)
	}
}

func TestStripComments_Nested(t *testing.T) {
	got := stripComments("( Piece 1: Front (mirrored), 4 vertices) G1 X5 ; tail")
	if got != "G1 X5" {
		t.Errorf("expected %q, got %q", "G1 X5", got)
	}
}

func TestParse_NegativeCoordinates(t *testing.T) {
	moves := Parse("G0 X-3.000 Y-3.000\n")
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	if moves[0].ToX != -3 || moves[0].ToY != -3 {
		t.Errorf("expected to (-3,-3), got (%.3f, %.3f)", moves[0].ToX, moves[0].ToY)
	}
}
