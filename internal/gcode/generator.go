package gcode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/SeamNest/internal/model"
)

// Generator produces knife cutter G-code from a nested layout.
type Generator struct {
	Settings model.CutterSettings
	profile  model.CutterProfile
}

func New(settings model.NestSettings) *Generator {
	return NewWithProfile(settings, model.GetCutterProfile(settings.Cutter.Profile))
}

// NewWithProfile uses profile instead of looking up settings.Cutter.Profile
// among the built-in profiles.
func NewWithProfile(settings model.NestSettings, profile model.CutterProfile) *Generator {
	return &Generator{
		Settings: settings.Cutter,
		profile:  profile,
	}
}

// Profile returns the cutter profile the generator writes for.
func (g *Generator) Profile() model.CutterProfile { return g.profile }

// Parser returns a parser that honours the profile's knife commands.
func (g *Generator) Parser() *Parser { return NewParser(g.profile) }

// GenerateSheet produces G-code cutting every placed piece on one sheet,
// in placement order.
func (g *Generator) GenerateSheet(sheet model.SheetLayout) string {
	var b strings.Builder

	g.writeHeader(&b, sheet)

	for i, piece := range sheet.Pieces {
		g.writePiece(&b, piece, i+1)
	}

	g.writeFooter(&b)
	return b.String()
}

// Generate produces one program per sheet.
func (g *Generator) Generate(result model.LayoutResult) []string {
	var codes []string
	for _, sheet := range result.Sheets {
		codes = append(codes, g.GenerateSheet(sheet))
	}
	return codes
}

// WriteFiles writes one sheet_N.nc file per sheet into dir and returns the
// written paths.
func (g *Generator) WriteFiles(dir string, result model.LayoutResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	var paths []string
	for i, code := range g.Generate(result) {
		path := filepath.Join(dir, fmt.Sprintf("sheet_%d.nc", i+1))
		if err := os.WriteFile(path, []byte(code), 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (g *Generator) writeHeader(b *strings.Builder, sheet model.SheetLayout) {
	p := g.profile

	b.WriteString(g.comment(fmt.Sprintf("SeamNest G-code - Sheet %d", sheet.Index+1)))
	b.WriteString(g.comment(fmt.Sprintf("Fabric: %.1f mm wide, %.1f mm used", sheet.Width, sheet.UsedLength)))
	b.WriteString(g.comment(fmt.Sprintf("Pieces: %d, Efficiency: %.1f%%", len(sheet.Pieces), sheet.Efficiency())))
	b.WriteString(g.comment(fmt.Sprintf("Feed: %.0f mm/min, Plunge: %.0f mm/min, Knife Z: %.2f",
		g.Settings.FeedRate, g.Settings.PlungeRate, g.Settings.CutZ)))
	b.WriteString(g.comment("Profile: " + p.Name))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}
}

// writePiece cuts one closed outline: rapid to the first vertex, knife
// down, feed around every edge back to the start, knife up.
func (g *Generator) writePiece(b *strings.Builder, piece model.Piece, n int) {
	outline := piece.PlacedOutline()
	if len(outline) < 3 {
		return
	}
	p := g.profile

	label := piece.Label
	if piece.Mirrored {
		label += " (mirrored)"
	}
	b.WriteString(g.comment(fmt.Sprintf("Piece %d: %s, %d vertices", n, label, len(outline))))

	start := outline[0]
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(start.X), g.format(start.Y)))
	b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(g.Settings.CutZ), g.format(g.Settings.PlungeRate)))
	if p.KnifeDown != "" {
		b.WriteString(p.KnifeDown + "\n")
	}

	for i := 1; i <= len(outline); i++ {
		pt := outline[i%len(outline)]
		if i == 1 {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove,
				g.format(pt.X), g.format(pt.Y), g.format(g.Settings.FeedRate)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(pt.X), g.format(pt.Y)))
	}

	if p.KnifeUp != "" {
		b.WriteString(p.KnifeUp + "\n")
	}
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
}

func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	return fmt.Sprintf(format, v)
}
