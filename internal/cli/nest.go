package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SeamNest/internal/engine"
	"github.com/piwi3910/SeamNest/internal/export"
	"github.com/piwi3910/SeamNest/internal/gcode"
	"github.com/piwi3910/SeamNest/internal/importer"
	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/piwi3910/SeamNest/internal/project"
	"github.com/piwi3910/SeamNest/internal/store"
)

type nestOptions struct {
	file       string
	config     string
	fabric     string
	cutter     string
	width      float64
	shift      float64
	step       int
	noRotation bool
	keepOrder  bool
	timeout    time.Duration
	compare    bool

	pdf      string
	dxf      string
	report   string
	preview  string
	labels   string
	gcodeDir string
	history  string
	save     string
}

func newNestCmd(a *app) *cobra.Command {
	o := &nestOptions{}
	cmd := &cobra.Command{
		Use:   "nest",
		Short: "Nest pattern pieces onto the fabric",
		Long: `Lay out every piece of the input file on the fabric roll and write
the requested outputs.

Examples:
  seamnest nest -f shirt.dxf --pdf shirt.pdf
  seamnest nest -f pieces.csv -c nest.yaml --gcode out/ --history runs.db
  seamnest nest -f pieces.xlsx --fabric "Denim 145" --shift 3 --compare`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNest(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "Pieces file (.dxf, .csv, .tsv, .xlsx, .json) [required]")
	f.StringVarP(&o.config, "config", "c", "", "Nesting settings file (.yaml, .yml or .json)")
	f.StringVar(&o.fabric, "fabric", "", "Fabric preset name from the inventory")
	f.StringVar(&o.cutter, "cutter", "", "Cutter preset name from the inventory")
	f.Float64Var(&o.width, "width", 0, "Fabric width in mm (overrides settings)")
	f.Float64Var(&o.shift, "shift", -1, "Gap between pieces in mm (overrides settings)")
	f.IntVar(&o.step, "rotation-step", 0, "Rotation step in degrees (overrides settings)")
	f.BoolVar(&o.noRotation, "no-rotation", false, "Disable rotation beyond edge alignment")
	f.BoolVar(&o.keepOrder, "keep-order", false, "Place pieces in file order instead of largest first")
	f.DurationVar(&o.timeout, "timeout", 0, "Stop nesting after this long (0 = no limit)")
	f.BoolVar(&o.compare, "compare", false, "Also run alternative settings and print a comparison")

	f.StringVar(&o.pdf, "pdf", "", "Write the marker PDF")
	f.StringVar(&o.dxf, "dxf", "", "Write the layout as DXF")
	f.StringVar(&o.report, "report", "", "Write an XLSX report")
	f.StringVar(&o.preview, "preview", "", "Write a preview image of the first sheet (png, svg, pdf)")
	f.StringVar(&o.labels, "labels", "", "Write QR piece labels as PDF")
	f.StringVar(&o.gcodeDir, "gcode", "", "Write one G-code program per sheet into this directory")
	f.StringVar(&o.history, "history", "", "Record the run in this SQLite database (default from app config)")
	f.StringVar(&o.save, "save", "", "Save pieces, settings and layout as a project file")
	cmd.MarkFlagRequired("file")

	return cmd
}

func (a *app) runNest(cmd *cobra.Command, o *nestOptions) error {
	out := cmd.OutOrStdout()

	settings, directional, err := a.resolveSettings(o)
	if err != nil {
		return err
	}

	pieces, err := a.loadPieces(o.file)
	if err != nil {
		return err
	}
	if directional {
		for i := range pieces {
			pieces[i].ForbidMirroring = true
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	a.logger.Info("nesting", "file", o.file, "pieces", len(pieces),
		"width", settings.SheetWidth, "shift", settings.Shift, "strategy", engine.StrategyFor(settings.PreferLengthSaving).Name())

	start := time.Now()
	opt := engine.New(settings, engine.WithLogger(a.logger))
	result, runErr := opt.Optimize(ctx, pieces)
	elapsed := time.Since(start)

	cancelled := errors.Is(runErr, engine.ErrCancelled)
	if runErr != nil && !cancelled {
		return fmt.Errorf("nesting failed: %w", runErr)
	}

	printSummary(out, result, elapsed)
	if cancelled {
		fmt.Fprintln(out, "  Nesting was cancelled; the layout above is partial.")
	}

	if err := a.recordHistory(out, o, settings, result, elapsed, cancelled); err != nil {
		return err
	}
	if cancelled {
		return runErr
	}

	if err := a.writeOutputs(out, o, settings, result); err != nil {
		return err
	}

	if o.save != "" {
		p := model.NewProject()
		p.Name = strings.TrimSuffix(filepath.Base(o.file), filepath.Ext(o.file))
		p.Pieces = pieces
		p.Settings = settings
		p.Result = &result
		if err := project.SaveProject(o.save, p); err != nil {
			return err
		}
		a.config.AddRecentProject(o.save, 10)
		if err := project.SaveAppConfig(a.appConfigPath, a.config); err != nil {
			a.logger.Warn("could not update recent projects", "error", err)
		}
		fmt.Fprintf(out, "  Project saved to %s\n", o.save)
	}

	if o.compare {
		results := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(settings), pieces,
			engine.WithLogger(newLogger(io.Discard, 0)))
		printComparison(out, results)
	}
	return nil
}

// resolveSettings layers the settings sources: defaults from the app
// config, the settings file, inventory presets, then command line flags.
// Each layer only overrides the fields it sets.
// It reports whether the chosen fabric is directional.
func (a *app) resolveSettings(o *nestOptions) (model.NestSettings, bool, error) {
	settings := model.DefaultNestSettings()
	a.config.ApplyToSettings(&settings)

	if o.config != "" {
		s, err := project.LoadNestSettingsOver(o.config, settings)
		if err != nil {
			return settings, false, err
		}
		settings = s
	}

	directional := false
	if o.fabric != "" || o.cutter != "" {
		inv, err := project.LoadInventory(a.inventoryPath)
		if err != nil {
			return settings, false, err
		}
		if o.fabric != "" {
			fp := inv.FindFabricByName(o.fabric)
			if fp == nil {
				return settings, false, fmt.Errorf("unknown fabric preset %q (known: %s)", o.fabric, strings.Join(inv.FabricNames(), ", "))
			}
			fp.ApplyToSettings(&settings)
			directional = fp.Directional
		}
		if o.cutter != "" {
			cp := inv.FindCutterByName(o.cutter)
			if cp == nil {
				return settings, false, fmt.Errorf("unknown cutter preset %q", o.cutter)
			}
			cp.ApplyToSettings(&settings)
		}
	}

	if o.width > 0 {
		settings.SheetWidth = o.width
	}
	if o.shift >= 0 {
		settings.Shift = o.shift
	}
	if o.step > 0 {
		settings.AllowRotation = true
		settings.RotationStep = o.step
	}
	if o.noRotation {
		settings.AllowRotation = false
	}
	if o.keepOrder {
		settings.KeepOrder = true
	}

	if err := settings.Validate(); err != nil {
		return settings, false, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, directional, nil
}

func (a *app) loadPieces(path string) ([]model.Piece, error) {
	res := importer.ImportFile(path)
	for _, w := range res.Warnings {
		a.logger.Warn("import", "file", path, "warning", w)
	}
	for _, e := range res.Errors {
		a.logger.Error("import", "file", path, "error", e)
	}
	if len(res.Pieces) == 0 {
		if len(res.Errors) > 0 {
			return nil, fmt.Errorf("no pieces imported from %s: %s", path, res.Errors[0])
		}
		return nil, fmt.Errorf("no pieces found in %s", path)
	}
	return res.Pieces, nil
}

func (a *app) writeOutputs(out io.Writer, o *nestOptions, settings model.NestSettings, result model.LayoutResult) error {
	if o.pdf != "" {
		if err := export.ExportPDF(o.pdf, result, settings); err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
		fmt.Fprintf(out, "  Marker PDF: %s\n", o.pdf)
	}
	if o.dxf != "" {
		if err := export.ExportDXF(o.dxf, result); err != nil {
			return fmt.Errorf("dxf export: %w", err)
		}
		fmt.Fprintf(out, "  Layout DXF: %s\n", o.dxf)
	}
	if o.report != "" {
		if err := export.ExportReport(o.report, result, settings); err != nil {
			return fmt.Errorf("report export: %w", err)
		}
		fmt.Fprintf(out, "  Report: %s\n", o.report)
	}
	if o.preview != "" {
		if len(result.Sheets) == 0 {
			a.logger.Warn("no sheets to preview")
		} else if err := export.ExportPreview(o.preview, result.Sheets[0]); err != nil {
			return fmt.Errorf("preview export: %w", err)
		} else {
			fmt.Fprintf(out, "  Preview: %s\n", o.preview)
		}
	}
	if o.labels != "" {
		if err := export.ExportLabels(o.labels, result); err != nil {
			return fmt.Errorf("label export: %w", err)
		}
		fmt.Fprintf(out, "  Labels: %s\n", o.labels)
	}
	if o.gcodeDir != "" {
		custom, err := project.LoadCustomProfiles(a.profilesPath)
		if err != nil {
			return err
		}
		gen := gcode.NewWithProfile(settings, project.ResolveProfile(settings.Cutter.Profile, custom))
		paths, err := gen.WriteFiles(o.gcodeDir, result)
		if err != nil {
			return fmt.Errorf("gcode export: %w", err)
		}
		for _, w := range gcode.FormatViolations(gen.CheckAll(result)) {
			a.logger.Warn(w)
		}
		fmt.Fprintf(out, "  G-code (%s): %d program(s) in %s\n", gen.Profile().Name, len(paths), o.gcodeDir)
		for i, code := range gen.Generate(result) {
			st := gen.Stats(code)
			if !st.Cuts {
				continue
			}
			fmt.Fprintf(out, "    %s: %.1f mm knife path, cuts (%.1f, %.1f)-(%.1f, %.1f)\n",
				filepath.Base(paths[i]), st.CutLength, st.Min.X, st.Min.Y, st.Max.X, st.Max.Y)
		}
	}
	return nil
}

func (a *app) recordHistory(out io.Writer, o *nestOptions, settings model.NestSettings, result model.LayoutResult, elapsed time.Duration, cancelled bool) error {
	path := o.history
	if path == "" {
		path = a.config.HistoryPath
	}
	if path == "" {
		return nil
	}

	db, err := store.NewDB(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer db.Close()

	status := store.StatusCompleted
	if cancelled {
		status = store.StatusCancelled
	}
	run, err := store.NewRun(o.file, settings, result, elapsed, status)
	if err != nil {
		return err
	}
	// The nesting context may already be cancelled here.
	id, err := (&store.RunRepo{}).Save(context.Background(), db, run)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	fmt.Fprintf(out, "  Run recorded as %s\n", id)
	return nil
}

func printSummary(out io.Writer, result model.LayoutResult, elapsed time.Duration) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "NESTING RESULT:")
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Sheets:\t%d\n", len(result.Sheets))
	fmt.Fprintf(w, "  Placed pieces:\t%d\n", result.PlacedCount())
	fmt.Fprintf(w, "  Unplaced pieces:\t%d\n", len(result.Unplaced))
	fmt.Fprintf(w, "  Fabric used:\t%.1f mm\n", result.TotalLength())
	fmt.Fprintf(w, "  Efficiency:\t%.1f%%\n", result.TotalEfficiency())
	fmt.Fprintf(w, "  Time:\t%s\n", elapsed.Round(time.Millisecond))
	w.Flush()

	if len(result.Sheets) > 0 {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Sheet\tPieces\tLength (mm)\tEfficiency\n")
		for _, s := range result.Sheets {
			fmt.Fprintf(w, "  %d\t%d\t%.1f\t%.1f%%\n", s.Index+1, len(s.Pieces), s.UsedLength, s.Efficiency())
		}
		w.Flush()
	}

	if len(result.Unplaced) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Unplaced:")
		for _, u := range result.Unplaced {
			fmt.Fprintf(out, "    %s: %s\n", u.Piece.Label, u.Reason)
		}
	}
	fmt.Fprintln(out)
}

func printComparison(out io.Writer, results []engine.ComparisonResult) {
	fmt.Fprintln(out, "SCENARIO COMPARISON:")
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  #\tScenario\tLength (mm)\tSheets\tEfficiency\tUnplaced\n")
	for i, r := range results {
		fmt.Fprintf(w, "  %d\t%s\t%.1f\t%d\t%.1f%%\t%d\n",
			i+1, r.Scenario.Name, r.TotalLength, r.SheetsUsed, r.Efficiency, r.UnplacedCount)
	}
	w.Flush()
	fmt.Fprintln(out)
}
