package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SeamNest/internal/project"
	"github.com/piwi3910/SeamNest/internal/store"
)

// testEnv isolates every config file of one CLI invocation in a temp dir.
type testEnv struct {
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{dir: t.TempDir()}
}

func (e *testEnv) path(name string) string { return filepath.Join(e.dir, name) }

func (e *testEnv) run(ctx context.Context, args ...string) (string, error) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--log-level", "error",
		"--app-config", e.path("config.json"),
		"--inventory", e.path("inventory.json"),
		"--profiles", e.path("profiles.json"),
	}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func (e *testEnv) writePieces(t *testing.T) string {
	t.Helper()
	path := e.path("pieces.csv")
	csv := "label,width,height,quantity\nPanel,100,100,2\nPocket,50,50,1\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := newTestEnv(t).run(context.Background(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "seamnest v")
}

func TestNest_WritesOutputsAndHistory(t *testing.T) {
	env := newTestEnv(t)
	pieces := env.writePieces(t)
	db := env.path("history.db")

	out, err := env.run(context.Background(), "nest",
		"-f", pieces,
		"--width", "300",
		"--shift", "0",
		"--pdf", env.path("marker.pdf"),
		"--dxf", env.path("layout.dxf"),
		"--report", env.path("report.xlsx"),
		"--preview", env.path("preview.png"),
		"--labels", env.path("labels.pdf"),
		"--gcode", env.path("nc"),
		"--history", db,
		"--save", env.path("shirt.seamnest"),
	)
	require.NoError(t, err, out)

	assert.Contains(t, out, "NESTING RESULT:")
	assert.Contains(t, out, "Run recorded as")
	for _, name := range []string{"marker.pdf", "layout.dxf", "report.xlsx", "preview.png", "labels.pdf", "nc/sheet_1.nc", "shirt.seamnest"} {
		assert.FileExists(t, env.path(name))
	}
	assert.Contains(t, out, "sheet_1.nc: ")
	assert.Contains(t, out, "mm knife path")

	conn, err := store.NewDB(db)
	require.NoError(t, err)
	defer conn.Close()
	runs, err := (&store.RunRepo{}).List(context.Background(), conn, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Placed)
	assert.Equal(t, 0, runs[0].Unplaced)
	assert.Equal(t, store.StatusCompleted, runs[0].Status)

	p, err := project.LoadProject(env.path("shirt.seamnest"))
	require.NoError(t, err)
	assert.Equal(t, "pieces", p.Name)
	require.NotNil(t, p.Result)
	assert.Equal(t, 3, p.Result.PlacedCount())

	cfg, err := project.LoadAppConfig(env.path("config.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{env.path("shirt.seamnest")}, cfg.RecentProjects)
}

func TestNest_CancelledContextRecordsPartialRun(t *testing.T) {
	env := newTestEnv(t)
	pieces := env.writePieces(t)
	db := env.path("history.db")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := env.run(ctx, "nest", "-f", pieces, "--width", "300", "--history", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting cancelled")
	assert.Contains(t, out, "cancelled")

	conn, err := store.NewDB(db)
	require.NoError(t, err)
	defer conn.Close()
	runs, err := (&store.RunRepo{}).List(context.Background(), conn, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusCancelled, runs[0].Status)
	assert.Equal(t, 3, runs[0].Unplaced)
}

func TestNest_Errors(t *testing.T) {
	env := newTestEnv(t)
	pieces := env.writePieces(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing file flag", []string{"nest"}, "required flag"},
		{"bad rotation step", []string{"nest", "-f", pieces, "--rotation-step", "7"}, "rotation_step"},
		{"unknown fabric", []string{"nest", "-f", pieces, "--fabric", "Tweed 999"}, "unknown fabric preset"},
		{"missing pieces file", []string{"nest", "-f", env.path("none.csv")}, "no pieces imported"},
		{"bad settings file", []string{"nest", "-f", pieces, "-c", env.path("none.yaml")}, "failed to read settings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(context.Background(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNest_FabricPresetAndCompare(t *testing.T) {
	env := newTestEnv(t)
	pieces := env.writePieces(t)

	out, err := env.run(context.Background(), "nest", "-f", pieces, "--fabric", "Jersey 180 tubular", "--compare")
	require.NoError(t, err, out)
	assert.Contains(t, out, "SCENARIO COMPARISON:")
	assert.Contains(t, out, "Current Settings")
	assert.FileExists(t, env.path("inventory.json"))
}

func TestNest_SettingsFile(t *testing.T) {
	env := newTestEnv(t)
	pieces := env.writePieces(t)
	cfg := env.path("nest.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("sheet_width: 120\nsheet_height: 150\nshift: 0\nmax_sheets: 1\n"), 0644))

	out, err := env.run(context.Background(), "nest", "-f", pieces, "-c", cfg)
	require.NoError(t, err, out)
	// Only one 100 mm panel fits on a single 120 x 150 sheet
	assert.Contains(t, out, "sheet limit reached")
}

func TestNest_SettingsFileKeepsAppConfigDefaults(t *testing.T) {
	env := newTestEnv(t)
	pieces := env.writePieces(t)
	// The app config narrows the sheet; the settings file never mentions it.
	require.NoError(t, os.WriteFile(env.path("config.json"),
		[]byte(`{"default_sheet_width": 120, "default_sheet_height": 150, "default_rotation_step": 180}`), 0644))
	cfg := env.path("nest.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("shift: 0\nmax_sheets: 1\n"), 0644))

	out, err := env.run(context.Background(), "nest", "-f", pieces, "-c", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "sheet limit reached")
}

func TestEstimate(t *testing.T) {
	env := newTestEnv(t)
	pieces := env.writePieces(t)

	out, err := env.run(context.Background(), "estimate", "-f", pieces, "--width", "1000", "--shift", "0", "--waste", "10", "--price", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "FABRIC ESTIMATE:")
	assert.Contains(t, out, "Recommended (+10%)")
	assert.Contains(t, out, "Estimated cost")
}

func TestHistoryListAndShow(t *testing.T) {
	env := newTestEnv(t)
	pieces := env.writePieces(t)
	db := env.path("history.db")

	out, err := env.run(context.Background(), "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")

	_, err = env.run(context.Background(), "nest", "-f", pieces, "--width", "300", "--history", db)
	require.NoError(t, err)

	out, err = env.run(context.Background(), "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "pieces.csv")
	assert.Contains(t, out, "completed")

	conn, err := store.NewDB(db)
	require.NoError(t, err)
	runs, err := (&store.RunRepo{}).List(context.Background(), conn, 1)
	conn.Close()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	out, err = env.run(context.Background(), "history", "show", runs[0].ID, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Panel #1")
	assert.Contains(t, out, "Pocket")

	_, err = env.run(context.Background(), "history", "show", "nope", "--db", db)
	require.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestPresets(t *testing.T) {
	env := newTestEnv(t)

	profile := env.path("osc.json")
	require.NoError(t, os.WriteFile(profile, []byte(`{"name":"Oscillating","rapid_move":"G0","feed_move":"G1","comment_prefix":";","decimal_places":2}`), 0644))
	out, err := env.run(context.Background(), "presets", "add-profile", profile)
	require.NoError(t, err)
	assert.Contains(t, out, `Profile "Oscillating" saved`)

	out, err = env.run(context.Background(), "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "Cotton 150")
	assert.Contains(t, out, "Drag knife")
	assert.Contains(t, out, "Generic")
	assert.Contains(t, out, "Oscillating (custom)")

	exported := env.path("grbl.json")
	_, err = env.run(context.Background(), "presets", "export-profile", "Grbl", exported)
	require.NoError(t, err)
	p, err := project.ImportProfile(exported)
	require.NoError(t, err)
	assert.Equal(t, "Grbl", p.Name)
}

func TestBackupRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	backup := env.path("backup.json")

	_, err := env.run(context.Background(), "backup", "export", backup)
	require.NoError(t, err)
	data, err := project.ImportAllData(backup)
	require.NoError(t, err)
	assert.NotEmpty(t, data.Inventory.Fabrics)

	other := newTestEnv(t)
	out, err := other.run(context.Background(), "backup", "import", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored backup")
	assert.FileExists(t, other.path("config.json"))

	inv, err := project.LoadInventory(other.path("inventory.json"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(inv.Fabrics), len(data.Inventory.Fabrics))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseLevel("loud")
	assert.Error(t, err)

	_, err = newTestEnv(t).run(context.Background(), "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := newTestEnv(t).run(context.Background(), "--help")
	require.NoError(t, err)
	for _, name := range []string{"nest", "estimate", "history", "presets", "backup", "version"} {
		assert.True(t, strings.Contains(out, name), "help should list %s", name)
	}
}
