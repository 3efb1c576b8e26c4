package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SeamNest/internal/model"
)

func testProfile(name string) model.CutterProfile {
	return model.CutterProfile{
		Name:          name,
		Description:   "Oscillating knife table",
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		KnifeDown:     "M8",
		KnifeUp:       "M9",
		HomeXY:        "G28 X0 Y0",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "M30"},
		CommentPrefix: ";",
		DecimalPlaces: 2,
	}
}

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")

	profiles := []model.CutterProfile{testProfile("Oscillating"), testProfile("Laser")}
	profiles[1].KnifeDown = "M62"

	if err := SaveCustomProfiles(path, profiles); err != nil {
		t.Fatalf("SaveCustomProfiles: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("profiles file was not created")
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}
	if loaded[0].Name != "Oscillating" || loaded[1].Name != "Laser" {
		t.Errorf("unexpected names %s, %s", loaded[0].Name, loaded[1].Name)
	}
	if loaded[1].KnifeDown != "M62" {
		t.Errorf("expected KnifeDown M62, got %s", loaded[1].KnifeDown)
	}
	if len(loaded[0].EndCode) != 2 || loaded[0].EndCode[0] != "G0 Z[SafeZ]" {
		t.Errorf("unexpected end code %v", loaded[0].EndCode)
	}
}

func TestLoadCustomProfilesNonExistent(t *testing.T) {
	profiles, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("expected no error for nonexistent file, got: %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("expected 0 profiles for nonexistent file, got %d", len(profiles))
	}
}

func TestLoadCustomProfilesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("[{bad"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestExportAndImportProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "share", "oscillating.json")

	if err := ExportProfile(path, testProfile("Oscillating")); err != nil {
		t.Fatalf("ExportProfile: %v", err)
	}
	p, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile: %v", err)
	}
	if p.Name != "Oscillating" || p.KnifeUp != "M9" || p.DecimalPlaces != 2 {
		t.Errorf("profile did not round trip: %+v", p)
	}
}

func TestImportProfileNoName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noname.json")
	if err := os.WriteFile(path, []byte(`{"units":"mm"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(path); err == nil {
		t.Fatal("expected error for profile without a name")
	}
}

func TestResolveProfile(t *testing.T) {
	custom := []model.CutterProfile{testProfile("Oscillating"), testProfile("Grbl")}
	custom[1].DecimalPlaces = 1

	if got := ResolveProfile("Oscillating", custom); got.KnifeDown != "M8" {
		t.Errorf("expected custom profile, got %+v", got)
	}
	if got := ResolveProfile("Grbl", custom); got.DecimalPlaces != 1 {
		t.Error("expected custom profile to shadow the built-in one")
	}
	if got := ResolveProfile("Tangential", custom); got.KnifeDown != "M3" {
		t.Errorf("expected built-in Tangential profile, got %+v", got)
	}
	if got := ResolveProfile("Unknown", nil); got.Name != "Generic" {
		t.Errorf("expected Generic fallback, got %s", got.Name)
	}
}
