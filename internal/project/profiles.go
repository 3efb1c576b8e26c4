package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/SeamNest/internal/model"
)

// DefaultProfilesPath returns the default file path for custom cutter profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom cutter profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.CutterProfile) error {
	if err := writeJSON(path, profiles); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	return nil
}

// LoadCustomProfiles loads custom cutter profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.CutterProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.CutterProfile{}, nil
		}
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var profiles []model.CutterProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles %s: %w", path, err)
	}
	return profiles, nil
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile model.CutterProfile) error {
	return writeJSON(path, profile)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.CutterProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.CutterProfile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile model.CutterProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.CutterProfile{}, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if profile.Name == "" {
		return model.CutterProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}

// ResolveProfile returns the custom profile with the given name if one
// exists, otherwise the built-in profile of that name (Generic when unknown).
func ResolveProfile(name string, custom []model.CutterProfile) model.CutterProfile {
	for _, p := range custom {
		if p.Name == name {
			return p
		}
	}
	return model.GetCutterProfile(name)
}
