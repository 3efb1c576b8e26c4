package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/SeamNest/internal/model"
)

const backupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version        string                `json:"version"`
	CreatedAt      string                `json:"created_at"`
	Config         model.AppConfig       `json:"config"`
	Inventory      model.Inventory       `json:"inventory"`
	CutterProfiles []model.CutterProfile `json:"cutter_profiles,omitempty"`
}

// ExportAllData writes config, inventory and custom cutter profiles to a
// single JSON file at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, inv model.Inventory, profiles []model.CutterProfile) error {
	backup := BackupData{
		Version:        backupVersion,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		Config:         config,
		Inventory:      inv,
		CutterProfiles: profiles,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported config.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	// Ensure RecentProjects is never nil
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	return backup, nil
}
