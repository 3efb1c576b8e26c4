package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/SeamNest/internal/model"
)

// DefaultInventoryPath returns the default file path for the inventory file.
// This is located at ~/.seamnest/inventory.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "inventory.json")
}

// SaveInventory writes the inventory to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveInventory(path string, inv model.Inventory) error {
	if err := writeJSON(path, inv); err != nil {
		return fmt.Errorf("failed to save inventory: %w", err)
	}
	return nil
}

// LoadInventory reads the inventory from the specified JSON file.
// If the file does not exist, it returns the default inventory and saves it.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultInventory()
			if saveErr := SaveInventory(path, inv); saveErr != nil {
				return inv, saveErr
			}
			return inv, nil
		}
		return model.Inventory{}, fmt.Errorf("failed to read inventory: %w", err)
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, fmt.Errorf("failed to parse inventory %s: %w", path, err)
	}
	return inv, nil
}

// ImportInventory imports an inventory from a user-specified JSON file,
// merging it with the existing inventory. Duplicate IDs are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, fmt.Errorf("failed to read inventory: %w", err)
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, fmt.Errorf("failed to parse inventory %s: %w", path, err)
	}

	return MergeInventory(existing, imported), nil
}

// MergeInventory appends the presets of imported whose IDs are not yet in
// existing.
func MergeInventory(existing, imported model.Inventory) model.Inventory {
	fabricIDs := make(map[string]bool, len(existing.Fabrics))
	for _, f := range existing.Fabrics {
		fabricIDs[f.ID] = true
	}
	cutterIDs := make(map[string]bool, len(existing.Cutters))
	for _, c := range existing.Cutters {
		cutterIDs[c.ID] = true
	}

	for _, f := range imported.Fabrics {
		if !fabricIDs[f.ID] {
			existing.Fabrics = append(existing.Fabrics, f)
			fabricIDs[f.ID] = true
		}
	}
	for _, c := range imported.Cutters {
		if !cutterIDs[c.ID] {
			existing.Cutters = append(existing.Cutters, c)
			cutterIDs[c.ID] = true
		}
	}
	return existing
}
