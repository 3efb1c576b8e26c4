package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/SeamNest/internal/model"
)

// LoadNestSettings reads nesting settings from a YAML (.yaml, .yml) or JSON
// file. Fields missing from the file keep their DefaultNestSettings value.
// The result is validated before it is returned.
func LoadNestSettings(path string) (model.NestSettings, error) {
	return LoadNestSettingsOver(path, model.DefaultNestSettings())
}

// LoadNestSettingsOver is LoadNestSettings with base supplying the fields
// the file leaves out.
func LoadNestSettingsOver(path string, base model.NestSettings) (model.NestSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.NestSettings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	s := base
	if isYAML(path) {
		err = yaml.Unmarshal(data, &s)
	} else {
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return model.NestSettings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return model.NestSettings{}, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// SaveNestSettings writes settings as YAML or JSON depending on the extension.
func SaveNestSettings(path string, s model.NestSettings) error {
	if !isYAML(path) {
		return writeJSON(path, s)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
