package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultSheetWidth         float64 `json:"default_sheet_width"`
	DefaultSheetHeight        float64 `json:"default_sheet_height"`
	DefaultShift              float64 `json:"default_shift"`
	DefaultAllowRotation      bool    `json:"default_allow_rotation"`
	DefaultRotationStep       int     `json:"default_rotation_step"`
	DefaultPreferLengthSaving bool    `json:"default_prefer_length_saving"`
	DefaultCutterProfile      string  `json:"default_cutter_profile"`

	// Application preferences
	HistoryPath    string   `json:"history_path"` // SQLite run history; empty = disabled
	LogLevel       string   `json:"log_level"`    // "debug", "info", "warn", "error"
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with defaults
// matching DefaultNestSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultNestSettings()
	return AppConfig{
		DefaultSheetWidth:         defaults.SheetWidth,
		DefaultSheetHeight:        defaults.SheetHeight,
		DefaultShift:              defaults.Shift,
		DefaultAllowRotation:      defaults.AllowRotation,
		DefaultRotationStep:       defaults.RotationStep,
		DefaultPreferLengthSaving: defaults.PreferLengthSaving,
		DefaultCutterProfile:      defaults.Cutter.Profile,
		LogLevel:                  "info",
		RecentProjects:            []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a NestSettings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *NestSettings) {
	s.SheetWidth = c.DefaultSheetWidth
	s.SheetHeight = c.DefaultSheetHeight
	s.Shift = c.DefaultShift
	s.AllowRotation = c.DefaultAllowRotation
	s.RotationStep = c.DefaultRotationStep
	s.PreferLengthSaving = c.DefaultPreferLengthSaving
	s.Cutter.Profile = c.DefaultCutterProfile
}

// AddRecentProject moves path to the front of the recent list, keeping at most limit entries.
func (c *AppConfig) AddRecentProject(path string, limit int) {
	list := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			list = append(list, p)
		}
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	c.RecentProjects = list
}
