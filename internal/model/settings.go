package model

import (
	"errors"
	"fmt"
)

// NestSettings holds nesting and cutter configuration.
type NestSettings struct {
	// Sheet (fabric) settings
	FabricName  string  `json:"fabric_name" yaml:"fabric_name"`
	SheetWidth  float64 `json:"sheet_width" yaml:"sheet_width"`   // Fabric width in mm
	SheetHeight float64 `json:"sheet_height" yaml:"sheet_height"` // Roll length available per sheet in mm
	Shift       float64 `json:"shift" yaml:"shift"`               // Minimum gap between pieces in mm

	// Search settings
	AllowRotation      bool `json:"allow_rotation" yaml:"allow_rotation"`
	RotationStep       int  `json:"rotation_step" yaml:"rotation_step"`               // Degrees; divisor of 360 in [1,180]
	PreferLengthSaving bool `json:"prefer_length_saving" yaml:"prefer_length_saving"` // Rank by used length before bounding area
	KeepOrder          bool `json:"keep_order" yaml:"keep_order"`                     // Place pieces in input order instead of by area
	MaxSheets          int  `json:"max_sheets" yaml:"max_sheets"`                     // 0 = unlimited

	// Concurrency
	Workers        int `json:"workers" yaml:"workers"`                   // 0 = one per CPU
	PollIntervalMS int `json:"poll_interval_ms" yaml:"poll_interval_ms"` // Cancellation poll granularity
	IdleExpiryMS   int `json:"idle_expiry_ms" yaml:"idle_expiry_ms"`     // Idle worker lifetime

	// Cutter output
	Cutter CutterSettings `json:"cutter" yaml:"cutter"`
}

// CutterSettings configures the knife cutter G-code output.
type CutterSettings struct {
	Profile    string  `json:"profile" yaml:"profile"`         // Name of the cutter profile to use
	FeedRate   float64 `json:"feed_rate" yaml:"feed_rate"`     // Cutting feed rate mm/min
	PlungeRate float64 `json:"plunge_rate" yaml:"plunge_rate"` // Knife-down feed rate mm/min
	SafeZ      float64 `json:"safe_z" yaml:"safe_z"`           // Travel height mm
	CutZ       float64 `json:"cut_z" yaml:"cut_z"`             // Knife depth (negative = below table surface) mm
}

// Policy returns the global rotation policy described by the settings.
func (s NestSettings) Policy() RotationPolicy {
	return NewRotationPolicy(s.AllowRotation, s.RotationStep)
}

// Validate checks the settings for values the packer cannot work with.
func (s NestSettings) Validate() error {
	var errs []error
	if s.SheetWidth <= 0 {
		errs = append(errs, fmt.Errorf("sheet_width must be positive, got %g", s.SheetWidth))
	}
	if s.SheetHeight <= 0 {
		errs = append(errs, fmt.Errorf("sheet_height must be positive, got %g", s.SheetHeight))
	}
	if s.Shift < 0 {
		errs = append(errs, fmt.Errorf("shift must not be negative, got %g", s.Shift))
	}
	if s.AllowRotation && !ValidRotationStep(s.RotationStep) {
		errs = append(errs, fmt.Errorf("rotation_step must divide 360 and lie in [1,180], got %d", s.RotationStep))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", s.Workers))
	}
	if s.MaxSheets < 0 {
		errs = append(errs, fmt.Errorf("max_sheets must not be negative, got %d", s.MaxSheets))
	}
	return errors.Join(errs...)
}

func DefaultNestSettings() NestSettings {
	return NestSettings{
		FabricName:         "Cotton 150",
		SheetWidth:         1500.0,
		SheetHeight:        10000.0,
		Shift:              0,
		AllowRotation:      true,
		RotationStep:       180,
		PreferLengthSaving: true,
		KeepOrder:          false,
		MaxSheets:          0,
		Workers:            0,
		PollIntervalMS:     100,
		IdleExpiryMS:       1000,
		Cutter: CutterSettings{
			Profile:    "Generic",
			FeedRate:   12000.0,
			PlungeRate: 3000.0,
			SafeZ:      5.0,
			CutZ:       -1.0,
		},
	}
}

// CutterProfile defines a post-processor configuration for a knife cutter controller.
type CutterProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"` // "mm" or "inches"

	StartCode []string `json:"start_code"` // Commands at start of file
	KnifeDown string   `json:"knife_down"` // Extra command after plunging (e.g. tangential knife enable)
	KnifeUp   string   `json:"knife_up"`   // Extra command after retracting
	HomeXY    string   `json:"home_xy"`

	RapidMove string   `json:"rapid_move"`
	FeedMove  string   `json:"feed_move"`
	EndCode   []string `json:"end_code"` // Commands at end of file; [SafeZ] is substituted

	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"`
	DecimalPlaces int    `json:"decimal_places"`
}

// Built-in cutter profiles
var CutterProfiles = []CutterProfile{
	{
		Name:          "Grbl",
		Description:   "Grbl based drag-knife cutter",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		HomeXY:        "$H",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Tangential",
		Description:   "Tangential knife cutter with solenoid control",
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		KnifeDown:     "M3",
		KnifeUp:       "M5",
		HomeXY:        "G28 X0 Y0",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard G-code",
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		HomeXY:        "G28 X0 Y0",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// GetCutterProfile returns a cutter profile by name, or the Generic profile if not found.
func GetCutterProfile(name string) CutterProfile {
	for _, p := range CutterProfiles {
		if p.Name == name {
			return p
		}
	}
	return CutterProfiles[len(CutterProfiles)-1]
}

// GetCutterProfileNames returns the names of the built-in profiles.
func GetCutterProfileNames() []string {
	names := make([]string, 0, len(CutterProfiles))
	for _, p := range CutterProfiles {
		names = append(names, p.Name)
	}
	return names
}
