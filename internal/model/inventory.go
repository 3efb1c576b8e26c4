package model

import "github.com/google/uuid"

// FabricPreset represents a reusable fabric roll definition.
type FabricPreset struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Width         float64 `json:"width"`       // Usable roll width in mm
	RollLength    float64 `json:"roll_length"` // Length of one roll in mm
	Material      string  `json:"material"`
	Directional   bool    `json:"directional"`     // Print or nap forbids mirroring
	PricePerMetre float64 `json:"price_per_metre"` // 0 = unknown
}

// NewFabricPreset creates a new FabricPreset with a generated ID.
func NewFabricPreset(name string, width, rollLength float64, material string, pricePerMetre float64) FabricPreset {
	return FabricPreset{
		ID:            uuid.New().String()[:8],
		Name:          name,
		Width:         width,
		RollLength:    rollLength,
		Material:      material,
		PricePerMetre: pricePerMetre,
	}
}

// ApplyToSettings copies this fabric's sheet dimensions into the given NestSettings.
func (fp FabricPreset) ApplyToSettings(s *NestSettings) {
	s.FabricName = fp.Name
	s.SheetWidth = fp.Width
	s.SheetHeight = fp.RollLength
}

// CutterPreset represents a reusable cutter configuration.
type CutterPreset struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Profile    string  `json:"profile"`
	FeedRate   float64 `json:"feed_rate"`
	PlungeRate float64 `json:"plunge_rate"`
	SafeZ      float64 `json:"safe_z"`
	CutZ       float64 `json:"cut_z"`
}

// NewCutterPreset creates a new CutterPreset with a generated ID.
func NewCutterPreset(name, profile string, feedRate, plungeRate, safeZ, cutZ float64) CutterPreset {
	return CutterPreset{
		ID:         uuid.New().String()[:8],
		Name:       name,
		Profile:    profile,
		FeedRate:   feedRate,
		PlungeRate: plungeRate,
		SafeZ:      safeZ,
		CutZ:       cutZ,
	}
}

// ApplyToSettings copies this cutter's parameters into the given NestSettings.
func (cp CutterPreset) ApplyToSettings(s *NestSettings) {
	s.Cutter = CutterSettings{
		Profile:    cp.Profile,
		FeedRate:   cp.FeedRate,
		PlungeRate: cp.PlungeRate,
		SafeZ:      cp.SafeZ,
		CutZ:       cp.CutZ,
	}
}

// Inventory holds the user's saved fabric and cutter presets.
type Inventory struct {
	Fabrics []FabricPreset `json:"fabrics"`
	Cutters []CutterPreset `json:"cutters"`
}

// DefaultInventory returns an inventory populated with common defaults.
func DefaultInventory() Inventory {
	return Inventory{
		Fabrics: []FabricPreset{
			NewFabricPreset("Cotton 150", 1500, 50000, "Cotton", 0),
			NewFabricPreset("Denim 145", 1450, 50000, "Denim", 0),
			NewFabricPreset("Jersey 180 tubular", 900, 30000, "Jersey", 0),
			NewFabricPreset("Silk 114", 1140, 25000, "Silk", 0),
			NewFabricPreset("Pattern paper 91", 910, 50000, "Paper", 0),
		},
		Cutters: []CutterPreset{
			NewCutterPreset("Drag knife", "Grbl", 12000, 3000, 5.0, -1.0),
			NewCutterPreset("Tangential knife", "Tangential", 20000, 5000, 10.0, -2.0),
		},
	}
}

// FindFabricByID returns a pointer to the fabric with the given ID, or nil.
func (inv *Inventory) FindFabricByID(id string) *FabricPreset {
	for i := range inv.Fabrics {
		if inv.Fabrics[i].ID == id {
			return &inv.Fabrics[i]
		}
	}
	return nil
}

// FindFabricByName returns a pointer to the first fabric with the given name, or nil.
func (inv *Inventory) FindFabricByName(name string) *FabricPreset {
	for i := range inv.Fabrics {
		if inv.Fabrics[i].Name == name {
			return &inv.Fabrics[i]
		}
	}
	return nil
}

// FindCutterByName returns a pointer to the first cutter with the given name, or nil.
func (inv *Inventory) FindCutterByName(name string) *CutterPreset {
	for i := range inv.Cutters {
		if inv.Cutters[i].Name == name {
			return &inv.Cutters[i]
		}
	}
	return nil
}

// FabricNames returns the fabric preset names.
func (inv *Inventory) FabricNames() []string {
	names := make([]string, len(inv.Fabrics))
	for i, f := range inv.Fabrics {
		names[i] = f.Name
	}
	return names
}
