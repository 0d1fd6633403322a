package model

import "github.com/google/uuid"

// ToolProfile represents a reusable router bit configuration.
type ToolProfile struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ToolDiameter float64 `json:"tool_diameter"`
	FeedRate     float64 `json:"feed_rate"`
	PlungeRate   float64 `json:"plunge_rate"`
	SpindleSpeed int     `json:"spindle_speed"`
	SafeZ        float64 `json:"safe_z"`
	CutDepth     float64 `json:"cut_depth"`
	PassDepth    float64 `json:"pass_depth"`
}

// NewToolProfile creates a new ToolProfile with a generated ID.
func NewToolProfile(name string, diameter, feedRate, plungeRate float64, spindleSpeed int, safeZ, cutDepth, passDepth float64) ToolProfile {
	return ToolProfile{
		ID:           uuid.New().String()[:8],
		Name:         name,
		ToolDiameter: diameter,
		FeedRate:     feedRate,
		PlungeRate:   plungeRate,
		SpindleSpeed: spindleSpeed,
		SafeZ:        safeZ,
		CutDepth:     cutDepth,
		PassDepth:    passDepth,
	}
}

// ApplyToSettings copies this tool profile's parameters into the given settings.
func (tp ToolProfile) ApplyToSettings(s *PanelSettings) {
	s.Machine.ToolDiameter = tp.ToolDiameter
	s.Machine.FeedRate = tp.FeedRate
	s.Machine.PlungeRate = tp.PlungeRate
	s.Machine.SpindleSpeed = tp.SpindleSpeed
	s.Machine.SafeZ = tp.SafeZ
	s.Machine.CutDepth = tp.CutDepth
	s.Machine.PassDepth = tp.PassDepth
	// Inside corners cannot be sharper than the bit
	s.MillFillets = tp.ToolDiameter / 2
}

// FramePreset is a reusable panel frame, typically a fab house standard size.
type FramePreset struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rail   float64 `json:"rail"` // Top and bottom rail thickness
	Fab    string  `json:"fab"`  // Manufacturer the size is meant for
	Tight  bool    `json:"tight"`
}

// NewFramePreset creates a new FramePreset with a generated ID.
func NewFramePreset(name string, width, height, rail float64, fab string) FramePreset {
	return FramePreset{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Width:  width,
		Height: height,
		Rail:   rail,
		Fab:    fab,
		Tight:  true,
	}
}

// ToFrame converts the preset into an enabled frame configuration.
func (fp FramePreset) ToFrame() FrameConfig {
	return FrameConfig{
		Enabled: true,
		Width:   fp.Width,
		Height:  fp.Height,
		Top:     fp.Rail,
		Bottom:  fp.Rail,
		Tight:   fp.Tight,
	}
}

// Inventory holds the user's saved tool profiles and frame presets.
type Inventory struct {
	Tools  []ToolProfile `json:"tools"`
	Frames []FramePreset `json:"frames"`
}

// DefaultInventory returns an inventory populated with common defaults.
func DefaultInventory() Inventory {
	return Inventory{
		Tools: []ToolProfile{
			NewToolProfile("2mm Corn Bit", 2.0, 600, 200, 24000, 5.0, 1.6, 0.8),
			NewToolProfile("1mm Corn Bit", 1.0, 300, 100, 30000, 5.0, 1.6, 0.4),
			NewToolProfile("0.8mm End Mill", 0.8, 250, 80, 30000, 5.0, 1.6, 0.3),
			NewToolProfile("1/16\" End Mill (1.5875mm)", 1.5875, 450, 150, 24000, 5.0, 1.6, 0.6),
		},
		Frames: []FramePreset{
			NewFramePreset("100x100 (prototype)", 100, 100, 5, "Generic"),
			NewFramePreset("100x150", 100, 150, 5, "Generic"),
			NewFramePreset("160x100 (Eurocard)", 160, 100, 5, "Generic"),
			NewFramePreset("250x200", 250, 200, 7, "Generic"),
			NewFramePreset("300x250 (assembly max)", 300, 250, 7, "Generic"),
		},
	}
}

// FindToolByID returns a pointer to the tool with the given ID, or nil.
func (inv *Inventory) FindToolByID(id string) *ToolProfile {
	for i := range inv.Tools {
		if inv.Tools[i].ID == id {
			return &inv.Tools[i]
		}
	}
	return nil
}

// FindFrameByID returns a pointer to the frame preset with the given ID, or nil.
func (inv *Inventory) FindFrameByID(id string) *FramePreset {
	for i := range inv.Frames {
		if inv.Frames[i].ID == id {
			return &inv.Frames[i]
		}
	}
	return nil
}

// ToolNames returns the tool profile names.
func (inv *Inventory) ToolNames() []string {
	names := make([]string, len(inv.Tools))
	for i, t := range inv.Tools {
		names[i] = t.Name
	}
	return names
}

// FrameNames returns the frame preset names.
func (inv *Inventory) FrameNames() []string {
	names := make([]string, len(inv.Frames))
	for i, f := range inv.Frames {
		names[i] = f.Name
	}
	return names
}

// FindToolByName returns a pointer to the first tool with the given name, or nil.
func (inv *Inventory) FindToolByName(name string) *ToolProfile {
	for i := range inv.Tools {
		if inv.Tools[i].Name == name {
			return &inv.Tools[i]
		}
	}
	return nil
}

// FindFrameByName returns a pointer to the first frame preset with the given name, or nil.
func (inv *Inventory) FindFrameByName(name string) *FramePreset {
	for i := range inv.Frames {
		if inv.Frames[i].Name == name {
			return &inv.Frames[i]
		}
	}
	return nil
}
