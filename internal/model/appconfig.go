package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default panel settings applied to new projects
	DefaultSpacing       float64   `json:"default_spacing"`
	DefaultTabWidth      float64   `json:"default_tab_width"`
	DefaultMaxTabSpacing float64   `json:"default_max_tab_spacing"`
	DefaultCutMethod     CutMethod `json:"default_cut_method"`
	DefaultMBDiameter    float64   `json:"default_mb_diameter"`
	DefaultMBSpacing     float64   `json:"default_mb_spacing"`
	DefaultVCutLayer     string    `json:"default_vc_layer"`
	DefaultMillFillets   float64   `json:"default_mill_fillets"`
	DefaultToolDiameter  float64   `json:"default_tool_diameter"`
	DefaultGCodeProfile  string    `json:"default_gcode_profile"`

	// Application preferences
	RecentProjects []string `json:"recent_projects"`
	MaxRecent      int      `json:"max_recent"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultSpacing:       defaults.Spacing,
		DefaultTabWidth:      defaults.TabWidth,
		DefaultMaxTabSpacing: defaults.MaxTabSpacing,
		DefaultCutMethod:     defaults.CutMethod,
		DefaultMBDiameter:    defaults.MouseBiteDiameter,
		DefaultMBSpacing:     defaults.MouseBiteSpacing,
		DefaultVCutLayer:     defaults.VCutLayer,
		DefaultMillFillets:   defaults.MillFillets,
		DefaultToolDiameter:  defaults.Machine.ToolDiameter,
		DefaultGCodeProfile:  defaults.Machine.GCodeProfile,
		RecentProjects:       []string{},
		MaxRecent:            10,
	}
}

// ApplyToSettings copies the default values from AppConfig into a PanelSettings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *PanelSettings) {
	s.Spacing = c.DefaultSpacing
	s.TabWidth = c.DefaultTabWidth
	s.MaxTabSpacing = c.DefaultMaxTabSpacing
	if c.DefaultCutMethod.Valid() {
		s.CutMethod = c.DefaultCutMethod
	}
	s.MouseBiteDiameter = c.DefaultMBDiameter
	s.MouseBiteSpacing = c.DefaultMBSpacing
	if c.DefaultVCutLayer != "" {
		s.VCutLayer = c.DefaultVCutLayer
	}
	s.MillFillets = c.DefaultMillFillets
	s.Machine.ToolDiameter = c.DefaultToolDiameter
	s.Machine.GCodeProfile = c.DefaultGCodeProfile
}

// AddRecent moves path to the front of the recent projects list.
func (c *AppConfig) AddRecent(path string) {
	out := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			out = append(out, p)
		}
	}
	max := c.MaxRecent
	if max <= 0 {
		max = 10
	}
	if len(out) > max {
		out = out[:max]
	}
	c.RecentProjects = out
}
