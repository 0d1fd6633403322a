package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultSpacing != defaults.Spacing {
		t.Errorf("Spacing mismatch: config=%f settings=%f", cfg.DefaultSpacing, defaults.Spacing)
	}
	if cfg.DefaultTabWidth != defaults.TabWidth {
		t.Errorf("TabWidth mismatch: config=%f settings=%f", cfg.DefaultTabWidth, defaults.TabWidth)
	}
	if cfg.DefaultCutMethod != defaults.CutMethod {
		t.Errorf("CutMethod mismatch: config=%s settings=%s", cfg.DefaultCutMethod, defaults.CutMethod)
	}
	if cfg.DefaultGCodeProfile != defaults.Machine.GCodeProfile {
		t.Errorf("GCodeProfile mismatch: config=%s settings=%s", cfg.DefaultGCodeProfile, defaults.Machine.GCodeProfile)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultSpacing = 2.0
	cfg.DefaultCutMethod = CutMouseBites
	cfg.DefaultGCodeProfile = "Grbl"

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.Spacing != 2.0 {
		t.Errorf("expected Spacing=2.0, got %f", s.Spacing)
	}
	if s.CutMethod != CutMouseBites {
		t.Errorf("expected CutMethod=mb, got %s", s.CutMethod)
	}
	if s.Machine.GCodeProfile != "Grbl" {
		t.Errorf("expected GCodeProfile=Grbl, got %s", s.Machine.GCodeProfile)
	}
}

func TestApplyToSettingsIgnoresUnknownCutMethod(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultCutMethod = "laser"

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.CutMethod != CutVCutOrMB {
		t.Errorf("expected default cut method to survive, got %s", s.CutMethod)
	}
}

func TestAddRecent(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.MaxRecent = 2
	cfg.AddRecent("a.json")
	cfg.AddRecent("b.json")
	cfg.AddRecent("a.json")
	cfg.AddRecent("c.json")

	if len(cfg.RecentProjects) != 2 {
		t.Fatalf("expected 2 recent projects, got %d", len(cfg.RecentProjects))
	}
	if cfg.RecentProjects[0] != "c.json" || cfg.RecentProjects[1] != "a.json" {
		t.Errorf("unexpected order: %v", cfg.RecentProjects)
	}
}
