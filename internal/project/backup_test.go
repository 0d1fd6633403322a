package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PanelCut/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultToolDiameter = 1.0
	cfg.AddRecent("/tmp/panel.yaml")

	templates := model.NewTemplateStore()
	templates.Add(model.NewPanelTemplate("Eurocard", "", nil, model.DefaultSettings()))

	custom := model.NewCustomProfile("Shop router")
	custom.IsBuiltIn = true

	data := BackupData{
		Config:    cfg,
		Inventory: model.DefaultInventory(),
		Templates: templates,
		Profiles:  []model.GCodeProfile{custom},
	}
	if err := ExportAllData(path, data); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if backup.Config.DefaultToolDiameter != 1.0 {
		t.Errorf("expected DefaultToolDiameter=1.0, got %f", backup.Config.DefaultToolDiameter)
	}
	if len(backup.Config.RecentProjects) != 1 {
		t.Errorf("expected 1 recent project, got %d", len(backup.Config.RecentProjects))
	}
	if len(backup.Inventory.Frames) != len(data.Inventory.Frames) {
		t.Errorf("expected %d frames, got %d", len(data.Inventory.Frames), len(backup.Inventory.Frames))
	}
	if len(backup.Templates.Templates) != 1 {
		t.Errorf("expected 1 template, got %d", len(backup.Templates.Templates))
	}
	if len(backup.Profiles) != 1 || backup.Profiles[0].IsBuiltIn {
		t.Errorf("expected one custom profile not marked built-in, got %+v", backup.Profiles)
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	_, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noversion.json")
	data := []byte(`{"config":{"default_spacing":2}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for missing version")
	}
}

func TestImportAllDataNilSlices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")
	data := []byte(`{"version":"1.0.0","created_at":"2025-01-01T00:00:00Z","config":{"recent_projects":null}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Config.RecentProjects == nil {
		t.Error("RecentProjects should not be nil after import")
	}
	if backup.Templates.Templates == nil {
		t.Error("Templates should not be nil after import")
	}
}

func TestRestoreAllData(t *testing.T) {
	dir := t.TempDir()
	cfg := model.DefaultAppConfig()
	cfg.DefaultSpacing = 4
	backup := BackupData{
		Config:    cfg,
		Inventory: model.DefaultInventory(),
		Templates: model.NewTemplateStore(),
	}

	if err := RestoreAllData(dir, backup); err != nil {
		t.Fatalf("RestoreAllData failed: %v", err)
	}

	loaded, err := LoadAppConfig(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DefaultSpacing != 4 {
		t.Errorf("expected restored spacing 4, got %f", loaded.DefaultSpacing)
	}
	for _, name := range []string{"inventory.json", "templates.json", "profiles.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
}
