package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/PanelCut/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string               `json:"version"`
	CreatedAt string               `json:"created_at"`
	Config    model.AppConfig      `json:"config"`
	Inventory model.Inventory      `json:"inventory"`
	Templates model.TemplateStore  `json:"templates"`
	Profiles  []model.GCodeProfile `json:"profiles"`
}

// ExportAllData writes the config (with its recent projects), the inventory,
// the panel templates and the custom G-code profiles to one JSON file.
func ExportAllData(exportPath string, data BackupData) error {
	data.Version = BackupVersion
	data.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := writeJSON(exportPath, data); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying it.
func ImportAllData(importPath string) (BackupData, error) {
	raw, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(raw, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if backup.Templates.Templates == nil {
		backup.Templates.Templates = []model.PanelTemplate{}
	}
	for i := range backup.Profiles {
		backup.Profiles[i].IsBuiltIn = false
	}
	return backup, nil
}

// RestoreAllData writes the backup's parts to their files in dir, replacing
// what is there.
func RestoreAllData(dir string, backup BackupData) error {
	steps := []struct {
		name string
		save func() error
	}{
		{"config", func() error { return SaveAppConfig(ConfigPath(dir), backup.Config) }},
		{"inventory", func() error { return SaveInventory(InventoryPath(dir), backup.Inventory) }},
		{"templates", func() error { return SaveTemplates(TemplatesPath(dir), backup.Templates) }},
		{"profiles", func() error { return SaveCustomProfiles(ProfilesPath(dir), backup.Profiles) }},
	}
	for _, s := range steps {
		if err := s.save(); err != nil {
			return fmt.Errorf("failed to restore %s: %w", s.name, err)
		}
	}
	return nil
}
