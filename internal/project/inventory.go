package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/PanelCut/internal/model"
)

// InventoryPath returns the path of the inventory file in dir.
func InventoryPath(dir string) string {
	return filepath.Join(dir, "inventory.json")
}

// SaveInventory writes the inventory to the specified JSON file.
func SaveInventory(path string, inv model.Inventory) error {
	return writeJSON(path, inv)
}

// LoadInventory reads the inventory from the specified JSON file.
// If the file does not exist, it returns the default inventory and saves it.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultInventory()
			return inv, SaveInventory(path, inv)
		}
		return model.Inventory{}, err
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

// ImportInventory merges the tools and frame presets of an inventory file
// into existing. Entries whose ID is already present are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	toolIDs := make(map[string]bool, len(existing.Tools))
	for _, t := range existing.Tools {
		toolIDs[t.ID] = true
	}
	for _, t := range imported.Tools {
		if !toolIDs[t.ID] {
			existing.Tools = append(existing.Tools, t)
			toolIDs[t.ID] = true
		}
	}

	frameIDs := make(map[string]bool, len(existing.Frames))
	for _, f := range existing.Frames {
		frameIDs[f.ID] = true
	}
	for _, f := range imported.Frames {
		if !frameIDs[f.ID] {
			existing.Frames = append(existing.Frames, f)
			frameIDs[f.ID] = true
		}
	}

	return existing, nil
}
