package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/PanelCut/internal/model"
)

// TemplatesPath returns the path of the templates store in dir.
func TemplatesPath(dir string) string {
	return filepath.Join(dir, "templates.json")
}

// SaveTemplates writes the template store to a JSON file.
func SaveTemplates(path string, store model.TemplateStore) error {
	return writeJSON(path, store)
}

// LoadTemplates reads a template store from a JSON file.
// If the file does not exist, returns an empty store.
func LoadTemplates(path string) (model.TemplateStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewTemplateStore(), nil
		}
		return model.TemplateStore{}, err
	}
	var store model.TemplateStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.TemplateStore{}, err
	}
	if store.Templates == nil {
		store.Templates = []model.PanelTemplate{}
	}
	return store, nil
}

// SaveAsTemplate stores the project's holes and settings as a named
// template in the store at path.
func SaveAsTemplate(path string, proj model.Project, name, description string) (model.PanelTemplate, error) {
	store, err := LoadTemplates(path)
	if err != nil {
		return model.PanelTemplate{}, err
	}
	tmpl := model.NewPanelTemplate(name, description, proj.Holes, proj.Settings)
	if old := store.FindByName(name); old != nil {
		store.Remove(old.ID)
	}
	store.Add(tmpl)
	return tmpl, SaveTemplates(path, store)
}
