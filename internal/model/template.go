package model

import (
	"time"

	"github.com/google/uuid"
)

// PanelTemplate is a reusable panel setup: settings, frame and keep-out holes,
// without boards or build results.
type PanelTemplate struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
	Holes       []Hole        `json:"holes"`
	Settings    PanelSettings `json:"settings"`
}

// NewPanelTemplate creates a template from the given project data.
func NewPanelTemplate(name, description string, holes []Hole, settings PanelSettings) PanelTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return PanelTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Holes:       copyHoles(holes),
		Settings:    settings,
	}
}

// ToProject creates a new, board-less Project from this template.
// Holes get fresh IDs so they are independent of the template.
func (t PanelTemplate) ToProject(projectName string) Project {
	holes := make([]Hole, len(t.Holes))
	for i, h := range t.Holes {
		holes[i] = h.Copy()
		holes[i].ID = uuid.New().String()[:8]
	}
	p := Project{
		Name:     projectName,
		Boards:   []Board{},
		Holes:    holes,
		Settings: t.Settings,
	}
	p.Attach()
	return p
}

// TemplateStore holds a collection of panel templates.
type TemplateStore struct {
	Templates []PanelTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []PanelTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t PanelTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *PanelTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns the template names in store order.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *PanelTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

func copyHoles(holes []Hole) []Hole {
	cp := make([]Hole, len(holes))
	for i, h := range holes {
		cp[i] = h.Copy()
	}
	return cp
}
