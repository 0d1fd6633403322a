package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/piwi3910/PanelCut/internal/importer"
	"github.com/piwi3910/PanelCut/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for project files that are neither JSON
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported project format")

// Format is the encoding of a project file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatOf picks the encoding from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".panel":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Marshal encodes a project. The build result is never stored. YAML goes
// through the JSON encoding so both formats share the same field names.
func Marshal(proj model.Project, f Format) ([]byte, error) {
	proj.Result = nil
	data, err := json.MarshalIndent(proj, "", "  ")
	if err != nil || f == FormatJSON {
		return data, err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}

// Unmarshal decodes a project. Fields missing from the data keep the
// defaults of a new project.
func Unmarshal(data []byte, f Format) (model.Project, error) {
	if f == FormatYAML {
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return model.Project{}, fmt.Errorf("invalid YAML: %w", err)
		}
		var err error
		if data, err = json.Marshal(tree); err != nil {
			return model.Project{}, fmt.Errorf("invalid YAML: %w", err)
		}
	}
	proj := model.NewProject()
	if err := json.Unmarshal(data, &proj); err != nil {
		return model.Project{}, fmt.Errorf("invalid project: %w", err)
	}
	return proj, nil
}

// SaveProject writes the project to path, encoded by its extension.
func SaveProject(path string, proj model.Project) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Marshal(proj, f)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadResult is a loaded project with the problems found while loading it.
type LoadResult struct {
	Project  model.Project
	Warnings []string
}

// LoadProject reads a project file. Boards that name a DXF file but carry
// no outlines are loaded from that file, relative to the project. Boards
// without an ID get one. Annotation problems end up in each board's Errors.
func LoadProject(path string) (LoadResult, error) {
	f, err := FormatOf(path)
	if err != nil {
		return LoadResult{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{}, err
	}
	proj, err := Unmarshal(data, f)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%s: %w", path, err)
	}

	res := LoadResult{}
	dir := filepath.Dir(path)
	boards := proj.Boards[:0]
	for _, b := range proj.Boards {
		if len(b.Outlines) == 0 {
			loaded, warnings, err := loadBoardFile(dir, b)
			res.Warnings = append(res.Warnings, warnings...)
			if err != nil {
				res.Warnings = append(res.Warnings, err.Error())
				continue
			}
			b = loaded
		}
		if b.ID == "" {
			b.ID = newID()
		}
		if b.Tabs == nil {
			b.Tabs = []model.Tab{}
		}
		b.Errors = nil
		b.ValidateAnnotations()
		boards = append(boards, b)
	}
	proj.Boards = boards
	for i := range proj.Holes {
		if proj.Holes[i].ID == "" {
			proj.Holes[i].ID = newID()
		}
	}
	proj.Attach()
	res.Project = proj
	return res, nil
}

func newID() string { return uuid.New().String()[:8] }

// loadBoardFile fills the outlines of b from its DXF file, keeping the
// placement and annotations stored in the project.
func loadBoardFile(dir string, b model.Board) (model.Board, []string, error) {
	if b.File == "" {
		return b, nil, fmt.Errorf("board %q has no outline and no file", b.Ident)
	}
	file := b.File
	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	r := importer.ImportDXF(file)
	if len(r.Boards) == 0 {
		return b, r.Warnings, fmt.Errorf("%s: %s", b.File, strings.Join(r.Errors, "; "))
	}
	b.Outlines = r.Boards[0].Outlines
	if b.Ident == "" {
		b.Ident = r.Boards[0].Ident
	}
	return b, r.Warnings, nil
}
