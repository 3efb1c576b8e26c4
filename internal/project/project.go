package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/SeamNest/internal/model"
)

// ProjectExt is the file extension used for saved projects.
const ProjectExt = ".seamnest"

// SaveProject writes the project (pieces, settings, last layout) as JSON.
func SaveProject(path string, p model.Project) error {
	if err := writeJSON(path, p); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// LoadProject reads a project file. Settings missing from the file keep
// their defaults and nil piece lists are normalised to empty slices.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project: %w", err)
	}
	p := model.NewProject()
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	if p.Pieces == nil {
		p.Pieces = []model.Piece{}
	}
	for i := range p.Pieces {
		if len(p.Pieces[i].Layout) == 0 {
			p.Pieces[i].Layout = model.ConvexHull(p.Pieces[i].Outline)
		}
		if p.Pieces[i].Transform.IsZero() {
			p.Pieces[i].Transform = model.Identity()
		}
	}
	return p, nil
}
