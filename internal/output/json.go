// Package output persists pipeline results: the JSON artifact files
// plus optional Postgres and Elasticsearch sinks.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"projectlens/internal/models"
)

// Default artifact file names
const (
	RawFile      = "apache_projects_raw.json"
	EnhancedFile = "apache_projects_enhanced.json"
)

// WriteJSON writes the project records to path as an indented JSON
// array, the primary artifact of a run
func WriteJSON(path string, projects []*models.Project) error {
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads project records written by a previous run
func ReadJSON(path string) ([]*models.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var projects []*models.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return projects, nil
}
