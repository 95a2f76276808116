// Package experiment manages run identity and the on-disk layout of one
// pipeline execution: a run directory plus a metadata file describing it.
package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Info identifies one run of a pipeline within a grid search.
type Info struct {
	GridSearchID string `yaml:"grid_search_id"`
	RunID        string `yaml:"run_id"`
	ModelName    string `yaml:"model_name"`
	RunDir       string `yaml:"run_dir"`
	StartedAt    string `yaml:"started_at"`
}

const metadataFile = "metadata.yaml"

// Create builds the run directory under logDir and writes its metadata
// file. An empty runID gets a fresh UUID; an empty gridSearchID defaults
// to the current date.
func Create(logDir, gridSearchID, runID, modelName string) (*Info, error) {
	now := time.Now().UTC()
	if gridSearchID == "" {
		gridSearchID = now.Format("2006-01-02")
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	runDir := filepath.Join(logDir, gridSearchID, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory %s: %w", runDir, err)
	}

	info := &Info{
		GridSearchID: gridSearchID,
		RunID:        runID,
		ModelName:    modelName,
		RunDir:       runDir,
		StartedAt:    now.Format(time.RFC3339),
	}
	if err := info.save(); err != nil {
		return nil, err
	}
	return info, nil
}

func (i *Info) save() error {
	data, err := yaml.Marshal(i)
	if err != nil {
		return fmt.Errorf("marshaling run metadata: %w", err)
	}
	path := filepath.Join(i.RunDir, metadataFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run metadata %s: %w", path, err)
	}
	return nil
}

// WriteResults serializes arbitrary result payloads as YAML into the run
// directory under the given file name.
func (i *Info) WriteResults(name string, payload any) error {
	data, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	path := filepath.Join(i.RunDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results %s: %w", path, err)
	}
	return nil
}
