package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/flowpaths/pkg/domain"
	"gopkg.in/yaml.v3"
)

const (
	extractionFile = "extraction.json"
	actionsDir     = "actions"
)

// Store implements ports.ResultStore using the local filesystem.
// Each workflow gets its own directory holding the full extraction, with one
// actions/<action>.json and actions/<action>.yaml file per extracted action.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".flowpaths/results".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".flowpaths", "results")
	}
	return &Store{BasePath: basePath}
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

// dir maps a workflow to its result directory. Names that would resolve to
// the base path itself are rejected.
func (s *Store) dir(workflow string) (string, error) {
	name := unsafeName.Replace(workflow)
	if strings.Trim(name, ".") == "" {
		return "", fmt.Errorf("invalid workflow name %q", workflow)
	}
	return filepath.Join(s.BasePath, name), nil
}

// Save writes the extraction and its per-action files.
// Files of actions that disappeared since the previous save are removed.
func (s *Store) Save(ctx context.Context, ext *domain.Extraction) error {
	if ext.Workflow == "" {
		return fmt.Errorf("workflow name cannot be empty")
	}

	dir, err := s.dir(ext.Workflow)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear result directory: %w", err)
	}
	actions := filepath.Join(dir, actionsDir)
	if err := os.MkdirAll(actions, 0755); err != nil {
		return fmt.Errorf("failed to ensure result directory: %w", err)
	}

	for _, action := range ext.ActionNames() {
		paths := ext.Actions[action]
		name := unsafeName.Replace(action)

		data, err := json.MarshalIndent(paths, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal paths of %s: %w", action, err)
		}
		if err := writeAtomic(actions, name+".json", data); err != nil {
			return err
		}

		data, err = yaml.Marshal(paths)
		if err != nil {
			return fmt.Errorf("failed to marshal paths of %s: %w", action, err)
		}
		if err := writeAtomic(actions, name+".yaml", data); err != nil {
			return err
		}
	}

	// The full extraction goes last: List and Load only see completed results.
	data, err := json.MarshalIndent(ext, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal extraction: %w", err)
	}
	return writeAtomic(dir, extractionFile, data)
}

// writeAtomic writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func writeAtomic(dir, name string, data []byte) error {
	tmpFile, err := os.CreateTemp(dir, "tmp-*-"+name)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := filepath.Join(dir, name)
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing %s for overwrite: %w", name, err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", name, err)
	}
	return nil
}

// Load reads the full extraction of a workflow.
func (s *Store) Load(ctx context.Context, workflow string) (*domain.Extraction, error) {
	if workflow == "" {
		return nil, fmt.Errorf("workflow name cannot be empty")
	}

	dir, err := s.dir(workflow)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, extractionFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to read extraction: %w", err)
	}

	var ext domain.Extraction
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extraction: %w", err)
	}
	return &ext, nil
}

// LoadAction reads the paths of a single action from its JSON file.
func (s *Store) LoadAction(ctx context.Context, workflow, action string) (domain.ActionPaths, error) {
	var paths domain.ActionPaths
	dir, err := s.dir(workflow)
	if err != nil {
		return paths, err
	}
	data, err := os.ReadFile(filepath.Join(dir, actionsDir, unsafeName.Replace(action)+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return paths, domain.ErrResultNotFound
		}
		return paths, fmt.Errorf("failed to read action paths: %w", err)
	}
	if err := json.Unmarshal(data, &paths); err != nil {
		return paths, fmt.Errorf("failed to unmarshal action paths: %w", err)
	}
	return paths, nil
}

// Delete removes the workflow directory.
func (s *Store) Delete(ctx context.Context, workflow string) error {
	if workflow == "" {
		return fmt.Errorf("workflow name cannot be empty")
	}
	dir, err := s.dir(workflow)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete result directory: %w", err)
	}
	return nil
}

// List returns the workflows with a complete extraction on disk.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	var workflows []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.BasePath, entry.Name(), extractionFile)); err == nil {
			workflows = append(workflows, entry.Name())
		}
	}
	sort.Strings(workflows)
	return workflows, nil
}
