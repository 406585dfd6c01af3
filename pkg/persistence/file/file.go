// Package file provides a file-system persistence driver, used for local
// development and tests.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/convy/flow/pkg/persistence"
)

// Persistence implements persistence.Persistence on top of a directory tree
// of JSON documents: workflows/, executions/ and pending_inputs/.
type Persistence struct {
	root          string
	mu            sync.RWMutex
	workflows     *WorkflowRepository
	executions    *ExecutionRepository
	pendingInputs *PendingInputRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.workflows = &WorkflowRepository{store: p}
	p.executions = &ExecutionRepository{store: p}
	p.pendingInputs = &PendingInputRepository{store: p}

	return p
}

func (p *Persistence) Workflows() persistence.WorkflowRepository {
	return p.workflows
}

func (p *Persistence) Executions() persistence.ExecutionRepository {
	return p.executions
}

func (p *Persistence) PendingInputs() persistence.PendingInputRepository {
	return p.pendingInputs
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close is a no-op for the file driver.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) dir(kind string) (string, error) {
	path := filepath.Join(p.root, kind)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	return path, nil
}

func (p *Persistence) writeJSON(kind, name string, value any) error {
	dir, err := p.dir(kind)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", kind, name, err)
	}

	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", kind, name, err)
	}

	return nil
}

func (p *Persistence) readJSON(kind, name string, into any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(p.root, kind, name+".json"))
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read %s/%s: %w", kind, name, err)
	}

	if err := json.Unmarshal(data, into); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s/%s: %w", kind, name, err)
	}

	return true, nil
}

func (p *Persistence) remove(kind, name string) error {
	err := os.Remove(filepath.Join(p.root, kind, name+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s/%s: %w", kind, name, err)
	}

	return nil
}

// readAll decodes every JSON document under a kind directory into values
// produced by the supplied constructor, invoking visit per document.
func readAll[T any](p *Persistence, kind string, visit func(*T)) error {
	dir := filepath.Join(p.root, kind)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to list %s: %w", kind, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read %s/%s: %w", kind, entry.Name(), err)
		}

		var value T
		if err := json.Unmarshal(data, &value); err != nil {
			return fmt.Errorf("failed to unmarshal %s/%s: %w", kind, entry.Name(), err)
		}

		visit(&value)
	}

	return nil
}
