package herd

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// RunID identifies one simulation run.
type RunID string

// RunManager owns multiple concurrent runs, each fully isolated from the
// others. Drivers address runs by the ID assigned at creation.
type RunManager struct {
	mu     sync.RWMutex
	runs   map[RunID]*Grid
	logger Logger
}

// NewRunManager creates an empty run manager.
func NewRunManager() *RunManager {
	return NewRunManagerWithLogger(NewNoOpLogger())
}

// NewRunManagerWithLogger creates a run manager using the given logger.
func NewRunManagerWithLogger(logger Logger) *RunManager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &RunManager{
		runs:   make(map[RunID]*Grid),
		logger: logger,
	}
}

// CreateRun validates the config, constructs a grid and registers it under
// a fresh ID. Construction either fully succeeds or leaves no trace.
func (rm *RunManager) CreateRun(cfg RunConfig) (RunID, *Grid, error) {
	grid, err := BuildGridFromConfig(cfg)
	if err != nil {
		return "", nil, err
	}

	id := RunID(uuid.NewString())
	grid.SetRunID(string(id))
	grid.SetLogger(rm.logger)

	rm.mu.Lock()
	rm.runs[id] = grid
	rm.mu.Unlock()

	rm.logger.Infof("run created: run_id=%s size=%dx%d seed=%d",
		id, grid.Width(), grid.Height(), grid.Seed())
	return id, grid, nil
}

// GetRun retrieves a run by ID.
func (rm *RunManager) GetRun(id RunID) (*Grid, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	grid, exists := rm.runs[id]
	return grid, exists
}

// DeleteRun stops and removes a run.
func (rm *RunManager) DeleteRun(id RunID) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	grid, exists := rm.runs[id]
	if !exists {
		return fmt.Errorf("run with id %s does not exist", id)
	}

	grid.Stop()
	delete(rm.runs, id)
	rm.logger.Infof("run deleted: run_id=%s", id)
	return nil
}

// ListRuns returns all run IDs in a stable order.
func (rm *RunManager) ListRuns() []RunID {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	ids := make([]RunID, 0, len(rm.runs))
	for id := range rm.runs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
