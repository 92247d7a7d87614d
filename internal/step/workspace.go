// Package step holds the tasklets of the preparation job. Tables move
// between steps through a Workspace; the ExecutionContext only receives
// scalar diagnostics.
package step

import (
	"errors"
	"sync"

	"github.com/tigerroll/surfin-energy/internal/domain/model"
)

// ErrStageIncomplete is returned by a tasklet whose upstream stage did not
// store its table in this run.
var ErrStageIncomplete = errors.New("upstream stage did not complete")

// Workspace is the in-process hand-off between the steps of one run.
// A table is only handed out once the step producing it has stored it.
type Workspace struct {
	mu          sync.RWMutex
	stacked     []model.StackedRow
	split       []model.SplitRow
	bounds      []model.Boundaries
	stackedDone bool
	splitDone   bool
}

// NewWorkspace creates an empty Workspace.
func NewWorkspace() *Workspace { return &Workspace{} }

// SetStacked stores the stacked table.
func (w *Workspace) SetStacked(rows []model.StackedRow) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stacked = rows
	w.stackedDone = true
}

// Stacked returns the stacked table and whether it was stored.
func (w *Workspace) Stacked() ([]model.StackedRow, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stacked, w.stackedDone
}

// SetSplit stores the final table and its boundaries.
func (w *Workspace) SetSplit(rows []model.SplitRow, bounds []model.Boundaries) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.split = rows
	w.bounds = bounds
	w.splitDone = true
}

// Split returns the final table, its boundaries and whether they were stored.
func (w *Workspace) Split() ([]model.SplitRow, []model.Boundaries, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.split, w.bounds, w.splitDone
}
