// Package checklist holds the content workflow: ordered phases of items with
// completion state and saved AI output.
package checklist

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrItemNotFound = errors.New("checklist: item not found")

type itemRef struct {
	phase int
	item  int
}

// Model owns every item. Phases and items are fixed after construction; only
// completion, expansion and saved output change.
type Model struct {
	mu     sync.RWMutex
	phases []Phase
	index  map[string]itemRef
}

// NewModel builds a model from seed phases. Item ids must be unique across
// all phases.
func NewModel(phases []Phase) (*Model, error) {
	m := &Model{
		phases: make([]Phase, 0, len(phases)),
		index:  make(map[string]itemRef),
	}
	for pi, p := range phases {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("phase %d: id is required", pi)
		}
		cp := p.clone()
		for ii, it := range cp.Items {
			id := strings.TrimSpace(it.ID)
			if id == "" {
				return nil, fmt.Errorf("phase %q item %d: id is required", p.ID, ii)
			}
			if _, dup := m.index[id]; dup {
				return nil, fmt.Errorf("duplicate item id %q", id)
			}
			if it.Action != nil && !it.Action.Valid() {
				return nil, fmt.Errorf("item %q: unknown action %q", id, string(*it.Action))
			}
			cp.Items[ii].ID = id
			m.index[id] = itemRef{phase: pi, item: ii}
		}
		m.phases = append(m.phases, cp)
	}
	return m, nil
}

func (m *Model) lookupLocked(id string) (*Item, error) {
	ref, ok := m.index[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	return &m.phases[ref.phase].Items[ref.item], nil
}

// FindItem returns a copy of the item.
func (m *Model) FindItem(id string) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, err := m.lookupLocked(id)
	if err != nil {
		return Item{}, err
	}
	return it.clone(), nil
}

// ToggleCompletion flips the item's completion flag and returns the new item.
func (m *Model) ToggleCompletion(id string) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, err := m.lookupLocked(id)
	if err != nil {
		return Item{}, err
	}
	it.IsCompleted = !it.IsCompleted
	return it.clone(), nil
}

// ToggleExpanded flips whether the item's details are shown.
func (m *Model) ToggleExpanded(id string) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, err := m.lookupLocked(id)
	if err != nil {
		return Item{}, err
	}
	it.Expanded = !it.Expanded
	return it.clone(), nil
}

// AttachSavedOutput replaces any previously saved output. Completion is left
// alone.
func (m *Model) AttachSavedOutput(id string, out Output) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, err := m.lookupLocked(id)
	if err != nil {
		return Item{}, err
	}
	o := out
	it.SavedOutput = &o
	return it.clone(), nil
}

// Phases returns a deep copy of the workflow in order.
func (m *Model) Phases() []Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Phase, len(m.phases))
	for i, p := range m.phases {
		out[i] = p.clone()
	}
	return out
}
