package voxel

import "sync"

// Snapshot is a point-in-time copy of the store contents.
type Snapshot struct {
	Cells   []Cell
	Version uint64
}

// Store is an ordered, sparse collection of voxel cells.
//
// It is written by the frame loop and read by renderers; reads return
// copies, so nothing outside the store ever holds a reference to its cells.
type Store struct {
	mu      sync.RWMutex
	policy  Policy
	cells   []Cell
	index   map[Coord]int // position in cells, PolicyOverwrite only
	version uint64
}

// NewStore creates an empty store with the given duplicate policy.
func NewStore(policy Policy) *Store {
	if policy == "" {
		policy = PolicyAppend
	}
	s := &Store{policy: policy}
	if policy == PolicyOverwrite {
		s.index = make(map[Coord]int)
	}
	return s
}

// Policy returns the duplicate policy the store was created with.
func (s *Store) Policy() Policy {
	return s.policy
}

// Add inserts a cell at c.
func (s *Store) Add(c Coord, color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(Cell{Coord: c, Color: color})
	s.version++
}

// AddBatch inserts several cells as a single store operation.
func (s *Store) AddBatch(cells []Cell) {
	if len(cells) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cell := range cells {
		s.put(cell)
	}
	s.version++
}

// put applies the duplicate policy. Caller holds the write lock.
func (s *Store) put(cell Cell) {
	if s.policy == PolicyOverwrite {
		if i, ok := s.index[cell.Coord]; ok {
			s.cells[i].Color = cell.Color
			return
		}
		s.index[cell.Coord] = len(s.cells)
	}
	s.cells = append(s.cells, cell)
}

// Clear removes every cell and returns how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.cells)
	s.cells = nil
	if s.index != nil {
		clear(s.index)
	}
	s.version++
	return n
}

// UpdateAll replaces the color of every cell with fn's result and returns
// the number of cells updated. The mutation happens under the store lock.
func (s *Store) UpdateAll(fn func(Cell) Color) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cells {
		s.cells[i].Color = fn(s.cells[i])
	}
	s.version++
	return len(s.cells)
}

// Snapshot returns a copy of the cells in insertion order.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cells := make([]Cell, len(s.cells))
	copy(cells, s.cells)
	return Snapshot{Cells: cells, Version: s.version}
}

// Len returns the number of cells.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// Version increments on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
