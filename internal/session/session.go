// Package session holds the per-browser state of the reflection tool: the
// vertex list and the selected reflection.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/buffos/go-reflections/internal/geometry"
	"github.com/buffos/go-reflections/internal/store"
	"github.com/google/uuid"
)

// WarningLastPoint is shown when the user tries to delete the only vertex.
const WarningLastPoint = "A figure needs at least one vertex."

// Action is everything one interaction step can change. Fields left at
// their zero value are not applied.
type Action struct {
	// Points, when non-nil, overwrites the coordinates of the first
	// len(Points) vertices.
	Points []geometry.Point `json:"points,omitempty"`
	// Remove lists vertex indices to delete in this step.
	Remove []int `json:"remove,omitempty"`
	// Add appends a vertex at the origin.
	Add bool `json:"add,omitempty"`
	// Reflection replaces the selected reflection.
	Reflection *geometry.Reflection `json:"reflection,omitempty"`
}

// Structural reports whether the action changes the number of vertices.
func (a Action) Structural() bool {
	return a.Add || len(a.Remove) > 0
}

// Snapshot is an immutable copy of a session's state, the only input of
// the render step.
type Snapshot struct {
	Points     []geometry.Point
	Reflection geometry.Reflection
	Warning    string
}

// Session is the state owned by one browser.
type Session struct {
	ID uuid.UUID

	mu         sync.Mutex
	store      *store.PointStore
	reflection geometry.Reflection
	warning    string
	touched    time.Time
}

// New creates a session with the default triangle reflected across the
// x-axis.
func New(id uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:         id,
		store:      store.New(),
		reflection: geometry.Reflection{Kind: geometry.XAxis},
		touched:    now,
	}
}

// Apply performs one interaction step. Coordinates are written first, then
// removals (highest index first), then the add, then the reflection change.
// A refused removal leaves a warning for the next snapshot; any previous
// warning is cleared.
func (s *Session) Apply(a Action, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touched = now
	s.warning = ""

	for i, p := range a.Points {
		if i >= s.store.Len() {
			break
		}
		_ = s.store.Update(i, p.X, p.Y) // i is in range
	}
	if len(a.Remove) > 0 {
		if _, err := s.store.RemoveMany(a.Remove); errors.Is(err, store.ErrLastPoint) {
			s.warning = WarningLastPoint
		}
	}
	if a.Add {
		s.store.Add()
	}
	if a.Reflection != nil {
		s.reflection = *a.Reflection
	}
}

// Load replaces the figure and the reflection, as when a saved figure is
// imported. An empty point list leaves a single vertex at the origin.
func (s *Session) Load(points []geometry.Point, r geometry.Reflection, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store.NewFrom(points)
	s.reflection = r
	s.warning = ""
	s.touched = now
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Points:     s.store.Points(),
		Reflection: s.reflection,
		Warning:    s.warning,
	}
}

// Touched returns the time of the last interaction.
func (s *Session) Touched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}
