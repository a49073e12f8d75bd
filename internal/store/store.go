// Package store keeps the ordered, editable vertex list of a figure.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/buffos/go-reflections/internal/geometry"
)

var (
	// ErrLastPoint is returned when a removal would leave the figure empty.
	ErrLastPoint = errors.New("store: at least one vertex is required")
	// ErrIndexOutOfRange is returned for indices outside the current list.
	ErrIndexOutOfRange = errors.New("store: vertex index out of range")
)

// DefaultTriangle is the figure every new store starts with.
func DefaultTriangle() []geometry.Point {
	return []geometry.Point{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 2, Y: 3}}
}

// PointStore is an ordered list of vertices. Insertion order is drawing
// order and label order. It always holds at least one point.
//
// PointStore is not safe for concurrent use; callers serialise access.
type PointStore struct {
	points []geometry.Point
}

// New returns a store seeded with DefaultTriangle.
func New() *PointStore {
	return &PointStore{points: DefaultTriangle()}
}

// NewFrom returns a store holding a copy of points. An empty input yields a
// single point at the origin.
func NewFrom(points []geometry.Point) *PointStore {
	if len(points) == 0 {
		return &PointStore{points: []geometry.Point{{}}}
	}
	cp := make([]geometry.Point, len(points))
	copy(cp, points)
	return &PointStore{points: cp}
}

// Len returns the number of vertices.
func (s *PointStore) Len() int { return len(s.points) }

// Points returns a copy of the vertex list.
func (s *PointStore) Points() []geometry.Point {
	cp := make([]geometry.Point, len(s.points))
	copy(cp, s.points)
	return cp
}

// Add appends a vertex at (0, 0).
func (s *PointStore) Add() {
	s.points = append(s.points, geometry.Point{})
}

// Update overwrites the coordinates of vertex i.
func (s *PointStore) Update(i int, x, y float64) error {
	if i < 0 || i >= len(s.points) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.points))
	}
	s.points[i] = geometry.Point{X: x, Y: y}
	return nil
}

// Remove deletes vertex i unless it is the only one left.
func (s *PointStore) Remove(i int) error {
	if i < 0 || i >= len(s.points) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.points))
	}
	if len(s.points) <= 1 {
		return ErrLastPoint
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
	return nil
}

// RemoveMany deletes every listed index in one step. Indices are
// deduplicated and applied from highest to lowest so each one still refers
// to the vertex the caller saw. Removals that would empty the store are
// refused with ErrLastPoint; out-of-range indices are skipped and reported.
// The returned count is the number of vertices actually removed.
func (s *PointStore) RemoveMany(indices []int) (int, error) {
	uniq := make(map[int]struct{}, len(indices))
	ordered := make([]int, 0, len(indices))
	for _, i := range indices {
		if _, ok := uniq[i]; ok {
			continue
		}
		uniq[i] = struct{}{}
		ordered = append(ordered, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))

	var firstErr error
	removed := 0
	for _, i := range ordered {
		if err := s.Remove(i); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}

// Label names vertex i: A through Z for the first 26, then the 1-based
// position as a number.
func Label(i int) string {
	if i >= 0 && i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}
