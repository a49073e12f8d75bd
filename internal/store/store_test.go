package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/buffos/go-reflections/internal/geometry"
	"github.com/kr/pretty"
)

func TestNewSeedsTriangle(t *testing.T) {
	s := New()
	want := []geometry.Point{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 2, Y: 3}}
	if got := s.Points(); !reflect.DeepEqual(got, want) {
		t.Errorf("seed mismatch: %v", pretty.Diff(got, want))
	}
}

func TestNewFromEmptyKeepsOnePoint(t *testing.T) {
	s := NewFrom(nil)
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	if p := s.Points()[0]; !p.Equal(geometry.Point{}) {
		t.Errorf("got %v, want origin", p)
	}
}

func TestAddAppendsOrigin(t *testing.T) {
	s := New()
	before := s.Len()
	s.Add()
	if s.Len() != before+1 {
		t.Fatalf("len = %d, want %d", s.Len(), before+1)
	}
	if last := s.Points()[s.Len()-1]; !last.Equal(geometry.Point{}) {
		t.Errorf("appended %v, want (0, 0)", last)
	}
}

func TestUpdate(t *testing.T) {
	s := New()
	if err := s.Update(1, -7, 2.5); err != nil {
		t.Fatal(err)
	}
	if p := s.Points()[1]; !p.Equal(geometry.Point{X: -7, Y: 2.5}) {
		t.Errorf("got %v", p)
	}
	if err := s.Update(3, 0, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestRemoveLastPointRefused(t *testing.T) {
	s := NewFrom([]geometry.Point{{X: 4, Y: 4}})
	if err := s.Remove(0); !errors.Is(err, ErrLastPoint) {
		t.Fatalf("expected ErrLastPoint, got %v", err)
	}
	if s.Len() != 1 || !s.Points()[0].Equal(geometry.Point{X: 4, Y: 4}) {
		t.Errorf("state changed: %v", s.Points())
	}
}

func TestRemoveManyDescending(t *testing.T) {
	s := New()
	n, err := s.RemoveMany([]int{0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("removed %d, want 2", n)
	}
	want := []geometry.Point{{X: 3, Y: 1}}
	if got := s.Points(); !reflect.DeepEqual(got, want) {
		t.Errorf("remaining mismatch: %v", pretty.Diff(got, want))
	}
}

func TestRemoveManyNeverEmpties(t *testing.T) {
	s := New()
	n, err := s.RemoveMany([]int{0, 1, 2, 2})
	if !errors.Is(err, ErrLastPoint) {
		t.Fatalf("expected ErrLastPoint, got %v", err)
	}
	if n != 2 || s.Len() != 1 {
		t.Fatalf("removed %d, len %d", n, s.Len())
	}
	// Highest indices go first, so the first vertex survives.
	if p := s.Points()[0]; !p.Equal(geometry.Point{X: 1, Y: 1}) {
		t.Errorf("survivor %v", p)
	}
}

func TestPointsIsACopy(t *testing.T) {
	s := New()
	pts := s.Points()
	pts[0].X = 100
	if s.Points()[0].X == 100 {
		t.Error("Points exposed internal slice")
	}
}

func TestLabel(t *testing.T) {
	tests := map[int]string{0: "A", 1: "B", 25: "Z", 26: "27", 99: "100"}
	for i, want := range tests {
		if got := Label(i); got != want {
			t.Errorf("Label(%d) = %q, want %q", i, got, want)
		}
	}
}
