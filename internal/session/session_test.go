package session

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/buffos/go-reflections/internal/geometry"
	"github.com/google/uuid"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestApplyOrder(t *testing.T) {
	s := New(uuid.New(), t0)
	r := geometry.Reflection{Kind: geometry.Horizontal, Param: 5}
	s.Apply(Action{
		Points:     []geometry.Point{{X: 2, Y: 3}, {X: 9, Y: 9}, {X: 0, Y: 1}},
		Remove:     []int{1},
		Add:        true,
		Reflection: &r,
	}, t0.Add(time.Second))

	snap := s.Snapshot()
	want := []geometry.Point{{X: 2, Y: 3}, {X: 0, Y: 1}, {X: 0, Y: 0}}
	if !reflect.DeepEqual(snap.Points, want) {
		t.Errorf("points mismatch: %v", pretty.Diff(snap.Points, want))
	}
	if snap.Reflection != r {
		t.Errorf("reflection = %+v", snap.Reflection)
	}
	if snap.Warning != "" {
		t.Errorf("unexpected warning %q", snap.Warning)
	}
	if !s.Touched().Equal(t0.Add(time.Second)) {
		t.Errorf("touched = %v", s.Touched())
	}
}

func TestApplyRemoveLastWarns(t *testing.T) {
	s := New(uuid.New(), t0)
	s.Apply(Action{Remove: []int{0, 1}}, t0)
	if got := s.Snapshot(); len(got.Points) != 1 || got.Warning != "" {
		t.Fatalf("after removing two: %+v", got)
	}
	before := s.Snapshot().Points
	s.Apply(Action{Remove: []int{0}}, t0)
	snap := s.Snapshot()
	if snap.Warning != WarningLastPoint {
		t.Errorf("warning = %q", snap.Warning)
	}
	if !reflect.DeepEqual(snap.Points, before) {
		t.Errorf("state changed: %v", pretty.Diff(snap.Points, before))
	}

	// The next step clears the warning.
	s.Apply(Action{}, t0)
	if w := s.Snapshot().Warning; w != "" {
		t.Errorf("warning not cleared: %q", w)
	}
}

func TestApplyIgnoresExtraCoordinates(t *testing.T) {
	s := New(uuid.New(), t0)
	s.Apply(Action{Points: []geometry.Point{{X: 1}, {X: 2}, {X: 3}, {X: 4}}}, t0)
	if n := len(s.Snapshot().Points); n != 3 {
		t.Errorf("len = %d, want 3", n)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := New(uuid.New(), t0)
	snap := s.Snapshot()
	snap.Points[0].X = 42
	if s.Snapshot().Points[0].X == 42 {
		t.Error("snapshot shares storage with the session")
	}
}

func TestLoadReplacesFigure(t *testing.T) {
	s := New(uuid.New(), t0)
	s.Apply(Action{Remove: []int{0, 1, 2}}, t0)
	s.Load([]geometry.Point{{X: -1, Y: 4}, {X: 2, Y: 2}}, geometry.Reflection{Kind: geometry.Vertical, Param: 1}, t0.Add(time.Minute))

	want := Snapshot{
		Points:     []geometry.Point{{X: -1, Y: 4}, {X: 2, Y: 2}},
		Reflection: geometry.Reflection{Kind: geometry.Vertical, Param: 1},
	}
	if diff := pretty.Diff(s.Snapshot(), want); len(diff) > 0 {
		t.Errorf("snapshot mismatch: %v", diff)
	}
	if !s.Touched().Equal(t0.Add(time.Minute)) {
		t.Errorf("Touched = %v", s.Touched())
	}

	s.Load(nil, geometry.Reflection{Kind: geometry.Origin}, t0)
	if got := s.Snapshot().Points; len(got) != 1 || !got[0].Equal(geometry.Point{}) {
		t.Errorf("empty load left %v, want a single origin vertex", got)
	}
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager(time.Minute, nil)
	s, created := m.GetOrCreate("")
	if !created {
		t.Fatal("expected a new session")
	}
	again, created := m.GetOrCreate(s.ID.String())
	if created || again != s {
		t.Error("existing session not returned")
	}
	if _, created := m.GetOrCreate("not-a-uuid"); !created {
		t.Error("malformed id should create a session")
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d", m.Len())
	}
	m.Delete(s.ID)
	if _, ok := m.Get(s.ID); ok {
		t.Error("deleted session still present")
	}
}

func TestManagerSweep(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	m := NewManager(10*time.Minute, logger)
	now := t0
	m.now = func() time.Time { return now }

	old := m.Create()
	now = t0.Add(8 * time.Minute)
	fresh := m.Create()

	if n := m.Sweep(t0.Add(15 * time.Minute)); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, ok := m.Get(old.ID); ok {
		t.Error("idle session survived")
	}
	if _, ok := m.Get(fresh.ID); !ok {
		t.Error("fresh session evicted")
	}
	if e := hook.LastEntry(); e == nil || e.Message != "swept idle sessions" {
		t.Errorf("missing sweep log entry: %+v", e)
	}
}

func TestManagerRunStops(t *testing.T) {
	m := NewManager(time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
