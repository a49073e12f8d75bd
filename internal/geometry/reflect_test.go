package geometry

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

var samplePoints = []Point{
	{0, 0}, {1, 1}, {2, 3}, {-4.5, 7.25}, {1e6, -3}, {-0.25, -0.5}, {0.125, 3.75},
}

func TestReflectFormulas(t *testing.T) {
	p := Point{2, 3}
	tests := []struct {
		r    Reflection
		want Point
	}{
		{Reflection{Kind: XAxis}, Point{2, -3}},
		{Reflection{Kind: YAxis}, Point{-2, 3}},
		{Reflection{Kind: Origin}, Point{-2, -3}},
		{Reflection{Kind: LineYEqualsX}, Point{3, 2}},
		{Reflection{Kind: LineYEqualsNegX}, Point{-3, -2}},
		{Reflection{Kind: Horizontal, Param: 5}, Point{2, 7}},
		{Reflection{Kind: Vertical, Param: 5}, Point{8, 3}},
		{Reflection{Kind: Horizontal}, Point{2, -3}},
		{Reflection{Kind: Vertical}, Point{-2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.r.Kind.String(), func(t *testing.T) {
			got := Reflect(p, tt.r)
			if !got.Equal(tt.want) {
				t.Errorf("Reflect(%v, %+v) = %v, want %v", p, tt.r, got, tt.want)
			}
		})
	}
}

func TestReflectIsInvolution(t *testing.T) {
	for _, k := range AllKinds() {
		for _, param := range []float64{0, 5, -2.5} {
			r := Reflection{Kind: k, Param: param}
			for _, p := range samplePoints {
				if got := Reflect(Reflect(p, r), r); !got.Equal(p) {
					t.Errorf("%s (param %v): reflecting %v twice gave %v", k, param, p, got)
				}
			}
		}
	}
}

func TestLineReflectionsIgnoreParamForFixedKinds(t *testing.T) {
	p := Point{4, -1}
	for _, k := range []Kind{XAxis, YAxis, Origin, LineYEqualsX, LineYEqualsNegX} {
		a := Reflect(p, Reflection{Kind: k})
		b := Reflect(p, Reflection{Kind: k, Param: 42})
		if !a.Equal(b) {
			t.Errorf("%s: param changed result: %v vs %v", k, a, b)
		}
	}
}

func TestReflectUnknownKindIsIdentity(t *testing.T) {
	p := Point{1.5, -2}
	if got := Reflect(p, Reflection{Kind: Kind(99), Param: 3}); !got.Equal(p) {
		t.Errorf("unknown kind moved the point: %v", got)
	}
}

func TestReflectAllTriangle(t *testing.T) {
	pts := []Point{{1, 1}, {3, 1}, {2, 3}}
	got := ReflectAll(pts, Reflection{Kind: XAxis})
	want := []Point{{1, -1}, {3, -1}, {2, -3}}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("point %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v", k.String(), got)
		}
	}
	if got, err := ParseKind(" Y = -X "); err != nil || got != LineYEqualsNegX {
		t.Errorf("ParseKind with spaces = %v, %v", got, err)
	}
	if _, err := ParseKind("diagonal"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestReflectionJSON(t *testing.T) {
	in := Reflection{Kind: Vertical, Param: -1.5}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"kind":"vertical","param":-1.5}` {
		t.Errorf("unexpected JSON %s", b)
	}
	var out Reflection
	if err := json.Unmarshal([]byte(`{"kind":"y=x"}`), &out); err != nil {
		t.Fatal(err)
	}
	if out.Kind != LineYEqualsX || out.Param != 0 {
		t.Errorf("decoded %+v", out)
	}
	if err := json.Unmarshal([]byte(`{"kind":"nope"}`), &out); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestEquationAndFormat(t *testing.T) {
	tests := map[Reflection]string{
		{Kind: XAxis}:                  "y = 0",
		{Kind: Origin}:                 "(0, 0)",
		{Kind: LineYEqualsNegX}:        "y = -x",
		{Kind: Horizontal, Param: 2.5}: "y = 2.5",
		{Kind: Vertical, Param: -3}:    "x = -3",
	}
	for r, want := range tests {
		if got := r.Equation(); got != want {
			t.Errorf("%+v: got %q, want %q", r, got, want)
		}
	}
	if got := (Point{math.Copysign(0, -1), 3}).String(); got != "(0, 3)" {
		t.Errorf("String() = %q", got)
	}
	if !Horizontal.NeedsParam() || Origin.NeedsParam() {
		t.Error("NeedsParam mismatch")
	}
}

func TestCheckFigure(t *testing.T) {
	tri := []Point{{1, 1}, {3, 1}, {2, 3}}
	if err := CheckFigure(tri, Reflection{Kind: Horizontal, Param: -2}); err != nil {
		t.Errorf("finite figure rejected: %v", err)
	}
	tests := []struct {
		name   string
		points []Point
		r      Reflection
	}{
		{"nan x", []Point{{math.NaN(), 0}}, Reflection{}},
		{"inf y", []Point{{0, 0}, {1, math.Inf(-1)}}, Reflection{}},
		{"inf param", tri, Reflection{Kind: Vertical, Param: math.Inf(1)}},
		{"nan param", tri, Reflection{Kind: XAxis, Param: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckFigure(tt.points, tt.r); !errors.Is(err, ErrNotFinite) {
				t.Errorf("expected ErrNotFinite, got %v", err)
			}
		})
	}
}
