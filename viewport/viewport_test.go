package viewport

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestScrollZeroIsNoop(t *testing.T) {
	views := []View{
		Default(),
		{Offset: mgl64.Vec2{0.1234567, -0.7654321}, Base: mgl64.Vec2{3.5, 2}, Zoom: 12345.678},
		{Offset: mgl64.Vec2{-1e-12, 1e-12}, Base: mgl64.Vec2{1, 1}, Zoom: 1e-3},
	}
	pointers := []mgl64.Vec2{{0, 0}, {-1, -1}, {1, 1}, {0.3, -0.9}}

	for _, v := range views {
		for _, p := range pointers {
			got := v.Scroll(p, 0)
			if got != v {
				t.Errorf("Scroll(%v, 0) on %+v = %+v; want unchanged", p, v, got)
			}
		}
	}
}

func TestScrollAnchorAtCentre(t *testing.T) {
	v := Default()
	pointer := mgl64.Vec2{0, 0}

	anchor := v.PlanePoint(pointer)
	if !closeTo(anchor[0], -0.75) || !closeTo(anchor[1], 0) {
		t.Fatalf("PlanePoint(centre) = %v; want (-0.75, 0)", anchor)
	}

	after := v.Scroll(pointer, 1)
	if !closeTo(after.Zoom, 1.05) {
		t.Errorf("zoom = %v; want 1.05", after.Zoom)
	}

	got := after.PlanePoint(pointer)
	if !closeTo(got[0], -0.75) || !closeTo(got[1], 0) {
		t.Errorf("anchor moved to %v; want (-0.75, 0)", got)
	}

	f := Fraction(pointer)
	w1, w2 := v.Size()[0], after.Size()[0]
	if !closeTo(f[0]*w1+v.Offset[0], f[0]*w2+after.Offset[0]) {
		t.Errorf("x*w1 + xoff = %v, x*w2 + xoff' = %v", f[0]*w1+v.Offset[0], f[0]*w2+after.Offset[0])
	}
}

func TestScrollAnchorAtCorners(t *testing.T) {
	tcs := []struct {
		name    string
		pointer mgl64.Vec2
		delta   float64
	}{
		{name: "top left in", pointer: mgl64.Vec2{-1, -1}, delta: 3},
		{name: "bottom right in", pointer: mgl64.Vec2{1, 1}, delta: 3},
		{name: "top left out", pointer: mgl64.Vec2{-1, -1}, delta: -4.5},
		{name: "bottom right out", pointer: mgl64.Vec2{1, 1}, delta: -0.25},
		{name: "off centre", pointer: mgl64.Vec2{0.37, -0.61}, delta: 10},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			v := Default()
			before := v.PlanePoint(tc.pointer)
			after := v.Scroll(tc.pointer, tc.delta).PlanePoint(tc.pointer)
			if !closeTo(before[0], after[0]) || !closeTo(before[1], after[1]) {
				t.Errorf("plane point under %v moved from %v to %v", tc.pointer, before, after)
			}
		})
	}
}

func TestScrollKeepsZoomPositive(t *testing.T) {
	v := Default()
	deltas := []float64{-1, -50, -1000, 3, -1e6, 1e6, -0.001, 25, math.Inf(-1), math.NaN()}

	for i, d := range deltas {
		v = v.Scroll(mgl64.Vec2{0.5, 0.5}, d)
		if !(v.Zoom > 0) || math.IsInf(v.Zoom, 0) {
			t.Fatalf("step %d (delta %v): zoom = %v", i, d, v.Zoom)
		}
		if !v.Valid() {
			t.Fatalf("step %d (delta %v): invalid view %+v", i, d, v)
		}
	}
}

func TestScrollIgnoresOverflowingExtents(t *testing.T) {
	pointers := []mgl64.Vec2{{0, 0}, {-1, 1}, {1, -1}}

	for _, pointer := range pointers {
		start := Default()
		// Zoom stays positive and finite but Base/Zoom overflows.
		v := start.Scroll(pointer, -14540)
		if v != start {
			t.Errorf("pointer %v: overflowing zoom out changed the view to %+v", pointer, v)
		}

		// Walk zoom down in steps until the extents would overflow.
		for i := 0; i < 100; i++ {
			v = v.Scroll(pointer, -500)
			if !v.Valid() {
				t.Fatalf("pointer %v step %d: invalid view %+v", pointer, i, v)
			}
		}
		if next := v.Scroll(pointer, -1); !next.Valid() {
			t.Fatalf("pointer %v: invalid view %+v after further scroll", pointer, next)
		}
	}
}

func TestValidRejectsOverflowingSize(t *testing.T) {
	v := Default()
	v.Zoom = 8.08e-309
	if v.Valid() {
		t.Errorf("view with size %v reported valid", v.Size())
	}
}

func TestScrollMonotonic(t *testing.T) {
	v := Default()
	for i := 0; i < 20; i++ {
		next := v.Scroll(mgl64.Vec2{0.2, -0.4}, 1)
		if !(next.Zoom > v.Zoom) {
			t.Fatalf("zoom did not increase: %v -> %v", v.Zoom, next.Zoom)
		}
		v = next
	}

	for i := 0; i < 20; i++ {
		next := v.Scroll(mgl64.Vec2{-0.8, 0.1}, -1)
		if !(next.Zoom < v.Zoom) {
			t.Fatalf("zoom did not decrease: %v -> %v", v.Zoom, next.Zoom)
		}
		v = next
	}
}

func TestScrollComposes(t *testing.T) {
	pointer := mgl64.Vec2{0.25, 0.75}

	once := Default().Scroll(pointer, 2)
	twice := Default().Scroll(pointer, 1).Scroll(pointer, 1)

	if !closeTo(once.Zoom, twice.Zoom) {
		t.Errorf("zoom after 2 = %v, after 1+1 = %v", once.Zoom, twice.Zoom)
	}
	if !closeTo(once.Offset[0], twice.Offset[0]) || !closeTo(once.Offset[1], twice.Offset[1]) {
		t.Errorf("offset after 2 = %v, after 1+1 = %v", once.Offset, twice.Offset)
	}
}

func TestPanKeepsGrabbedPoint(t *testing.T) {
	v := Default().Scroll(mgl64.Vec2{0.1, 0.1}, 7)
	from := mgl64.Vec2{-0.5, 0.25}
	to := mgl64.Vec2{0.3, -0.6}

	grabbed := v.PlanePoint(from)
	moved := v.Pan(from, to)
	got := moved.PlanePoint(to)

	if !closeTo(grabbed[0], got[0]) || !closeTo(grabbed[1], got[1]) {
		t.Errorf("grabbed %v, now under pointer %v", grabbed, got)
	}
	if moved.Zoom != v.Zoom {
		t.Errorf("pan changed zoom from %v to %v", v.Zoom, moved.Zoom)
	}
	if v.Pan(from, from) != v {
		t.Error("pan without movement changed the view")
	}
}

func TestNormalize(t *testing.T) {
	tcs := []struct {
		name          string
		x, y          float64
		width, height int
		want          mgl64.Vec2
	}{
		{name: "top left", x: 0, y: 0, width: 600, height: 400, want: mgl64.Vec2{-1, -1}},
		{name: "bottom right", x: 600, y: 400, width: 600, height: 400, want: mgl64.Vec2{1, 1}},
		{name: "centre", x: 300, y: 200, width: 600, height: 400, want: mgl64.Vec2{0, 0}},
		{name: "empty window", x: 10, y: 10, width: 0, height: 400, want: mgl64.Vec2{0, 0}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.x, tc.y, tc.width, tc.height)
			if got != tc.want {
				t.Errorf("Normalize(%v, %v, %v, %v) = %v; want %v", tc.x, tc.y, tc.width, tc.height, got, tc.want)
			}
		})
	}
}

func TestBottomOfWindowIsPlaneOffset(t *testing.T) {
	v := Default()
	got := v.PlanePoint(mgl64.Vec2{-1, 1})
	if !closeTo(got[0], v.Offset[0]) || !closeTo(got[1], v.Offset[1]) {
		t.Errorf("bottom left maps to %v; want offset %v", got, v.Offset)
	}
}

func TestValid(t *testing.T) {
	tcs := []struct {
		name string
		view View
		want bool
	}{
		{name: "default", view: Default(), want: true},
		{name: "zero zoom", view: View{Base: mgl64.Vec2{1, 1}}, want: false},
		{name: "negative base", view: View{Base: mgl64.Vec2{-1, 1}, Zoom: 1}, want: false},
		{name: "nan offset", view: View{Offset: mgl64.Vec2{math.NaN(), 0}, Base: mgl64.Vec2{1, 1}, Zoom: 1}, want: false},
		{name: "infinite zoom", view: View{Base: mgl64.Vec2{1, 1}, Zoom: math.Inf(1)}, want: false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.view.Valid(); got != tc.want {
				t.Errorf("Valid() = %v; want %v", got, tc.want)
			}
		})
	}
}
