package programs

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/mandelview/viewport"
)

func TestBuiltinPrograms(t *testing.T) {
	for _, name := range []string{"mandelbrot", "mandelbrot32", "julia"} {
		t.Run(name, func(t *testing.T) {
			p, _, err := ProgramByName(name)
			if err != nil {
				t.Fatal(err)
			}
			if p.GetPixel == nil {
				t.Error("no CPU implementation")
			}
			if !strings.Contains(p.VertexShader, "in vec2 vert;") {
				t.Error("vertex shader does not declare vert")
			}
			for _, uniform := range []string{"u_xoff", "u_yoff", "u_width", "u_height", "u_framewidth", "u_frameheight"} {
				if !strings.Contains(p.FragmentShader, uniform) {
					t.Errorf("fragment shader does not use %v", uniform)
				}
			}
		})
	}

	if err := NewProgram(Program{Name: "mandelbrot"}); err == nil {
		t.Error("registered a second program named mandelbrot")
	}
}

func TestProgramFor(t *testing.T) {
	p, i := ProgramFor(Single)
	if p.Name != "mandelbrot32" || GetProgram(i).Name != p.Name {
		t.Errorf("ProgramFor(Single) = %v (%d)", p.Name, i)
	}

	p, _ = ProgramFor(Double)
	if p.Name != "mandelbrot" {
		t.Errorf("ProgramFor(Double) = %v", p.Name)
	}
}

func TestParsePrecision(t *testing.T) {
	tcs := []struct {
		in   string
		want Precision
		ok   bool
	}{
		{in: "double", want: Double, ok: true},
		{in: "", want: Double, ok: true},
		{in: "F32", want: Single, ok: true},
		{in: "single", want: Single, ok: true},
		{in: "half", ok: false},
	}

	for _, tc := range tcs {
		got, err := ParsePrecision(tc.in)
		if (err == nil) != tc.ok || (tc.ok && got != tc.want) {
			t.Errorf("ParsePrecision(%q) = %v, %v; want %v, ok=%v", tc.in, got, err, tc.want, tc.ok)
		}
	}
}

func TestSetView(t *testing.T) {
	var u Uniforms
	u.DefaultValues()

	view := viewport.Default().Scroll(mgl64.Vec2{0, 0}, 10)
	u.SetView(view, 800, 600)

	size := view.Size()
	if u.XOff != view.Offset[0] || u.YOff != view.Offset[1] {
		t.Errorf("offset = (%v, %v); want %v", u.XOff, u.YOff, view.Offset)
	}
	if u.Width != size[0] || u.Height != size[1] {
		t.Errorf("size = (%v, %v); want %v", u.Width, u.Height, size)
	}
	if u.FrameWidth != 800 || u.FrameHeight != 600 {
		t.Errorf("frame = %vx%v", u.FrameWidth, u.FrameHeight)
	}
}

func TestPlanePointMatchesView(t *testing.T) {
	var u Uniforms
	u.DefaultValues()
	view := viewport.Default().Scroll(mgl64.Vec2{0.3, -0.2}, 6)
	u.SetView(view, 600, 400)

	tcs := []struct {
		pixel   mgl64.Vec2
		pointer mgl64.Vec2
	}{
		{pixel: mgl64.Vec2{0, 0}, pointer: mgl64.Vec2{-1, -1}},
		{pixel: mgl64.Vec2{600, 400}, pointer: mgl64.Vec2{1, 1}},
		{pixel: mgl64.Vec2{300, 200}, pointer: mgl64.Vec2{0, 0}},
	}

	for _, tc := range tcs {
		got := u.PlanePoint(tc.pixel)
		want := view.PlanePoint(tc.pointer)
		if math.Abs(got[0]-want[0]) > 1e-12 || math.Abs(got[1]-want[1]) > 1e-12 {
			t.Errorf("pixel %v maps to %v; pointer %v maps to %v", tc.pixel, got, tc.pointer, want)
		}
	}
}

func TestMandelbrotPixels(t *testing.T) {
	var u Uniforms
	u.DefaultValues()

	p, _, err := ProgramByName("mandelbrot")
	if err != nil {
		t.Fatal(err)
	}

	if got := p.GetPixel(u, mgl64.Vec2{0, 0}); got != NullColour {
		t.Errorf("origin is in the set, got %v", got)
	}
	if got := p.GetPixel(u, mgl64.Vec2{-1, 0}); got != NullColour {
		t.Errorf("-1 is in the set, got %v", got)
	}
	// 2+2i escapes before the first iteration.
	if got := p.GetPixel(u, mgl64.Vec2{2, 2}); got != u.Palette[0] {
		t.Errorf("2+2i = %v; want first palette colour", got)
	}
	// 1 runs 1, 2, 5 and escapes after two iterations.
	if got := p.GetPixel(u, mgl64.Vec2{1, 0}); got != u.Palette[2] {
		t.Errorf("1+0i = %v; want palette colour 2", got)
	}
}

func TestGetImage(t *testing.T) {
	var u Uniforms
	u.DefaultValues()

	p, _, _ := ProgramByName("mandelbrot")
	img, err := p.GetImage(u, 60, 40)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 60 || img.Bounds().Dy() != 40 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	// The default view puts -0.75 in the middle, which is in the set.
	if got := img.GetPixel(mgl64.Vec2{30, 20}); got != NullColour {
		t.Errorf("centre = %v; want %v", got, NullColour)
	}

	if _, err := p.GetImage(u, 0, 10); err == nil {
		t.Error("GetImage accepted an empty size")
	}

	shaderOnly := Program{Name: "shader only"}
	if _, err := shaderOnly.GetImage(u, 10, 10); !errors.Is(err, ErrNoCPUImplementation) {
		t.Errorf("err = %v; want %v", err, ErrNoCPUImplementation)
	}
}

func TestLoadProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.frag")
	if err := os.WriteFile(path, []byte("#version 460 core\n"), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProgram(path, Single)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "custom.frag" || p.Precision != Single || p.FragmentShader != "#version 460 core\n" {
		t.Errorf("loaded %+v", p)
	}
	if p.VertexShader != defaultVertexShader {
		t.Error("loaded program does not use the default vertex shader")
	}

	if _, err := LoadProgram(filepath.Join(t.TempDir(), "missing.frag"), Double); err == nil {
		t.Error("loaded a missing file")
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.frag")
	if err := os.WriteFile(path, []byte("// first\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Program, 4)
	err := Watch(ctx, path, Double, func(p Program) {
		reloaded <- p
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("// second\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-reloaded:
		if p.FragmentShader != "// second\n" {
			t.Errorf("reloaded %q", p.FragmentShader)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("shader was not reloaded")
	}
}
