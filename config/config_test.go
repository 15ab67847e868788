package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/mandelview/viewport"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mandelview.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.InitialView() != viewport.Default() {
		t.Errorf("initial view = %+v; want %+v", c.InitialView(), viewport.Default())
	}
	if c.FrameDelay != 10*time.Millisecond {
		t.Errorf("frame delay = %v", c.FrameDelay)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
width: 1024
view:
  x: -0.8
  zoom: 4
precision: single
frame_delay: 16ms
palette:
  - [1, 0, 0]
  - [0, 0, 1]
`)

	c, err := Load(path, false)
	if err != nil {
		t.Fatal(err)
	}

	if c.Width != 1024 || c.Height != 400 {
		t.Errorf("size = %vx%v; want 1024x400", c.Width, c.Height)
	}
	if c.View.X != -0.8 || c.View.Y != -1 || c.View.Width != 3.5 || c.View.Zoom != 4 {
		t.Errorf("view = %+v", c.View)
	}
	if c.FrameDelay != 16*time.Millisecond {
		t.Errorf("frame delay = %v", c.FrameDelay)
	}

	p, _, err := c.StartProgram()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "mandelbrot32" {
		t.Errorf("single precision started %v", p.Name)
	}

	u := c.Uniforms(100, 50)
	if u.Palette[0] != (mgl32.Vec3{1, 0, 0}) || u.Palette[1] != (mgl32.Vec3{0, 0, 1}) || u.Palette[2] != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("palette starts %v %v %v", u.Palette[0], u.Palette[1], u.Palette[2])
	}
	if u.XOff != -0.8 || u.Width != 3.5/4 {
		t.Errorf("uniform view = %v %v", u.XOff, u.Width)
	}
}

func TestLoadMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	c, err := Load(missing, true)
	if err != nil {
		t.Fatalf("optional missing config: %v", err)
	}
	if c.Width != Default().Width {
		t.Errorf("width = %v", c.Width)
	}

	if _, err := Load(missing, false); err == nil {
		t.Error("required missing config loaded")
	}
}

func TestLoadInvalid(t *testing.T) {
	tcs := []struct {
		name     string
		contents string
	}{
		{name: "zero zoom", contents: "view:\n  zoom: 0\n"},
		{name: "negative width", contents: "view:\n  width: -3\n"},
		{name: "window", contents: "height: 0\n"},
		{name: "precision", contents: "precision: half\n"},
		{name: "iterations", contents: "iterations: 0\n"},
		{name: "iterations overflow", contents: "iterations: 2147483648\n"},
		{name: "syntax", contents: "width: [\n"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.contents), false); err == nil {
				t.Errorf("loaded %q without error", tc.contents)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	c := Default()
	c.Iterations = 500
	c.Shader = "custom.frag"
	c.View.Zoom = 12.5

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Iterations != 500 || got.Shader != "custom.frag" || got.View.Zoom != 12.5 || got.FrameDelay != c.FrameDelay {
		t.Errorf("reloaded %+v", got)
	}
}

func TestStartProgramByName(t *testing.T) {
	c := Default()
	c.Program = "julia"
	p, i, err := c.StartProgram()
	if err != nil || p.Name != "julia" || i < 0 {
		t.Errorf("StartProgram() = %v, %v, %v", p.Name, i, err)
	}

	c.Program = "sierpinski"
	if _, _, err := c.StartProgram(); err == nil {
		t.Error("started an unknown program")
	}
}

func TestIterationRangeHoldsConfigured(t *testing.T) {
	for _, iterations := range []int{1, 200, 5000, 10000, 1 << 30} {
		c := Default()
		c.Iterations = iterations
		lo, hi := c.IterationRange()
		if iterations < lo || iterations > hi {
			t.Errorf("iterations %v outside slider range %v..%v", iterations, lo, hi)
		}
	}
}
