// Package config loads mandelview's settings file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/mandelview/programs"
	"github.com/stewi1014/mandelview/viewport"
	"gopkg.in/yaml.v3"
)

// Config is the settings file. Keys missing from the file keep their Default value.
type Config struct {
	// Window size in screen pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// View the explorer starts on and returns to on reset.
	View ViewConfig `yaml:"view"`

	// Program to start with. Empty picks the built in mandelbrot for Precision.
	Program string `yaml:"program,omitempty"`

	// Precision is "double" or "single".
	Precision string `yaml:"precision"`

	Iterations int `yaml:"iterations"`

	// Shader replaces the program's fragment shader with a file, reloaded
	// when it changes.
	Shader string `yaml:"shader,omitempty"`

	// FrameDelay is slept after every frame of the lite window.
	FrameDelay time.Duration `yaml:"frame_delay"`

	// Palette holds up to 16 RGB colours in [0, 1].
	Palette [][3]float32 `yaml:"palette,omitempty"`

	// SaveDir is where screenshots are written.
	SaveDir string `yaml:"save_dir,omitempty"`
}

type ViewConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Zoom   float64 `yaml:"zoom"`
}

func Default() Config {
	v := viewport.Default()
	return Config{
		Width:  600,
		Height: 400,
		View: ViewConfig{
			X:      v.Offset[0],
			Y:      v.Offset[1],
			Width:  v.Base[0],
			Height: v.Base[1],
			Zoom:   v.Zoom,
		},
		Precision:  programs.Double.String(),
		Iterations: 200,
		FrameDelay: 10 * time.Millisecond,
		SaveDir:    ".",
	}
}

// Load reads the settings file at path over the defaults.
// A missing file is not an error when optional is set.
func Load(path string, optional bool) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && optional {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing %v: %w", path, err)
	}

	return c, c.Validate()
}

// Save writes c to path.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid window size %vx%v", c.Width, c.Height)
	}
	if !c.InitialView().Valid() {
		return fmt.Errorf("invalid view %+v", c.View)
	}
	if _, err := programs.ParsePrecision(c.Precision); err != nil {
		return err
	}
	if c.Iterations <= 0 || c.Iterations > math.MaxInt32 {
		return fmt.Errorf("iterations must be in 1..%v, got %v", math.MaxInt32, c.Iterations)
	}
	if c.FrameDelay < 0 {
		return fmt.Errorf("negative frame delay %v", c.FrameDelay)
	}
	if len(c.Palette) > programs.Colours {
		return fmt.Errorf("palette has %v colours, at most %v are used", len(c.Palette), programs.Colours)
	}
	return nil
}

// IterationRange is the range the iteration slider offers. It always
// includes the configured count.
func (c Config) IterationRange() (lo, hi int) {
	return 1, max(5000, c.Iterations)
}

func (c Config) InitialView() viewport.View {
	return viewport.View{
		Offset: mgl64.Vec2{c.View.X, c.View.Y},
		Base:   mgl64.Vec2{c.View.Width, c.View.Height},
		Zoom:   c.View.Zoom,
	}
}

// StartProgram returns the program to start with and its index.
func (c Config) StartProgram() (programs.Program, int, error) {
	precision, err := programs.ParsePrecision(c.Precision)
	if err != nil {
		return programs.Program{}, -1, err
	}

	if c.Program == "" {
		p, i := programs.ProgramFor(precision)
		return p, i, nil
	}
	return programs.ProgramByName(c.Program)
}

// Uniforms returns the starting uniforms for a frame of the given size.
func (c Config) Uniforms(frameWidth, frameHeight int) programs.Uniforms {
	var u programs.Uniforms
	u.DefaultValues()
	u.Iterations = int32(c.Iterations)
	if len(c.Palette) > 0 {
		for i := range u.Palette {
			u.Palette[i] = c.Palette[i%len(c.Palette)]
		}
	}
	u.SetView(c.InitialView(), frameWidth, frameHeight)
	return u
}
