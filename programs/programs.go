package programs

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

var ErrNoCPUImplementation = errors.New("fractal does not have a CPU implementation")

var (
	NullColour = mgl32.Vec3{0.1, 0.1, 0.1}
)

//go:embed shaders/default.vert
var defaultVertexShader string

// Precision selects the uniform and arithmetic width a program's shader uses.
type Precision int

const (
	Double Precision = iota
	Single
)

func (p Precision) String() string {
	switch p {
	case Double:
		return "double"
	case Single:
		return "single"
	}
	return fmt.Sprintf("Precision(%d)", int(p))
}

func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(s) {
	case "double", "f64", "":
		return Double, nil
	case "single", "f32":
		return Single, nil
	}
	return Double, fmt.Errorf("unknown precision %q", s)
}

func NumPrograms() int {
	return len(programs)
}

func GetProgram(i int) Program {
	return programs[i]
}

func ProgramByName(name string) (Program, int, error) {
	for i, p := range programs {
		if p.Name == name {
			return p, i, nil
		}
	}
	return Program{}, -1, fmt.Errorf("no program named %q", name)
}

// ProgramFor returns the first registered program with the given precision.
func ProgramFor(precision Precision) (Program, int) {
	for i, p := range programs {
		if p.Precision == precision {
			return p, i
		}
	}
	return programs[0], 0
}

func NewProgram(p Program) error {
	if _, _, err := ProgramByName(p.Name); err == nil {
		return fmt.Errorf("program %q already registered", p.Name)
	}
	programs = append(programs, p)
	return nil
}

var programs []Program

// PixelFunc returns the colour of a single point of the plane.
type PixelFunc func(uniforms Uniforms, point mgl64.Vec2) mgl32.Vec3

type Program struct {
	Name           string
	VertexShader   string
	FragmentShader string
	Precision      Precision
	GetPixel       PixelFunc
}

// LoadProgram builds a program from a fragment shader on disk. Programs
// loaded this way have no CPU implementation.
func LoadProgram(path string, precision Precision) (Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Program{}, fmt.Errorf("reading shader: %w", err)
	}

	return Program{
		Name:           filepath.Base(path),
		VertexShader:   defaultVertexShader,
		FragmentShader: string(source),
		Precision:      precision,
	}, nil
}

// GetImage renders the program on the CPU at the given size.
func (p *Program) GetImage(uniforms Uniforms, width, height int) (Image, error) {
	if p.GetPixel == nil {
		return nil, ErrNoCPUImplementation
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %vx%v", width, height)
	}

	uniforms.FrameWidth = float32(width)
	uniforms.FrameHeight = float32(height)

	return &programImage{
		uniforms:  uniforms,
		bounds:    image.Rect(0, 0, width, height),
		pixelFunc: p.GetPixel,
	}, nil
}

// Image is a program rendered on the CPU. GetPixel takes a position in
// pixels, with y growing downward, and may be sampled between pixels.
type Image interface {
	GetPixel(pos mgl64.Vec2) mgl32.Vec3
	Bounds() image.Rectangle
}

type programImage struct {
	uniforms  Uniforms
	bounds    image.Rectangle
	pixelFunc PixelFunc
}

func (i *programImage) GetPixel(pos mgl64.Vec2) mgl32.Vec3 {
	return i.pixelFunc(i.uniforms, i.uniforms.PlanePoint(pos))
}

func (i *programImage) Bounds() image.Rectangle {
	return i.bounds
}

func init() {
	for _, p := range []Program{mandelbrot, mandelbrot32, julia} {
		if err := NewProgram(p); err != nil {
			panic(err)
		}
	}
}
