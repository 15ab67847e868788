package programs

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

//go:embed shaders/mandelbrot.frag
var mandelbrotFragment string

//go:embed shaders/mandelbrot32.frag
var mandelbrot32Fragment string

var mandelbrot = Program{
	Name:           "mandelbrot",
	VertexShader:   defaultVertexShader,
	FragmentShader: mandelbrotFragment,
	Precision:      Double,
	GetPixel: func(uniforms Uniforms, point mgl64.Vec2) mgl32.Vec3 {
		return escapeColour(uniforms, point, point)
	},
}

var mandelbrot32 = Program{
	Name:           "mandelbrot32",
	VertexShader:   defaultVertexShader,
	FragmentShader: mandelbrot32Fragment,
	Precision:      Single,
	GetPixel: func(uniforms Uniforms, point mgl64.Vec2) mgl32.Vec3 {
		p := mgl64.Vec2{float64(float32(point[0])), float64(float32(point[1]))}
		return escapeColour(uniforms, p, p)
	},
}

// escapeColour iterates z = z² + c from z and colours by escape time.
func escapeColour(uniforms Uniforms, z, c mgl64.Vec2) mgl32.Vec3 {
	x, y := z[0], z[1]
	iterations := int32(0)
	for x*x+y*y <= 4 && iterations < uniforms.Iterations {
		x, y = x*x-y*y+c[0], 2*x*y+c[1]
		iterations++
	}

	if iterations == uniforms.Iterations {
		return NullColour
	}
	return uniforms.Palette[iterations%Colours]
}
