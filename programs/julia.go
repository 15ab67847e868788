package programs

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

//go:embed shaders/julia.frag
var juliaFragment string

var julia = Program{
	Name:           "julia",
	VertexShader:   defaultVertexShader,
	FragmentShader: juliaFragment,
	Precision:      Double,
	GetPixel: func(uniforms Uniforms, point mgl64.Vec2) mgl32.Vec3 {
		return escapeColour(uniforms, point, uniforms.Seed)
	},
}
