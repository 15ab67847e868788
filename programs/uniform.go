package programs

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/mandelview/viewport"
)

const Colours = 16

// Uniforms are uploaded to the fragment shader every frame, field by field,
// under the name in the uniform tag.
type Uniforms struct {
	XOff        float64             `uniform:"u_xoff"`
	YOff        float64             `uniform:"u_yoff"`
	Width       float64             `uniform:"u_width"`
	Height      float64             `uniform:"u_height"`
	FrameWidth  float32             `uniform:"u_framewidth"`
	FrameHeight float32             `uniform:"u_frameheight"`
	Iterations  int32               `uniform:"u_iterations"`
	Seed        mgl64.Vec2          `uniform:"u_seed"`
	Palette     [Colours]mgl32.Vec3 `uniform:"u_palette"`
}

func (u *Uniforms) DefaultValues() {
	*u = Uniforms{
		Iterations: 200,
		Seed:       mgl64.Vec2{-0.835, 0.2321},
		Palette:    DefaultPalette(),
	}
	u.SetView(viewport.Default(), 600, 400)
}

// SetView points the uniforms at a view drawn into a frame of the given
// size in pixels.
func (u *Uniforms) SetView(view viewport.View, frameWidth, frameHeight int) {
	size := view.Size()
	u.XOff = view.Offset[0]
	u.YOff = view.Offset[1]
	u.Width = size[0]
	u.Height = size[1]
	u.FrameWidth = float32(frameWidth)
	u.FrameHeight = float32(frameHeight)
}

// PlanePoint maps a position in frame pixels, y downward, onto the plane.
// It matches the shaders, which see gl_FragCoord with y upward.
func (u *Uniforms) PlanePoint(pos mgl64.Vec2) mgl64.Vec2 {
	fw, fh := float64(u.FrameWidth), float64(u.FrameHeight)
	return mgl64.Vec2{
		u.XOff + pos[0]/fw*u.Width,
		u.YOff + (fh-pos[1])/fh*u.Height,
	}
}

// DefaultPalette is a blue to orange ramp.
func DefaultPalette() (palette [Colours]mgl32.Vec3) {
	from := mgl32.Vec3{0.05, 0.1, 0.45}
	to := mgl32.Vec3{1, 0.65, 0.1}
	for i := range palette {
		t := float32(i) / (Colours - 1)
		palette[i] = from.Mul(1 - t).Add(to.Mul(t))
	}
	return
}
