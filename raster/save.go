package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/stewi1014/mandelview/programs"
	"github.com/stewi1014/mandelview/viewport"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Stage is the step Save is working on.
type Stage int

const (
	StageRender Stage = iota
	StageCaption
	StageEncode
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageRender:
		return "Rendering"
	case StageCaption:
		return "Captioning"
	case StageEncode:
		return "Encoding PNG"
	case StageDone:
		return "Saved"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

type SaveOptions struct {
	Name          string
	Width, Height int
	Antialias     float64
	// Caption is drawn in the bottom left corner when not empty.
	Caption string
	// OnStage, if set, is called from the rendering goroutine as each stage starts.
	OnStage func(Stage)
}

func (o SaveOptions) stage(s Stage) {
	if o.OnStage != nil {
		o.OnStage(s)
	}
}

// Render draws program into memory at the size in opts. progress, if not nil,
// is handed a function reporting how far along rendering is.
func Render(
	ctx context.Context,
	program programs.Program,
	uniforms programs.Uniforms,
	opts SaveOptions,
	progress func(func() float64),
) (image.Image, error) {
	img, err := program.GetImage(uniforms, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	opts.stage(StageRender)

	if opts.Antialias > 0 {
		img = AntiAlias9x(img, opts.Antialias)
	}

	imageImage := ToImage(img)
	if progress != nil {
		progress(WrapWithProgress(&imageImage))
	}

	buff := BufferImage(imageImage)
	if err := buff.Buffer(ctx); err != nil {
		return nil, err
	}

	if opts.Caption == "" {
		return buff, nil
	}
	opts.stage(StageCaption)
	return Caption(buff, opts.Caption), nil
}

// Save renders program and writes it to opts.Name as a PNG.
// The file is removed if rendering fails or ctx is cancelled.
func Save(
	ctx context.Context,
	program programs.Program,
	uniforms programs.Uniforms,
	opts SaveOptions,
	progress func(func() float64),
) (err error) {
	file, err := os.Create(opts.Name)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	defer func() {
		file.Close()
		if err != nil {
			os.Remove(file.Name())
		}
	}()

	img, err := Render(ctx, program, uniforms, opts, progress)
	if err != nil {
		return err
	}

	opts.stage(StageEncode)
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding %v: %w", file.Name(), err)
	}
	if err := file.Sync(); err != nil {
		return err
	}
	opts.stage(StageDone)
	return nil
}

// Caption copies img and draws text over its bottom left corner.
func Caption(img image.Image, text string) *image.RGBA {
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)

	face := basicfont.Face7x13
	const margin = 4

	width := font.MeasureString(face, text).Ceil()
	backing := image.Rect(
		dst.Bounds().Min.X,
		dst.Bounds().Max.Y-face.Height-2*margin,
		dst.Bounds().Min.X+width+2*margin,
		dst.Bounds().Max.Y,
	).Intersect(dst.Bounds())
	draw.Draw(dst, backing, image.NewUniform(color.NRGBA{A: 0xa0}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(dst.Bounds().Min.X+margin, dst.Bounds().Max.Y-margin-face.Descent),
	}
	d.DrawString(text)

	return dst
}

// ViewCaption describes a view precisely enough to return to it.
func ViewCaption(v viewport.View) string {
	size := v.Size()
	return fmt.Sprintf("x %.17g  y %.17g  w %.6g  h %.6g  zoom %.6g",
		v.Offset[0], v.Offset[1], size[0], size[1], v.Zoom)
}
