package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/stewi1014/mandelview/programs"
	"github.com/stewi1014/mandelview/raster"
)

func newRenderCommand(flags *configFlags) *cobra.Command {
	var (
		out       string
		antialias float64
		caption   bool
		x, y      float64
		zoom      float64
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the configured view to a PNG on the CPU",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			program, _, err := cfg.StartProgram()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("x") {
				cfg.View.X = x
			}
			if cmd.Flags().Changed("y") {
				cfg.View.Y = y
			}
			if cmd.Flags().Changed("zoom") {
				cfg.View.Zoom = zoom
			}
			view := cfg.InitialView()
			if !view.Valid() {
				return fmt.Errorf("invalid view %+v", view)
			}

			opts := raster.SaveOptions{
				Name:      out,
				Width:     cfg.Width,
				Height:    cfg.Height,
				Antialias: antialias,
			}
			if caption {
				opts.Caption = raster.ViewCaption(view)
			}

			uniforms := cfg.Uniforms(cfg.Width, cfg.Height)
			uniforms.SetView(view, cfg.Width, cfg.Height)

			return renderToFile(cmd.Context(), program, uniforms, opts)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "mandelbrot.png", "Output PNG file")
	cmd.Flags().Float64Var(&antialias, "antialias", 0, "Distance in pixels between antialiasing samples, 0 disables")
	cmd.Flags().BoolVar(&caption, "caption", false, "Stamp the view coordinates on the image")
	cmd.Flags().Float64Var(&x, "x", 0, "Plane x of the view's corner")
	cmd.Flags().Float64Var(&y, "y", 0, "Plane y of the view's corner")
	cmd.Flags().Float64Var(&zoom, "zoom", 0, "Zoom factor")

	return cmd
}

func renderToFile(ctx context.Context, program programs.Program, uniforms programs.Uniforms, opts raster.SaveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := make(chan func() float64, 1)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		var current func() float64
		for {
			select {
			case current = <-progress:
			case <-ticker.C:
				if current != nil {
					log.Printf("rendering %v: %.0f%%", opts.Name, current()*100)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	opts.OnStage = func(stage raster.Stage) {
		if stage != raster.StageDone {
			log.Printf("%v: %v", opts.Name, stage)
		}
	}

	start := time.Now()
	err := raster.Save(ctx, program, uniforms, opts, func(f func() float64) {
		progress <- f
	})
	if err != nil {
		return err
	}

	log.Printf("saved %v in %v", opts.Name, time.Since(start).Round(time.Millisecond))
	return nil
}
