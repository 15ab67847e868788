package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stewi1014/mandelview/config"
	"github.com/stewi1014/mandelview/programs"
	"github.com/stewi1014/mandelview/raster"
	"github.com/stewi1014/mandelview/viewport"
)

// startProgram returns the program a window opens with. A configured shader
// file takes the place of the built in programs, and index is -1.
func startProgram(cfg config.Config) (program programs.Program, index int, err error) {
	if cfg.Shader == "" {
		return cfg.StartProgram()
	}

	precision, err := programs.ParsePrecision(cfg.Precision)
	if err != nil {
		return programs.Program{}, -1, err
	}
	program, err = programs.LoadProgram(cfg.Shader, precision)
	return program, -1, err
}

// watchShader calls onChange with the configured shader file each time it
// is saved. It does nothing when no shader file is configured.
func watchShader(ctx context.Context, cfg config.Config, onChange func(programs.Program)) error {
	if cfg.Shader == "" {
		return nil
	}

	precision, err := programs.ParsePrecision(cfg.Precision)
	if err != nil {
		return err
	}
	return programs.Watch(ctx, cfg.Shader, precision, onChange)
}

func screenshotOptions(cfg config.Config, view viewport.View, width, height int) raster.SaveOptions {
	name := fmt.Sprintf("mandelview-%s.png", time.Now().Format("20060102-150405"))
	return raster.SaveOptions{
		Name:      filepath.Join(cfg.SaveDir, name),
		Width:     width,
		Height:    height,
		Antialias: 1.0 / 3,
		Caption:   raster.ViewCaption(view),
	}
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}
