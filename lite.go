package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stewi1014/mandelview/config"
	"github.com/stewi1014/mandelview/link"
	"github.com/stewi1014/mandelview/programs"
	"github.com/stewi1014/mandelview/viewport"
)

// liteMain runs the explorer in a single GLFW window on the calling thread.
func liteMain(ctx context.Context, cfg config.Config) error {
	program, _, err := startProgram(cfg)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init failed: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, "Mandelview", nil, nil)
	if err != nil {
		return fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()

	w := &liteWindow{
		Window:     window,
		cfg:        cfg,
		program:    program,
		controller: viewport.NewController(cfg.InitialView()),
		uniforms:   cfg.Uniforms(cfg.Width, cfg.Height),
		frames:     link.NewFrameCounter(time.Now()),
		reload:     make(chan programs.Program, 1),
	}

	if err := w.renderer.init(program); err != nil {
		return err
	}
	defer w.renderer.destroy()

	window.SetScrollCallback(w.scroll)
	window.SetCursorPosCallback(w.cursor)
	window.SetMouseButtonCallback(w.button)
	window.SetKeyCallback(w.key)

	err = watchShader(ctx, cfg, func(program programs.Program) {
		select {
		case w.reload <- program:
		default:
		}
	})
	if err != nil {
		log.Println(err)
	}

	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		case program := <-w.reload:
			if err := w.renderer.load(program); err != nil {
				log.Println(err)
			} else {
				w.program = program
			}
		default:
		}

		w.frame()
		glfw.PollEvents()

		if cfg.FrameDelay > 0 {
			time.Sleep(cfg.FrameDelay)
		}
	}

	return nil
}

type liteWindow struct {
	*glfw.Window
	cfg config.Config

	renderer glRenderer
	program  programs.Program
	reload   chan programs.Program

	controller *viewport.Controller
	sample     viewport.PointerSample
	uniforms   programs.Uniforms
	frames     *link.FrameCounter
}

func (w *liteWindow) frame() {
	w.controller.Update(w.sample)
	w.sample.Scroll = 0

	width, height := w.GetFramebufferSize()
	w.renderer.viewport(width, height)
	w.uniforms.SetView(w.controller.View(), width, height)
	w.renderer.draw(&w.uniforms)
	w.SwapBuffers()

	if fps, updated := w.frames.Frame(time.Now()); updated {
		w.SetTitle(fmt.Sprintf("Mandelview - %.1f FPS", fps))
	}
}

func (w *liteWindow) pointer(x, y float64) {
	width, height := w.GetSize()
	w.sample.Pos = viewport.Normalize(x, y, width, height)
}

func (w *liteWindow) scroll(window *glfw.Window, xoff, yoff float64) {
	w.pointer(window.GetCursorPos())
	w.sample.Scroll += yoff
}

func (w *liteWindow) cursor(window *glfw.Window, x, y float64) {
	w.pointer(x, y)
}

func (w *liteWindow) button(window *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	w.pointer(window.GetCursorPos())
	w.sample.Dragging = action == glfw.Press
}

func (w *liteWindow) key(window *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}

	switch key {
	case glfw.KeyR:
		w.controller.Reset()
		w.sample = viewport.PointerSample{Pos: w.sample.Pos}
	case glfw.KeyS:
		w.save()
	case glfw.KeyEscape:
		window.SetShouldClose(true)
	}
}

// save writes the current view to the save directory in the background.
func (w *liteWindow) save() {
	width, height := w.GetFramebufferSize()
	opts := screenshotOptions(w.cfg, w.controller.View(), width, height)
	program, uniforms := w.program, w.uniforms

	go func() {
		err := renderToFile(context.Background(), program, uniforms, opts)
		if err != nil {
			log.Printf("saving %v: %v", opts.Name, err)
		}
	}()
}
