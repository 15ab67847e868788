package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/mandelview/config"
	"github.com/stewi1014/mandelview/link"
	"github.com/stewi1014/mandelview/programs"
	"github.com/stewi1014/mandelview/raster"
	"github.com/stewi1014/mandelview/viewport"
)

func NewRenderWindow(
	app *gtk.Application,
	conn net.Conn,
	cfg config.Config,
	ctx context.Context,
	quit context.CancelCauseFunc,
) *RenderWindow {
	var err error
	w := &RenderWindow{
		ctx:        ctx,
		quit:       quit,
		cfg:        cfg,
		controller: viewport.NewController(cfg.InitialView()),
		uniforms:   cfg.Uniforms(cfg.Width, cfg.Height),
		frames:     link.NewFrameCounter(time.Now()),
		link:       link.NewConn(ctx, conn),
	}

	w.program, w.programIndex, err = startProgram(cfg)
	if err != nil {
		quit(err)
		return nil
	}

	go func() {
		defer recoverTo(quit)
		if err := w.link.SendLoop(ctx); err != nil {
			quit(err)
		}
	}()

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(cfg.Width, cfg.Height)

	w.gla, err = gtk.GLAreaNew()
	if err != nil {
		quit(fmt.Errorf("gtk.GLAreaNew: %w", err))
		return nil
	}

	w.gla.SetRequiredVersion(4, 6)
	w.gla.Connect("realize", w.glaRealize)
	w.gla.Connect("render", w.glaRender)
	w.gla.Connect("unrealize", w.glaUnrealize)

	w.gla.SetEvents(
		int(gdk.BUTTON_PRESS_MASK) |
			int(gdk.BUTTON_RELEASE_MASK) |
			int(gdk.POINTER_MOTION_MASK) |
			int(gdk.SCROLL_MASK) |
			int(gdk.SMOOTH_SCROLL_MASK),
	)
	w.gla.Connect("resize", w.resize)
	w.gla.Connect("scroll-event", w.scroll)
	w.gla.Connect("button-press-event", w.button)
	w.gla.Connect("button-release-event", w.button)
	w.gla.Connect("motion-notify-event", w.motion)
	w.Connect("key-press-event", w.key)

	w.Add(w.gla)
	w.ShowAll()

	go func() {
		defer recoverTo(quit)
		err := w.link.ReceiveLoop(ctx, func(msg interface{}) {
			glib.IdleAdd(func() {
				w.handleMessage(msg)
			})
		})
		if err != nil {
			quit(err)
		}
	}()

	err = watchShader(ctx, cfg, func(program programs.Program) {
		glib.IdleAdd(func() {
			w.setProgram(program, -1)
		})
	})
	if err != nil {
		log.Println(err)
	}

	go w.tick(ctx)

	return w
}

// RenderWindow draws the fractal and turns pointer input into view changes.
type RenderWindow struct {
	*gtk.ApplicationWindow
	gla    *gtk.GLArea
	width  int
	height int

	ctx  context.Context
	quit context.CancelCauseFunc
	cfg  config.Config

	renderer     glRenderer
	program      programs.Program
	programIndex int

	controller *viewport.Controller
	sample     viewport.PointerSample
	uniforms   programs.Uniforms
	frames     *link.FrameCounter
	link       *link.Conn
}

// tick redraws continuously so the frame counter has something to count.
func (w *RenderWindow) tick(ctx context.Context) {
	delay := w.cfg.FrameDelay
	if delay <= 0 {
		delay = time.Second / 60
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			glib.IdleAdd(func() {
				w.gla.QueueRender()
			})
		case <-ctx.Done():
			return
		}
	}
}

func (w *RenderWindow) glaRealize(gla *gtk.GLArea) {
	gla.MakeCurrent()
	if err := gla.GetError(); err != nil {
		w.quit(fmt.Errorf("GLArea: %w", err))
		return
	}

	err := w.renderer.init(w.program)
	if err != nil {
		w.quit(err)
		return
	}
	w.postView(0)
}

func (w *RenderWindow) glaRender(gla *gtk.GLArea) {
	changed := w.controller.Update(w.sample)
	w.sample.Scroll = 0

	w.uniforms.SetView(w.controller.View(), w.width, w.height)
	w.renderer.draw(&w.uniforms)

	fps, updated := w.frames.Frame(time.Now())
	if changed || updated {
		w.postView(fps)
	}
}

func (w *RenderWindow) glaUnrealize(gla *gtk.GLArea) {
	gla.MakeCurrent()
	w.renderer.destroy()
}

func (w *RenderWindow) resize(gla *gtk.GLArea, width, height int) {
	w.width, w.height = width, height
	w.renderer.viewport(width, height)
}

// pointer normalizes a position in widget coordinates.
func (w *RenderWindow) pointer(x, y float64) mgl64.Vec2 {
	return viewport.Normalize(x, y, w.gla.GetAllocatedWidth(), w.gla.GetAllocatedHeight())
}

func (w *RenderWindow) button(gla *gtk.GLArea, event *gdk.Event) {
	button := gdk.EventButtonNewFromEvent(event)
	if button.Button() != gdk.BUTTON_PRIMARY {
		return
	}

	w.sample.Pos = w.pointer(button.X(), button.Y())
	switch button.Type() {
	case gdk.EVENT_BUTTON_PRESS:
		w.sample.Dragging = true
	case gdk.EVENT_BUTTON_RELEASE:
		w.sample.Dragging = false
	}
	gla.QueueRender()
}

func (w *RenderWindow) motion(gla *gtk.GLArea, event *gdk.Event) {
	motion := gdk.EventMotionNewFromEvent(event)
	w.sample.Pos = w.pointer(motion.MotionVal())
	if w.sample.Dragging {
		gla.QueueRender()
	}
}

func (w *RenderWindow) scroll(gla *gtk.GLArea, event *gdk.Event) {
	scroll := gdk.EventScrollNewFromEvent(event)
	w.sample.Pos = w.pointer(scroll.X(), scroll.Y())

	switch scroll.Direction() {
	case gdk.SCROLL_UP:
		w.sample.Scroll++
	case gdk.SCROLL_DOWN:
		w.sample.Scroll--
	case gdk.SCROLL_SMOOTH:
		w.sample.Scroll -= scroll.DeltaY()
	}
	gla.QueueRender()
}

func (w *RenderWindow) key(win *gtk.ApplicationWindow, event *gdk.Event) {
	key := gdk.EventKeyNewFromEvent(event)
	switch key.KeyVal() {
	case gdk.KEY_r:
		w.reset()
	case gdk.KEY_s:
		w.save()
	}
}

func (w *RenderWindow) reset() {
	w.controller.Reset()
	w.sample = viewport.PointerSample{Pos: w.sample.Pos}
	w.postView(w.frames.FPS())
	w.gla.QueueRender()
}

func (w *RenderWindow) postView(fps float64) {
	w.link.Post(&link.ViewMessage{
		View: w.controller.View(),
		FPS:  fps,
	})
}

func (w *RenderWindow) setProgram(program programs.Program, index int) {
	w.gla.MakeCurrent()
	if err := w.renderer.load(program); err != nil {
		showError(w, err)
		return
	}
	w.program, w.programIndex = program, index
	w.gla.QueueRender()
}

func (w *RenderWindow) handleMessage(msg interface{}) {
	switch msg := msg.(type) {
	case *link.ViewMessage:
		if !w.controller.Set(msg.View) {
			showError(w, fmt.Errorf("can't show view %+v", msg.View))
			return
		}
		w.postView(w.frames.FPS())
		w.gla.QueueRender()

	case *link.SettingsMessage:
		if msg.Iterations > 0 {
			w.uniforms.Iterations = msg.Iterations
		}
		w.uniforms.Seed = msg.Seed
		if msg.Program >= 0 && msg.Program < programs.NumPrograms() && msg.Program != w.programIndex {
			w.setProgram(programs.GetProgram(msg.Program), msg.Program)
		}
		w.gla.QueueRender()

	case *link.CommandMessage:
		switch msg.Command {
		case link.CommandReset:
			w.reset()
		case link.CommandSave:
			w.save()
		}
	}
}

// save renders the current view on the CPU at the window's size and writes
// it to the save directory, then offers a preview.
func (w *RenderWindow) save() {
	view := w.controller.View()
	opts := screenshotOptions(w.cfg, view, w.width, w.height)
	program, uniforms := w.program, w.uniforms

	ctx, cancel := context.WithCancel(w.ctx)
	dialog, err := newSaveDialog(w, opts, cancel)
	if err != nil {
		cancel()
		showError(w, err)
		return
	}
	opts.OnStage = dialog.setStage
	go dialog.follow(ctx)

	go func() {
		defer recoverTo(w.quit)
		defer cancel()

		err := raster.Save(ctx, program, uniforms, opts, dialog.track)
		switch {
		case errors.Is(err, context.Canceled):
			return
		case errors.Is(err, programs.ErrNoCPUImplementation):
			showError(w, fmt.Errorf("%v can't be saved: %w", program.Name, err))
			return
		case err != nil:
			showError(w, err)
			return
		}

		glib.IdleAdd(func() {
			w.preview(opts.Name, view)
		})
	}()
}

func (w *RenderWindow) preview(path string, view viewport.View) {
	app, err := w.GetApplication()
	if err != nil {
		log.Println(err)
		return
	}

	_, err = newPreviewWindow(app, path, view, w.returnTo, func() error {
		return removeFile(path)
	})
	if err != nil {
		showError(w, err)
	}
}

// returnTo moves back to a view a screenshot was taken at, going through
// the same path as a view typed into the control window.
func (w *RenderWindow) returnTo(view viewport.View) {
	w.handleMessage(&link.ViewMessage{View: view})
}
