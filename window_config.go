package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/mandelview/config"
	"github.com/stewi1014/mandelview/link"
	"github.com/stewi1014/mandelview/programs"
	"github.com/stewi1014/mandelview/viewport"
)

func NewConfigWindow(
	app *gtk.Application,
	listener net.Listener,
	cfg config.Config,
	ctx context.Context,
	quit context.CancelCauseFunc,
) *ConfigWindow {
	var err error
	w := &ConfigWindow{
		quit: quit,
		view: cfg.InitialView(),
	}

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(280, 500)

	box, _ := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 6)
	box.SetBorderWidth(8)

	addRow := func(label string, widget gtk.IWidget) {
		l, _ := gtk.LabelNew(label)
		l.SetXAlign(0)
		box.PackStart(l, false, false, 0)
		box.PackStart(widget, false, false, 0)
	}

	w.xEntry, _ = gtk.EntryNew()
	w.yEntry, _ = gtk.EntryNew()
	w.zoomEntry, _ = gtk.EntryNew()
	for _, entry := range []*gtk.Entry{w.xEntry, w.yEntry, w.zoomEntry} {
		entry.Connect("activate", reportErrors(w, w.applyView))
	}
	addRow("X offset", w.xEntry)
	addRow("Y offset", w.yEntry)
	addRow("Zoom", w.zoomEntry)

	minIterations, maxIterations := cfg.IterationRange()
	w.iterations, _ = gtk.ScaleNewWithRange(gtk.ORIENTATION_HORIZONTAL, float64(minIterations), float64(maxIterations), 10)
	w.iterations.SetDigits(0)
	w.iterations.SetValue(float64(cfg.Iterations))
	w.iterations.Connect("value-changed", w.sendSettings)
	addRow("Iterations", w.iterations)

	var u programs.Uniforms
	u.DefaultValues()
	w.seedX, _ = gtk.ScaleNewWithRange(gtk.ORIENTATION_HORIZONTAL, -2, 2, 0.001)
	w.seedX.SetDigits(4)
	w.seedX.SetValue(u.Seed[0])
	w.seedX.Connect("value-changed", w.sendSettings)
	w.seedY, _ = gtk.ScaleNewWithRange(gtk.ORIENTATION_HORIZONTAL, -2, 2, 0.001)
	w.seedY.SetDigits(4)
	w.seedY.SetValue(u.Seed[1])
	w.seedY.Connect("value-changed", w.sendSettings)
	addRow("Julia seed (real)", w.seedX)
	addRow("Julia seed (imaginary)", w.seedY)

	w.program, _ = gtk.ComboBoxTextNew()
	for i := 0; i < programs.NumPrograms(); i++ {
		w.program.AppendText(programs.GetProgram(i).Name)
	}
	if cfg.Shader == "" {
		if _, index, err := cfg.StartProgram(); err == nil {
			w.program.SetActive(index)
		}
	}
	w.program.Connect("changed", w.sendSettings)
	addRow("Program", w.program)

	buttons, _ := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 6)
	resetButton, _ := gtk.ButtonNewWithLabel("Reset")
	resetButton.Connect("clicked", func() {
		w.post(&link.CommandMessage{Command: link.CommandReset})
	})
	saveButton, _ := gtk.ButtonNewWithLabel("Save")
	saveButton.Connect("clicked", func() {
		w.post(&link.CommandMessage{Command: link.CommandSave})
	})
	buttons.PackStart(resetButton, true, true, 0)
	buttons.PackStart(saveButton, true, true, 0)
	box.PackStart(buttons, false, false, 6)

	w.fps, _ = gtk.LabelNew("")
	w.fps.SetXAlign(0)
	box.PackEnd(w.fps, false, false, 0)

	w.Add(box)
	w.showView(w.view, 0)
	w.ShowAll()

	go w.serve(ctx, listener)

	return w
}

// ConfigWindow shows where the render window is looking and edits what it draws.
type ConfigWindow struct {
	*gtk.ApplicationWindow
	quit context.CancelCauseFunc
	link *link.Conn

	view viewport.View

	xEntry, yEntry, zoomEntry *gtk.Entry
	iterations                *gtk.Scale
	seedX, seedY              *gtk.Scale
	program                   *gtk.ComboBoxText
	fps                       *gtk.Label
}

func (w *ConfigWindow) serve(ctx context.Context, listener net.Listener) {
	defer recoverTo(w.quit)
	defer listener.Close()

	conn, err := listener.Accept()
	if err != nil {
		w.quit(err)
		return
	}

	c := link.NewConn(ctx, conn)
	glib.IdleAdd(func() {
		w.link = c
	})

	go func() {
		defer recoverTo(w.quit)
		if err := c.SendLoop(ctx); err != nil {
			w.quit(err)
		}
	}()

	err = c.ReceiveLoop(ctx, func(msg interface{}) {
		if msg, ok := msg.(*link.ViewMessage); ok {
			glib.IdleAdd(func() {
				w.showView(msg.View, msg.FPS)
			})
		}
	})
	if err != nil {
		w.quit(err)
	}
}

func (w *ConfigWindow) post(msg interface{}) {
	if w.link == nil {
		return
	}
	w.link.Post(msg)
}

func (w *ConfigWindow) showView(view viewport.View, fps float64) {
	w.view = view

	for _, field := range []struct {
		entry *gtk.Entry
		value float64
	}{
		{w.xEntry, view.Offset[0]},
		{w.yEntry, view.Offset[1]},
		{w.zoomEntry, view.Zoom},
	} {
		if !field.entry.HasFocus() {
			field.entry.SetText(strconv.FormatFloat(field.value, 'g', -1, 64))
		}
	}

	if fps > 0 {
		w.fps.SetText(fmt.Sprintf("%.1f FPS", fps))
	}
}

// applyView sends the view typed into the entries.
func (w *ConfigWindow) applyView() error {
	view := w.view

	for _, field := range []struct {
		name  string
		entry *gtk.Entry
		dest  *float64
	}{
		{"x offset", w.xEntry, &view.Offset[0]},
		{"y offset", w.yEntry, &view.Offset[1]},
		{"zoom", w.zoomEntry, &view.Zoom},
	} {
		text, err := field.entry.GetText()
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("%v: %w", field.name, err)
		}
		*field.dest = v
	}

	if !view.Valid() {
		return fmt.Errorf("can't show x %v, y %v at zoom %v", view.Offset[0], view.Offset[1], view.Zoom)
	}

	w.post(&link.ViewMessage{View: view})
	return nil
}

func (w *ConfigWindow) sendSettings() {
	w.post(&link.SettingsMessage{
		Iterations: int32(w.iterations.GetValue()),
		Program:    w.program.GetActive(),
		Seed:       mgl64.Vec2{w.seedX.GetValue(), w.seedY.GetValue()},
	})
}
