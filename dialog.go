package main

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/mandelview/raster"
	"github.com/stewi1014/mandelview/viewport"
)

// recoverTo turns a panic in the deferring goroutine into quit's cause.
func recoverTo(quit context.CancelCauseFunc) {
	v := recover()
	if v == nil {
		return
	}
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("%v", v)
	}
	quit(fmt.Errorf("panic: %w\n%s", err, debug.Stack()))
}

// showError logs err and shows it over parent. It may be called from any goroutine.
func showError(parent gtk.IWindow, err error) {
	log.Println(err)
	glib.IdleAdd(func() {
		dialog := gtk.MessageDialogNew(
			parent,
			gtk.DIALOG_DESTROY_WITH_PARENT,
			gtk.MESSAGE_ERROR,
			gtk.BUTTONS_CLOSE,
			"%s", err.Error(),
		)
		dialog.SetTitle("Mandelview")
		dialog.Connect("response", dialog.Destroy)
		dialog.Show()
	})
}

// reportErrors adapts a failable widget handler to a signal callback.
func reportErrors(parent gtk.IWindow, handler func() error) func() {
	return func() {
		if err := handler(); err != nil {
			showError(parent, err)
		}
	}
}

// saveDialog follows a screenshot through raster.Save.
type saveDialog struct {
	*gtk.Dialog
	stage *gtk.Label
	bar   *gtk.ProgressBar

	mu      sync.Mutex
	current raster.Stage
	done    func() float64
}

func newSaveDialog(parent gtk.IWindow, opts raster.SaveOptions, cancel func()) (*saveDialog, error) {
	dialog, err := gtk.DialogNewWithButtons(
		"Saving view",
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		[]interface{}{"Cancel", gtk.RESPONSE_CANCEL},
	)
	if err != nil {
		return nil, fmt.Errorf("gtk.DialogNewWithButtons: %w", err)
	}

	d := &saveDialog{Dialog: dialog}
	d.Connect("response", func(_ *gtk.Dialog, response gtk.ResponseType) {
		if response == gtk.RESPONSE_CANCEL {
			cancel()
		}
	})

	content, err := d.GetContentArea()
	if err != nil {
		return nil, err
	}
	content.SetSpacing(6)
	content.SetBorderWidth(8)

	path, _ := gtk.LabelNew(opts.Name)
	path.SetXAlign(0)
	path.SetSelectable(true)
	content.Add(path)

	if opts.Caption != "" {
		caption, _ := gtk.LabelNew(opts.Caption)
		caption.SetXAlign(0)
		caption.SetSelectable(true)
		content.Add(caption)
	}

	d.stage, _ = gtk.LabelNew(raster.StageRender.String())
	d.stage.SetXAlign(0)
	content.Add(d.stage)

	d.bar, _ = gtk.ProgressBarNew()
	d.bar.SetShowText(true)
	d.bar.SetSizeRequest(420, -1)
	content.Add(d.bar)

	d.ShowAll()
	return d, nil
}

// track is handed to raster.Save as its progress callback.
func (d *saveDialog) track(done func() float64) {
	d.mu.Lock()
	d.done = done
	d.mu.Unlock()
}

// setStage is used as SaveOptions.OnStage.
func (d *saveDialog) setStage(stage raster.Stage) {
	d.mu.Lock()
	d.current = stage
	d.mu.Unlock()
}

// follow refreshes the dialog until ctx is done, then closes it.
func (d *saveDialog) follow(ctx context.Context) {
	ticker := time.NewTicker(time.Second / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.mu.Lock()
			stage, done := d.current, d.done
			d.mu.Unlock()

			glib.IdleAdd(func() {
				d.stage.SetText(stage.String())
				// Caption and encode report no progress of their own.
				if done == nil || stage != raster.StageRender {
					d.bar.Pulse()
					return
				}
				d.bar.SetFraction(done())
			})
		case <-ctx.Done():
			glib.IdleAdd(d.Destroy)
			return
		}
	}
}

// newPreviewWindow shows a saved screenshot and the view it was taken at.
// onReturn moves the explorer back to that view; onDelete removes the file.
func newPreviewWindow(
	app *gtk.Application,
	path string,
	view viewport.View,
	onReturn func(viewport.View),
	onDelete func() error,
) (*gtk.ApplicationWindow, error) {
	pixbuf, err := gdk.PixbufNewFromFileAtScale(path, 800, 600, true)
	if err != nil {
		return nil, fmt.Errorf("loading preview of %v: %w", path, err)
	}

	win, err := gtk.ApplicationWindowNew(app)
	if err != nil {
		return nil, fmt.Errorf("gtk.ApplicationWindowNew: %w", err)
	}
	win.SetTitle(path)

	image, err := gtk.ImageNewFromPixbuf(pixbuf)
	if err != nil {
		return nil, err
	}
	image.SetHExpand(true)
	image.SetVExpand(true)

	caption, _ := gtk.LabelNew(raster.ViewCaption(view))
	caption.SetSelectable(true)

	keep, _ := gtk.ButtonNewWithLabel("Keep")
	keep.Connect("clicked", win.Destroy)

	goBack, _ := gtk.ButtonNewWithLabel("Go back here")
	goBack.Connect("clicked", func() {
		onReturn(view)
	})

	remove, _ := gtk.ButtonNewWithLabel("Delete")
	remove.Connect("clicked", func() {
		if err := onDelete(); err != nil {
			showError(win, err)
			return
		}
		win.Destroy()
	})

	grid, _ := gtk.GridNew()
	grid.SetRowSpacing(6)
	grid.SetColumnSpacing(6)
	grid.Attach(image, 0, 0, 3, 1)
	grid.Attach(caption, 0, 1, 3, 1)
	grid.Attach(keep, 0, 2, 1, 1)
	grid.Attach(goBack, 1, 2, 1, 1)
	grid.Attach(remove, 2, 2, 1, 1)

	win.Add(grid)
	win.ShowAll()
	return win, nil
}
