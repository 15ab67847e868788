package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/spf13/cobra"
	"github.com/stewi1014/mandelview/config"
	"github.com/stewi1014/mandelview/link"
)

var (
	version = "0.1.0"
	glDebug = false
)

func init() {
	// GTK and GLFW both want the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type configFlags struct {
	path       string
	width      int
	height     int
	precision  string
	program    string
	shader     string
	iterations int
	saveDir    string
}

func (f *configFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&f.path, "config", "c", "mandelview.yaml", "Settings file; the default is optional")
	flags.IntVar(&f.width, "width", 0, "Window or image width in pixels")
	flags.IntVar(&f.height, "height", 0, "Window or image height in pixels")
	flags.StringVar(&f.precision, "precision", "", "Shader precision, double or single")
	flags.StringVar(&f.program, "program", "", "Program to draw (mandelbrot, mandelbrot32, julia)")
	flags.StringVar(&f.shader, "shader", "", "Fragment shader file to draw instead, reloaded on change")
	flags.IntVar(&f.iterations, "iterations", 0, "Maximum iterations per point")
	flags.StringVar(&f.saveDir, "save-dir", "", "Directory screenshots are saved to")
	flags.BoolVar(&glDebug, "debug", false, "Log OpenGL debug messages")
}

// load reads the settings file and applies flags given on the command line.
func (f *configFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.path, !cmd.Flags().Changed("config"))
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = f.width
	}
	if flags.Changed("height") {
		cfg.Height = f.height
	}
	if flags.Changed("precision") {
		cfg.Precision = f.precision
	}
	if flags.Changed("program") {
		cfg.Program = f.program
	}
	if flags.Changed("shader") {
		cfg.Shader = f.shader
	}
	if flags.Changed("iterations") {
		cfg.Iterations = f.iterations
	}
	if flags.Changed("save-dir") {
		cfg.SaveDir = f.saveDir
	}

	return cfg, cfg.Validate()
}

func newRootCommand() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "mandelview",
		Short: "Explore the Mandelbrot set",
		Long: `mandelview draws the Mandelbrot set on the GPU.

Scroll to zoom about the pointer, drag to pan, r resets the view and
s saves a screenshot. A second window shows the view's coordinates and
holds the iteration and program controls.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), func(ctx context.Context) error {
				return gtkMain(ctx, cfg)
			})
		},
	}

	flags.register(cmd)
	cmd.AddCommand(newLiteCommand(flags))
	cmd.AddCommand(newRenderCommand(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("mandelview", version)
		},
	})

	return cmd
}

func newLiteCommand(flags *configFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lite",
		Short: "Explore in a single GLFW window without the control window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), func(ctx context.Context) error {
				return liteMain(ctx, cfg)
			})
		},
	}
}

// run calls main with a context cancelled on interrupt, and returns the
// cause the context was cancelled with.
func run(parent context.Context, main func(ctx context.Context) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	mainContext, mainQuit := context.WithCancelCause(ctx)
	defer mainQuit(nil)

	mainQuit(main(mainContext))

	err := context.Cause(mainContext)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func gtkMain(ctx context.Context, cfg config.Config) error {
	gtk.Init(nil)
	app, err := gtk.ApplicationNew("com.github.stewi1014.mandelview", glib.APPLICATION_FLAGS_NONE)
	if err != nil {
		return fmt.Errorf("gtk.ApplicationNew failed: %w", err)
	}

	appContext, appQuit := context.WithCancelCause(ctx)
	defer appQuit(nil)

	app.Connect("activate", func() {
		client, listener := link.NewPipeListener()

		renderWindow := NewRenderWindow(app, client, cfg, appContext, appQuit)
		if renderWindow == nil {
			return
		}
		renderWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		renderWindow.SetTitle("Mandelview")

		configWindow := NewConfigWindow(app, listener, cfg, appContext, appQuit)
		if configWindow == nil {
			return
		}
		configWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		configWindow.SetTitle("Mandelview Controls")
	})

	go func() {
		<-appContext.Done()
		glib.IdleAdd(app.Quit)
	}()
	app.Run(nil)

	appQuit(nil)
	return context.Cause(appContext)
}
