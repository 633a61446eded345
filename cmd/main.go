package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goshaderdemos/api"
	"github.com/richinsley/goshaderdemos/bake"
	"github.com/richinsley/goshaderdemos/camera"
	"github.com/richinsley/goshaderdemos/config"
	"github.com/richinsley/goshaderdemos/controls"
	"github.com/richinsley/goshaderdemos/diag"
	"github.com/richinsley/goshaderdemos/frame"
	"github.com/richinsley/goshaderdemos/glfwcontext"
	"github.com/richinsley/goshaderdemos/host"
	"github.com/richinsley/goshaderdemos/inputs"
	"github.com/richinsley/goshaderdemos/logger"
	"github.com/richinsley/goshaderdemos/options"
	"github.com/richinsley/goshaderdemos/renderer"
	"github.com/richinsley/goshaderdemos/shader"
	"github.com/richinsley/goshaderdemos/uniforms"
	"go.uber.org/zap"
)

// Pages are treated as running on a constrained device below this monitor
// width when -lowres is auto.
const constrainedMonitorWidth = 1280

// defaultCamera is used by scene pages that do not configure a position.
var defaultCamera = mgl32.Vec3{0, 0, 5}

func init() {
	runtime.LockOSThread()
}

func parseFlags() *options.ShowcaseOptions {
	opts := &options.ShowcaseOptions{
		Manifest:   flag.String("manifest", "showcase/showcase.yaml", "Path to the showcase manifest"),
		Page:       flag.String("page", "", "Slug of the page to open (default: the first page)"),
		Help:       flag.Bool("help", false, "Show help message"),
		Mode:       flag.String("mode", "live", "Mode: live, record or list"),
		Duration:   flag.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        flag.Int("fps", 60, "Frames per second for recording"),
		Width:      flag.Int("width", 1280, "Width of the window or recording"),
		Height:     flag.Int("height", 720, "Height of the window or recording"),
		OutputFile: flag.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		LowRes:     flag.String("lowres", "auto", "Use low resolution textures: on, off or auto"),
		Watch:      flag.Bool("watch", false, "Reload the page shaders when their files change"),
		Verbose:    flag.Bool("verbose", false, "Enable development logging"),
	}
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()
	if *opts.Help {
		fmt.Println("Shader showcase viewer/recorder")
		flag.PrintDefaults()
		return
	}

	if err := logger.Init(*opts.Verbose); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(opts); err != nil {
		logger.Log.Error("Showcase failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(opts *options.ShowcaseOptions) error {
	m, err := config.Load(*opts.Manifest)
	if err != nil {
		return err
	}

	switch *opts.Mode {
	case "list":
		printCards(os.Stdout, m)
		return nil
	case "live", "record":
	default:
		return fmt.Errorf("unknown mode %q", *opts.Mode)
	}

	slug := *opts.Page
	if slug == "" {
		if len(m.Pages) == 0 {
			return errors.New("manifest has no pages")
		}
		slug = m.Pages[0].Slug
	}
	page, err := m.Page(slug)
	if err != nil {
		return err
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runPage(ctx, opts, m, page)
}

// prepared is what page setup produces off the render thread.
type prepared struct {
	images uniforms.Images
	shader *shader.Translated
}

func (p *prepared) Close() error { return nil }

func runPage(ctx context.Context, opts *options.ShowcaseOptions, m *config.Manifest, page *config.Page) (err error) {
	record := *opts.Mode == "record"
	constrained, err := constrainedDevice(*opts.LowRes, glfwcontext.PrimaryMonitorWidth())
	if err != nil {
		return err
	}
	title := page.Title.String()
	logger.Log.Info("Mounting page",
		zap.String("page", page.Slug),
		zap.String("backend", string(page.Backend)),
		zap.Bool("constrained", constrained))

	window, err := glfwcontext.New(glfwcontext.Config{
		Width:   *opts.Width,
		Height:  *opts.Height,
		Title:   title,
		Visible: !record,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	var overlay *diag.Overlay
	var hostOverlay host.Overlay
	if !record {
		overlay = diag.New(title, time.Second, window.SetTitle)
		hostOverlay = overlay
	}

	loader := api.NewLoader(m.Dir)
	h := host.Mount(ctx, func(ctx context.Context) (io.Closer, error) {
		images, err := uniforms.Fetch(ctx, loader, page.Descriptors, constrained)
		if err != nil {
			return nil, err
		}
		src, err := shader.Translate(page.Shader)
		if err != nil {
			return nil, err
		}
		return &prepared{images: images, shader: src}, nil
	}, hostOverlay)
	h.Adopt(window)
	defer func() {
		if uerr := h.Unmount(); uerr != nil {
			logger.Log.Warn("Releasing page resources failed", zap.Error(uerr))
			if err == nil {
				err = uerr
			}
		}
	}()

	res, err := h.Await(ctx)
	if err != nil {
		return err
	}
	prep := res.(*prepared)

	dpr := page.DPR
	if record {
		dpr = 1
	}
	r, err := renderer.NewRenderer(window, dpr)
	if err != nil {
		return err
	}
	h.Adopt(r)

	program, err := renderer.NewProgram(prep.shader)
	if err != nil {
		return fmt.Errorf("page %q: %w", page.Slug, err)
	}

	panel := controls.NewPanel()
	table, err := uniforms.Resolve(page.Descriptors, prep.images, uniforms.Env{Textures: inputs.Factory{}, Controls: panel})
	if err != nil {
		program.Destroy()
		return err
	}

	var bakers []*bake.Baker
	for _, v := range uniforms.Volumes(page.Descriptors) {
		bakers = append(bakers, bake.NewBaker(v, r.NewSliceRenderer, inputs.Factory{}))
	}

	var orbit *camera.Orbit
	if page.Backend == frame.BackendScene {
		pos := defaultCamera
		if page.Camera != nil {
			pos = *page.Camera
		}
		orbit = camera.NewOrbit(pos, page.MinDistance, page.MaxDistance)
	}

	var clock frame.Clock = frame.SystemClock
	var stepClock *frame.StepClock
	if record {
		stepClock = frame.NewStepClock(time.Now(), *opts.FPS)
		clock = stepClock
	}

	sync, err := frame.New(program, r, frame.Config{
		Descriptors: page.Descriptors,
		Table:       table,
		Bakers:      bakers,
		Controls:    panel,
		Camera:      orbit,
		Names:       frame.NamesFor(page.Backend),
		Clock:       clock,
	})
	if err != nil {
		program.Destroy()
		table.Release()
		return err
	}
	h.Adopt(host.CloserFunc(func() error {
		sync.Release()
		return nil
	}))
	r.Attach(program, sync, overlay)

	for _, c := range panel.Controls() {
		d := c.Descriptor()
		logger.Log.Info("Control available",
			zap.String("uniform", d.Name),
			zap.Float32("value", c.Value()),
			zap.Float32("min", d.Min),
			zap.Float32("max", d.Max))
	}

	if record {
		return r.Record(ctx, renderer.RecordOptions{
			Duration:   *opts.Duration,
			FPS:        *opts.FPS,
			OutputFile: *opts.OutputFile,
			FFMPEGPath: *opts.FFMPEGPath,
		}, stepClock)
	}

	if *opts.Watch {
		w, err := config.Watch(page.ShaderFiles.Vertex, page.ShaderFiles.Fragment)
		if err != nil {
			return err
		}
		h.Adopt(w)
		r.WatchShaders(w.Changes(), page.ShaderFiles)
		logger.Log.Info("Watching shader files", zap.String("fragment", page.ShaderFiles.Fragment))
	}

	err = r.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// constrainedDevice decides whether low resolution texture sources are used.
func constrainedDevice(mode string, monitorWidth int) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return monitorWidth > 0 && monitorWidth < constrainedMonitorWidth, nil
	}
	return false, fmt.Errorf("invalid -lowres value %q", mode)
}

// printCards writes the showcase index.
func printCards(w io.Writer, m *config.Manifest) {
	if m.Title.Name != "" {
		fmt.Fprintln(w, m.Title.String())
	}
	if m.Description != "" {
		fmt.Fprintln(w, m.Description)
	}
	for _, c := range m.Cards() {
		fmt.Fprintf(w, "\n  %s\n", c.Title)
		if c.Description != "" {
			fmt.Fprintf(w, "    %s\n", c.Description)
		}
		fmt.Fprintf(w, "    -page %s\n", c.Slug)
	}
}
