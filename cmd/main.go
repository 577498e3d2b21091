package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/richinsley/shaderplayer/api"
	"github.com/richinsley/shaderplayer/control"
	"github.com/richinsley/shaderplayer/diagnostics"
	"github.com/richinsley/shaderplayer/encoder"
	"github.com/richinsley/shaderplayer/glbackend"
	"github.com/richinsley/shaderplayer/glfwcontext"
	"github.com/richinsley/shaderplayer/options"
	"github.com/richinsley/shaderplayer/player"
	"github.com/richinsley/shaderplayer/renderer"
	"github.com/richinsley/shaderplayer/shader"
	"github.com/richinsley/shaderplayer/watcher"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	fs := flag.CommandLine
	opts := options.Register(fs)
	flag.Parse()

	if *opts.Help {
		fmt.Println("Live fragment shader player")
		flag.PrintDefaults()
		return
	}

	// The config file's player section is applied once the player exists.
	var startState []byte
	if *opts.ConfigFile != "" {
		cfg, err := options.LoadConfig(*opts.ConfigFile)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		opts.Apply(fs, cfg)
		startState, err = cfg.PlayerJSON()
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := diagnostics.NewHub()
	p := player.New(hub, shader.DefaultImageShader)
	if startState != nil {
		if err := p.UpdatePlayerState(startState); err != nil {
			log.Fatalf("Invalid player state in config: %v", err)
		}
	}
	p.Store.Merge(opts.PlaybackState(fs))

	title := "shaderplayer"
	if *opts.Shadertoy != "" {
		t, err := loadShadertoy(ctx, p, opts)
		if err != nil {
			log.Fatalf("Error fetching shader: %v", err)
		}
		title = t
	}

	if *opts.ShaderFile != "" {
		w, err := watcher.New(*opts.ShaderFile, p, hub)
		if err != nil {
			log.Fatalf("Error watching shader: %v", err)
		}
		if err := w.Load(); err != nil {
			log.Fatalf("Error loading shader: %v", err)
		}
		go w.Run(ctx)
	}

	if *opts.Listen != "" {
		srv := control.NewServer(p, hub)
		go func() {
			if err := srv.ListenAndServe(ctx, *opts.Listen); err != nil {
				log.Printf("%v", err)
			}
		}()
	}

	switch *opts.Mode {
	case options.ModeWindow:
		runWindow(ctx, p, opts, title)
	case options.ModeRecord:
		if err := runRecord(ctx, p, opts); err != nil {
			log.Fatalf("Recording failed: %v", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
	default:
		log.Fatalf("Unknown mode %q", *opts.Mode)
	}
}

// loadShadertoy queues the shader's image pass and returns its title.
func loadShadertoy(ctx context.Context, p *player.Player, opts *options.ShaderOptions) (string, error) {
	var cacheDir string
	if !*opts.NoCache {
		if dir, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(dir, "shaderplayer", "shaders")
		}
	}
	log.Printf("Fetching shader with ID: %s", *opts.Shadertoy)
	s, err := api.NewClient("", cacheDir).Fetch(ctx, *opts.Shadertoy)
	if err != nil {
		return "", err
	}
	src, err := s.ImageSource()
	if err != nil {
		return "", err
	}
	p.SetFragmentShader(src)
	return s.Title(), nil
}

func newRenderer(p *player.Player, dev *glbackend.Device) *renderer.Renderer {
	return renderer.NewRenderer(dev, p.Store, p.Pipeline, p.Recovery, p.Diag)
}

func runWindow(ctx context.Context, p *player.Player, opts *options.ShaderOptions, title string) {
	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(*opts.Width, *opts.Height, true, title, p)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer win.Shutdown()

	dev, err := glbackend.NewDevice(win)
	if err != nil {
		log.Fatalf("Failed to create device: %v", err)
	}
	defer dev.Shutdown()

	r := newRenderer(p, dev)
	defer r.Shutdown()

	go func() {
		<-ctx.Done()
		win.Close()
	}()

	log.Println("Starting interactive render loop...")
	r.Run(win)
}

func runRecord(ctx context.Context, p *player.Player, opts *options.ShaderOptions) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(*opts.Width, *opts.Height, false, "shaderplayer", nil)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Shutdown()

	dev, err := glbackend.NewDevice(win)
	if err != nil {
		return err
	}
	defer dev.Shutdown()
	if err := dev.EnableOffscreen(*opts.Width, *opts.Height); err != nil {
		return err
	}

	enc, err := encoder.Start(encoder.Options{
		Width:      *opts.Width,
		Height:     *opts.Height,
		FPS:        *opts.FPS,
		OutputFile: *opts.OutputFile,
		FFMPEGPath: *opts.FFMPEGPath,
		Codec:      *opts.Codec,
	})
	if err != nil {
		return err
	}

	r := newRenderer(p, dev)
	defer r.Shutdown()

	log.Println("Starting offscreen render loop...")
	_, recErr := r.Record(ctx, dev, enc, *opts.FPS, *opts.Duration)
	if err := enc.Close(); err != nil && recErr == nil {
		return err
	}
	return recErr
}
