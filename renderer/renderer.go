package renderer

import (
	"log"
	"time"

	"github.com/richinsley/shaderplayer/clock"
	"github.com/richinsley/shaderplayer/diagnostics"
	"github.com/richinsley/shaderplayer/graphics"
	"github.com/richinsley/shaderplayer/recovery"
	"github.com/richinsley/shaderplayer/shader"
	"github.com/richinsley/shaderplayer/state"
)

// FrameResult tells what a call to RenderFrame did.
type FrameResult int

const (
	FrameDrawn FrameResult = iota
	FramePaused
	FrameSkipped
)

// Renderer is the per-frame orchestrator. Everything except the store, the
// pipeline and the recovery machine is owned by the goroutine calling RenderFrame.
type Renderer struct {
	device   graphics.Device
	store    *state.Store
	pipeline *shader.Pipeline
	recovery *recovery.Machine
	diag     diagnostics.Publisher
	now      func() time.Time

	vertexSrc string
	pass      *RenderPass
	clock     clock.Clock
	lastState state.PlayerState

	// retryRestore is set when a forced reload left no program. The last
	// working source is then retried every retryInterval of wall time.
	retryRestore bool
	retryAt      float64
}

const retryInterval = 1.0

type Option func(*Renderer)

// WithNow replaces the wall clock used for the default iDate.
func WithNow(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

func NewRenderer(dev graphics.Device, store *state.Store, pipeline *shader.Pipeline, rec *recovery.Machine, diag diagnostics.Publisher, opts ...Option) *Renderer {
	r := &Renderer{
		device:    dev,
		store:     store,
		pipeline:  pipeline,
		recovery:  rec,
		diag:      diag,
		now:       time.Now,
		vertexSrc: shader.GenerateVertexShader(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderFrame runs one frame for the wall-clock sample t in seconds.
func (r *Renderer) RenderFrame(t float64) FrameResult {
	force := false
	switch r.recovery.Tick() {
	case recovery.Release:
		log.Println("Graphics device lost, releasing program")
		r.releasePass()
		r.clock.Hold(t)
		return FrameSkipped
	case recovery.Skip:
		r.clock.Hold(t)
		return FrameSkipped
	case recovery.Recompile:
		log.Println("Graphics device restored, forcing shader reload")
		force = true
	}

	src, ok := r.pipeline.TakePending()
	retry := !ok && !force && r.retryRestore && t >= r.retryAt
	if ok || force || retry {
		r.reload(src, ok, force || retry, !retry)
		r.retryRestore = r.pass == nil && (force || r.retryRestore) && r.pipeline.Active() != ""
		r.retryAt = t + retryInterval
	}

	if snap, ok := r.store.TrySnapshot(); ok {
		r.lastState = snap
	}

	tick := r.clock.Advance(t, r.lastState.IsPaused(), r.lastState.Speed())
	if tick.Paused {
		return FramePaused
	}
	if r.pass == nil {
		return FrameSkipped
	}

	r.updateUniforms(tick)
	r.clock.NextFrame()
	r.device.DrawQuad()
	return FrameDrawn
}

// Pass returns the program in use and its locations, nil if there is none.
func (r *Renderer) Pass() *RenderPass { return r.pass }

func (r *Renderer) Clock() *clock.Clock { return &r.clock }

// Shutdown releases the program. It must run on the render goroutine.
func (r *Renderer) Shutdown() {
	r.releasePass()
}

func (r *Renderer) releasePass() {
	if r.pass == nil {
		return
	}
	r.device.DeleteProgram(r.pass.Program)
	r.pass = nil
}

// reload compiles the pending source, or on a forced reload the last working
// source. A failure leaves the current pass untouched and is published when
// report is set, otherwise only logged.
func (r *Renderer) reload(pending string, hasPending, force, report bool) {
	var candidates []string
	if hasPending {
		candidates = append(candidates, pending)
	}
	if force {
		if active := r.pipeline.Active(); active != "" && (!hasPending || active != pending) {
			candidates = append(candidates, active)
		}
	}
	for _, src := range candidates {
		err := r.swap(src)
		if err == nil {
			return
		}
		if !report {
			log.Printf("Shader reload retry failed: %v", err)
			continue
		}
		diagnostics.Publishf(r.diag, diagnostics.KindCompile, "Shader compilation error: %v", err)
	}
}

func (r *Renderer) swap(src string) error {
	prog, err := r.device.CompileProgram(r.vertexSrc, src)
	if err != nil {
		return err
	}
	pass := newRenderPass(r.device, prog)
	old := r.pass
	r.pass = pass
	r.device.UseProgram(prog)
	r.pipeline.Activate(src)
	if old != nil {
		r.device.DeleteProgram(old.Program)
	}
	log.Println("Shader reloaded")
	return nil
}

// updateUniforms uploads all seven uniforms, preferring stored overrides.
func (r *Renderer) updateUniforms(tick clock.Tick) {
	u := r.lastState.Overrides()
	p := r.pass
	dev := r.device

	width, height := dev.DrawingBufferSize()
	res := u.Resolution.OrElse(state.Resolution{
		Width:            float32(width),
		Height:           float32(height),
		PixelAspectRatio: dev.PixelRatio(),
	})
	dev.Uniform3f(p.resolutionLoc, res.Width, res.Height, res.PixelAspectRatio)

	dev.Uniform1f(p.timeLoc, u.Time.OrElse(float32(tick.Time)))

	delta := u.TimeDelta.OrElse(float32(tick.Delta))
	dev.Uniform1f(p.timeDeltaLoc, delta)

	dev.Uniform1i(p.frameLoc, int32(u.Frame.OrElse(state.FrameIndex(r.clock.Frame()))))

	var rate float32
	if delta > 0 {
		rate = 1 / delta
	}
	dev.Uniform1f(p.frameRateLoc, u.FrameRate.OrElse(rate))

	m := u.Mouse.OrElse(state.Mouse{})
	dev.Uniform4f(p.mouseLoc, m.X, m.Y, m.DownX, m.DownY)

	d := u.Date.OrElse(DateOf(r.now()))
	dev.Uniform4f(p.dateLoc, d.Year, d.Month, d.Day, d.SecondsSinceMidnight)
}

// DateOf returns the default iDate for t: zero-based month, day of month,
// and seconds since local midnight.
func DateOf(t time.Time) state.Date {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return state.Date{
		Year:                 float32(t.Year()),
		Month:                float32(t.Month() - 1),
		Day:                  float32(t.Day()),
		SecondsSinceMidnight: float32(t.Sub(midnight).Seconds()),
	}
}

// Run drives RenderFrame from the window until it is closed.
func (r *Renderer) Run(ctx graphics.Context) {
	for !ctx.ShouldClose() {
		r.RenderFrame(ctx.Time())
		ctx.EndFrame()
	}
}
