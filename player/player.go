// Package player is the host-facing API. Every call returns immediately;
// failures are reported through the diagnostics publisher.
package player

import (
	"github.com/richinsley/shaderplayer/diagnostics"
	"github.com/richinsley/shaderplayer/recovery"
	"github.com/richinsley/shaderplayer/shader"
	"github.com/richinsley/shaderplayer/state"
)

// Player owns the state shared between the host and the render loop.
type Player struct {
	Store    *state.Store
	Pipeline *shader.Pipeline
	Recovery *recovery.Machine
	Diag     diagnostics.Publisher
	mouse    *state.MouseCapture
}

// New creates a player showing defaultShader until the host sets another.
func New(diag diagnostics.Publisher, defaultShader string) *Player {
	store := state.NewStore()
	return &Player{
		Store:    store,
		Pipeline: shader.NewPipeline(defaultShader),
		Recovery: recovery.New(),
		Diag:     diag,
		mouse:    state.NewMouseCapture(store),
	}
}

// SetFragmentShader queues user code defining mainImage. Compile errors show up later.
func (p *Player) SetFragmentShader(source string) {
	if err := p.Pipeline.SetSource(source); err != nil {
		diagnostics.Publishf(p.Diag, diagnostics.KindInput, "Rejected shader: %v", err)
	}
}

// UpdatePlayerState merges a JSON player state. A malformed payload is
// reported and leaves the stored state unchanged.
func (p *Player) UpdatePlayerState(data []byte) error {
	s, err := state.Parse(data)
	if err != nil {
		diagnostics.Publishf(p.Diag, diagnostics.KindInput, "Unknown player state format: %v", err)
		return err
	}
	p.Store.Merge(s)
	return nil
}

// PlayerState returns the merged state.
func (p *Player) PlayerState() state.PlayerState {
	return p.Store.Snapshot()
}

func (p *Player) Play() { p.Store.SetPaused(false) }

func (p *Player) Stop() { p.Store.SetPaused(true) }

// TogglePause flips the stored paused flag.
func (p *Player) TogglePause() {
	p.Store.TogglePaused()
}

// PointerDown, PointerMove and PointerUp take canvas-local pixels.
func (p *Player) PointerDown(x, y float32) { p.mouse.Press(x, y) }

func (p *Player) PointerMove(x, y float32) { p.mouse.Move(x, y) }

func (p *Player) PointerUp() { p.mouse.Release() }

// DeviceLost and DeviceRestored report only transitions that changed state.
func (p *Player) DeviceLost() {
	if p.Recovery.DeviceLost() {
		p.Diag.Publish(diagnostics.KindDevice, "Graphics device lost")
	}
}

func (p *Player) DeviceRestored() {
	if p.Recovery.DeviceRestored() {
		p.Diag.Publish(diagnostics.KindDevice, "Graphics device restored")
	}
}
