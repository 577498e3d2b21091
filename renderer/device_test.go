package renderer

import (
	"errors"
	"strings"
	"sync"

	"github.com/richinsley/shaderplayer/diagnostics"
	"github.com/richinsley/shaderplayer/graphics"
	"github.com/richinsley/shaderplayer/shader"
)

var uniformNames = []string{
	shader.UniformResolution, shader.UniformTime, shader.UniformTimeDelta, shader.UniformFrame,
	shader.UniformFrameRate, shader.UniformMouse, shader.UniformDate,
}

// fakeDevice records what the renderer asks of the graphics API.
type fakeDevice struct {
	next     graphics.Program
	live     map[graphics.Program]string
	deleted  []graphics.Program
	used     graphics.Program
	compiles int
	// broken makes every compile fail, as on a device that is not usable yet.
	broken bool
	draws    int
	values   map[graphics.Location][]float32
	width    int
	height   int
	ratio    float32
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		live:   make(map[graphics.Program]string),
		values: make(map[graphics.Location][]float32),
		width:  800,
		height: 600,
		ratio:  2,
	}
}

func (d *fakeDevice) CompileProgram(vertexSrc, fragmentSrc string) (graphics.Program, error) {
	d.compiles++
	if d.broken {
		return 0, errors.New("context not ready")
	}
	if !strings.Contains(fragmentSrc, "void mainImage") {
		return 0, errors.New("'mainImage' : no matching overloaded function found")
	}
	d.next++
	d.live[d.next] = fragmentSrc
	return d.next, nil
}

func (d *fakeDevice) DeleteProgram(p graphics.Program) {
	delete(d.live, p)
	d.deleted = append(d.deleted, p)
}

func (d *fakeDevice) UseProgram(p graphics.Program) { d.used = p }

func (d *fakeDevice) UniformLocation(p graphics.Program, name string) graphics.Location {
	for i, n := range uniformNames {
		if n == name {
			return graphics.Location(int32(p)*100 + int32(i))
		}
	}
	return graphics.NoLocation
}

func (d *fakeDevice) Uniform1f(loc graphics.Location, v float32) { d.values[loc] = []float32{v} }
func (d *fakeDevice) Uniform1i(loc graphics.Location, v int32)   { d.values[loc] = []float32{float32(v)} }
func (d *fakeDevice) Uniform3f(loc graphics.Location, x, y, z float32) {
	d.values[loc] = []float32{x, y, z}
}
func (d *fakeDevice) Uniform4f(loc graphics.Location, x, y, z, w float32) {
	d.values[loc] = []float32{x, y, z, w}
}

func (d *fakeDevice) DrawQuad()                     { d.draws++ }
func (d *fakeDevice) DrawingBufferSize() (int, int) { return d.width, d.height }
func (d *fakeDevice) PixelRatio() float32           { return d.ratio }

// value returns the last upload for the named uniform of program p.
func (d *fakeDevice) value(p graphics.Program, name string) []float32 {
	return d.values[d.UniformLocation(p, name)]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []diagnostics.Event
}

func (p *recordingPublisher) Publish(kind diagnostics.Kind, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, diagnostics.Event{Kind: kind, Message: message})
}

func (p *recordingPublisher) Events() []diagnostics.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]diagnostics.Event(nil), p.events...)
}
