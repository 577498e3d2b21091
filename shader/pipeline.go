package shader

import (
	"errors"
	"strings"
	"sync"
)

// ErrEmptySource is returned by SetSource for blank user code.
var ErrEmptySource = errors.New("empty shader source")

// Pipeline holds the wrapped fragment source waiting to be compiled and the
// source of the program currently in use. The pending text and its reload flag
// change together under one lock.
type Pipeline struct {
	mu      sync.Mutex
	pending string
	reload  bool
	active  string
}

// NewPipeline queues userCode (typically DefaultImageShader) for the first frame.
func NewPipeline(userCode string) *Pipeline {
	return &Pipeline{pending: WrapImageShader(userCode), reload: true}
}

// SetSource wraps userCode once and queues it, replacing anything still pending.
func (p *Pipeline) SetSource(userCode string) error {
	if strings.TrimSpace(userCode) == "" {
		return ErrEmptySource
	}
	wrapped := WrapImageShader(userCode)
	p.mu.Lock()
	p.pending = wrapped
	p.reload = true
	p.mu.Unlock()
	return nil
}

// TakePending returns and clears the queued source. It never blocks: while a
// writer holds the pipeline it reports nothing and the reload stays queued.
func (p *Pipeline) TakePending() (string, bool) {
	if !p.mu.TryLock() {
		return "", false
	}
	defer p.mu.Unlock()
	if !p.reload {
		return "", false
	}
	src := p.pending
	p.pending = ""
	p.reload = false
	return src, true
}

// Activate records src as the source of the program now in use.
func (p *Pipeline) Activate(src string) {
	p.mu.Lock()
	p.active = src
	p.mu.Unlock()
}

// Active returns the source of the program in use, empty before the first success.
func (p *Pipeline) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}
