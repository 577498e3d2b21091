package state

import "sync/atomic"

// CanvasPoint converts a raw pointer position into canvas-local pixels
// given the canvas's on-screen top-left corner.
func CanvasPoint(rawX, rawY, left, top float64) (x, y float32) {
	return float32(rawX - left), float32(rawY - top)
}

// MouseCapture turns pointer press/drag/release into iMouse updates on a Store.
// The last position survives a release.
type MouseCapture struct {
	store *Store
	down  atomic.Bool
}

func NewMouseCapture(store *Store) *MouseCapture {
	return &MouseCapture{store: store}
}

// Press records x,y as both the current and the press position.
func (m *MouseCapture) Press(x, y float32) {
	m.store.UpdateMouse(func(Option[Mouse]) Mouse {
		return Mouse{X: x, Y: y, DownX: x, DownY: y}
	})
	m.down.Store(true)
}

// Move updates the current position while the button is held; otherwise it is ignored.
func (m *MouseCapture) Move(x, y float32) {
	if !m.down.Load() {
		return
	}
	m.store.UpdateMouse(func(prev Option[Mouse]) Mouse {
		p, ok := prev.Get()
		if !ok {
			return Mouse{X: x, Y: y, DownX: x, DownY: y}
		}
		p.X, p.Y = x, y
		return p
	})
}

func (m *MouseCapture) Release() {
	m.down.Store(false)
}

func (m *MouseCapture) Pressed() bool {
	return m.down.Load()
}
