// Package clock derives the virtual playback time from wall-clock samples.
package clock

// Tick is the result of advancing the clock by one frame.
type Tick struct {
	Time   float64 // virtual seconds
	Delta  float64 // virtual seconds since the previous frame
	Paused bool    // nothing should be drawn this frame
}

// Clock is owned by the render loop and is not safe for concurrent use.
type Clock struct {
	started      bool
	lastReal     float64
	lastPlayback float64
	frame        int32
}

// Advance consumes the wall-clock sample t (seconds).
//
// The first sample seeds the virtual time to t so that an organic clock and a
// fixed iTime override agree in magnitude. The last real time is recorded on
// every call, paused or not, so resuming never converts the paused interval
// into virtual time.
func (c *Clock) Advance(t float64, paused bool, speed float64) Tick {
	defer func() { c.lastReal = t }()

	if !c.started {
		c.started = true
		c.lastPlayback = t
		return Tick{Time: c.lastPlayback, Paused: paused}
	}
	if paused {
		return Tick{Time: c.lastPlayback, Paused: true}
	}

	delta := (t - c.lastReal) * speed
	c.lastPlayback += delta
	return Tick{Time: c.lastPlayback, Delta: delta}
}

// Hold records t as the last real time without advancing virtual time.
// Frames that draw nothing for reasons other than pause use it so the gap is
// not replayed on the next drawn frame.
func (c *Clock) Hold(t float64) {
	if !c.started {
		c.started = true
		c.lastPlayback = t
	}
	c.lastReal = t
}

// Time returns the accumulated virtual time.
func (c *Clock) Time() float64 { return c.lastPlayback }

// LastReal returns the wall-clock sample of the previous call.
func (c *Clock) LastReal() float64 { return c.lastReal }

// Frame returns the number of frames drawn so far.
func (c *Clock) Frame() int32 { return c.frame }

// NextFrame increments the frame counter after a draw.
func (c *Clock) NextFrame() { c.frame++ }
