package state

import (
	"encoding/json"
	"fmt"
	"math"
)

// Resolution is the viewport size in pixels plus the pixel aspect ratio (iResolution).
type Resolution struct {
	Width            float32 `json:"width"`
	Height           float32 `json:"height"`
	PixelAspectRatio float32 `json:"pixel_aspect_ratio"`
}

// Mouse is the current pointer position and the position of the last press,
// in canvas-local pixels with the origin at the top left (iMouse).
type Mouse struct {
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	DownX float32 `json:"down_x"`
	DownY float32 `json:"down_y"`
}

// Date is the iDate vector. Month is zero based.
type Date struct {
	Year                 float32 `json:"year"`
	Month                float32 `json:"month"`
	Day                  float32 `json:"day"`
	SecondsSinceMidnight float32 `json:"time"`
}

// FrameIndex is the iFrame value. On the wire it is any JSON number, so 2.0
// and 1e3 are accepted; a fractional part is truncated.
type FrameIndex int32

func (f *FrameIndex) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return fmt.Errorf("frame: %v out of range", v)
	}
	*f = FrameIndex(v)
	return nil
}

// Uniforms holds per-frame overrides. An absent field is computed by the render loop.
type Uniforms struct {
	Resolution Option[Resolution] `json:"resolution,omitzero"`
	Time       Option[float32]    `json:"time,omitzero"`
	TimeDelta  Option[float32]    `json:"time_delta,omitzero"`
	Frame      Option[FrameIndex] `json:"frame,omitzero"`
	FrameRate  Option[float32]    `json:"frame_rate,omitzero"`
	Mouse      Option[Mouse]      `json:"mouse,omitzero"`
	Date       Option[Date]       `json:"date,omitzero"`
}

// Playback controls the virtual clock. Absent means "not paused" and "speed 1".
type Playback struct {
	Paused Option[bool]    `json:"paused,omitzero"`
	Speed  Option[float32] `json:"speed,omitzero"`
}

// PlayerState is the whole externally writable configuration.
type PlayerState struct {
	Playback Option[Playback] `json:"playback,omitzero"`
	Uniforms Option[Uniforms] `json:"uniforms,omitzero"`
}

// IsPaused reports whether playback.paused is present and true.
func (s PlayerState) IsPaused() bool {
	pb, ok := s.Playback.Get()
	return ok && pb.Paused.OrElse(false)
}

// Speed returns playback.speed, defaulting to 1.
func (s PlayerState) Speed() float64 {
	if pb, ok := s.Playback.Get(); ok {
		return float64(pb.Speed.OrElse(1))
	}
	return 1
}

// Overrides returns the uniform overrides, all absent if none were ever stored.
func (s PlayerState) Overrides() Uniforms {
	u, _ := s.Uniforms.Get()
	return u
}

// Vector leaf types must carry every component; a partial vector is malformed.

func (r *Resolution) UnmarshalJSON(data []byte) error {
	type plain Resolution
	if err := requireFields(data, "width", "height", "pixel_aspect_ratio"); err != nil {
		return fmt.Errorf("resolution: %w", err)
	}
	return json.Unmarshal(data, (*plain)(r))
}

func (m *Mouse) UnmarshalJSON(data []byte) error {
	type plain Mouse
	if err := requireFields(data, "x", "y", "down_x", "down_y"); err != nil {
		return fmt.Errorf("mouse: %w", err)
	}
	return json.Unmarshal(data, (*plain)(m))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	type plain Date
	if err := requireFields(data, "year", "month", "day", "time"); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return json.Unmarshal(data, (*plain)(d))
}

func requireFields(data []byte, names ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, name := range names {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("missing field %q", name)
		}
	}
	return nil
}
