package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedState is returned when an update payload does not decode into a PlayerState.
var ErrMalformedState = errors.New("malformed player state")

// Parse decodes a JSON update payload. On error nothing of the payload is usable.
func Parse(data []byte) (PlayerState, error) {
	var s PlayerState
	if err := json.Unmarshal(data, &s); err != nil {
		return PlayerState{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return s, nil
}

// Merge returns s with every field present in in replacing the stored one.
// Fields absent from in keep their value in s.
func (s PlayerState) Merge(in PlayerState) PlayerState {
	s.Playback = mergeSection(s.Playback, in.Playback, Playback.Merge)
	s.Uniforms = mergeSection(s.Uniforms, in.Uniforms, Uniforms.Merge)
	return s
}

func mergeSection[T any](stored, in Option[T], merge func(T, T) T) Option[T] {
	cur, ok := stored.Get()
	if !ok {
		return in
	}
	next, ok := in.Get()
	if !ok {
		return stored
	}
	return Some(merge(cur, next))
}

func (p Playback) Merge(in Playback) Playback {
	p.Paused = in.Paused.Or(p.Paused)
	p.Speed = in.Speed.Or(p.Speed)
	return p
}

func (u Uniforms) Merge(in Uniforms) Uniforms {
	u.Resolution = in.Resolution.Or(u.Resolution)
	u.Time = in.Time.Or(u.Time)
	u.TimeDelta = in.TimeDelta.Or(u.TimeDelta)
	u.Frame = in.Frame.Or(u.Frame)
	u.FrameRate = in.FrameRate.Or(u.FrameRate)
	u.Mouse = in.Mouse.Or(u.Mouse)
	u.Date = in.Date.Or(u.Date)
	return u
}
