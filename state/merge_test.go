package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullState() PlayerState {
	return PlayerState{
		Playback: Some(Playback{Paused: Some(false), Speed: Some[float32](0.5)}),
		Uniforms: Some(Uniforms{
			Resolution: Some(Resolution{Width: 640, Height: 480, PixelAspectRatio: 1}),
			Time:       Some[float32](12),
			TimeDelta:  Some[float32](0.016),
			Frame:      Some[FrameIndex](7),
			FrameRate:  Some[float32](60),
			Mouse:      Some(Mouse{X: 1, Y: 2, DownX: 3, DownY: 4}),
			Date:       Some(Date{Year: 2024, Month: 1, Day: 2, SecondsSinceMidnight: 30}),
		}),
	}
}

func TestMergeIdempotent(t *testing.T) {
	full := fullState()
	once := PlayerState{}.Merge(full)
	twice := once.Merge(full)
	assert.Equal(t, once, twice)
	assert.Equal(t, full, once)
}

func TestMergeFirstWriteIsVerbatim(t *testing.T) {
	in := PlayerState{Uniforms: Some(Uniforms{Time: Some[float32](3)})}
	got := PlayerState{}.Merge(in)
	assert.Equal(t, in, got)
	assert.False(t, got.Playback.IsSome())
	u, _ := got.Uniforms.Get()
	assert.False(t, u.Resolution.IsSome())
}

func TestMergeFieldIndependence(t *testing.T) {
	a := fullState()
	b := PlayerState{
		Playback: Some(Playback{Paused: Some(true)}),
		Uniforms: Some(Uniforms{Mouse: Some(Mouse{X: 9, Y: 9, DownX: 9, DownY: 9})}),
	}
	got := a.Merge(b)

	pb, _ := got.Playback.Get()
	assert.Equal(t, Some(true), pb.Paused)
	assert.Equal(t, Some[float32](0.5), pb.Speed)

	u, _ := got.Uniforms.Get()
	au, _ := a.Uniforms.Get()
	assert.Equal(t, Some(Mouse{X: 9, Y: 9, DownX: 9, DownY: 9}), u.Mouse)
	assert.Equal(t, au.Resolution, u.Resolution)
	assert.Equal(t, au.Time, u.Time)
	assert.Equal(t, au.TimeDelta, u.TimeDelta)
	assert.Equal(t, au.Frame, u.Frame)
	assert.Equal(t, au.FrameRate, u.FrameRate)
	assert.Equal(t, au.Date, u.Date)
}

func TestMergeAbsentSectionKeepsStored(t *testing.T) {
	a := fullState()
	got := a.Merge(PlayerState{})
	assert.Equal(t, a, got)
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(`{"playback":{"speed":2},"uniforms":{"time":1.5,"frame":3,"mouse":null}}`))
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.Speed())
	assert.False(t, s.IsPaused())
	u := s.Overrides()
	assert.Equal(t, Some[float32](1.5), u.Time)
	assert.Equal(t, Some[FrameIndex](3), u.Frame)
	assert.False(t, u.Mouse.IsSome())
}

func TestParseFrameAcceptsAnyNumber(t *testing.T) {
	cases := map[string]FrameIndex{
		`2`:   2,
		`2.0`: 2,
		`1e3`: 1000,
		`7.9`: 7,
	}
	for in, want := range cases {
		s, err := Parse([]byte(`{"uniforms":{"time":4,"frame":` + in + `}}`))
		require.NoError(t, err, in)
		u := s.Overrides()
		assert.Equal(t, Some(want), u.Frame, in)
		assert.Equal(t, Some[float32](4), u.Time, in)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{"playback":{"paused":"yes"}}`,
		`{"uniforms":{"resolution":{"width":10}}}`,
		`{"uniforms":{"date":{"year":2024,"month":1,"day":1}}}`,
		`{"uniforms":[]}`,
		`{"uniforms":{"frame":"3"}}`,
		`{"uniforms":{"frame":1e12}}`,
	}
	for _, c := range cases {
		_, err := Parse([]byte(c))
		assert.ErrorIs(t, err, ErrMalformedState, c)
	}
}

func TestDefaults(t *testing.T) {
	var s PlayerState
	assert.False(t, s.IsPaused())
	assert.Equal(t, 1.0, s.Speed())

	s = s.Merge(PlayerState{Playback: Some(Playback{Paused: Some(true)})})
	assert.True(t, s.IsPaused())
	assert.Equal(t, 1.0, s.Speed())
}
