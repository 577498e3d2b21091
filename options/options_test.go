package options

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/shaderplayer/state"
)

const tomlConfig = `
mode = "record"

[window]
width = 640
height = 360

[shader]
file = "plasma.glsl"
shadertoy = "abc123"

[control]
listen = "localhost:9000"

[record]
duration = 4.5
fps = 30
output = "plasma.mp4"
codec = "hevc"

[player.playback]
paused = true
speed = 0.5

[player.uniforms]
time = 2.0
`

const yamlConfig = `
window:
  width: 800
  height: 600
shader:
  file: tunnel.glsl
player:
  uniforms:
    mouse: {x: 1, y: 2, down_x: 3, down_y: 4}
`

func TestParseTOML(t *testing.T) {
	cfg, err := ParseConfig(".toml", []byte(tomlConfig))
	require.NoError(t, err)
	assert.Equal(t, "record", cfg.Mode)
	assert.Equal(t, WindowConfig{Width: 640, Height: 360}, cfg.Window)
	assert.Equal(t, "plasma.glsl", cfg.Shader.File)
	assert.Equal(t, "localhost:9000", cfg.Control.Listen)
	assert.Equal(t, 4.5, cfg.Record.Duration)
	assert.Equal(t, 30, cfg.Record.FPS)

	data, err := cfg.PlayerJSON()
	require.NoError(t, err)
	ps, err := state.Parse(data)
	require.NoError(t, err)
	assert.True(t, ps.IsPaused())
	assert.InDelta(t, 0.5, ps.Speed(), 1e-9)
	tm, ok := ps.Overrides().Time.Get()
	require.True(t, ok)
	assert.InDelta(t, 2.0, tm, 1e-6)
}

func TestParseYAML(t *testing.T) {
	cfg, err := ParseConfig(".YML", []byte(yamlConfig))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, "tunnel.glsl", cfg.Shader.File)

	data, err := cfg.PlayerJSON()
	require.NoError(t, err)
	ps, err := state.Parse(data)
	require.NoError(t, err)
	m, ok := ps.Overrides().Mouse.Get()
	require.True(t, ok)
	assert.Equal(t, state.Mouse{X: 1, Y: 2, DownX: 3, DownY: 4}, m)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := ParseConfig(".json", []byte("{}"))
	assert.ErrorIs(t, err, ErrUnsupportedConfig)

	_, err = ParseConfig(".toml", []byte("[window"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestPlayerJSONAbsent(t *testing.T) {
	cfg, err := ParseConfig(".yaml", []byte("mode: window\n"))
	require.NoError(t, err)
	data, err := cfg.PlayerJSON()
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestApplyFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	opts := Register(fs)
	require.NoError(t, fs.Parse([]string{"-width", "1920", "-output", "cli.mp4"}))
	opts.Apply(fs, cfg)

	assert.Equal(t, 1920, *opts.Width)
	assert.Equal(t, 360, *opts.Height)
	assert.Equal(t, "cli.mp4", *opts.OutputFile)
	assert.Equal(t, "plasma.glsl", *opts.ShaderFile)
	assert.Equal(t, ModeRecord, *opts.Mode)
	assert.Equal(t, 30, *opts.FPS)
	assert.Equal(t, 4.5, *opts.Duration)
	assert.Equal(t, "hevc", *opts.Codec)
	assert.Equal(t, "", *opts.FFMPEGPath)
	assert.Equal(t, "abc123", *opts.Shadertoy)
}

func TestPlaybackState(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	opts := Register(fs)
	require.NoError(t, fs.Parse(nil))
	assert.False(t, opts.PlaybackState(fs).Playback.IsSome())

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	opts = Register(fs)
	require.NoError(t, fs.Parse([]string{"-speed", "2"}))
	ps := opts.PlaybackState(fs)
	assert.False(t, ps.IsPaused())
	assert.InDelta(t, 2.0, ps.Speed(), 1e-9)
	pb, ok := ps.Playback.Get()
	require.True(t, ok)
	assert.False(t, pb.Paused.IsSome())
}
