package options

import (
	"flag"

	"github.com/richinsley/shaderplayer/state"
)

// ShaderOptions holds the command line flags. Pointers distinguish flags the
// user set from defaults when a config file is also loaded.
type ShaderOptions struct {
	Help       *bool
	ConfigFile *string
	ShaderFile *string
	Shadertoy  *string
	NoCache    *bool
	Listen     *string
	Mode       *string
	Duration   *float64
	FPS        *int
	Width      *int
	Height     *int
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	Paused     *bool
	Speed      *float64
}

const (
	ModeWindow = "window"
	ModeRecord = "record"
)

// Register declares every flag on fs.
func Register(fs *flag.FlagSet) *ShaderOptions {
	return &ShaderOptions{
		Help:       fs.Bool("help", false, "Show help message"),
		ConfigFile: fs.String("config", "", "TOML or YAML configuration file"),
		ShaderFile: fs.String("shader", "", "Fragment shader file defining mainImage (watched for changes)"),
		Shadertoy:  fs.String("shadertoy", "", "Shadertoy shader ID or URL to load (single-pass shaders only)"),
		NoCache:    fs.Bool("nocache", false, "Do not cache shaders fetched from Shadertoy"),
		Listen:     fs.String("listen", "", "Address for the websocket control server, e.g. localhost:8080"),
		Mode:       fs.String("mode", ModeWindow, "Run mode: window or record"),
		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		Width:      fs.Int("width", 1280, "Width of the output"),
		Height:     fs.Int("height", 720, "Height of the output"),
		OutputFile: fs.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec for recording: h264 or hevc"),
		Paused:     fs.Bool("paused", false, "Start with playback paused"),
		Speed:      fs.Float64("speed", 1.0, "Playback speed multiplier"),
	}
}

// Apply copies values from cfg into every option the user did not set
// explicitly on fs.
func (o *ShaderOptions) Apply(fs *flag.FlagSet, cfg *FileConfig) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	str := func(name string, dst *string, v string) {
		if !set[name] && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int, v int) {
		if !set[name] && v != 0 {
			*dst = v
		}
	}

	num("width", o.Width, cfg.Window.Width)
	num("height", o.Height, cfg.Window.Height)
	str("shader", o.ShaderFile, cfg.Shader.File)
	str("shadertoy", o.Shadertoy, cfg.Shader.Shadertoy)
	str("listen", o.Listen, cfg.Control.Listen)
	str("mode", o.Mode, cfg.Mode)
	num("fps", o.FPS, cfg.Record.FPS)
	str("output", o.OutputFile, cfg.Record.Output)
	str("ffmpeg", o.FFMPEGPath, cfg.Record.FFMPEGPath)
	str("codec", o.Codec, cfg.Record.Codec)
	if !set["duration"] && cfg.Record.Duration != 0 {
		*o.Duration = cfg.Record.Duration
	}
}

// PlaybackState returns the playback flags the user set as a partial player
// state, or a zero state when neither -paused nor -speed was given.
func (o *ShaderOptions) PlaybackState(fs *flag.FlagSet) state.PlayerState {
	var pb state.Playback
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "paused":
			pb.Paused = state.Some(*o.Paused)
		case "speed":
			pb.Speed = state.Some(float32(*o.Speed))
		}
	})
	if !pb.Paused.IsSome() && !pb.Speed.IsSome() {
		return state.PlayerState{}
	}
	return state.PlayerState{Playback: state.Some(pb)}
}
