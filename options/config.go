package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedConfig = errors.New("unsupported config format")

type WindowConfig struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

type ShaderConfig struct {
	File      string `toml:"file" yaml:"file"`
	Shadertoy string `toml:"shadertoy" yaml:"shadertoy"`
}

type ControlConfig struct {
	Listen string `toml:"listen" yaml:"listen"`
}

type RecordConfig struct {
	Duration   float64 `toml:"duration" yaml:"duration"`
	FPS        int     `toml:"fps" yaml:"fps"`
	Output     string  `toml:"output" yaml:"output"`
	FFMPEGPath string  `toml:"ffmpeg" yaml:"ffmpeg"`
	Codec      string  `toml:"codec" yaml:"codec"`
}

// FileConfig is the on-disk configuration. Player holds an initial player
// state in the same shape as the JSON accepted by UpdatePlayerState.
type FileConfig struct {
	Mode    string         `toml:"mode" yaml:"mode"`
	Window  WindowConfig   `toml:"window" yaml:"window"`
	Shader  ShaderConfig   `toml:"shader" yaml:"shader"`
	Control ControlConfig  `toml:"control" yaml:"control"`
	Record  RecordConfig   `toml:"record" yaml:"record"`
	Player  map[string]any `toml:"player" yaml:"player"`
}

// LoadConfig reads a .toml, .yaml or .yml file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(filepath.Ext(path), data)
}

// ParseConfig decodes data according to the file extension ext.
func ParseConfig(ext string, data []byte) (*FileConfig, error) {
	cfg := &FileConfig{}
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConfig, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// PlayerJSON re-encodes the player section so it can go through the same
// partial merge as runtime updates. It returns nil when the section is absent.
func (c *FileConfig) PlayerJSON() ([]byte, error) {
	if len(c.Player) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(c.Player)
	if err != nil {
		return nil, fmt.Errorf("failed to encode player state: %w", err)
	}
	return data, nil
}
