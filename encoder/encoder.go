package encoder

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Options describes the raw frames fed to ffmpeg and the file it writes.
type Options struct {
	Width      int
	Height     int
	FPS        int
	OutputFile string
	FFMPEGPath string
	Codec      string // "h264" (default) or "hevc"
}

// Encoder streams raw RGBA frames into an ffmpeg process.
type Encoder struct {
	opts      Options
	frameSize int
	pipe      *io.PipeWriter
	done      chan error
}

// InputArgs are the rawvideo demuxer arguments for the pipe.
func (o Options) InputArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", o.Width, o.Height),
		"framerate": o.FPS,
	}
}

// OutputArgs selects a software encoder suitable for the output container.
func (o Options) OutputArgs() ffmpeg.KwArgs {
	args := ffmpeg.KwArgs{"pix_fmt": "yuv420p"}
	if o.Codec == "hevc" {
		args["c:v"] = "libx265"
		if strings.EqualFold(filepath.Ext(o.OutputFile), ".mp4") {
			args["tag:v"] = "hvc1"
		}
	} else {
		args["c:v"] = "libx264"
	}
	return args
}

// Start launches ffmpeg. Frames are written with WriteFrame; Close waits for ffmpeg to exit.
func Start(opts Options) (*Encoder, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid encoder geometry %dx%d@%d", opts.Width, opts.Height, opts.FPS)
	}
	if opts.OutputFile == "" {
		return nil, fmt.Errorf("no output file")
	}

	pipeReader, pipeWriter := io.Pipe()
	cmd := ffmpeg.Input("pipe:", opts.InputArgs()).
		Output(opts.OutputFile, opts.OutputArgs()).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if opts.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(opts.FFMPEGPath)
	}

	e := &Encoder{
		opts:      opts,
		frameSize: opts.Width * opts.Height * 4,
		pipe:      pipeWriter,
		done:      make(chan error, 1),
	}
	go func() {
		err := cmd.Run()
		// Unblock a writer if ffmpeg died early.
		pipeReader.CloseWithError(io.ErrClosedPipe)
		e.done <- err
	}()
	log.Printf("Encoding %dx%d@%d to %s", opts.Width, opts.Height, opts.FPS, opts.OutputFile)
	return e, nil
}

func (e *Encoder) WriteFrame(pts int64, pixels []byte) error {
	if len(pixels) != e.frameSize {
		return fmt.Errorf("frame %d has %d bytes, want %d", pts, len(pixels), e.frameSize)
	}
	if _, err := e.pipe.Write(pixels); err != nil {
		return fmt.Errorf("failed to write frame %d to ffmpeg: %w", pts, err)
	}
	return nil
}

// Close ends the stream and returns ffmpeg's exit error.
func (e *Encoder) Close() error {
	e.pipe.Close()
	if err := <-e.done; err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}
