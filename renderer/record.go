package renderer

import (
	"context"
	"fmt"
	"log"
)

// PixelReader reads back the frame that was just drawn.
type PixelReader interface {
	ReadPixels() ([]byte, error)
}

// FrameSink consumes rendered frames in presentation order.
type FrameSink interface {
	WriteFrame(pts int64, pixels []byte) error
}

// Record renders duration*fps frames with synthetic wall-clock samples i/fps
// and hands every frame to sink. Paused or skipped frames repeat the last image.
func (r *Renderer) Record(ctx context.Context, reader PixelReader, sink FrameSink, fps int, duration float64) (int, error) {
	if fps <= 0 {
		return 0, fmt.Errorf("invalid frame rate %d", fps)
	}
	totalFrames := int(duration * float64(fps))
	timeStep := 1.0 / float64(fps)

	log.Printf("Recording %d frames at %d fps", totalFrames, fps)
	for i := 0; i < totalFrames; i++ {
		select {
		case <-ctx.Done():
			return i, ctx.Err()
		default:
		}

		r.RenderFrame(float64(i) * timeStep)

		pixels, err := reader.ReadPixels()
		if err != nil {
			return i, fmt.Errorf("failed to read pixels on frame %d: %w", i, err)
		}
		if err := sink.WriteFrame(int64(i), pixels); err != nil {
			return i, fmt.Errorf("failed to write frame %d: %w", i, err)
		}
	}
	return totalFrames, nil
}
