package graphics

// Context defines the interface for the window that hosts the player.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	// PixelRatio is the framebuffer-to-window scale (device pixel ratio).
	PixelRatio() float32
	// Time returns wall-clock seconds.
	Time() float64
}
