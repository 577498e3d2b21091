package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/shaderplayer/state"
)

// Input receives the window events the player cares about.
type Input interface {
	PointerDown(x, y float32)
	PointerMove(x, y float32)
	PointerUp()
	TogglePause()
	DeviceLost()
	DeviceRestored()
}

// Context wraps a GLFW window and forwards its events to an Input.
type Context struct {
	window *glfw.Window
	input  Input
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()
}

// New creates a window with a 4.1 core context. A hidden window is used for recording.
func New(width, height int, visible bool, title string, input Input) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		input:        input,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	if input != nil {
		c.keyCallbacks[glfw.KeySpace] = input.TogglePause
		win.SetMouseButtonCallback(c.mouseButtonCallback)
		win.SetCursorPosCallback(c.cursorPosCallback)
		win.SetIconifyCallback(c.iconifyCallback)
	}
	win.SetKeyCallback(c.glfwKeyCallback)

	return c, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
	}
	if callback, ok := c.keyCallbacks[key]; ok {
		callback()
	}
}

// cursorPoint converts a cursor position in window coordinates to
// framebuffer pixels, the space iResolution and fragCoord live in.
func (c *Context) cursorPoint(xpos, ypos float64) (float32, float32) {
	fbWidth, fbHeight := c.window.GetFramebufferSize()
	winWidth, winHeight := c.window.GetSize()
	return framebufferPoint(xpos, ypos, winWidth, winHeight, fbWidth, fbHeight)
}

// framebufferPoint scales each axis by framebuffer/window size. The content
// area is the canvas, so its offset is zero and the origin stays top-left.
func framebufferPoint(xpos, ypos float64, winWidth, winHeight, fbWidth, fbHeight int) (float32, float32) {
	scaleX, scaleY := 1.0, 1.0
	if winWidth > 0 && winHeight > 0 {
		scaleX = float64(fbWidth) / float64(winWidth)
		scaleY = float64(fbHeight) / float64(winHeight)
	}
	return state.CanvasPoint(xpos*scaleX, ypos*scaleY, 0, 0)
}

func (c *Context) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		c.input.PointerDown(c.cursorPoint(w.GetCursorPos()))
	case glfw.Release:
		c.input.PointerUp()
	}
}

func (c *Context) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	c.input.PointerMove(c.cursorPoint(xpos, ypos))
}

// GLFW has no context-loss event. A minimized window cannot present, so it is
// treated as a lost device and restoring the window as a restored one.
func (c *Context) iconifyCallback(w *glfw.Window, iconified bool) {
	if iconified {
		c.input.DeviceLost()
	} else {
		c.input.DeviceRestored()
	}
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

// Close asks the render loop to stop at the end of the current frame.
func (c *Context) Close() {
	c.window.SetShouldClose(true)
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

// PixelRatio is framebuffer pixels per window coordinate.
func (c *Context) PixelRatio() float32 {
	fbWidth, _ := c.window.GetFramebufferSize()
	winWidth, _ := c.window.GetSize()
	if winWidth <= 0 {
		return 1
	}
	return float32(fbWidth) / float32(winWidth)
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
