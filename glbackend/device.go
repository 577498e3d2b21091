package glbackend

import (
	"fmt"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/shaderplayer/graphics"
	xlate "github.com/richinsley/shaderplayer/translator"
)

var glInitOnce sync.Once

// Full-screen quad as a 4-vertex triangle strip.
var quadVertices = []float32{
	-1.0, -1.0,
	1.0, -1.0,
	-1.0, 1.0,
	1.0, 1.0,
}

// Device implements graphics.Device on an OpenGL 4.1 core context.
// Shaders arrive as WebGL2 source and are translated before compilation.
type Device struct {
	ctx     graphics.Context
	quadVAO uint32
	quadVBO uint32
	// names maps each live program to its translated uniform names.
	names     map[graphics.Program]map[string]string
	offscreen *Offscreen
}

// NewDevice makes ctx current, loads the GL entry points and builds the quad.
func NewDevice(ctx graphics.Context) (*Device, error) {
	ctx.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	d := &Device{
		ctx:   ctx,
		names: make(map[graphics.Program]map[string]string),
	}
	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return d, nil
}

func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (graphics.Program, error) {
	vs, err := xlate.ToDesktop(vertexSrc, "vertex")
	if err != nil {
		return 0, err
	}
	fs, err := xlate.ToDesktop(fragmentSrc, "fragment")
	if err != nil {
		return 0, err
	}
	program, err := newProgram(vs.Code, fs.Code)
	if err != nil {
		return 0, fmt.Errorf("failed to create shader program: %w", err)
	}
	p := graphics.Program(program)
	d.names[p] = fs.Names
	return p, nil
}

func (d *Device) DeleteProgram(p graphics.Program) {
	if p == 0 {
		return
	}
	delete(d.names, p)
	gl.DeleteProgram(uint32(p))
}

func (d *Device) UseProgram(p graphics.Program) {
	gl.UseProgram(uint32(p))
}

// UniformLocation looks the name up through the translator's mapping; a
// uniform the translator dropped as unused has no location.
func (d *Device) UniformLocation(p graphics.Program, name string) graphics.Location {
	mapped, ok := d.names[p][name]
	if !ok {
		return graphics.NoLocation
	}
	return graphics.Location(gl.GetUniformLocation(uint32(p), gl.Str(mapped+"\x00")))
}

func (d *Device) Uniform1f(loc graphics.Location, v float32) {
	if loc != graphics.NoLocation {
		gl.Uniform1f(int32(loc), v)
	}
}

func (d *Device) Uniform1i(loc graphics.Location, v int32) {
	if loc != graphics.NoLocation {
		gl.Uniform1i(int32(loc), v)
	}
}

func (d *Device) Uniform3f(loc graphics.Location, x, y, z float32) {
	if loc != graphics.NoLocation {
		gl.Uniform3f(int32(loc), x, y, z)
	}
}

func (d *Device) Uniform4f(loc graphics.Location, x, y, z, w float32) {
	if loc != graphics.NoLocation {
		gl.Uniform4f(int32(loc), x, y, z, w)
	}
}

func (d *Device) DrawQuad() {
	width, height := d.DrawingBufferSize()
	if d.offscreen != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, d.offscreen.fbo)
	}
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	if d.offscreen != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
}

func (d *Device) DrawingBufferSize() (int, int) {
	if d.offscreen != nil {
		return d.offscreen.width, d.offscreen.height
	}
	return d.ctx.GetFramebufferSize()
}

func (d *Device) PixelRatio() float32 {
	if d.offscreen != nil {
		return 1
	}
	return d.ctx.PixelRatio()
}

// Shutdown frees the quad and the offscreen target. Programs belong to the renderer.
func (d *Device) Shutdown() {
	if d.offscreen != nil {
		d.offscreen.Destroy()
		d.offscreen = nil
	}
	gl.DeleteBuffers(1, &d.quadVBO)
	gl.DeleteVertexArrays(1, &d.quadVAO)
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", strings.TrimRight(logText, "\x00"))
	}
	return shader, nil
}
