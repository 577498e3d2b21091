package graphics

// Program is a linked device program. Zero means no program.
type Program uint32

// Location is a uniform location; NoLocation is silently ignored on upload.
type Location int32

const NoLocation Location = -1

// Device is the slice of the graphics API the render loop needs.
// All methods are called from the render loop's goroutine.
type Device interface {
	// CompileProgram compiles and links a program. On error nothing is left allocated.
	CompileProgram(vertexSrc, fragmentSrc string) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	UniformLocation(p Program, name string) Location

	Uniform1f(loc Location, v float32)
	Uniform1i(loc Location, v int32)
	Uniform3f(loc Location, x, y, z float32)
	Uniform4f(loc Location, x, y, z, w float32)

	// DrawQuad draws the full-screen 4-vertex triangle strip.
	DrawQuad()

	// DrawingBufferSize is the size of the current render target in pixels.
	DrawingBufferSize() (int, int)
	PixelRatio() float32
}
