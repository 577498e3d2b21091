package shader

// ─────────────────────────────────── Vertex ────────────────────────────────────

// The quad is drawn as a 4-vertex triangle strip in clip space; vUv spans 0..1.
const vertexShaderSource = `#version 300 es
layout (location = 0) in vec2 in_vert;
out vec2 vUv;
void main() {
    vUv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// ──────────────────────────── Image shader boilerplate ─────────────────────────

const imagePreamble = `#version 300 es
precision mediump float;

uniform vec3  iResolution; // viewport resolution in pixels, z is the pixel aspect ratio
uniform float iTime;       // playback time in seconds
uniform float iTimeDelta;  // playback time since the previous frame
uniform int   iFrame;      // frame index
uniform float iFrameRate;  // frames per second
uniform vec4  iMouse;      // xy current pointer, zw position of the last press
uniform vec4  iDate;       // year, month, day, seconds since midnight
`

const imageMain = `
in vec2 vUv;
out vec4 frag_color;

void main() {
    mainImage(frag_color, vUv * iResolution.xy);
}
`

// DefaultImageShader is rendered until the host supplies its own code.
const DefaultImageShader = `void mainImage(out vec4 fragColor, in vec2 fragCoord)
{
    vec2 uv = fragCoord / iResolution.xy;
    vec3 col = 0.5 + 0.5 * cos(iTime + uv.xyx + vec3(0.0, 2.0, 4.0));
    fragColor = vec4(col, 1.0);
}
`

// Uniform names declared by the preamble, in upload order.
const (
	UniformResolution = "iResolution"
	UniformTime       = "iTime"
	UniformTimeDelta  = "iTimeDelta"
	UniformFrame      = "iFrame"
	UniformFrameRate  = "iFrameRate"
	UniformMouse      = "iMouse"
	UniformDate       = "iDate"
)

// ───────────────────────────────── Public API ──────────────────────────────────

func GenerateVertexShader() string {
	return vertexShaderSource
}

// WrapImageShader turns user code defining
//
//	void mainImage(out vec4 fragColor, in vec2 fragCoord)
//
// into a complete fragment shader.
func WrapImageShader(user string) string {
	return imagePreamble + user + "\n" + imageMain
}
