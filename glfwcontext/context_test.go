package glfwcontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFramebufferPointScalesHiDPI(t *testing.T) {
	x, y := framebufferPoint(1279, 719, 1280, 720, 2560, 1440)
	assert.Equal(t, float32(2558), x)
	assert.Equal(t, float32(1438), y)

	x, y = framebufferPoint(0, 0, 1280, 720, 2560, 1440)
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(0), y)
}

func TestFramebufferPointPerAxis(t *testing.T) {
	x, y := framebufferPoint(100, 100, 200, 100, 300, 400)
	assert.Equal(t, float32(150), x)
	assert.Equal(t, float32(400), y)
}

func TestFramebufferPointUnscaled(t *testing.T) {
	x, y := framebufferPoint(12.5, 40, 800, 600, 800, 600)
	assert.Equal(t, float32(12.5), x)
	assert.Equal(t, float32(40), y)

	// A minimized window reports a zero size.
	x, y = framebufferPoint(12.5, 40, 0, 0, 0, 0)
	assert.Equal(t, float32(12.5), x)
	assert.Equal(t, float32(40), y)
}
