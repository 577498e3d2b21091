package glbackend

import (
	"fmt"
	"log"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Offscreen is an RGBA8 framebuffer used when recording, so output size does
// not depend on the window.
type Offscreen struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int
	pixels    []byte
}

// EnableOffscreen redirects all drawing into a width x height framebuffer.
func (d *Device) EnableOffscreen(width, height int) error {
	or := &Offscreen{width: width, height: height, pixels: make([]byte, width*height*4)}

	gl.GenFramebuffers(1, &or.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)
	gl.GenTextures(1, &or.textureID)
	gl.BindTexture(gl.TEXTURE_2D, or.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, or.textureID, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		or.Destroy()
		return fmt.Errorf("offscreen fbo is not complete")
	}

	log.Printf("Offscreen FBO: %dx%d RGBA8", width, height)
	d.offscreen = or
	return nil
}

// ReadPixels returns the last drawn offscreen frame, top row first.
// The returned slice is reused by the next call.
func (d *Device) ReadPixels() ([]byte, error) {
	or := d.offscreen
	if or == nil {
		return nil, fmt.Errorf("offscreen rendering is not enabled")
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, or.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(or.width), int32(or.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(or.pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	flipRows(or.pixels, or.width*4, or.height)
	return or.pixels, nil
}

func (or *Offscreen) Destroy() {
	gl.DeleteFramebuffers(1, &or.fbo)
	gl.DeleteTextures(1, &or.textureID)
}

// flipRows converts GL's bottom-up row order to top-down in place.
func flipRows(pix []byte, stride, rows int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
