package renderer

import (
	"github.com/richinsley/shaderplayer/graphics"
	"github.com/richinsley/shaderplayer/shader"
)

// RenderPass is a linked program together with the locations of its uniforms.
// It is replaced as a whole so a program is never paired with another program's locations.
type RenderPass struct {
	Program       graphics.Program
	resolutionLoc graphics.Location
	timeLoc       graphics.Location
	timeDeltaLoc  graphics.Location
	frameLoc      graphics.Location
	frameRateLoc  graphics.Location
	mouseLoc      graphics.Location
	dateLoc       graphics.Location
}

func newRenderPass(dev graphics.Device, prog graphics.Program) *RenderPass {
	return &RenderPass{
		Program:       prog,
		resolutionLoc: dev.UniformLocation(prog, shader.UniformResolution),
		timeLoc:       dev.UniformLocation(prog, shader.UniformTime),
		timeDeltaLoc:  dev.UniformLocation(prog, shader.UniformTimeDelta),
		frameLoc:      dev.UniformLocation(prog, shader.UniformFrame),
		frameRateLoc:  dev.UniformLocation(prog, shader.UniformFrameRate),
		mouseLoc:      dev.UniformLocation(prog, shader.UniformMouse),
		dateLoc:       dev.UniformLocation(prog, shader.UniformDate),
	}
}

// Locations returns the seven uniform locations in declaration order.
func (p *RenderPass) Locations() [7]graphics.Location {
	return [7]graphics.Location{
		p.resolutionLoc, p.timeLoc, p.timeDeltaLoc, p.frameLoc,
		p.frameRateLoc, p.mouseLoc, p.dateLoc,
	}
}
