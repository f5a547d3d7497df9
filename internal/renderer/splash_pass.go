package renderer

import "RainyDay/internal/gpu"

const splashUnit = 1

// SplashPass draws an impact sprite wherever a drop reaches the surface
// recorded in the rain map. It shares the particle buffer with RainPass.
type SplashPass struct {
	program   gpu.Program
	particles *ParticleBuffer
	texture   uint32
}

func NewSplashPass(program gpu.Program, particles *ParticleBuffer, texture uint32) *SplashPass {
	return &SplashPass{program: program, particles: particles, texture: texture}
}

func (p *SplashPass) SetProgram(prog gpu.Program) { p.program = prog }

// Render returns the number of points drawn.
func (p *SplashPass) Render(dev gpu.Device, in ParticleInputs) int {
	prog := p.program
	prog.Use()
	setParticleUniforms(prog, in)
	prog.SetFloat("splashSpeed", in.Rain.SplashSpeed)
	prog.SetFloat("splashQuadSize", in.Rain.SplashQuadSize)
	bindRainMap(dev, prog, in)
	prog.SetInt("splashTexture", splashUnit)
	dev.BindTexture(splashUnit, gpu.Texture2D, p.texture)
	return drawParticles(dev, p.particles)
}
