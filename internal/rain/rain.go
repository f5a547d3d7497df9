// Package rain holds the CPU half of the rain effect: seeding the particle
// origins once at startup and the closed-form motion the vertex stage
// evaluates every frame. Nothing here touches the GPU directly.
package rain

import (
	"math"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Jitter returns a value in [0, 1).
type Jitter func() float32

// NewJitter returns a deterministic jitter source for the given seed.
func NewJitter(seed uint64) Jitter {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Float32
}

// Edge is the number of grid cells per axis needed to hold count seeds.
func Edge(count int) int {
	if count <= 1 {
		return 1
	}
	e := int(math32.Ceil(math32.Cbrt(float32(count))))
	for e > 1 && (e-1)*(e-1)*(e-1) >= count {
		e--
	}
	for e*e*e < count {
		e++
	}
	return e
}

// SeedPosition places particle i of count in its own cell of an Edge³ grid
// spanning [0, boxSize)³, offset inside the cell by jitter.
func SeedPosition(i, count int, boxSize float32, jitter Jitter) mgl32.Vec3 {
	e := Edge(count)
	cell := [3]int{i % e, (i / e) % e, (i / (e * e)) % e}
	cellSize := boxSize / float32(e)

	var p mgl32.Vec3
	for axis := range p {
		v := (float32(cell[axis]) + clampUnit(jitter())) * cellSize
		if v >= boxSize {
			v = math.Nextafter32(boxSize, 0)
		}
		p[axis] = v
	}
	return p
}

func clampUnit(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v >= 1:
		return math.Nextafter32(1, 0)
	}
	return v
}

// Fill seeds ring with every other index of [0, count), giving half the grid
// density, and returns the number of particles emitted.
func Fill(ring *Ring, count int, boxSize float32, jitter Jitter) int {
	n := 0
	for i := 0; i < count; i += 2 {
		ring.Emit(SeedPosition(i, count, boxSize, jitter))
		n++
	}
	return n
}

// BoxOffset is the minimum corner of the rain box that follows the camera.
func BoxOffset(camera, forward mgl32.Vec3, boxSize float32) mgl32.Vec3 {
	half := boxSize / 2
	return camera.Add(forward).Sub(mgl32.Vec3{half, half, half})
}

// DisplayPosition is where a particle seeded at origin is drawn at time t.
// The result always lies inside the box at BoxOffset, so particles fall
// forever and wrap around the viewer.
func DisplayPosition(origin mgl32.Vec3, t float32, velocity, forward, camera mgl32.Vec3, boxSize float32) mgl32.Vec3 {
	offset := BoxOffset(camera, forward, boxSize)
	p := origin.Add(velocity.Mul(t)).Sub(offset)
	for axis := range p {
		p[axis] = Wrap(p[axis], boxSize)
	}
	return p.Add(offset)
}

// Wrap is GLSL mod: x - size*floor(x/size), always in [0, size).
func Wrap(x, size float32) float32 {
	r := x - size*math32.Floor(x/size)
	if r >= size || r < 0 {
		return 0
	}
	return r
}

// Streak returns the segment a drop sweeps over the last frame. The geometry
// stage expands it into a camera-facing quad.
func Streak(head, velocity mgl32.Vec3, dt float32) (mgl32.Vec3, mgl32.Vec3) {
	return head, head.Sub(velocity.Mul(dt))
}
