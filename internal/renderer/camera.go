// camera.go
package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Movement int

const (
	Forward Movement = iota
	Backward
	Left
	Right
)

// Camera is a free-fly perspective camera driven by yaw and pitch in degrees.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3
	Pitch    float32
	Yaw      float32

	WorldUp     mgl32.Vec3
	Speed       float32
	Sensitivity float32
	Fov         float32 // degrees, changed by scrolling
	Near        float32
	Far         float32
	AspectRatio float32
}

// NewCamera places a camera at position looking down -Z.
func NewCamera(position mgl32.Vec3, width, height int32) *Camera {
	c := &Camera{
		Position:    position,
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Yaw:         -90,
		Speed:       2.5,
		Sensitivity: 0.1,
		Fov:         45,
		Near:        0.1,
		Far:         100,
	}
	c.SetViewportSize(width, height)
	c.updateCameraVectors()
	return c
}

func (c *Camera) SetViewportSize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.AspectRatio, c.Near, c.Far)
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

func (c *Camera) ProcessKeyboard(dir Movement, deltaTime float32) {
	velocity := c.Speed * deltaTime
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front.Mul(velocity))
	case Backward:
		c.Position = c.Position.Sub(c.Front.Mul(velocity))
	case Left:
		c.Position = c.Position.Sub(c.Right.Mul(velocity))
	case Right:
		c.Position = c.Position.Add(c.Right.Mul(velocity))
	}
}

// ProcessMouseMovement turns the camera by a cursor delta. Positive yoffset
// looks up. Pitch is clamped short of the poles.
func (c *Camera) ProcessMouseMovement(xoffset, yoffset float32) {
	c.Yaw += xoffset * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+yoffset*c.Sensitivity, -89, 89)
	c.updateCameraVectors()
}

func (c *Camera) ProcessMouseScroll(yoffset float32) {
	c.Fov = mgl32.Clamp(c.Fov-yoffset, 1, 45)
}

func (c *Camera) updateCameraVectors() {
	yaw := mgl32.DegToRad(c.Yaw)
	pitch := mgl32.DegToRad(c.Pitch)

	front := mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}
	c.Front = front.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}
