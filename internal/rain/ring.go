package rain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// SlotWriter stores one particle origin at a buffer slot.
type SlotWriter interface {
	WriteSlot(slot int, origin mgl32.Vec3)
}

// Ring is a fixed-capacity particle buffer written round-robin.
type Ring struct {
	capacity int
	cursor   int
	w        SlotWriter
}

func NewRing(capacity int, w SlotWriter) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("rain: ring capacity must be positive, got %d", capacity)
	}
	return &Ring{capacity: capacity, w: w}, nil
}

// Emit writes origin at the cursor and advances it, wrapping at capacity.
func (r *Ring) Emit(origin mgl32.Vec3) {
	r.w.WriteSlot(r.cursor, origin)
	r.cursor = (r.cursor + 1) % r.capacity
}

func (r *Ring) Cursor() int   { return r.cursor }
func (r *Ring) Capacity() int { return r.capacity }
