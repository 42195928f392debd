package mapview

import "math"

// RotationState is the state of the idle globe rotation.
type RotationState int

const (
	// Idle means the camera is zoomed in too far to rotate.
	Idle RotationState = iota
	Rotating
	// Suspended means a pointer interaction is in progress.
	Suspended
)

func (s RotationState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rotating:
		return "rotating"
	case Suspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Interaction events sent by the browser map.
const (
	EventPointerDown = "pointerdown"
	EventPointerUp   = "pointerup"
	EventDragEnd     = "dragend"
	EventTouchEnd    = "touchend"
	EventZoom        = "zoom"
	EventMoveEnd     = "moveend"
)

// Rotator decides when the globe camera turns. It is not safe for
// concurrent use; View guards it with its own lock.
type Rotator struct {
	state   RotationState
	step    float64
	maxZoom float64
	zoom    float64
}

// NewRotator creates a rotator that moves step degrees per tick while the
// zoom is below maxZoom.
func NewRotator(step, maxZoom, zoom float64) *Rotator {
	r := &Rotator{step: step, maxZoom: maxZoom, zoom: zoom}
	r.state = r.settled()
	return r
}

func (r *Rotator) State() RotationState {
	return r.state
}

// PointerDown suspends rotation until the interaction ends.
func (r *Rotator) PointerDown() {
	r.state = Suspended
}

// PointerUp ends an interaction. It covers pointer-up, drag-end and touch-end.
func (r *Rotator) PointerUp() {
	r.state = r.settled()
}

// SetZoom records the camera zoom. An active interaction stays suspended.
func (r *Rotator) SetZoom(zoom float64) {
	r.zoom = zoom
	if r.state != Suspended {
		r.state = r.settled()
	}
}

// Tick returns the next camera longitude and whether the camera moved.
func (r *Rotator) Tick(lng float64) (float64, bool) {
	if r.state != Rotating {
		return lng, false
	}
	return WrapLongitude(lng - r.step), true
}

func (r *Rotator) settled() RotationState {
	if r.zoom < r.maxZoom {
		return Rotating
	}
	return Idle
}

// WrapLongitude maps lng into [-180, 180).
func WrapLongitude(lng float64) float64 {
	w := math.Mod(lng+180, 360)
	if w < 0 {
		w += 360
	}
	return w - 180
}
