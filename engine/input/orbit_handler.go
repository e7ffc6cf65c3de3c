package input

import (
	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
)

// zoomPerNotch is the radius change of one wheel notch. Scrolling up moves the camera closer.
const zoomPerNotch = float32(0.25)

// OrbitHandler orbits a camera around a focus point while the left mouse button is held and
// zooms with the scroll wheel.
type OrbitHandler struct {
	cam       camera.Ref
	focus     mgl32.Vec3
	minRadius float32

	dragging bool
	lastX    int32
	lastY    int32
}

var _ Handler = &OrbitHandler{}

// NewOrbitHandler creates an OrbitHandler bound to the referenced camera.
//
// Parameters:
//   - cam: weak reference to the camera to move
//   - focus: the orbit centre
//   - minRadius: the closest the camera may get to focus
//
// Returns:
//   - *OrbitHandler: the new handler
func NewOrbitHandler(cam camera.Ref, focus mgl32.Vec3, minRadius float32) *OrbitHandler {
	return &OrbitHandler{
		cam:       cam,
		focus:     focus,
		minRadius: minRadius,
	}
}

func (h *OrbitHandler) Handle(e Event) {
	cam, ok := h.cam.Get()
	if !ok {
		return
	}

	switch e.Kind {
	case EventMouseDown:
		if e.Button == common.MouseButtonLeft {
			h.dragging = true
			h.lastX, h.lastY = e.X, e.Y
		}
	case EventMouseUp:
		if e.Button == common.MouseButtonLeft {
			h.dragging = false
		}
	case EventMouseMove:
		if !h.dragging {
			return
		}
		dx := float32(e.X - h.lastX)
		dy := float32(e.Y - h.lastY)
		h.lastX, h.lastY = e.X, e.Y
		camera.SetOrbitWithOffset(cam, h.focus, 0, -dx, -dy, h.minRadius)
	case EventScroll:
		dR := zoomPerNotch * e.Delta / -WheelDelta
		camera.SetOrbitWithOffset(cam, h.focus, dR, 0, 0, h.minRadius)
	}
}

func (h *OrbitHandler) IsValid() bool {
	return h.cam.IsValid()
}

// ProcessContinuousInput does nothing; orbiting is driven by discrete events only.
func (h *OrbitHandler) ProcessContinuousInput() {}
