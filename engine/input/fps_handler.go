package input

import (
	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/camera"
)

// FpsHandler turns the camera with mouse movement and moves it with held W, A, S and D keys.
type FpsHandler struct {
	cam  camera.Ref
	step float32

	held     map[uint32]bool
	tracking bool
	lastX    int32
	lastY    int32
}

var _ Handler = &FpsHandler{}

// NewFpsHandler creates an FpsHandler bound to the referenced camera.
//
// Parameters:
//   - cam: weak reference to the camera to move
//   - step: the distance moved per continuous-input tick while a movement key is held
//
// Returns:
//   - *FpsHandler: the new handler
func NewFpsHandler(cam camera.Ref, step float32) *FpsHandler {
	return &FpsHandler{
		cam:  cam,
		step: step,
		held: make(map[uint32]bool),
	}
}

func (h *FpsHandler) Handle(e Event) {
	cam, ok := h.cam.Get()
	if !ok {
		return
	}

	switch e.Kind {
	case EventKeyDown:
		h.held[e.Key] = true
	case EventKeyUp:
		delete(h.held, e.Key)
	case EventMouseMove:
		// the first position only sets the baseline
		if !h.tracking {
			h.tracking = true
			h.lastX, h.lastY = e.X, e.Y
			return
		}
		dx := float32(e.X - h.lastX)
		dy := float32(e.Y - h.lastY)
		h.lastX, h.lastY = e.X, e.Y
		camera.LookUp(cam, -dy)
		camera.LookRight(cam, dx)
	}
}

func (h *FpsHandler) IsValid() bool {
	return h.cam.IsValid()
}

func (h *FpsHandler) ProcessContinuousInput() {
	cam, ok := h.cam.Get()
	if !ok {
		return
	}
	camera.MoveForward(cam, h.axis(common.KeyW, common.KeyS)*h.step)
	camera.MoveRight(cam, h.axis(common.KeyD, common.KeyA)*h.step)
}

// axis returns 1 while pos is held, otherwise -1 while neg is held, otherwise 0.
func (h *FpsHandler) axis(pos, neg uint32) float32 {
	switch {
	case h.held[pos]:
		return 1
	case h.held[neg]:
		return -1
	default:
		return 0
	}
}
