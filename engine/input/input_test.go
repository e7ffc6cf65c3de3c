package input

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	valid  bool
	events []Event
	polls  int
}

func (h *recordingHandler) Handle(e Event)          { h.events = append(h.events, e) }
func (h *recordingHandler) IsValid() bool           { return h.valid }
func (h *recordingHandler) ProcessContinuousInput() { h.polls++ }

func TestRegistry_DispatchPrunesInvalid(t *testing.T) {
	r := NewRegistry()
	live := &recordingHandler{valid: true}
	dead := &recordingHandler{valid: true}
	r.Register(live)
	r.Register(dead)
	r.Register(nil)
	assert.Equal(t, 2, r.Len())

	r.Dispatch(KeyDown(common.KeyW))
	assert.Len(t, dead.events, 1)

	dead.valid = false
	r.Dispatch(KeyUp(common.KeyW))
	assert.Equal(t, 1, r.Len())
	assert.Len(t, live.events, 2)
	assert.Len(t, dead.events, 1)
}

func TestRegistry_ProcessContinuousInputPrunes(t *testing.T) {
	r := NewRegistry()
	live := &recordingHandler{valid: true}
	r.Register(&recordingHandler{valid: false})
	r.Register(live)

	r.ProcessContinuousInput()
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, live.polls)
}

func TestRegistry_ReleasedCameraPrunesHandler(t *testing.T) {
	cam := camera.NewCamera()
	r := NewRegistry()
	r.Register(NewOrbitHandler(cam.Ref(), mgl32.Vec3{}, 1))
	r.Register(NewFpsHandler(cam.Ref(), 0.1))

	r.Dispatch(MouseMove(0, 0))
	assert.Equal(t, 2, r.Len())

	cam.Release()
	r.Dispatch(MouseMove(1, 1))
	assert.Equal(t, 0, r.Len())
}

func TestEventKind_String(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{EventMouseMove, "mouse_move"},
		{EventMouseDown, "mouse_down"},
		{EventMouseUp, "mouse_up"},
		{EventKeyDown, "key_down"},
		{EventKeyUp, "key_up"},
		{EventScroll, "scroll"},
		{EventKind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestOrbitHandler_DragOnlyWithLeftButton(t *testing.T) {
	cam := camera.NewCamera()
	h := NewOrbitHandler(cam.Ref(), mgl32.Vec3{}, 1)
	start := cam.Position()

	h.Handle(MouseMove(10, 10))
	assert.Equal(t, start, cam.Position(), "moving without a drag does nothing")

	h.Handle(MouseDown(common.MouseButtonRight, 10, 10))
	h.Handle(MouseMove(20, 10))
	assert.Equal(t, start, cam.Position())

	h.Handle(MouseDown(common.MouseButtonLeft, 20, 10))
	h.Handle(MouseMove(50, 10))
	assert.NotEqual(t, start, cam.Position())
	assert.InDelta(t, start.Len(), cam.Position().Len(), 1e-4, "orbit keeps the radius")

	h.Handle(MouseUp(common.MouseButtonLeft, 50, 10))
	moved := cam.Position()
	h.Handle(MouseMove(80, 40))
	assert.Equal(t, moved, cam.Position())
}

func TestOrbitHandler_Scroll(t *testing.T) {
	cam := camera.NewCamera()
	h := NewOrbitHandler(cam.Ref(), mgl32.Vec3{}, 1)
	r := cam.Position().Len()

	h.Handle(Scroll(WheelDelta))
	assert.InDelta(t, r-0.25, cam.Position().Len(), 1e-4)

	h.Handle(Scroll(-2 * WheelDelta))
	assert.InDelta(t, r+0.25, cam.Position().Len(), 1e-4)

	h.Handle(Scroll(1000 * WheelDelta))
	assert.InDelta(t, 1, cam.Position().Len(), 1e-4)
}

func TestFpsHandler_ContinuousMovement(t *testing.T) {
	cam := camera.NewCamera(camera.WithPosition(mgl32.Vec3{}))
	h := NewFpsHandler(cam.Ref(), 0.5)

	h.Handle(KeyDown(common.KeyW))
	h.ProcessContinuousInput()
	h.ProcessContinuousInput()
	assert.InDelta(t, 1, cam.Position()[2], 1e-6)

	h.Handle(KeyUp(common.KeyW))
	h.Handle(KeyDown(common.KeyA))
	h.ProcessContinuousInput()
	assert.InDelta(t, -0.5, cam.Position()[0], 1e-6)

	h.Handle(KeyDown(common.KeyD))
	h.ProcessContinuousInput()
	assert.InDelta(t, 0, cam.Position()[0], 1e-6, "D wins over A")
}

func TestFpsHandler_MouseLook(t *testing.T) {
	cam := camera.NewCamera()
	h := NewFpsHandler(cam.Ref(), 0.5)

	h.Handle(MouseMove(100, 100))
	assert.Equal(t, camera.DefaultLookTo, cam.LookTo(), "first move sets the baseline")

	h.Handle(MouseMove(190, 100))
	look := cam.LookTo().Normalize()
	assert.InDelta(t, 1, look[0], 1e-5)
	assert.InDelta(t, 0, look[2], 1e-5)
}
