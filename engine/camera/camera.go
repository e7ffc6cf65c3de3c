package camera

import (
	"sync"
	"sync/atomic"
	"weak"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Default values used by NewCamera.
var (
	DefaultPosition = mgl32.Vec3{0, 2, -10}
	DefaultLookTo   = mgl32.Vec3{0, 0, 1}
	DefaultUp       = mgl32.Vec3{0, 1, 0}
	DefaultFovDeg   = float32(60)
	DefaultNear     = float32(1)
	DefaultFar      = float32(100)
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	lookTo   mgl32.Vec3
	up       mgl32.Vec3

	fovDeg float32
	aspect float32
	near   float32
	far    float32

	released atomic.Bool
}

// Camera defines the interface for a perspective camera described by a world position, a look
// direction and an up vector. All methods are safe for concurrent use.
type Camera interface {
	// Position returns the world-space position of the camera.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition moves the camera without changing its look direction.
	//
	// Parameters:
	//   - p: the new world position
	SetPosition(p mgl32.Vec3)

	// LookTo returns the look direction. It need not be normalized.
	//
	// Returns:
	//   - mgl32.Vec3: the look direction
	LookTo() mgl32.Vec3

	// SetLookTo sets the look direction. Zero vectors are ignored.
	//
	// Parameters:
	//   - d: the new look direction
	SetLookTo(d mgl32.Vec3)

	// Up returns the camera's approximate up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// SetUp sets the approximate up vector.
	//
	// Parameters:
	//   - up: the new up vector
	SetUp(up mgl32.Vec3)

	// FovDeg returns the vertical field of view in degrees.
	FovDeg() float32

	// SetFovDeg sets the vertical field of view in degrees.
	//
	// Parameters:
	//   - deg: the field of view
	SetFovDeg(deg float32)

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the new aspect ratio
	SetAspect(aspect float32)

	// ClipPlanes returns the near and far plane distances.
	//
	// Returns:
	//   - float32: the near distance
	//   - float32: the far distance
	ClipPlanes() (float32, float32)

	// SetClipPlanes sets the near and far plane distances.
	//
	// Parameters:
	//   - near: the near distance
	//   - far: the far distance
	SetClipPlanes(near, far float32)

	// FocusAtPoint turns the camera to look at p. It does nothing when p is within 1e-6 of
	// the camera position.
	//
	// Parameters:
	//   - p: the world point to look at
	FocusAtPoint(p mgl32.Vec3)

	// AxisX returns the normalized camera right axis.
	AxisX() mgl32.Vec3

	// AxisY returns the normalized camera up axis, orthogonal to AxisX and AxisZ.
	AxisY() mgl32.Vec3

	// AxisZ returns the normalized look direction.
	AxisZ() mgl32.Vec3

	// ViewMatrix returns the left-handed world-to-view transform.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the left-handed perspective projection.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// Ref returns a weak reference to the camera for input handlers.
	//
	// Returns:
	//   - Ref: a reference that becomes invalid once the camera is released
	Ref() Ref

	// Release invalidates every Ref to the camera.
	Release()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with the default pose and lens, then applies the options.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: DefaultPosition,
		lookTo:   DefaultLookTo,
		up:       DefaultUp,
		fovDeg:   DefaultFovDeg,
		aspect:   1,
		near:     DefaultNear,
		far:      DefaultFar,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) LookTo() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookTo
}

func (c *cameraImpl) SetLookTo(d mgl32.Vec3) {
	if d.LenSqr() == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookTo = d
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
}

func (c *cameraImpl) FovDeg() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fovDeg
}

func (c *cameraImpl) SetFovDeg(deg float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fovDeg = deg
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) ClipPlanes() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near, c.far
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
}

func (c *cameraImpl) FocusAtPoint(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if common.NearEqual(p, c.position, 1e-6) {
		return
	}
	c.lookTo = p.Sub(c.position).Normalize()
}

func (c *cameraImpl) AxisX() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.axisX()
}

func (c *cameraImpl) AxisY() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.axisZ().Cross(c.axisX())
}

func (c *cameraImpl) AxisZ() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.axisZ()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.LookToLH(c.position, c.lookTo.Normalize(), c.up.Normalize())
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.PerspectiveFovLH(mgl32.DegToRad(c.fovDeg), c.aspect, c.near, c.far)
}

func (c *cameraImpl) Ref() Ref {
	return Ref{ptr: weak.Make(c)}
}

func (c *cameraImpl) Release() {
	c.released.Store(true)
}

func (c *cameraImpl) axisZ() mgl32.Vec3 {
	return c.lookTo.Normalize()
}

func (c *cameraImpl) axisX() mgl32.Vec3 {
	return c.up.Cross(c.axisZ()).Normalize()
}

// Ref is a weak reference to a Camera. It does not keep the camera alive and reports invalid once
// the camera is released or collected. The zero Ref is invalid.
type Ref struct {
	ptr weak.Pointer[cameraImpl]
}

// Get returns the camera if the reference is still valid.
//
// Returns:
//   - Camera: the referenced camera, or nil
//   - bool: false if the camera was released or collected
func (r Ref) Get() (Camera, bool) {
	c := r.ptr.Value()
	if c == nil || c.released.Load() {
		return nil, false
	}
	return c, true
}

// IsValid reports whether Get would return a camera.
func (r Ref) IsValid() bool {
	_, ok := r.Get()
	return ok
}
