package common

import (
	"cmp"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// All matrices are mgl32.Mat4 values in column-major order and are applied to column vectors
// (clip = proj * view * model * v). Coordinate systems are left-handed: +X right, +Y up,
// +Z forward, with clip depth in [0, 1].

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// LookToLH builds a left-handed view matrix for an eye at eye looking along dir.
// dir and up do not need to be normalized, but they must not be parallel and dir must not be zero.
//
// Parameters:
//   - eye: the eye position in world space
//   - dir: the viewing direction
//   - up: the approximate up vector
//
// Returns:
//   - mgl32.Mat4: the world-to-view transform
func LookToLH(eye, dir, up mgl32.Vec3) mgl32.Mat4 {
	z := dir.Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	return mgl32.Mat4FromRows(
		mgl32.Vec4{x[0], x[1], x[2], -x.Dot(eye)},
		mgl32.Vec4{y[0], y[1], y[2], -y.Dot(eye)},
		mgl32.Vec4{z[0], z[1], z[2], -z.Dot(eye)},
		mgl32.Vec4{0, 0, 0, 1},
	)
}

// LookAtLH builds a left-handed view matrix for an eye at eye looking at target.
//
// Parameters:
//   - eye: the eye position in world space
//   - target: the point to look at
//   - up: the approximate up vector
//
// Returns:
//   - mgl32.Mat4: the world-to-view transform
func LookAtLH(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	return LookToLH(eye, target.Sub(eye), up)
}

// PerspectiveFovLH builds a left-handed perspective projection that maps view depth
// [near, far] to clip depth [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near plane distance (must be > 0)
//   - far: far plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the view-to-clip transform
func PerspectiveFovLH(fovY, aspect, near, far float32) mgl32.Mat4 {
	yScale := 1 / math32.Tan(fovY/2)
	xScale := yScale / aspect
	fRange := far / (far - near)

	return mgl32.Mat4FromRows(
		mgl32.Vec4{xScale, 0, 0, 0},
		mgl32.Vec4{0, yScale, 0, 0},
		mgl32.Vec4{0, 0, fRange, -fRange * near},
		mgl32.Vec4{0, 0, 1, 0},
	)
}

// OrthographicLH builds a left-handed orthographic projection of a width x height cross-section
// that maps view depth [near, far] linearly to clip depth [0, 1].
//
// Parameters:
//   - width: the view volume width
//   - height: the view volume height
//   - near: near plane distance
//   - far: far plane distance (must differ from near)
//
// Returns:
//   - mgl32.Mat4: the view-to-clip transform
func OrthographicLH(width, height, near, far float32) mgl32.Mat4 {
	fRange := 1 / (far - near)

	return mgl32.Mat4FromRows(
		mgl32.Vec4{2 / width, 0, 0, 0},
		mgl32.Vec4{0, 2 / height, 0, 0},
		mgl32.Vec4{0, 0, fRange, -fRange * near},
		mgl32.Vec4{0, 0, 0, 1},
	)
}

// Transformation composes a scale, a rotation and a translation into a single model matrix.
// Scale is applied first, then rotation, then translation.
//
// Parameters:
//   - scale: per-axis scale factors
//   - rotation: the rotation quaternion
//   - translation: the world translation
//
// Returns:
//   - mgl32.Mat4: T * R * S
func Transformation(scale mgl32.Vec3, rotation mgl32.Quat, translation mgl32.Vec3) mgl32.Mat4 {
	s := mgl32.Scale3D(scale[0], scale[1], scale[2])
	r := rotation.Normalize().Mat4()
	t := mgl32.Translate3D(translation[0], translation[1], translation[2])
	return t.Mul4(r.Mul4(s))
}

// Inverse returns the inverse of m, or the zero matrix when m is singular.
func Inverse(m mgl32.Mat4) mgl32.Mat4 {
	return m.Inv()
}

// TransformPoint applies m to the point p (w = 1) and performs the homogeneous divide.
//
// Parameters:
//   - m: the transform to apply
//   - p: the point to transform
//
// Returns:
//   - mgl32.Vec3: the transformed point
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	if v[3] != 0 && v[3] != 1 {
		return v.Vec3().Mul(1 / v[3])
	}
	return v.Vec3()
}

// NearEqual reports whether every component of a and b differs by at most eps.
func NearEqual(a, b mgl32.Vec3, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// Clamp limits x to the closed range [lo, hi].
func Clamp[T cmp.Ordered](x, lo, hi T) T {
	if x <= lo {
		return lo
	}
	if x >= hi {
		return hi
	}
	return x
}

// Wrap folds x into the range spanned by lo and hi. Positive values wrap forward from lo,
// non-positive values wrap backward from hi. The bounds may be given in either order.
//
// Parameters:
//   - x: the value to wrap
//   - lo: one bound of the range
//   - hi: the other bound of the range
//
// Returns:
//   - float32: the wrapped value
func Wrap(x, lo, hi float32) float32 {
	if hi < lo {
		return Wrap(x, hi, lo)
	}
	if x > 0 {
		return lo + math32.Mod(x, hi-lo)
	}
	return hi + math32.Mod(x, hi-lo)
}

// MapRange linearly maps val from [l0, r0] onto [l1, r1].
func MapRange(val, l0, r0, l1, r1 float32) float32 {
	return l1 + (val-l0)*(r1-l1)/(r0-l0)
}
