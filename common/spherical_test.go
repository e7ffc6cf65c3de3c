package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestToSpherical(t *testing.T) {
	cases := []struct {
		name          string
		x, y, z       float32
		r, phi, theta float32
	}{
		{"+x", 1, 0, 0, 1, 0, math32.Pi / 2},
		{"-z", 0, 0, -1, 1, -math32.Pi / 2, math32.Pi / 2},
		{"xz diagonal", 1, 0, 1, math32.Sqrt(2), math32.Pi / 4, math32.Pi / 2},
		{"x -z diagonal", 1, 0, -1, math32.Sqrt(2), -math32.Pi / 4, math32.Pi / 2},
		{"+y", 0, 2, 0, 2, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, phi, theta := ToSpherical(tc.x, tc.y, tc.z)
			assert.InDelta(t, tc.r, r, 1e-6)
			assert.InDelta(t, tc.phi, phi, 1e-6)
			assert.InDelta(t, tc.theta, theta, 1e-6)
		})
	}
}

func TestToCartesian(t *testing.T) {
	cases := []struct {
		name          string
		r, phi, theta float32
		x, y, z       float32
	}{
		{"quarter angles", 1, math32.Pi / 4, math32.Pi / 4, 0.5, math32.Sqrt(2) / 2, 0.5},
		{"+z", 5, math32.Pi / 2, math32.Pi / 2, 0, 0, 5},
		{"-z", 5, -math32.Pi / 2, math32.Pi / 2, 0, 0, -5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y, z := ToCartesian(tc.r, tc.phi, tc.theta)
			assert.InDelta(t, tc.x, x, 1e-5)
			assert.InDelta(t, tc.y, y, 1e-5)
			assert.InDelta(t, tc.z, z, 1e-5)
		})
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	points := [][3]float32{
		{1, 0, 0}, {0, 0, -1}, {1, 0, 1}, {-3, 2, 0.5}, {0.25, -4, 7},
		{-1, -1, -1}, {10, 0.001, -2}, {-0.2, 0.3, 0.4},
	}

	for _, p := range points {
		r, phi, theta := ToSpherical(p[0], p[1], p[2])
		x, y, z := ToCartesian(r, phi, theta)
		assert.InDelta(t, p[0], x, 1e-5, "x for %v", p)
		assert.InDelta(t, p[1], y, 1e-5, "y for %v", p)
		assert.InDelta(t, p[2], z, 1e-5, "z for %v", p)
	}
}
