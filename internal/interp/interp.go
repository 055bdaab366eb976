package interp

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain is returned when arguments fall outside the function's domain
	ErrDomain = errors.New("interp: argument outside domain")
	// ErrDownsample is returned when Resample is asked to lower the sample rate
	ErrDownsample = errors.New("interp: downsampling is not supported")
)

// Point is a single (x, y) sample of a function
type Point struct {
	X, Y float64
}

// Linerp estimates f(x) from two known points assuming f is linear between them
func Linerp(p1, p2 Point, x float64) (float64, error) {
	if p1.X == p2.X {
		return 0, fmt.Errorf("%w: cannot interpolate between x1 = %v and x2 = %v", ErrDomain, p1.X, p2.X)
	}
	return p1.Y + (x-p1.X)*(p2.Y-p1.Y)/(p2.X-p1.X), nil
}

// LinspaceFromN returns n evenly spaced points covering [x0, x1], both ends included
func LinspaceFromN(x0, x1 float64, n int) ([]float64, error) {
	if x1 <= x0 {
		return nil, fmt.Errorf("%w: linspace with x0 = %v and x1 = %v", ErrDomain, x0, x1)
	}
	if n <= 1 {
		return nil, fmt.Errorf("%w: linspace with n = %d points", ErrDomain, n)
	}

	points := make([]float64, n)
	step := float64(n - 1)
	for i := range points {
		points[i] = x0 + (x1-x0)*float64(i)/step
	}
	// Pin the last point so callers can rely on it being exact
	points[n-1] = x1
	return points, nil
}
