package interp

import "fmt"

// Resample converts samples taken at oldRate into samples at newRate using
// piecewise-linear interpolation. Only upsampling (or identity) is supported.
//
// The output covers the same time span as the input: output sample k sits at
// k/newRate and the last one lands at or before the final input sample.
// Output samples that coincide with an input sample reproduce it exactly.
func Resample(samples []float64, oldRate, newRate int) ([]float64, error) {
	if oldRate <= 0 || newRate <= 0 {
		return nil, fmt.Errorf("%w: sample rates must be positive (old %d, new %d)", ErrDomain, oldRate, newRate)
	}
	if newRate < oldRate {
		return nil, fmt.Errorf("%w: %d Hz -> %d Hz", ErrDownsample, oldRate, newRate)
	}

	n := len(samples)
	if n == 0 {
		return []float64{}, nil
	}
	if oldRate == newRate {
		out := make([]float64, n)
		copy(out, samples)
		return out, nil
	}

	old := int64(oldRate)
	nw := int64(newRate)
	last := int64(n-1) * nw / old
	out := make([]float64, 0, last+1)

	for k := int64(0); k <= last; k++ {
		pos := k * old
		i := pos / nw
		if pos%nw == 0 {
			out = append(out, samples[i])
			continue
		}
		y, err := Linerp(
			Point{X: float64(i) / float64(oldRate), Y: samples[i]},
			Point{X: float64(i+1) / float64(oldRate), Y: samples[i+1]},
			float64(k)/float64(newRate),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, y)
	}

	return out, nil
}
