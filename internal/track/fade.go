package track

import (
	"fmt"
	"math"
)

// FadeMode selects the envelope used by FadeIn and FadeOut
type FadeMode int

const (
	// Linear ramps from 0 at the silent edge to 1 at the sustain edge
	Linear FadeMode = iota
	// Exponential follows 2 - exp(ln2 * x), reaching silence along a curve
	// rather than a ramp
	Exponential
)

func (m FadeMode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	default:
		return fmt.Sprintf("FadeMode(%d)", int(m))
	}
}

// envelope returns the gain for a sample d samples away from the silent edge
// of an n-sample fade window
func (m FadeMode) envelope(d, n int) float64 {
	switch m {
	case Exponential:
		return 2 - math.Exp2(float64(n-d)/float64(n))
	default:
		return float64(d) / float64(n)
	}
}

// fadeSamples converts a fade length to a sample count and checks it fits
func (t *Track) fadeSamples(length float64) (int, error) {
	if length < 0 {
		return 0, fmt.Errorf("%w: negative fade length %v", ErrPrecondition, length)
	}
	n := int(math.Floor(length * SampleRate))
	if n > len(t.samples) {
		return 0, fmt.Errorf("%w: fade of %d samples exceeds track of %d samples", ErrPrecondition, n, len(t.samples))
	}
	return n, nil
}

// FadeIn shapes the first length seconds of the track
func (t *Track) FadeIn(length float64, mode FadeMode) error {
	n, err := t.fadeSamples(length)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		t.samples[i] *= mode.envelope(i, n)
	}
	return nil
}

// FadeOut shapes the last length seconds of the track
func (t *Track) FadeOut(length float64, mode FadeMode) error {
	n, err := t.fadeSamples(length)
	if err != nil {
		return err
	}
	last := len(t.samples) - 1
	for d := 0; d < n; d++ {
		t.samples[last-d] *= mode.envelope(d, n)
	}
	return nil
}

// BellMask multiplies the track by a Gaussian centred at middle seconds with
// width sigma, keeps only [middle-sigma, middle+sigma] and softens both ends
// with linear fades of sigma/2.
func (t *Track) BellMask(middle, sigma float64) error {
	if sigma <= 0 || middle-sigma < 0 {
		return fmt.Errorf("%w: bell mask with middle %v and sigma %v", ErrPrecondition, middle, sigma)
	}
	centre := middle * SampleRate
	width := sigma * SampleRate
	for i := range t.samples {
		x := (float64(t.origin+i) - centre) / width
		t.samples[i] *= math.Exp(-0.5 * x * x)
	}

	if err := t.Cut(middle-sigma, middle+sigma); err != nil {
		return err
	}
	if err := t.FadeIn(sigma/2, Linear); err != nil {
		return err
	}
	return t.FadeOut(sigma/2, Linear)
}
