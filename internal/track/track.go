package track

import (
	"errors"
	"fmt"
	"math"
)

// SampleRate is the internal synthesis rate in Hz. Every Track is sampled at
// this rate; conversion to the output rate happens at encoding time.
const SampleRate = 16000

var (
	// ErrPrecondition is returned for malformed time ranges and fade windows
	ErrPrecondition = errors.New("track: precondition violated")
	// ErrSilent is returned when normalizing a track with no signal
	ErrSilent = errors.New("track: cannot normalize a silent track")
)

// Track is a dense buffer of samples positioned on a global timeline.
// Sample i of the buffer lives at global index origin+i; everything outside
// the buffer is silence.
type Track struct {
	samples []float64
	origin  int
	gain    float64 // pending multiplier, applied by ApplyLoudness or Mix
}

// New returns an empty track with unit gain
func New() *Track {
	return &Track{gain: 1}
}

// FromSamples wraps samples in a track starting at global index 0.
// The slice is owned by the track afterwards.
func FromSamples(samples []float64) *Track {
	return At(0, samples)
}

// At wraps samples in a track whose first sample sits at global index origin.
// The origin is kept as given; tracks built from notes never start before 0.
func At(origin int, samples []float64) *Track {
	return &Track{samples: samples, origin: origin, gain: 1}
}

// Samples returns the underlying buffer without applying the pending gain
func (t *Track) Samples() []float64 { return t.samples }

// Origin returns the global index of the first stored sample
func (t *Track) Origin() int { return t.origin }

// Len returns the number of stored samples
func (t *Track) Len() int { return len(t.samples) }

// End returns the global index one past the last stored sample
func (t *Track) End() int { return t.origin + len(t.samples) }

// Gain returns the pending gain
func (t *Track) Gain() float64 { return t.gain }

// SetGain replaces the pending gain
func (t *Track) SetGain(g float64) { t.gain = g }

// Duration returns the length of the stored buffer in seconds
func (t *Track) Duration() float64 {
	return float64(len(t.samples)) / SampleRate
}

// EndTime returns the time in seconds at which the track falls silent
func (t *Track) EndTime() float64 {
	return float64(t.End()) / SampleRate
}

// Index maps a time in seconds to the nearest global sample index
func Index(sec float64) int {
	return int(math.Round(sec * SampleRate))
}

// SampleAt returns the raw sample at global index i, or 0 outside the track
func (t *Track) SampleAt(i int) float64 {
	if i < t.origin || i >= t.End() {
		return 0
	}
	return t.samples[i-t.origin]
}

// ValueAt returns the raw sample nearest to the given time
func (t *Track) ValueAt(sec float64) float64 {
	return t.SampleAt(Index(sec))
}

// DerivAt returns the backward finite-difference slope (per second) at the
// sample nearest to the given time
func (t *Track) DerivAt(sec float64) float64 {
	i := Index(sec)
	return (t.SampleAt(i) - t.SampleAt(i-1)) * SampleRate
}

// Mix sums two tracks over the union of their ranges, applying each track's
// pending gain. Neither input is modified and the result has unit gain.
func Mix(a, b *Track) *Track {
	switch {
	case len(a.samples) == 0 && len(b.samples) == 0:
		return New()
	case len(a.samples) == 0:
		return b.applied()
	case len(b.samples) == 0:
		return a.applied()
	}

	start := min(a.origin, b.origin)
	end := max(a.End(), b.End())

	mixed := make([]float64, end-start)
	for i := range mixed {
		g := start + i
		mixed[i] = a.SampleAt(g)*a.gain + b.SampleAt(g)*b.gain
	}
	return At(start, mixed)
}

// MixAll folds Mix over tracks, starting from an empty track. Rendering a
// sheet cannot use it: each note reads the running mix before it is added.
func MixAll(tracks ...*Track) *Track {
	mix := New()
	for _, t := range tracks {
		mix = Mix(mix, t)
	}
	return mix
}

// applied returns a copy of t with its gain folded into the samples
func (t *Track) applied() *Track {
	out := make([]float64, len(t.samples))
	for i, s := range t.samples {
		out[i] = s * t.gain
	}
	return At(t.origin, out)
}

// Cut restricts the track to the global range [Index(t0), Index(t1)).
// Parts of the range outside the current buffer become silence, so Cut may
// also grow a track.
func (t *Track) Cut(t0, t1 float64) error {
	if t0 < 0 || t1 < t0 {
		return fmt.Errorf("%w: cut range [%v, %v)", ErrPrecondition, t0, t1)
	}
	start := Index(t0)
	end := Index(t1)

	cut := make([]float64, end-start)
	for i := range cut {
		cut[i] = t.SampleAt(start + i)
	}
	t.samples = cut
	t.origin = start
	return nil
}

// Normalize sets the pending gain so that the loudest sample reaches 1.0.
// Samples are not touched until ApplyLoudness.
func (t *Track) Normalize() error {
	peak := 0.0
	for _, s := range t.samples {
		peak = math.Max(peak, math.Abs(s))
	}
	if peak == 0 {
		return ErrSilent
	}
	t.gain = 1 / peak
	return nil
}

// ApplyLoudness multiplies every sample by the pending gain and resets it to 1
func (t *Track) ApplyLoudness() {
	if t.gain == 1 {
		return
	}
	for i := range t.samples {
		t.samples[i] *= t.gain
	}
	t.gain = 1
}

// StartWithSilence materializes the leading silence so the buffer starts at
// global index 0.
func (t *Track) StartWithSilence() {
	if t.origin <= 0 {
		return
	}
	padded := make([]float64, t.origin+len(t.samples))
	copy(padded[t.origin:], t.samples)
	t.samples = padded
	t.origin = 0
}
