package instrument

import (
	"math"

	"github.com/mattetti/notes2wav/internal/track"
)

// Sine is a pure tone that picks up the phase of whatever is already playing,
// so consecutive notes join without a click.
type Sine struct {
	FreqMod float64 // frequency multiplier
	Fade    float64 // seconds of exponential fade at both ends, 0 disables
}

// NewSine returns a sine instrument with default parameters
func NewSine() *Sine {
	return &Sine{FreqMod: 1}
}

func (s *Sine) Name() string { return "sine" }

// Set accepts freq_mod and fade
func (s *Sine) Set(key, value string) error {
	switch key {
	case "freq_mod":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		s.FreqMod = f
	case "fade":
		f, err := parseNonNegative(key, value)
		if err != nil {
			return err
		}
		s.Fade = f
	default:
		return unknownKey(s.Name(), key)
	}
	return nil
}

// Synthesize renders n starting from the running value and slope in st
func (s *Sine) Synthesize(n Note, st State) (*track.Track, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}
	start, count := span(n)
	if count <= 0 {
		return track.At(start, nil), nil
	}

	amp := n.Amplitude()
	omega := 2 * math.Pi * n.Frequency * s.FreqMod
	phase := continuationPhase(st, amp)

	times, err := sampleTimes(count)
	if err != nil {
		return nil, err
	}
	samples := make([]float64, count)
	for j, t := range times {
		samples[j] = amp * math.Sin(phase+omega*t)
	}

	frag := track.At(start, samples)
	if s.Fade > 0 {
		fade := fadeLength(s.Fade, count/2)
		if err := frag.FadeIn(fade, track.Exponential); err != nil {
			return nil, err
		}
		if err := frag.FadeOut(fade, track.Exponential); err != nil {
			return nil, err
		}
	}
	return frag, nil
}

// continuationPhase returns the phase at which a sine of amplitude amp passes
// through st.Value heading in the direction of st.Slope
func continuationPhase(st State, amp float64) float64 {
	x := st.Value / amp
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	if st.Slope >= 0 {
		return math.Asin(x)
	}
	return math.Pi - math.Asin(x)
}
