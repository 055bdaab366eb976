package instrument

import (
	"math"
	"strconv"

	"github.com/mattetti/notes2wav/internal/track"
)

const (
	xylophoneAttack  = 0.002 // seconds
	xylophoneRelease = 0.25  // share of the note
)

// Xylophone is a struck bar: a stack of harmonics with 1/h weights under an
// exponential decay. Every hit starts from rest, so State is ignored.
type Xylophone struct {
	FreqMod   float64
	Decay     float64 // time constant in seconds
	Harmonics int
}

// NewXylophone returns a xylophone with default parameters
func NewXylophone() *Xylophone {
	return &Xylophone{FreqMod: 1, Decay: 0.3, Harmonics: 4}
}

func (x *Xylophone) Name() string { return "xylophone" }

// Set accepts freq_mod, decay and harmonics
func (x *Xylophone) Set(key, value string) error {
	switch key {
	case "freq_mod":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		x.FreqMod = f
	case "decay":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		x.Decay = f
	case "harmonics":
		h, err := strconv.Atoi(value)
		if err != nil || h < 1 {
			return badValue(key, value)
		}
		x.Harmonics = h
	default:
		return unknownKey(x.Name(), key)
	}
	return nil
}

// Synthesize renders a single hit of n
func (x *Xylophone) Synthesize(n Note, _ State) (*track.Track, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}
	start, count := span(n)
	if count <= 0 {
		return track.At(start, nil), nil
	}

	amp := n.Amplitude()
	base := 2 * math.Pi * n.Frequency * x.FreqMod
	weights := 0.0
	for h := 1; h <= x.Harmonics; h++ {
		weights += 1 / float64(h)
	}

	times, err := sampleTimes(count)
	if err != nil {
		return nil, err
	}
	samples := make([]float64, count)
	for j, t := range times {
		v := 0.0
		for h := 1; h <= x.Harmonics; h++ {
			v += math.Sin(base*float64(h)*t) / float64(h)
		}
		samples[j] = amp * v / weights * math.Exp(-t/x.Decay)
	}

	frag := track.At(start, samples)
	if err := frag.FadeIn(fadeLength(xylophoneAttack, count), track.Exponential); err != nil {
		return nil, err
	}
	if err := frag.FadeOut(fadeLength(n.Duration*xylophoneRelease, count), track.Exponential); err != nil {
		return nil, err
	}
	return frag, nil
}
