package instrument

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/mattetti/notes2wav/internal/track"
)

// Drum is a short click: seeded noise over a low tone at the note's pitch,
// shaped by a bell mask centred one width after the onset.
type Drum struct {
	FreqMod float64
	Width   float64 // bell sigma in seconds, capped at half the note
	Seed    int64
}

// NewDrum returns a drum with default parameters
func NewDrum() *Drum {
	return &Drum{FreqMod: 1, Width: 0.03, Seed: 1}
}

func (d *Drum) Name() string { return "drum" }

// Set accepts freq_mod, width and seed
func (d *Drum) Set(key, value string) error {
	switch key {
	case "freq_mod":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		d.FreqMod = f
	case "width":
		f, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		d.Width = f
	case "seed":
		s, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return badValue(key, value)
		}
		d.Seed = s
	default:
		return unknownKey(d.Name(), key)
	}
	return nil
}

// Synthesize renders one hit. The same seed and onset always give the same samples.
func (d *Drum) Synthesize(n Note, _ State) (*track.Track, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}
	width := math.Min(d.Width, n.Duration/2)
	start := track.Index(n.Onset)
	count := track.Index(n.Onset+2*width) - start
	if count <= 0 {
		return track.At(start, nil), nil
	}

	rng := rand.New(rand.NewSource(d.Seed + int64(start)))
	amp := n.Amplitude()
	omega := 2 * math.Pi * n.Frequency * d.FreqMod

	times, err := sampleTimes(count)
	if err != nil {
		return nil, err
	}
	samples := make([]float64, count)
	for j, t := range times {
		noise := 2*rng.Float64() - 1
		samples[j] = amp * (0.5*noise + 0.5*math.Sin(omega*t))
	}

	frag := track.At(start, samples)
	if err := frag.BellMask(n.Onset+width, width); err != nil {
		return nil, err
	}
	return frag, nil
}
