package instrument

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mattetti/notes2wav/internal/interp"
	"github.com/mattetti/notes2wav/internal/track"
)

// ErrParameter is returned for unknown parameter keys and unparsable values
var ErrParameter = errors.New("instrument: invalid parameter")

// Note is a single musical event
type Note struct {
	Frequency float64 // Hz
	Duration  float64 // seconds
	Onset     float64 // seconds from the start of the piece
	Loudness  float64 // relative amplitude, 0 means 1
}

// Amplitude returns the note loudness with the default applied
func (n Note) Amplitude() float64 {
	if n.Loudness == 0 {
		return 1
	}
	return n.Loudness
}

func (n Note) validate() error {
	if n.Frequency <= 0 || n.Duration <= 0 || n.Onset < 0 {
		return fmt.Errorf("%w: note with frequency %v, duration %v, onset %v", track.ErrPrecondition, n.Frequency, n.Duration, n.Onset)
	}
	return nil
}

// State is the running mix just before a note's onset, used to keep the new
// waveform continuous with what is already playing
type State struct {
	Value float64
	Slope float64 // per second
}

// StateBefore samples the mix at the last sample preceding onset
func StateBefore(mix *track.Track, onset float64) State {
	t := onset - 1.0/track.SampleRate
	return State{Value: mix.ValueAt(t), Slope: mix.DerivAt(t)}
}

// Instrument turns notes into positioned track fragments
type Instrument interface {
	Name() string
	Set(key, value string) error
	Synthesize(n Note, s State) (*track.Track, error)
}

var registry = map[string]func() Instrument{
	"sine":      func() Instrument { return NewSine() },
	"xylophone": func() Instrument { return NewXylophone() },
	"drum":      func() Instrument { return NewDrum() },
}

// New builds the named instrument with its default parameters
func New(name string) (Instrument, error) {
	ctor, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown instrument %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names lists the registered instruments
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s = %q: %v", ErrParameter, key, value, err)
	}
	return f, nil
}

func parsePositive(key, value string) (float64, error) {
	f, err := parseFloat(key, value)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %v", ErrParameter, key, f)
	}
	return f, nil
}

func parseNonNegative(key, value string) (float64, error) {
	f, err := parseFloat(key, value)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative, got %v", ErrParameter, key, f)
	}
	return f, nil
}

func badValue(key, value string) error {
	return fmt.Errorf("%w: %s = %q", ErrParameter, key, value)
}

func unknownKey(inst, key string) error {
	return fmt.Errorf("%w: %s has no parameter %q", ErrParameter, inst, key)
}

// sampleTimes returns the offsets, in seconds, of the n samples that follow a
// note's onset: 1/R, 2/R, ... n/R
func sampleTimes(n int) ([]float64, error) {
	if n == 1 {
		return []float64{1.0 / track.SampleRate}, nil
	}
	return interp.LinspaceFromN(1.0/track.SampleRate, float64(n)/track.SampleRate, n)
}

// span returns the global index and sample count covered by a note
func span(n Note) (int, int) {
	start := track.Index(n.Onset)
	return start, track.Index(n.Onset+n.Duration) - start
}

// fadeLength caps a fade so it fits inside a fragment
func fadeLength(want float64, samples int) float64 {
	limit := float64(samples) / track.SampleRate
	if want > limit {
		return limit
	}
	return want
}
