package notesheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// A4 is the reference pitch in Hz
const A4 = 440.0

// semitones from A within the same octave
var toneOffsets = map[byte]int{
	'c': -9,
	'd': -7,
	'e': -5,
	'f': -4,
	'g': -2,
	'a': 0,
	'b': 2,
}

// Pitch is a named tone: letter, octave and an accidental in semitones
type Pitch struct {
	Tone       byte // 'a'..'g'
	Octave     int  // A440 is in octave 4
	Accidental int  // negative for flats, positive for sharps
}

// Semitones returns the distance from A4
func (p Pitch) Semitones() int {
	return (p.Octave-4)*12 + toneOffsets[p.Tone] + p.Accidental
}

// Frequency returns the equal-tempered frequency in Hz
func (p Pitch) Frequency() float64 {
	return A4 * math.Exp2(float64(p.Semitones())/12)
}

// parsePitch reads "<tone><octave>" such as "a4", "C3" or "g-1"
func parsePitch(s string) (Pitch, error) {
	s = strings.ToLower(s)
	if len(s) < 2 {
		return Pitch{}, fmt.Errorf("bad pitch %q", s)
	}
	if _, ok := toneOffsets[s[0]]; !ok {
		return Pitch{}, fmt.Errorf("unknown tone name %q", s[:1])
	}
	octave, err := strconv.Atoi(s[1:])
	if err != nil {
		return Pitch{}, fmt.Errorf("bad octave in %q", s)
	}
	return Pitch{Tone: s[0], Octave: octave}, nil
}

// parseAccidental reads "flat", "sharp" or a signed semitone count
func parseAccidental(s string) (int, bool) {
	switch strings.ToLower(s) {
	case "flat":
		return -1, true
	case "sharp":
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || strings.Contains(s, "/") {
		return 0, false
	}
	return n, true
}
