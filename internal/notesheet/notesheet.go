// Package notesheet reads the plain-text note sheets rendered by notes2wav.
//
// A sheet is a list of lines. Blank lines and everything after '#' are
// ignored. Directives:
//
//	instrument <name>       instrument to play the sheet with (default sine)
//	set <key> <value>       instrument parameter, e.g. "set freq_mod 1.5"
//	bpm <n>                 quarter notes per minute, before the first note (default 120)
//	loudness <x>            relative amplitude of the following notes (default 1)
//	bar [quarters]          start a new bar, optionally changing the bar length (default 4)
//
// Any other line is a note: "<tone><octave> [flat|sharp|<semitones>] <delta> <length>",
// where delta is the offset from the start of the bar and length the note
// value, both in whole notes written as "n" or "n/d". For example
// "c3 flat 1/4 1/4" is a quarter-note C-flat 3 on the second beat.
package notesheet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattetti/notes2wav/internal/instrument"
)

const (
	defaultInstrument = "sine"
	defaultBPM        = 120
	defaultBar        = 4 // quarters
)

// Param is an instrument parameter as written in the sheet
type Param struct {
	Key   string
	Value string
}

// Sheet is a parsed note sheet
type Sheet struct {
	Instrument string
	Params     []Param
	BPM        float64
	Notes      []instrument.Note
}

// NewInstrument builds the sheet's instrument and applies its parameters in order
func (s *Sheet) NewInstrument() (instrument.Instrument, error) {
	inst, err := instrument.New(s.Instrument)
	if err != nil {
		return nil, err
	}
	for _, p := range s.Params {
		if err := inst.Set(p.Key, p.Value); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// ParseFile reads and parses the sheet at path
func ParseFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

type parser struct {
	sheet    *Sheet
	barStart float64 // quarters
	barLen   float64 // quarters
	loudness float64
}

// Parse reads a sheet from r
func Parse(r io.Reader) (*Sheet, error) {
	p := &parser{
		sheet:    &Sheet{Instrument: defaultInstrument, BPM: defaultBPM},
		barLen:   defaultBar,
		loudness: 1,
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if err := p.parseLine(fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading sheet: %w", err)
	}
	return p.sheet, nil
}

func (p *parser) parseLine(fields []string) error {
	switch strings.ToLower(fields[0]) {
	case "instrument":
		if len(fields) != 2 {
			return fmt.Errorf("instrument takes one name, got %d", len(fields)-1)
		}
		p.sheet.Instrument = strings.ToLower(fields[1])
	case "set":
		if len(fields) != 3 {
			return fmt.Errorf("set takes a key and a value, got %d fields", len(fields)-1)
		}
		p.sheet.Params = append(p.sheet.Params, Param{Key: fields[1], Value: fields[2]})
	case "bpm":
		if len(p.sheet.Notes) > 0 {
			return fmt.Errorf("bpm must come before the first note")
		}
		bpm, err := parsePositive(fields, "bpm")
		if err != nil {
			return err
		}
		p.sheet.BPM = bpm
	case "loudness":
		l, err := parsePositive(fields, "loudness")
		if err != nil {
			return err
		}
		p.loudness = l
	case "bar":
		p.barStart += p.barLen
		if len(fields) > 1 {
			q, err := parsePositive(fields, "bar")
			if err != nil {
				return err
			}
			p.barLen = q
		}
	default:
		n, err := p.parseNote(fields)
		if err != nil {
			return err
		}
		p.sheet.Notes = append(p.sheet.Notes, n)
	}
	return nil
}

// parseNote turns "<pitch> [accidental] <delta> <length>" into a timed note
func (p *parser) parseNote(fields []string) (instrument.Note, error) {
	if len(fields) != 3 && len(fields) != 4 {
		return instrument.Note{}, fmt.Errorf("note needs 3 or 4 fields, got %d", len(fields))
	}
	pitch, err := parsePitch(fields[0])
	if err != nil {
		return instrument.Note{}, err
	}
	if len(fields) == 4 {
		acc, ok := parseAccidental(fields[1])
		if !ok {
			return instrument.Note{}, fmt.Errorf("bad accidental %q", fields[1])
		}
		pitch.Accidental = acc
	}

	delta, err := parseFraction(fields[len(fields)-2])
	if err != nil {
		return instrument.Note{}, err
	}
	length, err := parseFraction(fields[len(fields)-1])
	if err != nil {
		return instrument.Note{}, err
	}
	if delta < 0 || length <= 0 {
		return instrument.Note{}, fmt.Errorf("note needs delta >= 0 and length > 0")
	}

	bpm := p.sheet.BPM
	return instrument.Note{
		Frequency: pitch.Frequency(),
		Duration:  length * 240 / bpm,
		Onset:     (p.barStart + 4*delta) * 60 / bpm,
		Loudness:  p.loudness,
	}, nil
}

func parsePositive(fields []string, name string) (float64, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("%s takes one value, got %d", name, len(fields)-1)
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, fields[1])
	}
	return v, nil
}

// parseFraction reads "n" or "n/d"
func parseFraction(s string) (float64, error) {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, fmt.Errorf("bad fraction %q", s)
	}
	if !found {
		return float64(n), nil
	}
	d, err := strconv.Atoi(den)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("bad fraction %q", s)
	}
	return float64(n) / float64(d), nil
}
