package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrShortWrite is returned when fewer bytes reach the file than were sent
var ErrShortWrite = errors.New("wav: short write")

// ErrTooLarge is returned for sample data that does not fit a RIFF chunk
var ErrTooLarge = errors.New("wav: data too large for a WAV file")

// Channels is the channel count of every file this package writes
const Channels = 1

// MaxDataSize is the largest data chunk whose RIFF size still fits 32 bits
const MaxDataSize = math.MaxUint32 - 36

// Encoder writes encoded sample data to WAV files
type Encoder struct {
	debug      bool
	noWrite    bool
	sampleRate int
}

// NewEncoder creates a new WAV encoder for the given output sample rate
func NewEncoder(debug, noWrite bool, sampleRate int) *Encoder {
	return &Encoder{
		debug:      debug,
		noWrite:    noWrite,
		sampleRate: sampleRate,
	}
}

// Debug logs a message if debug mode is enabled
func (e *Encoder) Debug(message string) {
	if e.debug {
		fmt.Println(message)
	}
}

// WriteWAV writes d to path, or to the first free "name (N).wav" variant if
// path is taken. It returns the path actually used.
func (e *Encoder) WriteWAV(d Data, path string) (string, error) {
	if err := CheckSize(d); err != nil {
		return "", err
	}
	outputPath, err := AvailablePath(path)
	if err != nil {
		return "", err
	}

	h := NewHeader(Channels, uint32(e.sampleRate), d)
	e.Debug(fmt.Sprintf("WAV header: format %d, %d ch, %d Hz, %d bits, %d data bytes",
		h.AudioFormat, h.NumChannels, h.SampleRate, h.BitsPerSample, h.DataSize))

	// If we're in no-write mode, just return
	if e.noWrite {
		return outputPath, nil
	}

	if err := WriteFile(outputPath, h, d); err != nil {
		return "", err
	}
	return outputPath, nil
}

// CheckSize fails with ErrTooLarge when d cannot be described by a header.
// Data.Size would wrap around silently.
func CheckSize(d Data) error {
	size := int64(d.Len()) * int64(d.BitsPerSample()/8)
	if size > MaxDataSize {
		return fmt.Errorf("%w: %d bytes of samples, at most %d", ErrTooLarge, size, int64(MaxDataSize))
	}
	return nil
}

// NewHeader derives every header field from the channel count, sample rate
// and the encoded data
func NewHeader(channels uint16, sampleRate uint32, d Data) Header {
	bits := d.BitsPerSample()
	dataSize := d.Size()

	return Header{
		RiffID:        [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      dataSize + 36, // 4 + (8 + 16) + (8 + DataSize)
		WaveID:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   d.Encoding(),
		NumChannels:   channels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * uint32(bits) * uint32(channels) / 8,
		BlockAlign:    bits / 8 * channels,
		BitsPerSample: bits,
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}
}

// Bytes returns the 44-byte little-endian encoding of the header
func (h Header) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	// Writing a fixed-size struct to a bytes.Buffer cannot fail
	_ = binary.Write(&buf, binary.LittleEndian, &h)
	return buf.Bytes()
}

// WriteFile creates path and writes the header followed by the sample data.
// An existing file is never touched. If anything goes wrong the partial file
// is removed.
func WriteFile(path string, h Header, d Data) (err error) {
	if err := CheckSize(d); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing output file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	// Write header
	if err := writeAll(file, h.Bytes()); err != nil {
		return fmt.Errorf("error writing WAV header: %w", err)
	}

	// Write audio data
	if err := writeAll(file, d.Bytes()); err != nil {
		return fmt.Errorf("error writing audio data: %w", err)
	}

	return nil
}

func writeAll(f *os.File, b []byte) error {
	n, err := f.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(b))
	}
	return nil
}

// AvailablePath returns path if nothing exists there, otherwise the first
// "name (N).ext" sibling that is free
func AvailablePath(path string) (string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	candidate := path
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("error checking output path: %w", err)
		}
		candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
	}
}

var unsafeChars = regexp.MustCompile(`[^0-9a-zA-Z\.,:%\-_#]+`)

// CleanFilename removes invalid characters from a filename (Windows-safe)
func CleanFilename(filename string) string {
	// Replace non-alphanumeric characters (except specific ones) with underscores
	return unsafeChars.ReplaceAllString(filename, "_")
}
