package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-audio/audio"

	"github.com/mattetti/notes2wav/internal/interp"
	"github.com/mattetti/notes2wav/internal/track"
)

var (
	// ErrAmplitude is returned when a sample to encode lies outside [-1, 1]
	ErrAmplitude = errors.New("wav: amplitude outside [-1, 1]")
	// ErrBitDepth is returned for bit depths other than 8, 16 and 32
	ErrBitDepth = errors.New("wav: unsupported bit depth")
)

// Data is a sequence of encoded samples ready for the data chunk
type Data interface {
	BitsPerSample() uint16
	Encoding() Encoding
	// Len returns the number of samples
	Len() int
	// Size returns the encoded size in bytes
	Size() uint32
	// Bytes returns the little-endian encoding of the samples
	Bytes() []byte
	push(x float64)
}

// NewData returns an empty buffer for the given bit depth
func NewData(bitDepth int) (Data, error) {
	switch bitDepth {
	case 8:
		return &PCM8{}, nil
	case 16:
		return &PCM16{}, nil
	case 32:
		return &Float32{}, nil
	default:
		return nil, fmt.Errorf("%w: %d (want 8, 16 or 32)", ErrBitDepth, bitDepth)
	}
}

// Generate resamples samples from the internal track rate to sampleRate and
// appends them to d. Every sample must lie in [-1, 1]; the first one that
// does not aborts the encoding.
func Generate(d Data, samples []float64, sampleRate int) error {
	resampled, err := interp.Resample(samples, track.SampleRate, sampleRate)
	if err != nil {
		return fmt.Errorf("error resampling to %d Hz: %w", sampleRate, err)
	}
	for i, x := range resampled {
		if math.Abs(x) > 1 || math.IsNaN(x) {
			return fmt.Errorf("%w: sample %d is %v", ErrAmplitude, i, x)
		}
		d.push(x)
	}
	return nil
}

// PCM8 holds unsigned 8-bit samples centred on 127
type PCM8 struct {
	Samples []uint8
}

func (p *PCM8) BitsPerSample() uint16 { return 8 }
func (p *PCM8) Encoding() Encoding    { return EncodingPCM }
func (p *PCM8) Len() int              { return len(p.Samples) }
func (p *PCM8) Size() uint32          { return uint32(len(p.Samples)) }

func (p *PCM8) Bytes() []byte {
	buf := make([]byte, len(p.Samples))
	copy(buf, p.Samples)
	return buf
}

func (p *PCM8) push(x float64) {
	p.Samples = append(p.Samples, uint8((x+1)*127))
}

// PCM16 holds signed 16-bit samples
type PCM16 struct {
	Samples []int16
}

func (p *PCM16) BitsPerSample() uint16 { return 16 }
func (p *PCM16) Encoding() Encoding    { return EncodingPCM }
func (p *PCM16) Len() int              { return len(p.Samples) }
func (p *PCM16) Size() uint32          { return uint32(len(p.Samples)) * 2 }

func (p *PCM16) Bytes() []byte {
	buf := make([]byte, len(p.Samples)*2)
	for i, s := range p.Samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func (p *PCM16) push(x float64) {
	p.Samples = append(p.Samples, int16(x*32760))
}

// IntBuffer exposes the samples as a mono go-audio buffer
func (p *PCM16) IntBuffer(sampleRate int) *audio.IntBuffer {
	data := make([]int, len(p.Samples))
	for i, s := range p.Samples {
		data[i] = int(s)
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
}

// Float32 holds IEEE 754 single-precision samples
type Float32 struct {
	Samples []float32
}

func (f *Float32) BitsPerSample() uint16 { return 32 }
func (f *Float32) Encoding() Encoding    { return EncodingIEEEFloat }
func (f *Float32) Len() int              { return len(f.Samples) }
func (f *Float32) Size() uint32          { return uint32(len(f.Samples)) * 4 }

func (f *Float32) Bytes() []byte {
	buf := make([]byte, len(f.Samples)*4)
	for i, s := range f.Samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return buf
}

func (f *Float32) push(x float64) {
	f.Samples = append(f.Samples, float32(x))
}
