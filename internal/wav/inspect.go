package wav

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// ErrMismatch is returned by Verify when a file on disk differs from what was encoded
var ErrMismatch = errors.New("wav: file does not match encoded data")

// Info describes a WAV file as read back by an independent decoder
type Info struct {
	Encoding Encoding
	Format   *audio.Format
	BitDepth int
	DataSize int64 // bytes in the data chunk
	Frames   int64
}

// Inspect decodes the headers of the WAV file at path
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return Info{}, fmt.Errorf("error reading WAV headers: %w", err)
	}
	if err := dec.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("error locating data chunk: %w", err)
	}

	info := Info{
		Encoding: Encoding(dec.WavAudioFormat),
		Format:   dec.Format(),
		BitDepth: int(dec.BitDepth),
		DataSize: dec.PCMLen(),
	}
	if frameSize := int64(dec.BitDepth) / 8 * int64(dec.NumChans); frameSize > 0 {
		info.Frames = info.DataSize / frameSize
	}
	return info, nil
}

// Verify reads back the file at path and checks it describes d at sampleRate.
// 16-bit files are also compared sample by sample.
func Verify(path string, d Data, sampleRate int) error {
	info, err := Inspect(path)
	if err != nil {
		return err
	}

	switch {
	case info.Encoding != d.Encoding():
		return fmt.Errorf("%w: encoding %d, want %d", ErrMismatch, info.Encoding, d.Encoding())
	case info.Format.NumChannels != Channels:
		return fmt.Errorf("%w: %d channels, want %d", ErrMismatch, info.Format.NumChannels, Channels)
	case info.Format.SampleRate != sampleRate:
		return fmt.Errorf("%w: sample rate %d, want %d", ErrMismatch, info.Format.SampleRate, sampleRate)
	case info.BitDepth != int(d.BitsPerSample()):
		return fmt.Errorf("%w: %d bits, want %d", ErrMismatch, info.BitDepth, d.BitsPerSample())
	case info.Frames != int64(d.Len()):
		return fmt.Errorf("%w: %d frames, want %d", ErrMismatch, info.Frames, d.Len())
	}

	pcm, ok := d.(*PCM16)
	if !ok {
		return nil
	}
	return compareSamples(path, pcm.IntBuffer(sampleRate))
}

func compareSamples(path string, want *audio.IntBuffer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	got, err := gowav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("error decoding samples: %w", err)
	}
	if got.NumFrames() != want.NumFrames() {
		return fmt.Errorf("%w: decoded %d frames, want %d", ErrMismatch, got.NumFrames(), want.NumFrames())
	}
	for i, s := range want.Data {
		if got.Data[i] != s {
			return fmt.Errorf("%w: sample %d is %d, want %d", ErrMismatch, i, got.Data[i], s)
		}
	}
	return nil
}
