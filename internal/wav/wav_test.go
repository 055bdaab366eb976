package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	gowav "github.com/go-audio/wav"

	"github.com/mattetti/notes2wav/internal/interp"
	"github.com/mattetti/notes2wav/internal/track"
)

func sine(n int, amp float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = amp * math.Sin(2*math.Pi*440*float64(i)/track.SampleRate)
	}
	return s
}

func TestNewData(t *testing.T) {
	tests := []struct {
		bits     int
		encoding Encoding
	}{
		{8, EncodingPCM},
		{16, EncodingPCM},
		{32, EncodingIEEEFloat},
	}
	for _, tt := range tests {
		d, err := NewData(tt.bits)
		if err != nil {
			t.Fatalf("NewData(%d) error: %v", tt.bits, err)
		}
		if int(d.BitsPerSample()) != tt.bits || d.Encoding() != tt.encoding {
			t.Errorf("NewData(%d) = %d bits, encoding %d", tt.bits, d.BitsPerSample(), d.Encoding())
		}
	}
	if _, err := NewData(24); !errors.Is(err, ErrBitDepth) {
		t.Errorf("NewData(24) err = %v, want ErrBitDepth", err)
	}
}

func TestPCM8Extremes(t *testing.T) {
	d := &PCM8{}
	if err := Generate(d, []float64{1, -1, 0}, track.SampleRate); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	want := []byte{254, 0, 127}
	if !bytes.Equal(d.Bytes(), want) {
		t.Errorf("Bytes() = %v, want %v", d.Bytes(), want)
	}
	if d.Size() != 3 {
		t.Errorf("Size() = %d, want 3", d.Size())
	}
}

func TestPCM16Quantization(t *testing.T) {
	d := &PCM16{}
	if err := Generate(d, []float64{1, -1, 0.5, -0.00001}, track.SampleRate); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	want := []int16{32760, -32760, 16380, 0}
	for i, w := range want {
		if d.Samples[i] != w {
			t.Errorf("sample %d = %d, want %d", i, d.Samples[i], w)
		}
	}
	b := d.Bytes()
	if len(b) != 8 || d.Size() != 8 {
		t.Fatalf("len(Bytes()) = %d, Size() = %d, want 8", len(b), d.Size())
	}
	if got := int16(binary.LittleEndian.Uint16(b[2:])); got != -32760 {
		t.Errorf("little-endian sample 1 = %d, want -32760", got)
	}
}

func TestFloat32Identity(t *testing.T) {
	d := &Float32{}
	in := []float64{0.25, -1, 1}
	if err := Generate(d, in, track.SampleRate); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	b := d.Bytes()
	for i, x := range in {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if got != float32(x) {
			t.Errorf("sample %d = %v, want %v", i, got, x)
		}
	}
	if d.Size() != 12 {
		t.Errorf("Size() = %d, want 12", d.Size())
	}
}

func TestGenerateResamples(t *testing.T) {
	d := &PCM16{}
	if err := Generate(d, sine(161, 1), 44100); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if want := 160*44100/track.SampleRate + 1; d.Len() != want {
		t.Errorf("Len() = %d, want %d", d.Len(), want)
	}
}

func TestGenerateRejectsOutOfRange(t *testing.T) {
	for _, x := range []float64{1.0001, -1.5, math.NaN()} {
		d := &PCM16{}
		if err := Generate(d, []float64{0, x, 0}, track.SampleRate); !errors.Is(err, ErrAmplitude) {
			t.Errorf("Generate with %v: err = %v, want ErrAmplitude", x, err)
		}
	}
}

func TestGenerateRejectsDownsampling(t *testing.T) {
	if err := Generate(&PCM8{}, []float64{0, 0.5}, 8000); !errors.Is(err, interp.ErrDownsample) {
		t.Errorf("err = %v, want ErrDownsample", err)
	}
}

func TestHeaderBytes(t *testing.T) {
	d := &PCM16{Samples: make([]int16, 100)}
	b := NewHeader(1, 44100, d).Bytes()
	if len(b) != HeaderSize {
		t.Fatalf("header is %d bytes, want %d", len(b), HeaderSize)
	}

	checks := []struct {
		name   string
		offset int
		size   int
		want   uint32
	}{
		{"chunk size", 4, 4, 236}, // 36 + 200 data bytes
		{"fmt size", 16, 4, 16},
		{"encoding", 20, 2, 1},
		{"channels", 22, 2, 1},
		{"sample rate", 24, 4, 44100},
		{"byte rate", 28, 4, 88200},
		{"block align", 32, 2, 2},
		{"bits per sample", 34, 2, 16},
		{"data size", 40, 4, 200},
	}
	for _, c := range checks {
		var got uint32
		if c.size == 2 {
			got = uint32(binary.LittleEndian.Uint16(b[c.offset:]))
		} else {
			got = binary.LittleEndian.Uint32(b[c.offset:])
		}
		if got != c.want {
			t.Errorf("%s at %d = %d, want %d", c.name, c.offset, got, c.want)
		}
	}

	tags := map[int]string{0: "RIFF", 8: "WAVE", 12: "fmt ", 36: "data"}
	for off, tag := range tags {
		if got := string(b[off : off+4]); got != tag {
			t.Errorf("tag at %d = %q, want %q", off, got, tag)
		}
	}
}

func TestHeaderFloatAndPCM8(t *testing.T) {
	h := NewHeader(1, 48000, &Float32{Samples: make([]float32, 10)})
	if h.AudioFormat != EncodingIEEEFloat || h.BlockAlign != 4 || h.ByteRate != 192000 || h.DataSize != 40 || h.FileSize != 76 {
		t.Errorf("float header = %+v", h)
	}
	h = NewHeader(1, 22050, &PCM8{Samples: make([]uint8, 7)})
	if h.AudioFormat != EncodingPCM || h.BlockAlign != 1 || h.ByteRate != 22050 || h.DataSize != 7 || h.FileSize != 43 {
		t.Errorf("8-bit header = %+v", h)
	}
}

func TestWriteFile(t *testing.T) {
	d := &PCM16{}
	if err := Generate(d, sine(100, 0.8), track.SampleRate); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	h := NewHeader(1, track.SampleRate, d)
	if err := WriteFile(path, h, d); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != HeaderSize+200 {
		t.Fatalf("file is %d bytes, want %d", len(raw), HeaderSize+200)
	}
	if !bytes.Equal(raw[:HeaderSize], h.Bytes()) || !bytes.Equal(raw[HeaderSize:], d.Bytes()) {
		t.Error("file contents differ from header + data")
	}

	// A second write to the same path must fail and leave the file alone
	if err := WriteFile(path, h, d); err == nil {
		t.Error("WriteFile over an existing file should fail")
	}
	again, _ := os.ReadFile(path)
	if !bytes.Equal(raw, again) {
		t.Error("existing file was modified")
	}
}

// hugeData reports more samples than a WAV data chunk can describe
type hugeData struct{ PCM16 }

func (hugeData) Len() int { return MaxDataSize/2 + 1 }

func TestOversizedDataRejected(t *testing.T) {
	d := &hugeData{}
	if err := CheckSize(d); !errors.Is(err, ErrTooLarge) {
		t.Errorf("CheckSize err = %v, want ErrTooLarge", err)
	}
	if err := CheckSize(&PCM16{Samples: make([]int16, 100)}); err != nil {
		t.Errorf("CheckSize on small data: %v", err)
	}

	path := filepath.Join(t.TempDir(), "huge.wav")
	if err := WriteFile(path, NewHeader(1, 44100, d), d); !errors.Is(err, ErrTooLarge) {
		t.Errorf("WriteFile err = %v, want ErrTooLarge", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be created for oversized data")
	}
	if _, err := NewEncoder(false, true, 44100).WriteWAV(d, path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("WriteWAV err = %v, want ErrTooLarge", err)
	}
}

func TestWriteFileBadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.wav")
	if err := WriteFile(path, NewHeader(1, 8000, &PCM8{}), &PCM8{}); err == nil {
		t.Error("WriteFile into a missing directory should fail")
	}
}

func TestAvailablePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.wav")

	got, err := AvailablePath(path)
	if err != nil || got != path {
		t.Fatalf("AvailablePath = %q, %v; want %q", got, err, path)
	}
	for _, name := range []string{"song.wav", "song (1).wav"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	got, err = AvailablePath(path)
	if want := filepath.Join(dir, "song (2).wav"); err != nil || got != want {
		t.Errorf("AvailablePath = %q, %v; want %q", got, err, want)
	}
}

func TestEncoderWriteWAV(t *testing.T) {
	dir := t.TempDir()
	d := &PCM8{}
	if err := Generate(d, sine(50, 1), 32000); err != nil {
		t.Fatal(err)
	}
	enc := NewEncoder(false, false, 32000)
	first, err := enc.WriteWAV(d, filepath.Join(dir, "a.wav"))
	if err != nil {
		t.Fatalf("WriteWAV error: %v", err)
	}
	second, err := enc.WriteWAV(d, filepath.Join(dir, "a.wav"))
	if err != nil {
		t.Fatalf("second WriteWAV error: %v", err)
	}
	if first == second {
		t.Errorf("both writes went to %q", first)
	}
	if filepath.Base(second) != "a (1).wav" {
		t.Errorf("second path = %q, want a (1).wav", second)
	}

	dry := NewEncoder(false, true, 32000)
	p, err := dry.WriteWAV(d, filepath.Join(dir, "dry.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
		t.Error("no-write encoder created a file")
	}
}

func TestInspectWithGoAudio(t *testing.T) {
	dir := t.TempDir()
	for _, bits := range []int{8, 16, 32} {
		d, _ := NewData(bits)
		if err := Generate(d, sine(400, 0.9), 44100); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, "inspect.wav")
		path, err := NewEncoder(false, false, 44100).WriteWAV(d, path)
		if err != nil {
			t.Fatal(err)
		}

		info, err := Inspect(path)
		if err != nil {
			t.Fatalf("%d-bit: Inspect error: %v", bits, err)
		}
		if info.BitDepth != bits || info.Format.SampleRate != 44100 || info.Format.NumChannels != 1 {
			t.Errorf("%d-bit: Inspect = %+v, format %+v", bits, info, info.Format)
		}
		if info.Frames != int64(d.Len()) || info.DataSize != int64(d.Size()) {
			t.Errorf("%d-bit: frames/size = %d/%d, want %d/%d", bits, info.Frames, info.DataSize, d.Len(), d.Size())
		}
		if err := Verify(path, d, 44100); err != nil {
			t.Errorf("%d-bit: Verify error: %v", bits, err)
		}
		if err := Verify(path, d, 48000); !errors.Is(err, ErrMismatch) {
			t.Errorf("%d-bit: Verify with wrong rate err = %v, want ErrMismatch", bits, err)
		}
	}
}

func TestDecodedSamplesMatch(t *testing.T) {
	d := &PCM16{}
	if err := Generate(d, sine(200, 1), 32000); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "decode.wav")
	if err := WriteFile(path, NewHeader(1, 32000, d), d); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("go-audio rejects the file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	want := d.IntBuffer(32000)
	if buf.NumFrames() != want.NumFrames() {
		t.Fatalf("decoded %d frames, want %d", buf.NumFrames(), want.NumFrames())
	}
	for i := range want.Data {
		if buf.Data[i] != want.Data[i] {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], want.Data[i])
		}
	}
}

func TestCleanFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ode to joy", "ode_to_joy"},
		{"a/b\\c", "a_b_c"},
		{"take-2_final.v3", "take-2_final.v3"},
	}
	for _, tt := range tests {
		if got := CleanFilename(tt.in); got != tt.want {
			t.Errorf("CleanFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
