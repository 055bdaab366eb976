package wav

// Encoding is the WAVE format tag stored at offset 20
type Encoding uint16

const (
	// EncodingPCM marks integer PCM samples
	EncodingPCM Encoding = 1
	// EncodingIEEEFloat marks 32-bit float samples
	EncodingIEEEFloat Encoding = 3
)

// HeaderSize is the size of the canonical RIFF/WAVE/fmt/data header
const HeaderSize = 44

// Header represents the structure of a canonical WAV file header
type Header struct {
	// RIFF header
	RiffID   [4]byte // "RIFF"
	FileSize uint32  // DataSize + 36, i.e. the file size minus 8
	WaveID   [4]byte // "WAVE"

	// fmt sub-chunk
	FmtID         [4]byte  // "fmt "
	FmtSize       uint32   // 16
	AudioFormat   Encoding // 1 for PCM, 3 for IEEE float
	NumChannels   uint16   // always 1 here
	SampleRate    uint32   // e.g., 44100
	ByteRate      uint32   // SampleRate * NumChannels * BitsPerSample/8
	BlockAlign    uint16   // NumChannels * BitsPerSample/8
	BitsPerSample uint16   // 8, 16 or 32

	// data sub-chunk
	DataID   [4]byte // "data"
	DataSize uint32  // NumSamples * NumChannels * BitsPerSample/8
}
