package flac

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mattetti/notes2wav/internal/wav"
)

// ErrNoFFmpeg is returned when no ffmpeg binary can be found
var ErrNoFFmpeg = errors.New("ffmpeg not found. Please install ffmpeg to use the FLAC conversion feature")

// Converter transcodes rendered WAV files to FLAC with ffmpeg
type Converter struct {
	ffmpegPath string
	debug      bool
	keepWAV    bool
}

// NewConverter creates a new FLAC converter. With keepWAV the source WAV is
// left next to the FLAC file.
func NewConverter(debug, keepWAV bool) (*Converter, error) {
	ffmpegPath, err := findFFmpeg()
	if err != nil {
		return nil, err
	}

	return &Converter{
		ffmpegPath: ffmpegPath,
		debug:      debug,
		keepWAV:    keepWAV,
	}, nil
}

// findFFmpeg locates the ffmpeg binary on the system
func findFFmpeg() (string, error) {
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	// Check common installation locations based on OS
	var commonPaths []string
	switch runtime.GOOS {
	case "windows":
		commonPaths = []string{
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		commonPaths = []string{
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/opt/local/bin/ffmpeg",
		}
	default:
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/ffmpeg/bin/ffmpeg",
		}
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrNoFFmpeg
}

// FlacPath returns the FLAC file name for a WAV file
func FlacPath(wavFile string) string {
	return strings.TrimSuffix(wavFile, filepath.Ext(wavFile)) + ".flac"
}

// ConvertToFlac transcodes a WAV file and returns the path of the FLAC file.
// Like the WAV writer, it never replaces an existing file.
func (c *Converter) ConvertToFlac(wavFile string) (string, error) {
	if _, err := os.Stat(wavFile); err != nil {
		return "", fmt.Errorf("input file does not exist: %w", err)
	}

	flacFile, err := wav.AvailablePath(FlacPath(wavFile))
	if err != nil {
		return "", err
	}

	cmd := exec.Command(
		c.ffmpegPath,
		"-i", wavFile,
		"-c:a", "flac",
		"-compression_level", "8",
		"-n", // never overwrite
		flacFile,
	)

	// If debug mode is on, show the ffmpeg output
	if c.debug {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		fmt.Printf("Running: %s\n", cmd.String())
	}

	if err := cmd.Run(); err != nil {
		os.Remove(flacFile)
		return "", fmt.Errorf("error converting to FLAC: %w", err)
	}

	if !c.keepWAV {
		if err := os.Remove(wavFile); err != nil {
			return flacFile, fmt.Errorf("error removing original WAV file: %w", err)
		}
	}

	return flacFile, nil
}

// ConvertFiles transcodes every file in wavFiles, reporting failures and
// carrying on. It returns the FLAC files that were written.
func (c *Converter) ConvertFiles(wavFiles []string) []string {
	var written []string
	for _, wavFile := range wavFiles {
		if c.debug {
			fmt.Printf("Converting %s to FLAC\n", wavFile)
		}
		out, err := c.ConvertToFlac(wavFile)
		if err != nil {
			fmt.Printf("Error converting %s: %v\n", wavFile, err)
			continue
		}
		written = append(written, out)
	}
	return written
}
