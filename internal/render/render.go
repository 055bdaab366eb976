package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mattetti/notes2wav/internal/instrument"
	"github.com/mattetti/notes2wav/internal/notesheet"
	"github.com/mattetti/notes2wav/internal/track"
	"github.com/mattetti/notes2wav/internal/wav"
)

// SheetExt is the extension of note sheet files
const SheetExt = ".notes"

// Options represents the rendering options
type Options struct {
	Debug      bool
	NoWrite    bool
	Verify     bool    // read every written file back and compare it with what was encoded
	SampleRate int     // output rate in Hz
	BitDepth   int     // 8, 16 or 32
	FadeIn     float64 // seconds, clamped to the rendered length
	FadeOut    float64 // seconds, clamped to the rendered length
}

// Renderer turns note sheets into WAV files
type Renderer struct {
	options Options
	encoder *wav.Encoder
}

// NewRenderer creates a new renderer
func NewRenderer(options Options) *Renderer {
	return &Renderer{
		options: options,
		encoder: wav.NewEncoder(options.Debug, options.NoWrite, options.SampleRate),
	}
}

// Debug logs a message if debug mode is enabled
func (r *Renderer) Debug(message string) {
	if r.options.Debug {
		fmt.Println(message)
	}
}

// Render synthesizes every note of the sheet into a single normalized track
// that starts at time 0
func (r *Renderer) Render(sheet *notesheet.Sheet) (*track.Track, error) {
	inst, err := sheet.NewInstrument()
	if err != nil {
		return nil, err
	}

	// Continuity state is read from the mix, so earlier notes go in first
	notes := make([]instrument.Note, len(sheet.Notes))
	copy(notes, sheet.Notes)
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Onset < notes[j].Onset })

	mix := track.New()
	for i, n := range notes {
		frag, err := inst.Synthesize(n, instrument.StateBefore(mix, n.Onset))
		if err != nil {
			return nil, fmt.Errorf("error synthesizing note %d: %w", i+1, err)
		}
		mix = track.Mix(mix, frag)
	}
	r.Debug(fmt.Sprintf("Mixed %d notes with %s: %d samples from %.3fs to %.3fs",
		len(notes), inst.Name(), mix.Len(), float64(mix.Origin())/track.SampleRate, mix.EndTime()))

	if err := mix.Normalize(); err != nil {
		return nil, fmt.Errorf("error normalizing mix: %w", err)
	}
	r.Debug(fmt.Sprintf("Normalization gain: %.4f", mix.Gain()))
	mix.ApplyLoudness()

	if err := mix.FadeIn(clampFade(r.options.FadeIn, mix), track.Exponential); err != nil {
		return nil, err
	}
	if err := mix.FadeOut(clampFade(r.options.FadeOut, mix), track.Exponential); err != nil {
		return nil, err
	}

	mix.StartWithSilence()
	return mix, nil
}

func clampFade(length float64, t *track.Track) float64 {
	if length < 0 {
		return 0
	}
	if d := t.Duration(); length > d {
		return d
	}
	return length
}

// Encode resamples and quantizes a rendered track
func (r *Renderer) Encode(t *track.Track) (wav.Data, error) {
	d, err := wav.NewData(r.options.BitDepth)
	if err != nil {
		return nil, err
	}
	if err := wav.Generate(d, t.Samples(), r.options.SampleRate); err != nil {
		return nil, err
	}
	return d, nil
}

// RenderFile renders a single note sheet into outputDir and returns the path
// of the written file
func (r *Renderer) RenderFile(inputFile, outputDir string) (string, error) {
	sheet, err := notesheet.ParseFile(inputFile)
	if err != nil {
		fmt.Printf("SHEET READ ERROR: %s\n", filepath.Base(inputFile))
		return "", err
	}

	mix, err := r.Render(sheet)
	if err != nil {
		fmt.Printf("RENDER ERROR: %s\n", filepath.Base(inputFile))
		return "", err
	}

	data, err := r.Encode(mix)
	if err != nil {
		fmt.Printf("ENCODE ERROR: %s\n", filepath.Base(inputFile))
		return "", err
	}

	baseName := wav.CleanFilename(strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile)))
	outputPath, err := r.encoder.WriteWAV(data, filepath.Join(outputDir, baseName+".wav"))
	if err != nil {
		fmt.Printf("WAV WRITE ERROR: %s\n", filepath.Base(inputFile))
		return "", err
	}

	if r.options.Verify && !r.options.NoWrite {
		if err := wav.Verify(outputPath, data, r.options.SampleRate); err != nil {
			fmt.Printf("VERIFY ERROR: %s\n", filepath.Base(outputPath))
			return "", err
		}
		r.Debug(fmt.Sprintf("Verified %s", outputPath))
	}

	return outputPath, nil
}

// ProcessDirectory renders all note sheets in a directory and its
// subdirectories, mirroring the layout under outputDir. It returns the paths
// of the written files.
func (r *Renderer) ProcessDirectory(inputDir, outputDir string) ([]string, error) {
	fmt.Printf("Scanning %s/ ...", inputDir)

	// Find all sheets recursively
	var files []string
	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.ToLower(filepath.Ext(path)) == SheetExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning directory: %w", err)
	}

	fmt.Printf("Done.\nPlanning to render %d sheets in %s/\n", len(files), inputDir)

	// Group files by directory
	dirMap := make(map[string][]string)
	var dirs []string
	for _, file := range files {
		relPath, err := filepath.Rel(inputDir, filepath.Dir(file))
		if err != nil {
			return nil, fmt.Errorf("error calculating relative path: %w", err)
		}
		if _, ok := dirMap[relPath]; !ok {
			dirs = append(dirs, relPath)
		}
		dirMap[relPath] = append(dirMap[relPath], file)
	}

	var written []string
	startTime := time.Now()

	for _, dir := range dirs {
		dirFiles := dirMap[dir]
		fmt.Printf("%s - %d file(s).\n", dir, len(dirFiles))

		// Create output directory if necessary
		dirOutputPath := filepath.Join(outputDir, dir)
		if !r.options.NoWrite {
			if err := os.MkdirAll(dirOutputPath, 0755); err != nil {
				return written, fmt.Errorf("error creating output directory: %w", err)
			}
		}

		rendered := 0
		for _, file := range dirFiles {
			out, err := r.RenderFile(file, dirOutputPath)
			if err != nil {
				fmt.Printf("Error rendering %s: %v\n", file, err)
				continue
			}
			rendered++
			written = append(written, out)
		}
		fmt.Printf("Rendered %d files in folder.\n", rendered)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Rendered %d/%d files. Duration: %.2fs\n", len(written), len(files), elapsed.Seconds())

	return written, nil
}
