package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattetti/notes2wav/internal/config"
	"github.com/mattetti/notes2wav/internal/flac"
	"github.com/mattetti/notes2wav/internal/instrument"
	"github.com/mattetti/notes2wav/internal/render"
)

var (
	inputPath  string
	outputPath string
	sampleRate int
	bitDepth   int
	fadeIn     float64
	fadeOut    float64
	debugMode  bool
	dryRun     bool
	verify     bool
	flacMode   bool
	keepWAV    bool
	version    bool
)

func init() {
	cfg := config.Load()

	flag.StringVar(&inputPath, "i", "", "Input .notes file or directory (required)")
	flag.StringVar(&outputPath, "o", cfg.OutputDir, "Output directory")
	flag.IntVar(&sampleRate, "rate", cfg.SampleRate, "Output sample rate in Hz (at least 16000)")
	flag.IntVar(&bitDepth, "bits", cfg.BitDepth, "Bit depth: 8, 16 or 32 (float)")
	flag.Float64Var(&fadeIn, "fade-in", cfg.FadeIn, "Fade-in applied to the whole piece, in seconds")
	flag.Float64Var(&fadeOut, "fade-out", cfg.FadeOut, "Fade-out applied to the whole piece, in seconds")
	flag.BoolVar(&debugMode, "d", false, "Debug mode")
	flag.BoolVar(&dryRun, "n", false, "Dry run: render but do not write files")
	flag.BoolVar(&verify, "verify", false, "Read every written file back and check it")
	flag.BoolVar(&flacMode, "flac", false, "Convert output to FLAC format (requires ffmpeg)")
	flag.BoolVar(&keepWAV, "keep-wav", false, "Keep the WAV files after FLAC conversion")
	flag.BoolVar(&version, "version", false, "Display version information")
}

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	// Display version if requested
	if version {
		fmt.Printf("notes2wav version %s\n", VERSION)
		os.Exit(0)
	}

	if inputPath == "" {
		fmt.Println("Error: Input path is required. Use -i flag.")
		printUsage()
		os.Exit(1)
	}

	if sampleRate < 16000 {
		fmt.Printf("Error: sample rate %d is below the 16000 Hz synthesis rate\n", sampleRate)
		os.Exit(1)
	}

	rend := render.NewRenderer(render.Options{
		Debug:      debugMode,
		NoWrite:    dryRun,
		Verify:     verify,
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		FadeIn:     fadeIn,
		FadeOut:    fadeOut,
	})

	inputInfo, err := os.Stat(inputPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !dryRun {
		if err := os.MkdirAll(outputPath, 0755); err != nil {
			fmt.Printf("Error creating output directory: %v\n", err)
			os.Exit(1)
		}
	}

	if debugMode {
		fmt.Printf("DEBUG MODE: %t, DRY RUN: %t, FLAC MODE: %t\n", debugMode, dryRun, flacMode)
		fmt.Printf("Output: %s, %d Hz, %d bits, fades %.3fs/%.3fs\n", outputPath, sampleRate, bitDepth, fadeIn, fadeOut)
		fmt.Printf("Instruments: %s\n", strings.Join(instrument.Names(), ", "))
	}

	var written []string
	if inputInfo.IsDir() {
		written, err = rend.ProcessDirectory(inputPath, outputPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if strings.ToLower(filepath.Ext(inputPath)) != render.SheetExt {
			fmt.Printf("Input file must be a %s file.\n", render.SheetExt)
			os.Exit(1)
		}
		out, err := rend.RenderFile(inputPath, outputPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Rendered %s -> %s\n", filepath.Base(inputPath), out)
		written = append(written, out)
	}

	if flacMode && !dryRun {
		convertToFlac(written)
	}
}

// convertToFlac converts the rendered WAV files to FLAC
func convertToFlac(wavFiles []string) {
	flacConverter, err := flac.NewConverter(debugMode, keepWAV)
	if err != nil {
		fmt.Printf("Error initializing FLAC converter: %v\n", err)
		fmt.Println("WAV files were not converted to FLAC.")
		return
	}

	fmt.Println("Converting WAV files to FLAC format...")
	startTime := time.Now()

	converted := flacConverter.ConvertFiles(wavFiles)

	elapsed := time.Since(startTime)
	fmt.Printf("Converted %d/%d files to FLAC in %.2f seconds.\n", len(converted), len(wavFiles), elapsed.Seconds())
}

func printUsage() {
	fmt.Println("Usage: notes2wav -i <input> [options]")
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println("\nExamples:")
	fmt.Println("  notes2wav -i song.notes                  # Render a single sheet into ./Rendered")
	fmt.Println("  notes2wav -i /path/to/sheets/ -o out     # Render every .notes file recursively")
	fmt.Println("  notes2wav -i song.notes -rate 48000 -bits 32 -verify")
	fmt.Println("  notes2wav -i /path/to/sheets/ -flac      # Render and convert to FLAC")
}
