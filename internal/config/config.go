package config

import (
	"os"
	"strconv"
)

// Config holds the rendering defaults, loaded from environment variables.
// Command-line flags override every field.
type Config struct {
	OutputDir  string
	SampleRate int     // output rate in Hz, at least the 16 kHz synthesis rate
	BitDepth   int     // 8, 16 or 32
	FadeIn     float64 // seconds, applied to the whole rendered piece
	FadeOut    float64 // seconds, applied to the whole rendered piece
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		OutputDir:  envStr("NOTES2WAV_OUTPUT_DIR", "Rendered"),
		SampleRate: envInt("NOTES2WAV_SAMPLE_RATE", 44100),
		BitDepth:   envInt("NOTES2WAV_BIT_DEPTH", 16),
		FadeIn:     envFloat("NOTES2WAV_FADE_IN", 0),
		FadeOut:    envFloat("NOTES2WAV_FADE_OUT", 0.05),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
