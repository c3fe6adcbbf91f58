package config

import (
	"os"
	"strconv"
)

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Pattern service connection
	PatternAPIURL   string // empty runs with the in-memory store
	PatternAPIToken string

	// Server
	Port int

	// Sequencer behavior
	Tempo     int     // starting tempo in BPM
	Volume    float64 // master volume 0..1
	PresetDir string  // extra preset directory, empty for built-ins only

	// Outputs
	MIDIPort      string // MIDI output port substring, empty disables MIDI
	StreamBitrate string // MP3 stream bitrate
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		PatternAPIURL:   envStr("PATTERN_API_URL", ""),
		PatternAPIToken: envStr("PATTERN_API_TOKEN", ""),

		Port: envInt("BEAT_PORT", 8080),

		Tempo:     envInt("BEAT_TEMPO", 120),
		Volume:    envFloat("BEAT_VOLUME", 1.0),
		PresetDir: envStr("BEAT_PRESET_DIR", ""),

		MIDIPort:      envStr("BEAT_MIDI_PORT", ""),
		StreamBitrate: envStr("BEAT_STREAM_BITRATE", "192k"),
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
