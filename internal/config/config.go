package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type Heuristic string

const (
	TotalVariation   Heuristic = "variation"
	TrialCompression Heuristic = "compression"
)

// Matches the levels of compress/flate and klauspost/compress
const (
	DefaultCompression = -1
	NoCompression      = 0
	BestSpeed          = 1
	BestCompression    = 9
)

type GoPNGConfig struct {
	LogLevel zerolog.Level
	Encoder  EncoderConfig
}

type EncoderConfig struct {
	Level     int       // zlib compression level
	ChunkSize int       // Maximum IDAT payload size, 0 writes a single IDAT
	Heuristic Heuristic // How the encoder scores candidate filters
}

// Process-wide configuration; the CLI overwrites fields from flags
var Config = GoPNGConfig{
	LogLevel: zerolog.InfoLevel,
	Encoder: EncoderConfig{
		Level:     DefaultCompression,
		ChunkSize: 0,
		Heuristic: TotalVariation,
	},
}

func (c EncoderConfig) Validate() error {
	if c.Level < DefaultCompression || c.Level > BestCompression {
		return fmt.Errorf("invalid compression level %d: must be between %d and %d", c.Level, DefaultCompression, BestCompression)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("invalid chunk size %d: must not be negative", c.ChunkSize)
	}
	switch c.Heuristic {
	case TotalVariation, TrialCompression:
	default:
		return fmt.Errorf("invalid heuristic %q: must be %q or %q", c.Heuristic, TotalVariation, TrialCompression)
	}
	return nil
}
