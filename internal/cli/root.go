// cli package holds the gopng command tree
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anas-shakeel/go-png/internal/bmp"
	"github.com/anas-shakeel/go-png/internal/config"
	"github.com/anas-shakeel/go-png/internal/logging"
	"github.com/anas-shakeel/go-png/internal/oops"
	"github.com/anas-shakeel/go-png/internal/pixel"
	"github.com/anas-shakeel/go-png/internal/png"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	level     int
	chunkSize int
	heuristic string
)

var RootCommand = &cobra.Command{
	Use:           "gopng",
	Short:         "Read, write, inspect and edit PNG and BMP images",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logging.SetLevel(lvl)

		enc := config.EncoderConfig{
			Level:     level,
			ChunkSize: chunkSize,
			Heuristic: config.Heuristic(heuristic),
		}
		if err := enc.Validate(); err != nil {
			return err
		}
		config.Config.Encoder = enc
		return nil
	},
}

func init() {
	flags := RootCommand.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", config.Config.LogLevel.String(), "trace, debug, info, warn or error")
	flags.IntVar(&level, "level", config.Config.Encoder.Level, "zlib compression level, -1 to 9")
	flags.IntVar(&chunkSize, "chunk-size", config.Config.Encoder.ChunkSize, "maximum IDAT payload in bytes, 0 for a single IDAT")
	flags.StringVar(&heuristic, "heuristic", string(config.Config.Encoder.Heuristic), "filter selection: variation or compression")
}

// Reads an image, picking the codec from the file extension
func load(path string) (*pixel.Buffer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		img, err := png.Decode(file)
		if err != nil {
			return nil, oops.New(err, "decoding %s", path)
		}
		return img, nil
	case ".bmp":
		return bmp.ReadFile(path)
	default:
		return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}

// Writes an image, picking the codec from the file extension
func save(path string, img *pixel.Buffer) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := png.NewEncoder(config.Config.Encoder).Encode(file, img); err != nil {
			file.Close()
			return oops.New(err, "encoding %s", path)
		}
		return file.Close()
	case ".bmp":
		return bmp.WriteFile(path, img)
	default:
		return fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}

// Runs fn on the image at in and saves the result to out
func transform(in, out string, fn func(*pixel.Buffer) (*pixel.Buffer, error)) error {
	img, err := load(in)
	if err != nil {
		return err
	}
	result, err := fn(img)
	if err != nil {
		return err
	}
	if err := save(out, result); err != nil {
		return err
	}
	logging.Info().
		Str("in", in).
		Str("out", out).
		Int("width", result.Width).
		Int("height", result.Height).
		Msg("wrote image")
	return nil
}

func atoi(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, s)
	}
	return n, nil
}

// Parses consecutive integer arguments, naming each in errors
func ints(args []string, names ...string) ([]int, error) {
	values := make([]int, len(names))
	for i, name := range names {
		n, err := atoi(name, args[i])
		if err != nil {
			return nil, err
		}
		values[i] = n
	}
	return values, nil
}
