// gopng reads, writes and inspects PNG images (and converts to and from 24 bit BMP)
package main

import (
	"os"

	"github.com/anas-shakeel/go-png/internal/cli"
	"github.com/anas-shakeel/go-png/internal/logging"
)

func main() {
	defer logging.LogPanics(nil)

	if err := cli.RootCommand.Execute(); err != nil {
		logging.Error().Err(err).Msg("gopng failed")
		os.Exit(1)
	}
}
