package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/anas-shakeel/go-png/internal/pixel"
	"github.com/anas-shakeel/go-png/internal/utils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func init() {
	var hex bool
	showCommand := &cobra.Command{
		Use:   "show [file]",
		Short: "Print the image in the terminal. Use for small images only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if hex || !isTerminal(out) {
				printHex(out, img)
			} else {
				printBlocks(out, img)
			}
			return nil
		},
	}
	showCommand.Flags().BoolVar(&hex, "hex", false, "print RRGGBBAA values instead of colored blocks")
	RootCommand.AddCommand(showCommand)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func printBlocks(out io.Writer, img *pixel.Buffer) {
	for y := range img.Height {
		for _, p := range img.Row(y) {
			fmt.Fprint(out, utils.ColoredBlock("  ", int(p.R), int(p.G), int(p.B)))
		}
		fmt.Fprintln(out)
	}
}

func printHex(out io.Writer, img *pixel.Buffer) {
	for y := range img.Height {
		for x, p := range img.Row(y) {
			if x > 0 {
				fmt.Fprint(out, " ")
			}
			fmt.Fprintf(out, "%02X%02X%02X%02X", p.R, p.G, p.B, p.A)
		}
		fmt.Fprintln(out)
	}
}
