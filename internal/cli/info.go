package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anas-shakeel/go-png/internal/bmp"
	"github.com/anas-shakeel/go-png/internal/png"
	"github.com/spf13/cobra"
)

func init() {
	infoCommand := &cobra.Command{
		Use:   "info [file]",
		Short: "Print the header and chunk layout of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			out := cmd.OutOrStdout()
			if strings.ToLower(filepath.Ext(args[0])) == ".bmp" {
				info, err := bmp.ReadInfo(file)
				if err != nil {
					return err
				}
				info.Fprint(out)
				return nil
			}
			return printPNGInfo(out, file)
		},
	}
	RootCommand.AddCommand(infoCommand)

	repairCommand := &cobra.Command{
		Use:   "repair [in] [out]",
		Short: "Rewrite a PNG with every chunk CRC recomputed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			fixed, err := png.Repair(in, out)
			if err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fixed %d chunk(s)\n", fixed)
			return nil
		},
	}
	RootCommand.AddCommand(repairCommand)
}

func printPNGInfo(out io.Writer, r io.ReadSeeker) error {
	h, err := png.DecodeConfig(r)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Width: \t\t%v px\n", h.Width)
	fmt.Fprintf(out, "Height: \t%v px\n", h.Height)
	fmt.Fprintf(out, "BitDepth: \t%v bits\n", h.BitDepth)
	fmt.Fprintf(out, "ColorModel: \t%v\n", h.ColorModel)
	fmt.Fprintf(out, "Interlace: \t%v\n", h.Interlace)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	infos, err := png.Inspect(r)
	for _, info := range infos {
		fmt.Fprintln(out, info)
	}
	return err
}
