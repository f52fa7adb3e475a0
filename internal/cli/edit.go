package cli

import (
	"fmt"
	"strconv"

	"github.com/anas-shakeel/go-png/internal/adjustments"
	"github.com/anas-shakeel/go-png/internal/filters"
	"github.com/anas-shakeel/go-png/internal/pixel"
	"github.com/spf13/cobra"
)

func init() {
	convertCommand := &cobra.Command{
		Use:   "convert [in] [out]",
		Short: "Convert between PNG and BMP by file extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transform(args[0], args[1], func(img *pixel.Buffer) (*pixel.Buffer, error) {
				return img, nil
			})
		},
	}
	RootCommand.AddCommand(convertCommand)

	var (
		method  string
		channel string
	)
	filterCommand := &cobra.Command{
		Use:   "filter [name] [in] [out] [value]",
		Short: "Apply invert, grayscale, luma, brightness, contrast, channel, tint or shade",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := 0.0
			if len(args) == 4 {
				v, err := strconv.ParseFloat(args[3], 64)
				if err != nil {
					return fmt.Errorf("value must be a number, got %q", args[3])
				}
				value = v
			}
			return transform(args[1], args[2], func(img *pixel.Buffer) (*pixel.Buffer, error) {
				return img, applyFilter(img, args[0], value, method, channel)
			})
		},
	}
	filterCommand.Flags().StringVar(&method, "method", "add", "brightness method: add or multiply")
	filterCommand.Flags().StringVar(&channel, "channel", "red", "channel to keep: red, green or blue")
	RootCommand.AddCommand(filterCommand)

	cropCommand := &cobra.Command{
		Use:   "crop [in] [out] [x] [y] [width] [height]",
		Short: "Crop a region (0,0 is at the top-left of the image)",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := ints(args[2:], "x", "y", "width", "height")
			if err != nil {
				return err
			}
			return transform(args[0], args[1], func(img *pixel.Buffer) (*pixel.Buffer, error) {
				return adjustments.Crop(img, n[0], n[1], n[2], n[3])
			})
		},
	}
	RootCommand.AddCommand(cropCommand)

	var kernel string
	resizeCommand := &cobra.Command{
		Use:   "resize [in] [out] [width] [height]",
		Short: "Scale an image to a new size",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := ints(args[2:], "width", "height")
			if err != nil {
				return err
			}
			return transform(args[0], args[1], func(img *pixel.Buffer) (*pixel.Buffer, error) {
				return adjustments.Resize(img, n[0], n[1], kernel)
			})
		},
	}
	resizeCommand.Flags().StringVar(&kernel, "kernel", "catmullrom", "nearest, approx, bilinear or catmullrom")
	RootCommand.AddCommand(resizeCommand)

	var vertical bool
	flipCommand := &cobra.Command{
		Use:   "flip [in] [out]",
		Short: "Mirror an image left to right, or top to bottom with --vertical",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transform(args[0], args[1], func(img *pixel.Buffer) (*pixel.Buffer, error) {
				if vertical {
					adjustments.FlipVertical(img)
				} else {
					adjustments.FlipHorizontal(img)
				}
				return img, nil
			})
		},
	}
	flipCommand.Flags().BoolVar(&vertical, "vertical", false, "flip top to bottom")
	RootCommand.AddCommand(flipCommand)
}

func applyFilter(img *pixel.Buffer, name string, value float64, method, channel string) error {
	switch name {
	case "invert":
		filters.Invert(img)
	case "grayscale":
		filters.Grayscale(img)
	case "luma":
		filters.GrayscaleLuma(img)
	case "brightness":
		return filters.Brightness(img, value, method)
	case "contrast":
		filters.Contrast(img, value)
	case "channel":
		return filters.Channel(img, channel)
	case "tint":
		filters.Tint(img, value)
	case "shade":
		filters.Shade(img, value)
	default:
		return fmt.Errorf("unknown filter %q", name)
	}
	return nil
}
