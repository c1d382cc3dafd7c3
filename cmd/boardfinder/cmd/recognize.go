package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go.viam.com/rdk/rimage"

	"viamboard"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image> [depth-image]",
	Short: "Recognize a board and print its fields",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := rimage.ReadImageFromFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading image: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Image size: %dx%d\n", input.Bounds().Dx(), input.Bounds().Dy())

		var dm *rimage.DepthMap
		if len(args) == 2 {
			dm, err = readDepth(cmd.Context(), args[1])
			if err != nil {
				return err
			}
		}

		b, err := viamboard.Recognize(input, dm,
			viamboard.WithTunables(globalConfig.Tunables), viamboard.WithLogger(logger))
		if err != nil {
			return err
		}

		printBoard(cmd, b)

		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := viamboard.NewFileStore(logger).Save(b, globalConfig.Board); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved board to %s\n", globalConfig.Board)
		}

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := rimage.WriteImageToFile(out, viamboard.DrawFields(input, b)); err != nil {
				return fmt.Errorf("error writing output image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved output image to %s\n", out)
		}
		if out, _ := cmd.Flags().GetString("rectified-out"); out != "" {
			if err := rimage.WriteImageToFile(out, viamboard.DrawRectified(b)); err != nil {
				return fmt.Errorf("error writing rectified image: %w", err)
			}
		}
		if out, _ := cmd.Flags().GetString("unwarped-out"); out != "" {
			if err := rimage.WriteImageToFile(out, b.Unwarped()); err != nil {
				return fmt.Errorf("error writing unwarped image: %w", err)
			}
		}
		return nil
	},
}

func printBoard(cmd *cobra.Command, b *viamboard.Board) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Board edge:\n")
	for i, name := range []string{"Top-left", "Top-right", "Bottom-right", "Bottom-left"} {
		fmt.Fprintf(w, "  %-13s (%.0f, %.0f)\n", name+":", b.CameraEdge[i].X, b.CameraEdge[i].Y)
	}
	fmt.Fprintf(w, "Fields: %d (%d rows x %d cols, consistent: %v)\n", len(b.Fields), b.Rows, b.Cols, b.Consistent())
	if err := b.GridErr(); err != nil {
		fmt.Fprintf(w, "Skipped: %v\n", err)
	}
	m := b.CurrentMatrix()
	for _, f := range b.Fields {
		if s := m[f.Row][f.Col]; s.Occupied() {
			fmt.Fprintf(w, "  %s: %s\n", f.Label, s)
		}
	}
}

func readDepth(ctx context.Context, path string) (*rimage.DepthMap, error) {
	img, err := rimage.ReadImageFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading depth image: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return rimage.ConvertImageToDepthMap(ctx, img)
}

func init() {
	recognizeCmd.Flags().Bool("save", false, "write the board descriptor to --board")
	recognizeCmd.Flags().String("out", "", "write a field overlay image")
	recognizeCmd.Flags().String("rectified-out", "", "write the rectified board with lines and corners")
	recognizeCmd.Flags().String("unwarped-out", "", "write the rectified board mapped back onto the working image")
	rootCmd.AddCommand(recognizeCmd)
}
