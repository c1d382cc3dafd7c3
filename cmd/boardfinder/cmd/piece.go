package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"viamboard"
)

var pieceCmd = &cobra.Command{
	Use:   "piece <label> <depth-image>",
	Short: "Measure one field of a saved board against a depth image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := viamboard.NewObjectRecognizer(globalConfig.Board, viamboard.NewFileStore(logger), logger)
		if err != nil {
			return err
		}

		dm, err := readDepth(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		p, err := r.PieceInfo(args[0], dm)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("board has no field %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s zenith: %.1f\n", p.Label, p.Zenith)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pieceCmd)
}
