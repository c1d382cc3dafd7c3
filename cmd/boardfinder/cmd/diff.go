package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.viam.com/rdk/rimage"

	"viamboard"
)

var diffCmd = &cobra.Command{
	Use:   "diff <previous-image> <current-image>",
	Short: "Compare two frames of a saved board",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := viamboard.NewFileStore(logger)
		b, err := store.Load(globalConfig.Board)
		if err != nil {
			return err
		}

		prev, err := rimage.ReadImageFromFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading previous image: %w", err)
		}
		cur, err := rimage.ReadImageFromFile(args[1])
		if err != nil {
			return fmt.Errorf("error reading current image: %w", err)
		}

		ch, err := b.DetermineChanges(prev, cur)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Changed: %s\n", strings.Join(ch.Changed, " "))
		if ch.Move != nil {
			fmt.Fprintf(w, "Move: %s\n", ch.Move)
		}

		if update, _ := cmd.Flags().GetBool("update"); update {
			return store.Save(b, globalConfig.Board)
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().Bool("update", false, "store the current frame's states in the board descriptor")
	rootCmd.AddCommand(diffCmd)
}
