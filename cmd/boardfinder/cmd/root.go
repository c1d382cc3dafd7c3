package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.viam.com/rdk/logging"
)

var (
	cfgFile string
	v       = viper.New()

	globalConfig *Config
	logger       logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "boardfinder",
	Short: "Find a chessboard in an image and split it into fields",
	Long: `boardfinder locates a chessboard in a camera image, rectifies it and
builds a labeled grid of fields. The board descriptor it writes can be used to
measure fields against depth images and to compare frames for moves.

Examples:
  boardfinder recognize board.jpg --save board.json --out overlay.jpg
  boardfinder piece e4 depth.png --board board.json
  boardfinder diff before.jpg after.jpg --board board.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := NewLoader(v).Load(cfgFile)
		if err != nil {
			return err
		}
		globalConfig = cfg

		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, err = newLogger(cfg.LogLevel, verbose)
		return err
	},
}

// newLogger builds the CLI logger at the configured level; verbose forces debug.
func newLogger(level string, verbose bool) (logging.Logger, error) {
	if verbose {
		return logging.NewDebugLogger("boardfinder"), nil
	}
	lvl, err := logging.LevelFromString(level)
	if err != nil {
		return nil, err
	}
	l := logging.NewLogger("boardfinder")
	l.SetLevel(lvl)
	return l, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./boardfinder.yaml, ~/.config/boardfinder, /etc/boardfinder)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("board", "board.json", "board descriptor path")

	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("board", rootCmd.PersistentFlags().Lookup("board"))
}
