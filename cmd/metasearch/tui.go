package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/metasearch/internal/controller"
	"github.com/pdiddy/metasearch/internal/logger"
	"github.com/pdiddy/metasearch/internal/search"
	"github.com/pdiddy/metasearch/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive search front end",
	Long: `Tui opens a full-screen query box with live word suggestions. Arrow keys
move through suggestions, Enter commits one or submits the query, ctrl+t
toggles image search, ctrl+n loads the next page and tab moves to the result
list, where p looks up a price for the highlighted result.

Diagnostics go to a log file because the terminal is taken by the interface.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logPath, _ := cmd.Flags().GetString("log-file")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		l := logger.NewWithConfig(f, "tui", log.GetLevel(), false, true, log.TextFormatter)

		cfg := currentConfig()
		st := openStoreOrWarn(cfg.Store, l)
		if st != nil {
			defer st.Close()
		}
		aug, err := newAugmenter(cfg.Augment, st, l)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ctrl := controller.New(
			newSuggester(cfg.Suggest, l),
			search.NewClient(nil, cfg.Search, l),
			controller.WithDebounce(cfg.Suggest.Debounce),
			controller.WithAugmenter(aug),
			controller.WithContext(ctx),
			controller.WithLogger(l),
		)
		defer ctrl.Close()

		l.Info("starting", "version", version)
		return tui.Run(ctx, ctrl, l)
	},
}

func init() {
	tuiCmd.Flags().String("log-file", "metasearch.log", "file that receives diagnostics while the interface runs")

	rootCmd.AddCommand(tuiCmd)
}
