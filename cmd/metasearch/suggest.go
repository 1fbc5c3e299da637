package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/metasearch/internal/logger"
	"github.com/pdiddy/metasearch/internal/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Print word completions for a prefix, one per line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig()
		if n, _ := cmd.Flags().GetInt("max"); n > 0 {
			cfg.Suggest.Max = n
		}
		client := suggest.NewClient(nil, cfg.Suggest, logger.New("suggest"))
		words, err := client.Suggest(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		for _, w := range words {
			fmt.Fprintln(cmd.OutOrStdout(), w)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().Int("max", 0, "maximum number of suggestions (default from config)")

	rootCmd.AddCommand(suggestCmd)
}
