package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/metasearch/internal/logger"
)

var priceCmd = &cobra.Command{
	Use:   "price <url>",
	Short: "Fetch one page and print the price it displays",
	Long: `Price fetches the page at url and applies the extraction rules (built-in
price selectors, or augment.rules_file) to find a displayed price. Successful
lookups are recorded in the price cache.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig()
		if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
			cfg.Augment.CacheTTL = 0
		}
		l := logger.New("augment")
		st := openStoreOrWarn(cfg.Store, l)
		if st != nil {
			defer st.Close()
		}
		svc, err := newAugmenter(cfg.Augment, st, l)
		if err != nil {
			return err
		}

		v, err := svc.Augment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		suffix := ""
		if v.Cached {
			suffix = ", cached"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  (%s%s)\n", v.Value, v.Rule, suffix)
		return nil
	},
}

func init() {
	priceCmd.Flags().Bool("no-cache", false, "always fetch, ignoring augment.cache_ttl")

	rootCmd.AddCommand(priceCmd)
}
