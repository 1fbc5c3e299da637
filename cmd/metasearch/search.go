package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/metasearch/internal/apperr"
	"github.com/pdiddy/metasearch/internal/augment"
	"github.com/pdiddy/metasearch/internal/logger"
	"github.com/pdiddy/metasearch/internal/search"
	"github.com/pdiddy/metasearch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run one search and print the results",
	Long: `Search submits the query to the configured Custom Search endpoint and prints
one page of results. With --prices each result page is fetched and scraped
for a displayed price.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Bool("image", false, "search images instead of web pages")
	searchCmd.Flags().Int("start", 1, "1-based index of the first result")
	searchCmd.Flags().Bool("prices", false, "look up a price for every result")
	searchCmd.Flags().String("format", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	image, _ := cmd.Flags().GetBool("image")
	start, _ := cmd.Flags().GetInt("start")
	withPrices, _ := cmd.Flags().GetBool("prices")
	format, _ := cmd.Flags().GetString("format")

	switch format {
	case "table", "json", "yaml":
	default:
		return apperr.New(apperr.KindValidation, "search", "format must be table, json or yaml")
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return apperr.New(apperr.KindValidation, "search", "query required")
	}

	cfg := currentConfig()
	l := logger.New("search")
	client := search.NewClient(nil, cfg.Search, l)
	if err := client.Validate(); err != nil {
		return err
	}

	req := search.Request{Query: query, Start: start}
	if image {
		req.Type = types.SearchImage
	}
	page, err := client.Search(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := search.Output{Query: query, Page: page}
	if withPrices && len(page.Items) > 0 {
		out.Prices, out.PriceErrors, err = lookupPrices(cmd, cfg, search.Links(page.Items))
		if err != nil {
			return err
		}
	}

	switch format {
	case "json":
		return search.FormatJSON(out, os.Stdout)
	case "yaml":
		return search.FormatYAML(out, os.Stdout)
	default:
		search.FormatTable(out, os.Stdout)
		return nil
	}
}

func lookupPrices(cmd *cobra.Command, cfg types.Config, links []string) (map[string]string, map[string]string, error) {
	l := logger.New("augment")
	st := openStoreOrWarn(cfg.Store, l)
	if st != nil {
		defer st.Close()
	}
	svc, err := newAugmenter(cfg.Augment, st, l)
	if err != nil {
		return nil, nil, err
	}

	prices := make(map[string]string)
	failures := make(map[string]string)
	for _, o := range augment.Batch(cmd.Context(), svc, links, cfg.Augment.Concurrency) {
		if o.Err != nil {
			failures[o.Link] = apperr.UserMessage(o.Err)
			l.Debug("price lookup failed", "link", o.Link, "err", o.Err)
			continue
		}
		prices[o.Link] = o.Value.Value
	}
	fmt.Fprintf(os.Stderr, "Prices: %d found, %d unavailable\n", len(prices), len(failures))
	return prices, failures, nil
}
