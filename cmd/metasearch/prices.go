package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/metasearch/internal/store"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "List or prune the price cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		prune, _ := cmd.Flags().GetDuration("prune")
		asJSON, _ := cmd.Flags().GetBool("json")

		st, err := store.Open(currentConfig().Store)
		if err != nil {
			return err
		}
		defer st.Close()

		w := cmd.OutOrStdout()
		if prune > 0 {
			n, err := st.Prune(cmd.Context(), prune)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Pruned %d records older than %s\n", n, prune)
			return nil
		}

		records, err := st.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		if len(records) == 0 {
			fmt.Fprintln(w, "No cached prices.")
			return nil
		}
		fmt.Fprintf(w, "%-20s  %-14s  %-16s  %s\n", "Fetched", "Value", "Rule", "Link")
		fmt.Fprintln(w, strings.Repeat("-", 100))
		for _, r := range records {
			fmt.Fprintf(w, "%-20s  %-14s  %-16s  %s\n",
				r.FetchedAt.Local().Format(time.DateTime), r.Value, r.Rule, r.Link)
		}
		return nil
	},
}

func init() {
	pricesCmd.Flags().Int("limit", 50, "maximum number of records to list")
	pricesCmd.Flags().Duration("prune", 0, "delete records older than this duration instead of listing")
	pricesCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(pricesCmd)
}
