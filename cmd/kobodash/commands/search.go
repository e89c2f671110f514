package commands

import (
	"fmt"
	"os"
	"strings"

	"kobodash/services/dashboard"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	searchSource   *sourceFlags
	searchFilters  *filterFlags
	searchKeywords *[]string
	searchMethod   *string
	searchCutoff   *int
)

func init() {
	searchSource = addSourceFlags(searchCmd.Flags())
	searchFilters = addFilterFlags(searchCmd.Flags())
	searchKeywords = searchCmd.Flags().StringSlice("keywords", nil, "Keywords to match against schema terms.")
	searchMethod = searchCmd.Flags().String("method", "token-set", "Similarity method: ratio, partial, token-sort, token-set or weighted.")
	searchCutoff = searchCmd.Flags().Int("threshold", 80, "Minimum similarity score (0-100) to count as a match.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search --keywords <kw,...> [--method <m>] [--threshold <n>]",
	Short: "Fuzzy-search the schema terms of the filtered forms.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(*searchKeywords) == 0 {
			return fmt.Errorf("pass --keywords with at least one keyword")
		}
		method, err := dashboard.ParseMatchMethod(*searchMethod)
		if err != nil {
			return err
		}
		if *searchCutoff < 0 || *searchCutoff > 100 {
			return fmt.Errorf("threshold must be between 0 and 100")
		}

		svc, err := loadFiltered(cmd, searchSource, searchFilters)
		if err != nil {
			return err
		}
		err = svc.AnalyzeForms(cmd.Context(), progressLine("analyzing forms"))
		endProgress()
		if err != nil {
			return err
		}

		matches := svc.Search(*searchKeywords, method, *searchCutoff)
		if len(matches) == 0 {
			fmt.Printf("No forms matched above threshold %d using %s.\n", *searchCutoff, method)
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Form", "UID", "Owner", "Matches", "Matched Terms"})
		for _, match := range matches {
			t.AppendRow(table.Row{
				match.FormName,
				match.UID,
				match.OwnerUsername,
				match.MatchCount,
				strings.Join(match.MatchedTerms, ", "),
			})
		}
		t.Render()
		return nil
	},
}
