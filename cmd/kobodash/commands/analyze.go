package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	analyzeSource  *sourceFlags
	analyzeFilters *filterFlags
)

func init() {
	analyzeSource = addSourceFlags(analyzeCmd.Flags())
	analyzeFilters = addFilterFlags(analyzeCmd.Flags())
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [--views <uid,...> | --all] [filter flags]",
	Short: "Extract the schema terms of every filtered form.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadFiltered(cmd, analyzeSource, analyzeFilters)
		if err != nil {
			return err
		}
		if len(svc.Filtered) == 0 {
			fmt.Println("No projects in the filtered list to analyze.")
			return nil
		}

		err = svc.AnalyzeForms(cmd.Context(), progressLine("analyzing forms"))
		endProgress()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Form", "UID", "Terms", "Warning"})
		failures := 0
		for _, def := range svc.FormDefs {
			if def.Warning != "" {
				failures++
			}
			t.AppendRow(table.Row{def.FormName, def.UID, len(def.Columns), def.Warning})
		}
		t.Render()

		fmt.Printf(
			"analyzed %d form(s) (%d failed), %d unique term(s)\n",
			len(svc.FormDefs), failures, len(svc.AllTerms),
		)
		return nil
	},
}
