package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(viewsCmd)
}

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List the project views available to your token.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _ := newService()

		err := svc.LoadProjectViews(cmd.Context(), progressLine("fetching project views"))
		endProgress()
		if err != nil {
			return err
		}
		if len(svc.ProjectViews) == 0 {
			fmt.Println("No project views found.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "UID", "URL"})
		for _, view := range svc.ProjectViews {
			t.AppendRow(table.Row{view.Name, view.UID, view.URL})
		}
		t.Render()
		return nil
	},
}
