package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	assetsSource  *sourceFlags
	assetsFilters *filterFlags
)

func init() {
	assetsSource = addSourceFlags(assetsCmd.Flags())
	assetsFilters = addFilterFlags(assetsCmd.Flags())
	rootCmd.AddCommand(assetsCmd)
}

var assetsCmd = &cobra.Command{
	Use:   "assets [--views <uid,...> | --all] [filter flags]",
	Short: "Load, filter and display the project table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadFiltered(cmd, assetsSource, assetsFilters)
		if err != nil {
			return err
		}

		if len(svc.Filtered) == 0 {
			fmt.Println("No projects loaded or matching current filters.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Name", "UID", "Status", "Submissions", "Created",
			"Country", "Sector", "Source View", "Owner",
		})
		for _, asset := range svc.Filtered {
			t.AppendRow(table.Row{
				asset.Name,
				asset.UID,
				asset.Status,
				asset.SubmissionCount,
				dateCell(asset.DateCreated),
				asset.CountryLabel,
				asset.SectorDisplay(),
				asset.SourceViewName,
				asset.OwnerUsername,
			})
		}
		t.Render()

		projects, submissions := svc.Summary()
		fmt.Printf("%d project(s), %d total submission(s)\n", projects, submissions)
		return nil
	},
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
