package commands

import (
	"fmt"
	"os"

	"kobodash/services/dashboard"

	"github.com/spf13/cobra"
)

var (
	exportSource  *sourceFlags
	exportFilters *filterFlags
	exportOut     *string
)

func init() {
	exportSource = addSourceFlags(exportCmd.PersistentFlags())
	exportFilters = addFilterFlags(exportCmd.PersistentFlags())
	exportOut = exportCmd.PersistentFlags().String("out", "", "Output file path.")

	exportCmd.AddCommand(exportMetadataCmd)
	exportCmd.AddCommand(exportFormsCmd)
	exportCmd.AddCommand(exportSubmissionsCmd)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <metadata|forms|submissions> --out <path>",
	Short: "Export the filtered projects as downloadable files.",
}

func exportTarget(fallback string) (*os.File, error) {
	path := *exportOut
	if path == "" {
		path = fallback
	}
	return os.Create(path)
}

var exportMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Write a spreadsheet with one row per filtered project.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadFiltered(cmd, exportSource, exportFilters)
		if err != nil {
			return err
		}

		out, err := exportTarget("projects_metadata.xlsx")
		if err != nil {
			return err
		}
		defer out.Close()

		err = dashboard.WriteMetadataXLSX(out, svc.Filtered)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %d project(s) to %s\n", len(svc.Filtered), out.Name())
		return nil
	},
}

var exportFormsCmd = &cobra.Command{
	Use:   "forms",
	Short: "Write a zip of the raw form definition files of the filtered projects.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadFiltered(cmd, exportSource, exportFilters)
		if err != nil {
			return err
		}

		out, err := exportTarget("form_definitions.zip")
		if err != nil {
			return err
		}
		defer out.Close()

		err = svc.WriteFormFilesZip(cmd.Context(), out, progressLine("downloading form files"))
		endProgress()
		if err != nil {
			return err
		}
		fmt.Printf("wrote form definitions to %s\n", out.Name())
		return nil
	},
}

var exportSubmissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "Write a zip of flattened submission data of the filtered projects.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadFiltered(cmd, exportSource, exportFilters)
		if err != nil {
			return err
		}

		out, err := exportTarget("submissions.zip")
		if err != nil {
			return err
		}
		defer out.Close()

		err = svc.WriteSubmissionsZip(cmd.Context(), out, progressLine("downloading submissions"))
		endProgress()
		if err != nil {
			return err
		}
		fmt.Printf("wrote submission data to %s\n", out.Name())
		return nil
	},
}
