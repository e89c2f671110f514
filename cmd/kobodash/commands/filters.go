package commands

import (
	"fmt"
	"os"
	"time"

	"kobodash/services/dashboard"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// filter flags shared by every command that works on the filtered
// project table
type filterFlags struct {
	names          *[]string
	countries      *[]string
	statuses       *[]string
	sectors        *[]string
	purposes       *[]string
	pii            *[]string
	descriptions   *[]string
	createdFrom    *string
	createdTo      *string
	minSubmissions *int
}

func addFilterFlags(flags *pflag.FlagSet) *filterFlags {
	f := &filterFlags{}
	f.names = flags.StringSlice("name", nil, "Keep projects whose name contains any of these keywords.")
	f.countries = flags.StringSlice("country", nil, "Keep projects in any of these countries.")
	f.statuses = flags.StringSlice("status", nil, "Keep projects with any of these statuses (Draft, Deployed, Archived). Passing the flag with an empty value clears the selection and keeps nothing.")
	f.sectors = flags.StringSlice("sector", nil, "Keep projects in any of these sectors.")
	f.purposes = flags.StringSlice("purpose", nil, "Keep projects with any of these operational purposes.")
	f.pii = flags.StringSlice("collects-pii", nil, "Keep projects with any of these PII flags.")
	f.descriptions = flags.StringSlice("description", nil, "Keep projects whose description contains any of these keywords.")
	f.createdFrom = flags.String("created-from", "", "Keep projects created on or after this date (YYYY-MM-DD).")
	f.createdTo = flags.String("created-to", "", "Keep projects created on or before this date (YYYY-MM-DD).")
	f.minSubmissions = flags.Int("min-submissions", 0, "Keep projects with at least this many submissions.")
	return f
}

func (f *filterFlags) criteria(cmd *cobra.Command) dashboard.Criteria {
	return dashboard.Criteria{
		NameKeywords:        *f.names,
		Countries:           *f.countries,
		Statuses:            *f.statuses,
		StatusFilterActive:  cmd.Flags().Changed("status"),
		Sectors:             *f.sectors,
		OperationalPurposes: *f.purposes,
		CollectsPII:         *f.pii,
		DescriptionKeywords: *f.descriptions,
		CreatedFrom:         parseDateFlag(*f.createdFrom),
		CreatedTo:           parseDateFlag(*f.createdTo),
		MinSubmissions:      *f.minSubmissions,
	}
}

func parseDateFlag(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid date %q, expected YYYY-MM-DD\n", s)
		os.Exit(1)
	}
	return t
}

// data source flags shared by commands that load the asset table
type sourceFlags struct {
	views       *[]string
	all         *bool
	surveysOnly *bool
}

func addSourceFlags(flags *pflag.FlagSet) *sourceFlags {
	s := &sourceFlags{}
	s.views = flags.StringSlice("views", nil, "Project view uids to load assets from.")
	s.all = flags.Bool("all", false, "Load all accessible assets directly, without project view scoping.")
	s.surveysOnly = flags.Bool("surveys-only", false, "Drop non-survey assets, in addition to the surveys_only config setting.")
	return s
}

// loadFiltered loads the asset table from the selected source and
// applies the shared filter flags to it.
func loadFiltered(cmd *cobra.Command, src *sourceFlags, filters *filterFlags) (*dashboard.Service, error) {
	svc, cfg := newService()
	ctx := cmd.Context()
	surveysOnly := cfg.SurveysOnly || *src.surveysOnly

	if *src.all {
		err := svc.LoadAllAssets(ctx, surveysOnly, progressLine("fetching assets"))
		endProgress()
		if err != nil {
			return nil, err
		}
	} else {
		if len(*src.views) == 0 {
			return nil, fmt.Errorf("pass --views with at least one project view uid, or --all")
		}
		err := svc.LoadProjectViews(ctx, progressLine("fetching project views"))
		endProgress()
		if err != nil {
			return nil, err
		}
		err = svc.LoadAssetsFromViews(ctx, *src.views, surveysOnly, progressLine("loading assets"))
		endProgress()
		if err != nil {
			return nil, err
		}
	}

	svc.Filter(filters.criteria(cmd))
	return svc, nil
}
