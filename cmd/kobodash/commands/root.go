package commands

import (
	"context"
	"fmt"
	"os"

	"kobodash/lib/configutil"
	"kobodash/lib/kobo"
	"kobodash/lib/serviceutil"
	"kobodash/services/dashboard"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kobodash",
	Short: "kobodash browses, analyzes and exports survey projects from a KoboToolbox server.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	ServerURL   string `json:"server_url"`
	Token       string `json:"token"`
	SurveysOnly bool   `json:"surveys_only"`
}

var configPath *string

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "Path to the configuration file.")
}

func newService() (*dashboard.Service, Config) {
	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	client, err := kobo.NewClient(kobo.ClientOptions{
		BaseURL: cfg.ServerURL,
		Token:   cfg.Token,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize client", err)
	}

	return dashboard.NewService(client), cfg
}

// progressLine writes fetch progress to stderr, overwriting in place.
func progressLine(label string) kobo.ProgressFunc {
	return func(fetched, total int) {
		if total > 0 {
			percent := min(100, fetched*100/total)
			fmt.Fprintf(os.Stderr, "\r%s: %d of %d (%d%%)", label, fetched, total, percent)
		} else {
			fmt.Fprintf(os.Stderr, "\r%s: %d", label, fetched)
		}
	}
}

func endProgress() {
	fmt.Fprintln(os.Stderr)
}
