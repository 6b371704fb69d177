package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tanq16/okapi-downloader/internal/config"
	"github.com/tanq16/okapi-downloader/internal/downloaders/okapi"
	"github.com/tanq16/okapi-downloader/internal/output"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the wikis available for download",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			wikis, err := listWikis(ctx, loadSettings(cmd), loadCredentials(cmd))
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			for _, wiki := range wikis {
				fmt.Println(wiki)
			}
		},
	}
}

// listWikis only reads from the api; no run directory or snapshot is created.
func listWikis(ctx context.Context, settings config.Settings, creds config.Credentials) ([]string, error) {
	return okapi.ListWikis(ctx, newHTTPClient(ctx, settings, creds), settings.WikiListURL)
}
