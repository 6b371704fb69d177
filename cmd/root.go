package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tanq16/okapi-downloader/internal/config"
	"github.com/tanq16/okapi-downloader/internal/downloaders/okapi"
	"github.com/tanq16/okapi-downloader/internal/mirror"
	"github.com/tanq16/okapi-downloader/internal/output"
	"github.com/tanq16/okapi-downloader/internal/scheduler"
	"github.com/tanq16/okapi-downloader/internal/utils"
)

var (
	credsFile    string
	settingsFile string
	verbose      bool
	debug        bool
	runDate      string
	wikiList     string
	retries      uint
	dryRun       bool
	maxFails     uint
)

var OkapiVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "okapi-downloader",
	Short:   "Download per-wiki HTML dumps from the Wikimedia Enterprise (OKAPI) api",
	Version: OkapiVersion,
	Args:    cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(verbose, debug)
		if runDate != "" {
			if err := okapi.ValidateDate(runDate); err != nil {
				usageExit(cmd, err)
			}
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runID := uuid.NewString()
		utils.TagRun(runID)
		settings := loadSettings(cmd)
		creds := loadCredentials(cmd)
		downloader := newDownloader(ctx, settings, creds)
		if dryRun {
			output.PrintWarning("Dry run, nothing will be downloaded")
		}

		opts := scheduler.Options{
			MaxRetries: retries,
			MaxFails:   maxFails,
			Wait:       settings.WaitDuration(),
			RetryWait:  settings.RetryWaitDuration(),
			RunID:      runID,
			RunDate:    downloader.Date(),
			StatusPath: downloader.StatusPath(),
		}
		if settings.S3Bucket != "" && !dryRun {
			s3Mirror, err := mirror.NewS3Mirror(ctx, settings.S3Bucket, settings.S3Prefix, settings.S3Profile)
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			opts.Mirror = s3Mirror
		}

		results, err := scheduler.New(downloader, opts).Run(ctx, utils.SplitList(wikiList))
		output.PrintSummary(os.Stdout, fmt.Sprintf("OKAPI dumps for %s", downloader.Date()), rowsFromResults(results))
		if err != nil {
			output.PrintError(err.Error())
			os.Exit(1)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&credsFile, "creds", "c", config.DefaultCredentialsFile, "Path to file with OKAPI credentials (user, passwd)")
	rootCmd.PersistentFlags().StringVarP(&settingsFile, "settings", "s", config.DefaultSettingsFile, "Path to settings file (defaults apply if the default file is missing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Display progress messages")
	rootCmd.PersistentFlags().StringVar(&runDate, "date", "", "Run date as YYYYMMDD (default today in UTC)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging with callers and requests")

	rootCmd.Flags().StringVarP(&wikiList, "wikis", "w", "", "Comma separated list of wikis to download (default all)")
	rootCmd.Flags().UintVarP(&retries, "retries", "r", 0, "Number of times to retry a batch with failures")
	rootCmd.Flags().BoolVarP(&dryRun, "dryrun", "d", false, "Show what would be downloaded without downloading")
	rootCmd.Flags().UintVarP(&maxFails, "maxfails", "m", 0, "Give up on a batch after this many consecutive failures (0 disables)")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newStatusCmd())
}
