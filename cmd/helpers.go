package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/okapi-downloader/internal/config"
	"github.com/tanq16/okapi-downloader/internal/downloaders/okapi"
	"github.com/tanq16/okapi-downloader/internal/output"
	"github.com/tanq16/okapi-downloader/internal/scheduler"
	"github.com/tanq16/okapi-downloader/internal/utils"
)

func usageExit(cmd *cobra.Command, err error) {
	output.PrintError(err.Error())
	cmd.Usage()
	os.Exit(1)
}

func loadSettings(cmd *cobra.Command) config.Settings {
	settings, err := resolveSettings(settingsFile, cmd.Flags().Changed("settings"))
	if err != nil {
		usageExit(cmd, err)
	}
	return settings
}

// resolveSettings falls back to defaults only when the default settings file
// is absent; a file named on the command line has to exist.
func resolveSettings(path string, explicit bool) (config.Settings, error) {
	settings, err := config.LoadSettings(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return config.Settings{}, err
		}
		log.Debug().Str("op", "cmd/helpers").Msgf("no settings file at %s, using defaults", path)
		settings = config.DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func loadCredentials(cmd *cobra.Command) config.Credentials {
	creds, err := config.LoadCredentials(credsFile)
	if err != nil {
		usageExit(cmd, err)
	}
	return creds
}

func newHTTPClient(ctx context.Context, settings config.Settings, creds config.Credentials) *utils.HTTPClient {
	clientConfig := utils.HTTPClientConfig{
		ProxyURL:      settings.ProxyURL,
		ProxyUsername: settings.ProxyUser,
		ProxyPassword: settings.ProxyPasswd,
		Username:      creds.User,
		Password:      creds.Password,
	}
	if settings.AuthMode == config.AuthModeToken {
		clientConfig.TokenSource = utils.NewLoginTokenSource(ctx, settings.LoginURL, creds.User, creds.Password, clientConfig)
	}
	return utils.NewHTTPClient(clientConfig)
}

func newDownloader(ctx context.Context, settings config.Settings, creds config.Credentials) *okapi.Downloader {
	downloader, err := okapi.NewDownloader(newHTTPClient(ctx, settings, creds), settings, okapi.Options{
		Date:   runDate,
		DryRun: dryRun,
	})
	if err != nil {
		output.PrintError(err.Error())
		os.Exit(1)
	}
	return downloader
}

func runDateOrToday() string {
	if runDate != "" {
		return runDate
	}
	return okapi.Today()
}

func rowsFromResults(results []okapi.Result) []output.Row {
	rows := make([]output.Row, 0, len(results))
	for _, result := range results {
		row := output.Row{Name: result.Wiki}
		switch result.Outcome {
		case okapi.Succeeded:
			row.Status = "pass"
			row.Detail = fmt.Sprintf("%s in %s", output.FormatBytes(uint64(result.Bytes)), result.Elapsed.Round(time.Millisecond))
		case okapi.AlreadyPresent:
			row.Status = "skip"
			row.Detail = "already present"
		case okapi.Planned:
			row.Status = "pending"
			row.Detail = "would download"
		default:
			row.Status = "fail"
			row.Err = result.Err
		}
		rows = append(rows, row)
	}
	return rows
}

func rowsFromStatus(report scheduler.StatusReport) []output.Row {
	rows := make([]output.Row, 0, len(report.Wikis))
	for _, wiki := range report.Wikis {
		row := output.Row{Name: wiki.Wiki, Detail: wiki.Outcome}
		switch wiki.Outcome {
		case okapi.Succeeded.String():
			row.Status = "pass"
			row.Detail = output.FormatBytes(uint64(wiki.Bytes))
		case okapi.AlreadyPresent.String():
			row.Status = "skip"
		case okapi.Planned.String():
			row.Status = "pending"
		default:
			row.Status = "fail"
			if wiki.Error != "" {
				row.Err = errors.New(wiki.Error)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
