package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/okapi-downloader/internal/downloaders/okapi"
	"github.com/tanq16/okapi-downloader/internal/output"
	"github.com/tanq16/okapi-downloader/internal/scheduler"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the outcome of the last batch for a run date",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			path := okapi.StatusPath(loadSettings(cmd).BaseOutDir, runDateOrToday())
			report, err := scheduler.ReadStatus(path)
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			output.PrintHeader(fmt.Sprintf("Status report %s", path))
			output.PrintDetail(fmt.Sprintf("run %s, attempt %d, finished %s", report.RunID, report.Attempt, report.Finished.Format(time.DateTime)))
			output.PrintSummary(os.Stdout, fmt.Sprintf("OKAPI dumps for %s", report.Date), rowsFromStatus(report))
			if !report.OK {
				os.Exit(1)
			}
		},
	}
}
