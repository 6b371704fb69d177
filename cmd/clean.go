package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/okapi-downloader/internal/downloaders/okapi"
	"github.com/tanq16/okapi-downloader/internal/output"
	"github.com/tanq16/okapi-downloader/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove temporary files left by interrupted downloads",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			dir := okapi.RunDir(loadSettings(cmd).BaseOutDir, runDateOrToday())
			removed, err := utils.CleanTempFiles(dir)
			if err != nil {
				output.PrintError(fmt.Sprintf("Error cleaning up temporary files: %v", err))
				os.Exit(1)
			}
			if removed == 0 {
				output.PrintInfo(fmt.Sprintf("No temporary files in %s", dir))
				return
			}
			output.PrintSuccess(fmt.Sprintf("Removed %d temporary files from %s", removed, dir))
		},
	}
}
