package okapi

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/okapi-downloader/internal/config"
)

// max time to spend streaming a single dump, longer than that means something is broken
const MaxRequestTime = 30 * time.Minute

type Options struct {
	Date        string // YYYYMMDD, defaults to today in UTC
	DryRun      bool
	StallBudget time.Duration
}

// Downloader retrieves and stashes dumps for one run date. The date and the
// output directory are fixed at construction so retries never roll over to
// a new day.
type Downloader struct {
	transport   Transport
	settings    config.Settings
	date        string
	outDir      string
	dryRun      bool
	stallBudget time.Duration
}

func NewDownloader(transport Transport, settings config.Settings, opts Options) (*Downloader, error) {
	date := opts.Date
	if date == "" {
		date = Today()
	} else if err := ValidateDate(date); err != nil {
		return nil, err
	}
	stallBudget := opts.StallBudget
	if stallBudget <= 0 {
		stallBudget = MaxRequestTime
	}
	outDir := RunDir(settings.BaseOutDir, date)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}
	log.Debug().Str("op", "okapi/initial").Msgf("writing dumps for %s to %s", date, outDir)
	return &Downloader{
		transport:   transport,
		settings:    settings,
		date:        date,
		outDir:      outDir,
		dryRun:      opts.DryRun,
		stallBudget: stallBudget,
	}, nil
}

func (d *Downloader) Date() string {
	return d.date
}

func (d *Downloader) OutDir() string {
	return d.outDir
}

func (d *Downloader) OutfilePath(wiki string) string {
	return filepath.Join(d.outDir, OutfileName(wiki, d.date))
}

func (d *Downloader) StatusPath() string {
	return filepath.Join(d.outDir, StatusName(d.date))
}

func (d *Downloader) DumpURL(wiki string) string {
	return dumpURL(d.settings.BaseDumpURL, wiki)
}
