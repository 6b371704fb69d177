package scheduler

import (
	"fmt"
	"os"
	"time"

	"github.com/tanq16/okapi-downloader/internal/downloaders/okapi"
	"github.com/tanq16/okapi-downloader/internal/utils"
	"gopkg.in/yaml.v3"
)

type WikiStatus struct {
	Wiki    string  `yaml:"wiki"`
	Outcome string  `yaml:"outcome"`
	Bytes   int64   `yaml:"bytes,omitempty"`
	Seconds float64 `yaml:"seconds,omitempty"`
	Error   string  `yaml:"error,omitempty"`
}

// StatusReport is rewritten after every batch, so it always describes the
// most recent attempt.
type StatusReport struct {
	RunID    string       `yaml:"run_id"`
	Date     string       `yaml:"date"`
	Attempt  uint         `yaml:"attempt"`
	Finished time.Time    `yaml:"finished"`
	OK       bool         `yaml:"ok"`
	Wikis    []WikiStatus `yaml:"wikis"`
}

func newStatusReport(runID, date string, attempt uint, ok bool, results []okapi.Result) StatusReport {
	report := StatusReport{
		RunID:    runID,
		Date:     date,
		Attempt:  attempt,
		Finished: time.Now().UTC().Truncate(time.Second),
		OK:       ok,
		Wikis:    make([]WikiStatus, 0, len(results)),
	}
	for _, result := range results {
		entry := WikiStatus{
			Wiki:    result.Wiki,
			Outcome: result.Outcome.String(),
			Bytes:   result.Bytes,
			Seconds: result.Elapsed.Round(time.Millisecond).Seconds(),
		}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		report.Wikis = append(report.Wikis, entry)
	}
	return report
}

func writeStatus(path string, report StatusReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("error encoding status report: %w", err)
	}
	return utils.AtomicWriteFile(path, data)
}

func ReadStatus(path string) (StatusReport, error) {
	var report StatusReport
	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("error reading status report: %w", err)
	}
	if err := yaml.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("error parsing status report %s: %w", path, err)
	}
	return report, nil
}
