package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/okapi-downloader/internal/downloaders/okapi"
)

var ErrRetriesExhausted = errors.New("retries exhausted with failures remaining")

// Fetcher is the part of the okapi downloader the scheduler drives.
type Fetcher interface {
	ResolveWikis(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, wiki string) okapi.Result
}

// Mirror copies a committed dump somewhere else.
type Mirror interface {
	Mirror(ctx context.Context, path string) error
}

type Options struct {
	MaxRetries uint
	MaxFails   uint // consecutive failures tolerated before a batch bails, 0 disables
	Wait       time.Duration
	RetryWait  time.Duration
	RunID      string
	RunDate    string
	StatusPath string // empty disables the status report
	Mirror     Mirror
	Sleep      func(ctx context.Context, d time.Duration) error
}

type Scheduler struct {
	fetcher Fetcher
	opts    Options
	sleep   func(ctx context.Context, d time.Duration) error
}

func New(fetcher Fetcher, opts Options) *Scheduler {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Scheduler{fetcher: fetcher, opts: opts, sleep: sleep}
}

// RunBatch makes one pass over wikis, resolving the full list first when
// wikis is empty. It reports true only if nothing failed.
func (s *Scheduler) RunBatch(ctx context.Context, wikis []string) (bool, []okapi.Result) {
	failed := false
	if len(wikis) == 0 {
		resolved, err := s.fetcher.ResolveWikis(ctx)
		if err != nil {
			log.Error().Str("op", "scheduler/batch").Err(err).Msg("failed to retrieve list of wikis")
			failed = true
		}
		wikis = resolved
	}

	results := make([]okapi.Result, 0, len(wikis))
	consecutive := uint(0)
	for i, wiki := range wikis {
		if i > 0 {
			if err := s.sleep(ctx, s.opts.Wait); err != nil {
				log.Warn().Str("op", "scheduler/batch").Err(err).Msg("batch interrupted")
				return false, results
			}
		}
		result := s.fetcher.Fetch(ctx, wiki)
		if result.Outcome == okapi.Succeeded || result.Outcome == okapi.AlreadyPresent {
			if err := s.mirror(ctx, result); err != nil {
				result.Outcome = okapi.Failed
				result.Err = err
			}
		}
		results = append(results, result)

		if result.Outcome != okapi.Failed {
			consecutive = 0
			continue
		}
		failed = true
		consecutive++
		log.Error().Str("op", "scheduler/batch").Str("wiki", wiki).Err(result.Err).Msg("failed to get dump")
		if s.opts.MaxFails > 0 && consecutive > s.opts.MaxFails {
			log.Error().Str("op", "scheduler/batch").Msgf("%d consecutive failures, giving up on this batch", consecutive)
			break
		}
	}
	return !failed, results
}

func (s *Scheduler) mirror(ctx context.Context, result okapi.Result) error {
	if s.opts.Mirror == nil {
		return nil
	}
	if err := s.opts.Mirror.Mirror(ctx, result.Path); err != nil {
		return fmt.Errorf("mirror failed: %w", err)
	}
	return nil
}

// Run retries whole batches until one comes back clean or MaxRetries extra
// attempts have been spent. The results of the last batch are returned
// either way.
func (s *Scheduler) Run(ctx context.Context, wikis []string) ([]okapi.Result, error) {
	attempt := uint(0)
	for attempt <= s.opts.MaxRetries {
		ok, results := s.RunBatch(ctx, wikis)
		s.report(attempt+1, ok, results)
		if ok {
			return results, nil
		}
		attempt++
		if attempt > s.opts.MaxRetries {
			return results, fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, attempt)
		}
		log.Warn().Str("op", "scheduler/run").Msgf("batch had failures, retrying in %s (attempt %d of %d)", s.opts.RetryWait, attempt+1, s.opts.MaxRetries+1)
		if err := s.sleep(ctx, s.opts.RetryWait); err != nil {
			return results, fmt.Errorf("%w: interrupted after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}
	}
	return nil, ErrRetriesExhausted
}

func (s *Scheduler) report(attempt uint, ok bool, results []okapi.Result) {
	if s.opts.StatusPath == "" {
		return
	}
	report := newStatusReport(s.opts.RunID, s.opts.RunDate, attempt, ok, results)
	if err := writeStatus(s.opts.StatusPath, report); err != nil {
		log.Warn().Str("op", "scheduler/status").Err(err).Msg("failed to write status report")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
