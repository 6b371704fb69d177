package okapi

import (
	"context"
	"errors"
	"io"
	"time"
)

// Transport is what the downloader needs from the http layer.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Stream(ctx context.Context, url string) (io.ReadCloser, error)
}

type Outcome int

const (
	Failed Outcome = iota
	AlreadyPresent
	Succeeded
	Planned // dry run, nothing fetched
)

func (o Outcome) String() string {
	switch o {
	case AlreadyPresent:
		return "already-present"
	case Succeeded:
		return "succeeded"
	case Planned:
		return "planned"
	default:
		return "failed"
	}
}

// Result describes what happened to one wiki. Err is set only when Outcome
// is Failed.
type Result struct {
	Wiki    string
	Outcome Outcome
	Err     error
	Path    string
	Bytes   int64
	Elapsed time.Duration
}

var (
	ErrStallTimeout    = errors.New("download exceeded the stall budget")
	ErrInvalidWikiList = errors.New("wiki list is not valid json")
	ErrEmptyWikiList   = errors.New("empty list of wikis retrieved")
)
