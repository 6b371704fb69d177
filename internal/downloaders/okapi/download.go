package okapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/okapi-downloader/internal/output"
	"github.com/tanq16/okapi-downloader/internal/utils"
)

// Fetch downloads the dump for one wiki unless its output file is already
// there. It never returns an error; failures are reported through the Result.
//
// An existing output file counts as done without looking at its content, so a
// truncated file from an earlier run is never fetched again.
func (d *Downloader) Fetch(ctx context.Context, wiki string) Result {
	outfile := d.OutfilePath(wiki)
	result := Result{Wiki: wiki, Path: outfile}

	exists, err := utils.FileExists(outfile)
	if err != nil {
		result.Err = fmt.Errorf("error checking output file: %w", err)
		log.Error().Str("op", "okapi/download").Err(result.Err).Msgf("dump retrieval failed for %s", wiki)
		return result
	}
	if exists {
		log.Debug().Str("op", "okapi/download").Msgf("dump for %s already present, skipping", wiki)
		result.Outcome = AlreadyPresent
		return result
	}

	link := d.DumpURL(wiki)
	if d.dryRun {
		log.Info().Str("op", "okapi/download").Msgf("would download: %s", link)
		result.Outcome = Planned
		return result
	}

	log.Debug().Str("op", "okapi/download").Msgf("retrieving dump for %s", wiki)
	start := time.Now()
	written, err := d.streamToFile(ctx, link, outfile)
	result.Bytes = written
	result.Elapsed = time.Since(start)
	if err != nil {
		result.Err = err
		log.Error().Str("op", "okapi/download").Err(err).Msgf("dump retrieval failed for %s", wiki)
		return result
	}
	result.Outcome = Succeeded
	log.Debug().Str("op", "okapi/download").Msgf("retrieved dump for %s (%s at %s)", wiki,
		output.FormatBytes(uint64(written)), output.FormatSpeed(written, result.Elapsed.Seconds()))
	return result
}

// streamToFile copies the body into a temp sibling of outfile and renames it
// into place once the body is complete. The rename is the only commit point;
// on failure the temp file stays behind.
func (d *Downloader) streamToFile(ctx context.Context, link, outfile string) (int64, error) {
	streamCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	body, err := d.transport.Stream(streamCtx, link)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	// the budget runs from the start of streaming
	stall := time.AfterFunc(d.stallBudget, func() { cancel(ErrStallTimeout) })
	defer stall.Stop()

	tempPath := utils.TempPath(outfile)
	outFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("error creating temp file: %w", err)
	}
	written, err := copyChunks(outFile, body)
	if err != nil {
		outFile.Close()
		return written, withCause(streamCtx, err)
	}
	if err := outFile.Sync(); err != nil {
		outFile.Close()
		return written, fmt.Errorf("error syncing temp file: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return written, fmt.Errorf("error closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, outfile); err != nil {
		return written, fmt.Errorf("error renaming (finalizing) output file: %w", err)
	}
	return written, nil
}

func copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buffer := make([]byte, utils.DefaultBufferSize)
	var written int64
	for {
		bytesRead, readErr := src.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := dst.Write(buffer[:bytesRead]); writeErr != nil {
				return written, fmt.Errorf("error writing to temp file: %w", writeErr)
			}
			written += int64(bytesRead)
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, fmt.Errorf("error reading response body: %w", readErr)
		}
	}
}

func withCause(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil && !errors.Is(err, cause) {
		return fmt.Errorf("%w: %w", cause, err)
	}
	return err
}
