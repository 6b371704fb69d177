package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrConfig marks every failure to load credentials or settings. Callers treat
// it as fatal.
var ErrConfig = errors.New("config error")

type entry struct {
	line  int
	name  string
	value string
}

// readEntries parses a name=value file. Blank lines and lines starting with
// '#' are skipped; any other line without '=' is rejected.
func readEntries(path string) ([]entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrConfig, path, err)
	}
	defer f.Close()

	var entries []entry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: bad format on line %d of %s", ErrConfig, lineNo, path)
		}
		entries = append(entries, entry{
			line:  lineNo,
			name:  strings.TrimSpace(name),
			value: strings.TrimSpace(value),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrConfig, path, err)
	}
	return entries, nil
}
