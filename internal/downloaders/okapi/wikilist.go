package okapi

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/okapi-downloader/internal/utils"
)

// ResolveWikis asks the export api for every project that has a dump and
// keeps a copy of the raw list in the run directory. The response is a json
// array of objects; each object carrying a non-empty dbName string
// contributes one wiki, others are skipped:
//
//	[{"name": "Авикипедиа", "dbName": "abwiki", "inLanguage": "ab", "size": "9MB"}, ...]
func (d *Downloader) ResolveWikis(ctx context.Context) ([]string, error) {
	wikis, data, err := fetchWikiList(ctx, d.transport, d.settings.WikiListURL)
	if err != nil {
		return nil, err
	}
	d.saveProjectList(data)
	return wikis, nil
}

// ListWikis is ResolveWikis without a Downloader; nothing is written to disk.
func ListWikis(ctx context.Context, transport Transport, listURL string) ([]string, error) {
	wikis, _, err := fetchWikiList(ctx, transport, listURL)
	return wikis, err
}

func fetchWikiList(ctx context.Context, transport Transport, listURL string) ([]string, []byte, error) {
	log.Debug().Str("op", "okapi/wikilist").Msgf("getting %s", listURL)
	data, err := transport.Get(ctx, listURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get wiki list: %w", err)
	}
	wikis, err := parseWikiList(data)
	if err != nil {
		log.Debug().Str("op", "okapi/wikilist").Msgf("got: %.512s", data)
		return nil, nil, err
	}
	log.Debug().Str("op", "okapi/wikilist").Msgf("wiki list has %d entries", len(wikis))
	return wikis, data, nil
}

func parseWikiList(data []byte) ([]string, error) {
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWikiList, err)
	}
	var wikis []string
	for _, entry := range entries {
		if name, ok := entry["dbName"].(string); ok && name != "" {
			wikis = append(wikis, name)
		}
	}
	if len(wikis) == 0 {
		return nil, ErrEmptyWikiList
	}
	return wikis, nil
}

// saveProjectList keeps the raw list next to the dumps for later auditing.
func (d *Downloader) saveProjectList(data []byte) {
	path := filepath.Join(d.outDir, ProjectListName(d.date))
	if err := utils.AtomicWriteFile(path, data); err != nil {
		log.Warn().Str("op", "okapi/wikilist").Err(err).Msg("could not save project list")
	}
}
