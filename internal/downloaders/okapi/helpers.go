package okapi

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

const DateLayout = "20060102"

func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid run date %q, expected YYYYMMDD", date)
	}
	return nil
}

func RunDir(baseOutDir, date string) string {
	return filepath.Join(baseOutDir, date)
}

func OutfileName(wiki, date string) string {
	return fmt.Sprintf("%s-%s-OKAPI-HTML.json.gz", wiki, date)
}

func ProjectListName(date string) string {
	return fmt.Sprintf("%s-OKAPI-PROJECTLIST.json", date)
}

func StatusName(date string) string {
	return fmt.Sprintf("%s-OKAPI-STATUS.yaml", date)
}

func StatusPath(baseOutDir, date string) string {
	return filepath.Join(RunDir(baseOutDir, date), StatusName(date))
}

func dumpURL(baseDumpURL, wiki string) string {
	return strings.TrimRight(baseDumpURL, "/") + "/" + url.PathEscape(wiki)
}
