package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/tanq16/okapi-downloader/internal/downloaders/okapi"
	"github.com/tanq16/okapi-downloader/internal/scheduler"
)

func TestRowsFromResults(t *testing.T) {
	rows := rowsFromResults([]okapi.Result{
		{Wiki: "abwiki", Outcome: okapi.Succeeded, Bytes: 2048, Elapsed: 1500 * time.Millisecond},
		{Wiki: "bewiki", Outcome: okapi.AlreadyPresent},
		{Wiki: "cewiki", Outcome: okapi.Planned},
		{Wiki: "dewiki", Outcome: okapi.Failed, Err: errors.New("boom")},
	})
	want := []string{"pass", "skip", "pending", "fail"}
	for i, row := range rows {
		if row.Status != want[i] {
			t.Errorf("row %s: status %s, want %s", row.Name, row.Status, want[i])
		}
	}
	if rows[0].Detail != "2.00 KB in 1.5s" {
		t.Errorf("unexpected detail %q", rows[0].Detail)
	}
	if rows[3].Err == nil {
		t.Error("failed row should carry its error")
	}
}

func TestRowsFromStatus(t *testing.T) {
	rows := rowsFromStatus(scheduler.StatusReport{Wikis: []scheduler.WikiStatus{
		{Wiki: "abwiki", Outcome: "succeeded", Bytes: 5},
		{Wiki: "bewiki", Outcome: "already-present"},
		{Wiki: "cewiki", Outcome: "failed", Error: "read timed out"},
	}})
	if rows[0].Status != "pass" || rows[1].Status != "skip" || rows[2].Status != "fail" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if rows[2].Err == nil || rows[2].Err.Error() != "read timed out" {
		t.Errorf("unexpected error %v", rows[2].Err)
	}
}
