package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1.00 KB",
		5 * 1024 * 1024: "5.00 MB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %s, want %s", in, got, want)
		}
	}
	if got := FormatSpeed(2048, 2); got != "1.00 KB/s" {
		t.Errorf("FormatSpeed = %s", got)
	}
	if got := FormatSpeed(2048, 0); got != "0 B/s" {
		t.Errorf("FormatSpeed with zero elapsed = %s", got)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, "Run 20240301", []Row{
		{Name: "abwiki", Status: "pass", Detail: "5 B"},
		{Name: "bewiki", Status: "fail", Err: errors.New("read timed out")},
		{Name: "cewiki", Status: "skip"},
	})
	out := buf.String()
	for _, want := range []string{"Run 20240301", "abwiki", "Downloaded 1, already present 1 of 3", "Failed 1 of 3", "read timed out"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
