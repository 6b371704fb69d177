package output

import (
	"fmt"
	"io"
	"strings"
)

// Row is one line of an end-of-run summary. Status is one of pass, skip,
// pending or fail.
type Row struct {
	Name   string
	Status string
	Detail string
	Err    error
}

func StatusIndicator(status string) string {
	switch status {
	case "pass":
		return successStyle.Render(StyleSymbols["pass"])
	case "fail":
		return errorStyle.Render(StyleSymbols["fail"])
	case "skip":
		return debugStyle.Render(StyleSymbols["bullet"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["info"])
	}
}

func PrintSummary(w io.Writer, title string, rows []Row) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(title))
	var passed, skipped, failed int
	for _, row := range rows {
		switch row.Status {
		case "pass":
			passed++
		case "skip":
			skipped++
		case "fail":
			failed++
		}
		line := fmt.Sprintf("%s%s %s", strings.Repeat(" ", 2), StatusIndicator(row.Status), row.Name)
		if row.Detail != "" {
			line += " " + debugStyle.Render(row.Detail)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat(" ", 2)+success2Style.Render(fmt.Sprintf("Downloaded %d, already present %d of %d", passed, skipped, len(rows))))
	if failed > 0 {
		fmt.Fprintln(w, strings.Repeat(" ", 2)+errorStyle.Render(fmt.Sprintf("Failed %d of %d", failed, len(rows))))
	}
	printErrors(w, rows)
	fmt.Fprintln(w)
}

func printErrors(w io.Writer, rows []Row) {
	var failed []Row
	for _, row := range rows {
		if row.Err != nil {
			failed = append(failed, row)
		}
	}
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat(" ", 2)+errorStyle.Bold(true).Render("Errors:"))
	for i, row := range failed {
		fmt.Fprintf(w, "%s%s %s\n",
			strings.Repeat(" ", 4),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			errorStyle.Render(row.Name))
		fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", 6), errorStyle.Render(fmt.Sprintf("Error: %v", row.Err)))
	}
}
