package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"snapvault/internal/store"
)

// promptChooser presents ranked candidates on a terminal and reads the
// operator's pick. Candidates arrive newest first, so 1 is the latest.
type promptChooser struct {
	in  io.Reader
	out io.Writer
}

func (p *promptChooser) ChooseRun(candidates []store.RunInfo) (int, error) {
	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.RunID,
			c.CreatedAt.Local().Format(time.DateTime),
			string(c.Mode),
			strconv.Itoa(c.Total),
			yesNo(c.Finalized),
		})
	}
	fmt.Fprintln(p.out, renderTable(
		[]column{
			{title: "#", numeric: true},
			{title: "Run"},
			{title: "Created"},
			{title: "Mode"},
			{title: "Files", numeric: true},
			{title: "Finalized"},
		},
		rows,
	))
	return p.read(len(candidates))
}

func (p *promptChooser) ChooseReport(candidates []store.ReportInfo) (int, error) {
	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.VerifyID,
			c.CreatedAt.Local().Format(time.DateTime),
			string(c.InputSource),
			strconv.Itoa(c.Summary.Total),
			strconv.Itoa(c.Summary.CleanupEligibleCount()),
		})
	}
	fmt.Fprintln(p.out, renderTable(
		[]column{
			{title: "#", numeric: true},
			{title: "Report"},
			{title: "Created"},
			{title: "Input"},
			{title: "Files", numeric: true},
			{title: "Eligible", numeric: true},
		},
		rows,
	))
	return p.read(len(candidates))
}

func (p *promptChooser) read(count int) (int, error) {
	fmt.Fprintf(p.out, "Select 1-%d (empty = 1): ", count)
	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("read selection: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > count {
		return 0, fmt.Errorf("invalid selection %q", line)
	}
	return n - 1, nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
