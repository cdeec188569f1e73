// Package summary maintains the run summary artifact: a local append-only
// log mixing human-readable per-source lines with one structured JSON line
// per run, consumed later by the metrics command.
package summary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Timestamps in the log use this layout.
const timeLayout = "2006-01-02 15:04:05"

// Run statuses recorded in the structured line.
const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
)

// Run is the structured record of one whole run.
type Run struct {
	RunID       string  `json:"run_id"`
	TsStart     string  `json:"ts_start"`
	TsEnd       string  `json:"ts_end"`
	DurationSec float64 `json:"duration_sec"`
	Status      string  `json:"status"`
}

// NewRun builds the structured record from run boundaries.
func NewRun(id string, start, end time.Time, status string) Run {
	return Run{
		RunID:       id,
		TsStart:     start.Format(timeLayout),
		TsEnd:       end.Format(timeLayout),
		DurationSec: float64(end.Sub(start).Milliseconds()) / 1000,
		Status:      status,
	}
}

// Log appends to and reads back the summary file.
type Log struct {
	path string
}

// NewLog creates a Log for the file at path. The file is created on first
// append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// AppendSource records one source's validation counts:
// "[ts] <source>: <N> validos / <M> invalidos".
func (l *Log) AppendSource(ts time.Time, source string, valid, invalid int) error {
	line := fmt.Sprintf("[%s] %s: %d validos / %d invalidos",
		ts.Format(timeLayout), source, valid, invalid)
	return l.append(line)
}

// AppendRun records the structured line for one whole run.
func (l *Log) AppendRun(run Run) error {
	b, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	return l.append(string(b))
}

func (l *Log) append(line string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening summary log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("appending to summary log: %w", err)
	}
	return nil
}

// RunsSince returns the structured run lines whose start timestamp is at
// or after since. Per-source text lines and unparseable lines are skipped.
// A missing log file yields an empty result.
func (l *Log) RunsSince(since time.Time) ([]Run, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening summary log: %w", err)
	}
	defer f.Close()

	var runs []Run
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		var run Run
		if err := json.Unmarshal([]byte(line), &run); err != nil {
			continue
		}
		ts, err := time.ParseInLocation(timeLayout, run.TsStart, time.Local)
		if err != nil || ts.Before(since) {
			continue
		}
		runs = append(runs, run)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading summary log: %w", err)
	}
	return runs, nil
}
