package summary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumen.log")
	l := NewLog(path)

	ts := time.Date(2025, time.November, 10, 8, 30, 0, 0, time.Local)
	if err := l.AppendSource(ts, "idartes", 12, 3); err != nil {
		t.Fatal(err)
	}
	run := NewRun("run-1", ts, ts.Add(90*time.Second), StatusOK)
	if err := l.AppendRun(run); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(b)
	if !strings.Contains(content, "[2025-11-10 08:30:00] idartes: 12 validos / 3 invalidos") {
		t.Errorf("missing source line in:\n%s", content)
	}
	if !strings.Contains(content, `"status":"OK"`) {
		t.Errorf("missing run line in:\n%s", content)
	}

	runs, err := l.RunsSince(ts.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].RunID != "run-1" || runs[0].DurationSec != 90 {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestRunsSinceFiltersWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumen.log")
	l := NewLog(path)

	old := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local)
	recent := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.Local)
	l.AppendRun(NewRun("old", old, old.Add(time.Minute), StatusOK))
	l.AppendRun(NewRun("recent", recent, recent.Add(time.Minute), StatusFailed))

	runs, err := l.RunsSince(recent.Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunID != "recent" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestRunsSinceTolerance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumen.log")
	body := strings.Join([]string{
		"[2025-11-10 08:30:00] idartes: 12 validos / 3 invalidos",
		"{not valid json}",
		`{"run_id":"ok","ts_start":"2025-11-10 08:30:00","ts_end":"2025-11-10 08:31:00","duration_sec":60,"status":"OK"}`,
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	runs, err := NewLog(path).RunsSince(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunID != "ok" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestRunsSinceMissingFile(t *testing.T) {
	runs, err := NewLog(filepath.Join(t.TempDir(), "nope.log")).RunsSince(time.Now())
	if err != nil || runs != nil {
		t.Errorf("got %v, %v; want nil, nil", runs, err)
	}
}
