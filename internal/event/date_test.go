package event

import (
	"testing"
	"time"
)

func ref(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		ref       time.Time
		wantStart string
		wantEnd   string
		wantTime  string
	}{
		{
			name:      "simple date with year inference",
			raw:       "26 de septiembre",
			ref:       ref(2025, time.January, 1),
			wantStart: "2025-09-26",
			wantEnd:   "2025-09-26",
		},
		{
			name:      "simple date rolls over to next year",
			raw:       "26 de septiembre",
			ref:       ref(2025, time.October, 1),
			wantStart: "2026-09-26",
			wantEnd:   "2026-09-26",
		},
		{
			name:      "date equal to reference keeps current year",
			raw:       "1 de octubre",
			ref:       ref(2025, time.October, 1),
			wantStart: "2025-10-01",
			wantEnd:   "2025-10-01",
		},
		{
			name:      "range takes month from right fragment",
			raw:       "10 al 12 de noviembre",
			ref:       ref(2025, time.January, 1),
			wantStart: "2025-11-10",
			wantEnd:   "2025-11-12",
		},
		{
			name:      "range with month on both sides",
			raw:       "30 de octubre al 2 de noviembre",
			ref:       ref(2025, time.January, 1),
			wantStart: "2025-10-30",
			wantEnd:   "2025-11-02",
		},
		{
			name:      "date with trailing time",
			raw:       "5 de diciembre - 7:30 p.m.",
			ref:       ref(2025, time.January, 1),
			wantStart: "2025-12-05",
			wantEnd:   "2025-12-05",
			wantTime:  "7:30 p.m.",
		},
		{
			name:      "explicit year is kept verbatim",
			raw:       "15 de marzo de 2027",
			ref:       ref(2025, time.June, 1),
			wantStart: "2027-03-15",
			wantEnd:   "2027-03-15",
		},
		{
			name:      "accented month resolves",
			raw:       "3 de Marzo",
			ref:       ref(2025, time.January, 1),
			wantStart: "2025-03-03",
			wantEnd:   "2025-03-03",
		},
		{
			name:      "canonical input is idempotent",
			raw:       "2025-09-26",
			ref:       ref(2025, time.October, 1),
			wantStart: "2025-09-26",
			wantEnd:   "2025-09-26",
		},
		{
			name:      "noise around day and month still resolves",
			raw:       "sábado 15 de marzo, Sala Principal",
			ref:       ref(2025, time.January, 1),
			wantStart: "2025-03-15",
			wantEnd:   "2025-03-15",
		},
		{
			name:      "impossible day keeps the reference year",
			raw:       "30 de febrero",
			ref:       ref(2025, time.June, 1),
			wantStart: "2025-02-30",
			wantEnd:   "2025-02-30",
		},
		{
			name: "unknown month name yields nothing",
			raw:  "15 de brumario",
			ref:  ref(2025, time.January, 1),
		},
		{
			name: "sentinel yields nothing",
			raw:  "N/A",
			ref:  ref(2025, time.January, 1),
		},
		{
			name: "empty input yields nothing",
			raw:  "",
			ref:  ref(2025, time.January, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDate(tt.raw, tt.ref)
			if got.Start != tt.wantStart {
				t.Errorf("Start = %q, want %q", got.Start, tt.wantStart)
			}
			if got.End != tt.wantEnd {
				t.Errorf("End = %q, want %q", got.End, tt.wantEnd)
			}
			if got.Time != tt.wantTime {
				t.Errorf("Time = %q, want %q", got.Time, tt.wantTime)
			}
		})
	}
}

func TestNormalizeDateTimeOnly(t *testing.T) {
	got := NormalizeDate("7:00 p.m.", ref(2025, time.January, 1))
	if got.Start != "" || got.End != "" {
		t.Errorf("expected no dates, got start=%q end=%q", got.Start, got.End)
	}
	if got.Time != "7:00 p.m." {
		t.Errorf("Time = %q, want %q", got.Time, "7:00 p.m.")
	}
}

func TestFoldSpanish(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MÚSICA", "musica"},
		{"  Inscripción   previa ", "inscripcion previa"},
		{"Año Nuevo", "ano nuevo"},
	}
	for _, tt := range tests {
		if got := foldSpanish(tt.in); got != tt.want {
			t.Errorf("foldSpanish(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
