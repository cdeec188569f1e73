package event

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateSpan is the outcome of normalizing one free-text date expression.
// Each field is independently optional; "" means the fragment could not be
// resolved. Partial results are expected and never an error.
type DateSpan struct {
	Start string // YYYY-MM-DD
	End   string // YYYY-MM-DD
	Time  string // e.g. "7:30 p.m."
}

// months maps accent-stripped Spanish month names to calendar months.
var months = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var (
	canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern      = regexp.MustCompile(`\d{1,2}[:.]\d{2}\s*(?:a\.?m\.?|p\.?m\.?)?`)
	dayMonthPattern  = regexp.MustCompile(`(\d{1,2})\s+de\s+([a-z]+)`)
	dayPattern       = regexp.MustCompile(`\d{1,2}`)
	yearPattern      = regexp.MustCompile(`\b(\d{4})\b`)
	monthPattern     = regexp.MustCompile(`enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre`)
)

// foldSpanish lowercases, strips the diacritics that appear in Spanish
// month names and keywords, and collapses whitespace. Only used for
// matching; display fields keep the original text.
var diacritics = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

func foldSpanish(s string) string {
	return strings.Join(strings.Fields(diacritics.Replace(strings.ToLower(s))), " ")
}

// NormalizeDate converts a free-text Spanish date expression into a
// canonical DateSpan. Handled shapes, in order: an explicit range
// ("10 al 12 de noviembre"), a date with trailing time
// ("5 de diciembre - 7:30 p.m.") and a simple date ("12 de noviembre").
// Already-canonical YYYY-MM-DD input passes through unchanged.
//
// When the text carries no year, the year is inferred from ref: the
// current year if the date falls on or after ref, the following year
// otherwise (year-end rollover for recurring agendas).
func NormalizeDate(raw string, ref time.Time) DateSpan {
	var out DateSpan
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == NotAvailable {
		return out
	}
	if canonicalPattern.MatchString(trimmed) {
		out.Start, out.End = trimmed, trimmed
		return out
	}

	txt := foldSpanish(trimmed)

	if m := timePattern.FindString(txt); m != "" {
		out.Time = m
	}

	year := 0
	if m := yearPattern.FindStringSubmatch(txt); m != nil {
		year, _ = strconv.Atoi(m[1])
	}

	// Range: take the month from the right-hand fragment; the left-hand
	// fragment may carry only a day.
	if strings.Contains(txt, " al ") {
		parts := strings.SplitN(txt, " al ", 2)
		if m2 := dayMonthPattern.FindStringSubmatch(parts[1]); m2 != nil {
			day2, _ := strconv.Atoi(m2[1])
			month2, ok2 := months[m2[2]]

			var day1 int
			month1, ok1 := time.Month(0), false
			if m1 := dayMonthPattern.FindStringSubmatch(parts[0]); m1 != nil {
				day1, _ = strconv.Atoi(m1[1])
				month1, ok1 = months[m1[2]]
			} else if d := dayPattern.FindString(parts[0]); d != "" {
				day1, _ = strconv.Atoi(d)
				month1, ok1 = month2, ok2
			}

			if ok1 && ok2 && day1 > 0 && day2 > 0 {
				out.Start = resolveDate(day1, month1, year, ref)
				out.End = resolveDate(day2, month2, year, ref)
				return out
			}
		}
		// Not parseable as a range; fall through to the simple shapes.
	}

	// "5 de diciembre - 7:30 p.m." or plain "5 de diciembre". The time
	// fragment never matches the day-month pattern, so one pass covers
	// both shapes.
	if m := dayMonthPattern.FindStringSubmatch(txt); m != nil {
		if month, ok := months[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			out.Start = resolveDate(day, month, year, ref)
			out.End = out.Start
			return out
		}
	}

	// Last resort: first day number plus first recognizable month name
	// anywhere in the text.
	if d := dayPattern.FindString(txt); d != "" {
		if m := monthPattern.FindString(txt); m != "" {
			day, _ := strconv.Atoi(d)
			out.Start = resolveDate(day, months[m], year, ref)
			out.End = out.Start
		}
	}

	return out
}

// resolveDate renders day/month as YYYY-MM-DD. An explicit year wins; with
// none, the year rolls over to the next one when the date already passed
// relative to ref. An impossible day/month combination keeps the reference
// year as-is.
func resolveDate(day int, month time.Month, explicitYear int, ref time.Time) string {
	if explicitYear > 0 {
		return fmt.Sprintf("%04d-%02d-%02d", explicitYear, int(month), day)
	}
	year := ref.Year()
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Month() != month || d.Day() != day {
		return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
	}
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(refDay) {
		year++
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}
