package source

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/quehaypahacer/agenda-ingest/internal/event"
)

var embeddedArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// Repair cleans the superficial damage seen in harvested payloads: a
// leading byte-order mark, stray whitespace, concatenated array fragments
// ("][" back-to-back), and non-array text with an embedded array.
func Repair(txt string) string {
	txt = strings.TrimPrefix(txt, "\ufeff")
	txt = strings.TrimSpace(txt)
	if strings.Contains(txt, "][") {
		txt = strings.ReplaceAll(txt, "][", ",")
	}
	if !strings.HasPrefix(txt, "[") {
		if m := embeddedArrayPattern.FindString(txt); m != "" {
			txt = m
		}
	}
	return txt
}

var literalReplacer = strings.NewReplacer(
	"'", `"`,
	"None", "null",
	"True", "true",
	"False", "false",
)

// lenientDecode handles payloads written as literal expressions rather
// than JSON: single-quoted strings and None/True/False constants. Only
// attempted after a strict parse fails.
func lenientDecode(txt string) ([]event.RawRecord, error) {
	var recs []event.RawRecord
	if err := json.Unmarshal([]byte(literalReplacer.Replace(txt)), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
