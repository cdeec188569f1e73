package event

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// NotAvailable is the placeholder the scrapers emit when a field could not
// be read from the page. Validation and normalization treat it as absent.
const NotAvailable = "N/A"

// RawRecord is one event exactly as harvested from a source. The key set
// varies per source (tipo, nombre, fecha, fecha_inicio, fecha_fin, hora,
// ingreso, url) and any field may be missing or hold NotAvailable.
type RawRecord map[string]any

// String returns the value for key rendered as a string, or "" when the
// key is missing or nil.
func (r RawRecord) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Has reports whether key holds a usable value (present, non-empty, not
// the NotAvailable sentinel).
func (r RawRecord) Has(key string) bool {
	s := r.String(key)
	return s != "" && s != NotAvailable
}

// BestDate returns the key date text for a record: fecha_inicio when a
// source provides one, otherwise the plain fecha field. Returns "" when
// neither is usable.
func (r RawRecord) BestDate() string {
	if r.Has("fecha_inicio") {
		return r.String("fecha_inicio")
	}
	if r.Has("fecha") {
		return r.String("fecha")
	}
	return ""
}

// Record is a normalized event ready for ingestion. It exists for one run
// only: it is either inserted as a new row or discarded.
type Record struct {
	Name      string
	Category  string
	DateStart string // canonical YYYY-MM-DD, "" when unresolved
	DateEnd   string // defaults to DateStart when the source has no range
	TimeOfDay string
	Admission string
	City      string
	Tags      []string
	Raw       RawRecord // original payload enriched with Tags
}

// HasDate reports whether at least one date resolved to a real calendar
// date. Records without one never reach the store.
func (rec Record) HasDate() bool {
	return rec.DateStart != "" || rec.DateEnd != ""
}

// RawJSON renders the enriched raw payload as text for the audit column.
func (rec Record) RawJSON() string {
	b, err := json.Marshal(rec.Raw)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Enrich builds the normalized Record for one validated raw event. The
// city comes from source configuration, never from the payload. ref is the
// "current" date used for year inference.
func Enrich(raw RawRecord, city string, ref time.Time) Record {
	span := NormalizeDate(raw.BestDate(), ref)
	if raw.Has("fecha_fin") {
		if end := NormalizeDate(raw.String("fecha_fin"), ref); end.Start != "" {
			span.End = end.Start
		}
	}
	if span.End == "" {
		span.End = span.Start
	}
	if span.Time == "" && raw.Has("hora") {
		span.Time = raw.String("hora")
	}

	rec := Record{
		Name:      raw.String("nombre"),
		Category:  InferCategory(raw),
		DateStart: span.Start,
		DateEnd:   span.End,
		TimeOfDay: span.Time,
		Admission: InferAdmission(raw),
		City:      city,
	}
	rec.Tags = mergeTags(raw, rec.Category, rec.Admission, city)
	rec.Raw = enrichRaw(raw, rec.Tags)
	return rec
}

// mergeTags unions any tags already on the payload with the inferred
// category, admission kind and city. Sorted for determinism.
func mergeTags(raw RawRecord, category, admission, city string) []string {
	set := map[string]bool{category: true, admission: true}
	if city != "" {
		set[city] = true
	}
	if existing, ok := raw["tags"].([]any); ok {
		for _, t := range existing {
			if s, ok := t.(string); ok && s != "" {
				set[s] = true
			}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// enrichRaw copies the payload and attaches the tag set, leaving the
// source schema otherwise untouched.
func enrichRaw(raw RawRecord, tags []string) RawRecord {
	out := make(RawRecord, len(raw)+1)
	for k, v := range raw {
		out[k] = v
	}
	out["tags"] = tags
	return out
}
