package event

// Valid reports whether a raw record meets the minimum completeness rules
// for ingestion: a real name and at least one usable date field. Pure
// predicate, no side effects; rejected records are counted and sampled by
// the caller, never persisted.
func Valid(r RawRecord) bool {
	if !r.Has("nombre") {
		return false
	}
	return r.BestDate() != ""
}
