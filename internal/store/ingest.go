package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/quehaypahacer/agenda-ingest/internal/config"
	"github.com/quehaypahacer/agenda-ingest/internal/event"
)

// TableSpec describes how one source's records map onto its destination
// table: the column shape and the natural-key columns used for dedup.
// Sources differ only in their spec, never in engine code paths.
type TableSpec struct {
	Table      string
	NaturalKey []string
	Columns    []string
}

// SpecFor builds the table spec from source configuration.
func SpecFor(src config.Source) TableSpec {
	return TableSpec{
		Table:      src.Table,
		NaturalKey: src.NaturalKey,
		Columns:    src.Columns,
	}
}

// Row maps a record onto the table's column shape. Absent normalized
// fields become SQL NULL, never "" or the N/A sentinel.
func (s TableSpec) Row(rec event.Record) goqu.Record {
	row := make(goqu.Record, len(s.Columns))
	for _, col := range s.Columns {
		row[col] = columnValue(col, rec)
	}
	return row
}

// keyValues returns the natural-key column values for a record, in the
// spec's column order.
func (s TableSpec) keyValues(rec event.Record) goqu.Ex {
	ex := make(goqu.Ex, len(s.NaturalKey))
	for _, col := range s.NaturalKey {
		ex[col] = columnValue(col, rec)
	}
	return ex
}

func columnValue(col string, rec event.Record) any {
	switch col {
	case "tipo":
		return rec.Category
	case "nombre":
		return rec.Name
	case "fecha_inicio", "fecha":
		return nullable(rec.DateStart)
	case "fecha_fin":
		return nullable(rec.DateEnd)
	case "hora":
		return nullable(rec.TimeOfDay)
	case "ingreso":
		return rec.Admission
	case "ciudad":
		return rec.City
	case "raw":
		return rec.RawJSON()
	default:
		if rec.Raw.Has(col) {
			return rec.Raw.String(col)
		}
		return nil
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Ingestor writes record batches, adapting its dedup strategy to whether
// the destination table guarantees uniqueness over the natural key.
type Ingestor struct {
	pool    *pgxpool.Pool
	dialect goqu.DialectWrapper
	unique  map[string]bool // table name -> probe outcome, one probe per run
}

// NewIngestor creates an Ingestor on an open pool.
func NewIngestor(pool *pgxpool.Pool) *Ingestor {
	return &Ingestor{
		pool:    pool,
		dialect: goqu.Dialect("postgres"),
		unique:  make(map[string]bool),
	}
}

// InsertBatch writes one source's records in a single transaction and
// returns how many rows were actually inserted. Duplicates by natural key
// are silently skipped. Any error rolls the whole batch back and is fatal
// for the run.
func (in *Ingestor) InsertBatch(ctx context.Context, spec TableSpec, recs []event.Record) (int, error) {
	guaranteed, err := in.hasUniqueKey(ctx, spec)
	if err != nil {
		return 0, err
	}
	log.Debug().
		Str("table", spec.Table).
		Bool("unique_key", guaranteed).
		Msg("dedup strategy selected")

	tx, err := in.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction for %s: %w", spec.Table, err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, rec := range recs {
		var n int
		if guaranteed {
			n, err = in.insertIgnoringConflict(ctx, tx, spec, rec)
		} else {
			n, err = in.insertIfAbsent(ctx, tx, spec, rec)
		}
		if err != nil {
			return 0, err
		}
		inserted += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing batch for %s: %w", spec.Table, err)
	}
	return inserted, nil
}

// insertIgnoringConflict is the guaranteed path: the store itself enforces
// at-most-one row per key, safe under concurrent writers.
func (in *Ingestor) insertIgnoringConflict(ctx context.Context, tx pgx.Tx, spec TableSpec, rec event.Record) (int, error) {
	sql, args, err := in.dialect.Insert(spec.Table).
		Prepared(true).
		Rows(spec.Row(rec)).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building insert for %s: %w", spec.Table, err)
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", spec.Table, err)
	}
	return int(tag.RowsAffected()), nil
}

// insertIfAbsent is the fallback path when no usable unique index exists:
// check for an existing row by natural key, then insert. Two concurrent
// runs can both pass the check before either commits and produce a
// duplicate; that limitation is accepted, the orchestrator must not run
// the same source concurrently.
func (in *Ingestor) insertIfAbsent(ctx context.Context, tx pgx.Tx, spec TableSpec, rec event.Record) (int, error) {
	sql, args, err := in.dialect.From(spec.Table).
		Prepared(true).
		Select(goqu.L("1")).
		Where(spec.keyValues(rec)).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building existence check for %s: %w", spec.Table, err)
	}

	var one int
	err = tx.QueryRow(ctx, sql, args...).Scan(&one)
	switch {
	case err == nil:
		return 0, nil // duplicate, skip
	case !errors.Is(err, pgx.ErrNoRows):
		return 0, fmt.Errorf("checking existence in %s: %w", spec.Table, err)
	}

	sql, args, err = in.dialect.Insert(spec.Table).
		Prepared(true).
		Rows(spec.Row(rec)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building insert for %s: %w", spec.Table, err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", spec.Table, err)
	}
	return 1, nil
}

const uniqueIndexSQL = `
SELECT array_agg(a.attname::text ORDER BY a.attname)
FROM pg_index i
JOIN pg_class c ON c.oid = i.indrelid
JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY (i.indkey)
WHERE c.relname = $1 AND i.indisunique
GROUP BY i.indexrelid`

// hasUniqueKey probes whether the table exposes a unique index over
// exactly the natural-key columns. Probed once per table per run.
func (in *Ingestor) hasUniqueKey(ctx context.Context, spec TableSpec) (bool, error) {
	if got, ok := in.unique[spec.Table]; ok {
		return got, nil
	}

	rows, err := in.pool.Query(ctx, uniqueIndexSQL, spec.Table)
	if err != nil {
		return false, fmt.Errorf("probing unique indexes on %s: %w", spec.Table, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var cols []string
		if err := rows.Scan(&cols); err != nil {
			return false, fmt.Errorf("scanning index probe for %s: %w", spec.Table, err)
		}
		if sameColumns(cols, spec.NaturalKey) {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("probing unique indexes on %s: %w", spec.Table, err)
	}

	in.unique[spec.Table] = found
	return found, nil
}

// Count returns the number of rows currently stored for one table.
func (in *Ingestor) Count(ctx context.Context, table string) (int64, error) {
	sql, args, err := in.dialect.From(table).Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building count for %s: %w", table, err)
	}
	var n int64
	if err := in.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// sameColumns compares two column sets ignoring order.
func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
