// Package pipeline drives normalization and remote lookup over an input
// table and merges the results back onto the original rows.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"nycunits/internal/logger"
	"nycunits/internal/lookup"
	"nycunits/internal/models"
	"nycunits/internal/normalizer"
)

// Reconciliation errors.
var (
	ErrEmptyTable    = errors.New("input table has no rows")
	ErrUnknownColumn = errors.New("key column not present in table")
)

// ProgressFunc receives the completion fraction in [0.0, 1.0] after each
// unit of work (one chunk in batch mode, one row in single-record mode).
type ProgressFunc func(fraction float64)

// Reconciler merges remote unit-count data onto spreadsheet rows.
type Reconciler struct {
	client    lookup.Client
	chunkSize int
	logger    *logger.Logger
}

// NewReconciler creates a reconciler driving the given lookup client.
func NewReconciler(client lookup.Client, chunkSize int, log *logger.Logger) *Reconciler {
	return &Reconciler{
		client:    client,
		chunkSize: chunkSize,
		logger:    log,
	}
}

// Reconcile computes one OutputRecord per input row, in input order.
// Rows whose key normalizes to fewer than the minimum digits never reach the
// remote source. Per-row lookup failures become sentinel display values;
// only an unusable input table is reported as an error.
func (r *Reconciler) Reconcile(ctx context.Context, table *models.Table, keyColumn string, progress ProgressFunc) ([]models.OutputRecord, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, ErrEmptyTable
	}

	col := table.ColumnIndex(keyColumn)
	if col < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, keyColumn)
	}

	if progress == nil {
		progress = func(float64) {}
	}

	// Normalize every key up front; short keys are settled here and never
	// looked up.
	keys := make([]string, len(table.Rows))
	records := make([]models.OutputRecord, len(table.Rows))

	anyValid := false

	for i, row := range table.Rows {
		key := normalizer.CleanBBL(table.Value(i, col))
		keys[i] = key
		records[i] = models.OutputRecord{Row: row, CleanBBL: key}

		if normalizer.ValidKey(key) {
			anyValid = true
		} else {
			records[i].UnitValue = models.SentinelInvalidFormat
		}
	}

	if !anyValid {
		progress(1.0)

		return records, nil
	}

	r.client.Warmup(ctx)

	var results map[string]models.LookupResult
	if r.client.Kind() == lookup.ModeBatch {
		results = r.lookupBatched(ctx, keys, progress)
	} else {
		results = r.lookupRowByRow(ctx, keys, progress)
	}

	for i := range records {
		if records[i].UnitValue != "" {
			continue // already settled as Invalid Format
		}

		records[i].UnitValue = results[keys[i]].DisplayValue()
	}

	progress(1.0)

	return records, nil
}

// lookupBatched deduplicates the valid keys, resolves them one chunk at a
// time, and treats keys the remote source never mentioned as not found.
func (r *Reconciler) lookupBatched(ctx context.Context, keys []string, progress ProgressFunc) map[string]models.LookupResult {
	seen := make(map[string]bool)

	var distinct []string

	for _, key := range keys {
		if !normalizer.ValidKey(key) || seen[key] {
			continue
		}

		seen[key] = true
		distinct = append(distinct, key)
	}

	chunks := chunkKeys(distinct, r.chunkSize)
	results := make(map[string]models.LookupResult, len(distinct))

	for i, chunk := range chunks {
		chunkResults, err := r.client.LookupBatch(ctx, chunk)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("chunk lookup failed", "chunk", i+1, "keys", len(chunk), "error", err)
			}

			for _, key := range chunk {
				results[key] = models.LookupResult{Kind: models.ResultTransient}
			}
		} else {
			for _, key := range chunk {
				if res, ok := chunkResults[key]; ok {
					results[key] = res
				} else {
					results[key] = models.LookupResult{Kind: models.ResultNotFound}
				}
			}
		}

		progress(float64(i+1) / float64(len(chunks)))
	}

	return results
}

// lookupRowByRow resolves every row's key in input order. Duplicate keys are
// looked up again on purpose; single-record strategies mirror one request
// per row.
func (r *Reconciler) lookupRowByRow(ctx context.Context, keys []string, progress ProgressFunc) map[string]models.LookupResult {
	results := make(map[string]models.LookupResult)

	for i, key := range keys {
		if normalizer.ValidKey(key) {
			results[key] = r.client.LookupOne(ctx, key)
		}

		progress(float64(i+1) / float64(len(keys)))
	}

	return results
}

// chunkKeys splits keys into groups of at most size.
func chunkKeys(keys []string, size int) [][]string {
	if size < 1 {
		size = 1
	}

	var chunks [][]string
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, keys[start:end])
	}

	return chunks
}

// OutputTable builds the final table: every original column, in order, plus
// Clean_BBL and the unit-count column.
func OutputTable(src *models.Table, records []models.OutputRecord, unitColumn string) *models.Table {
	columns := make([]string, 0, len(src.Columns)+2)
	columns = append(columns, src.Columns...)
	columns = append(columns, "Clean_BBL", unitColumn)

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, 0, len(columns))
		row = append(row, rec.Row...)

		// Pad short source rows so the appended columns line up.
		for len(row) < len(src.Columns) {
			row = append(row, "")
		}

		row = append(row, rec.CleanBBL, rec.UnitValue)
		rows[i] = row
	}

	return &models.Table{Columns: columns, Rows: rows}
}
