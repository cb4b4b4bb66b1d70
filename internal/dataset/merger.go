// Package dataset consolidates weekly score exports into one sorted record set.
//
// Exports are small (a few hundred beds per building), so merging happens
// fully in memory: tables are concatenated in file-name order, projected to
// the six report columns, deduplicated on (building, room, bed) and sorted
// by room then bed.
package dataset

import (
	"fmt"
	"time"

	"dormscore/adapters/excel"
	"dormscore/domain/score"
	"dormscore/internal/errors"
)

// MergeConfig holds configuration for merge operations
type MergeConfig struct {
	ProgressCallback func(progress float64, message string)
}

// MergeResult contains the result of a merge operation
type MergeResult struct {
	Records         []score.Record `json:"-"`
	RowCount        int            `json:"row_count"`
	DuplicatesFound int            `json:"duplicates_found,omitempty"`
	ExecutionTime   time.Duration  `json:"execution_time"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// Merger concatenates, projects, deduplicates and sorts parsed tables
type Merger struct {
	config *MergeConfig
}

// NewMerger creates a merger. config may be nil.
func NewMerger(config *MergeConfig) *Merger {
	if config == nil {
		config = &MergeConfig{}
	}
	return &Merger{config: config}
}

// requiredColumns are the projected field headers as strings.
func requiredColumns() []string {
	cols := make([]string, len(score.ProjectedFields))
	for i, f := range score.ProjectedFields {
		cols[i] = string(f)
	}
	return cols
}

// Merge combines tables in the given order. Every table must carry the six
// projected columns; other columns are dropped.
func (m *Merger) Merge(tables []*excel.TableData) (*MergeResult, error) {
	startTime := time.Now()
	m.reportProgress(0, "projecting tables")

	required := requiredColumns()
	var all []score.Record
	for _, t := range tables {
		if missing := t.MissingColumns(required); len(missing) > 0 {
			return nil, errors.InvalidInput(
				fmt.Sprintf("%s is missing columns %v", t.Path, missing), nil)
		}
		for _, row := range t.Rows {
			all = append(all, project(row))
		}
	}

	m.reportProgress(50, "removing duplicates")
	records, duplicates := Deduplicate(all)

	m.reportProgress(90, "sorting")
	score.Sort(records)

	res := &MergeResult{
		Records:         records,
		RowCount:        len(records),
		DuplicatesFound: duplicates,
		ExecutionTime:   time.Since(startTime),
	}
	if titles := distinctTitles(records); len(titles) > 1 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("records span %d building/week combinations %v; report is titled %q", len(titles), titles, titles[0]))
	}

	m.reportProgress(100, "merge complete")
	return res, nil
}

// project keeps the six report fields of a raw row and normalizes the note.
func project(row excel.RawRowData) score.Record {
	rec := score.Record{
		Building: score.CleanValue(row[string(score.FieldBuilding)]),
		Week:     score.CleanValue(row[string(score.FieldWeek)]),
		Room:     score.CleanValue(row[string(score.FieldRoom)]),
		Bed:      score.CleanValue(row[string(score.FieldBed)]),
		Score:    score.CleanValue(row[string(score.FieldScore)]),
		Note:     score.CleanValue(row[string(score.FieldNote)]),
	}
	rec.Note = score.NormalizeNote(rec.Note)
	return rec
}

// Deduplicate keeps the first record per (building, room, bed) key in input
// order. It returns the kept records and the number of dropped rows.
func Deduplicate(records []score.Record) ([]score.Record, int) {
	seen := make(map[score.Key]struct{}, len(records))
	out := make([]score.Record, 0, len(records))
	duplicates := 0
	for _, rec := range records {
		k := rec.Key()
		if _, ok := seen[k]; ok {
			duplicates++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rec)
	}
	return out, duplicates
}

func distinctTitles(records []score.Record) []string {
	seen := make(map[string]bool)
	var titles []string
	for _, r := range records {
		t := r.Title()
		if !seen[t] {
			seen[t] = true
			titles = append(titles, t)
		}
	}
	return titles
}

func (m *Merger) reportProgress(progress float64, message string) {
	if m.config.ProgressCallback != nil {
		m.config.ProgressCallback(progress, message)
	}
}
