package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dormscore/adapters/excel"
	"dormscore/domain/core"
	"dormscore/domain/score"
	"dormscore/internal/errors"
	"dormscore/internal/logging"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
)

const defaultWorkers = 4

// IngestConfig selects the input files of a folder.
type IngestConfig struct {
	Prefix    string // files are named <Prefix>_*.<Extension>
	Extension string
	Encoding  encoding.Encoding
	Workers   int // files decoded in parallel; merge order stays by file name
}

// IngestResult is the consolidated record set of one folder.
type IngestResult struct {
	Files      []string       `json:"files"`
	RowsRead   int            `json:"rows_read"`
	Duplicates int            `json:"duplicates"`
	Records    []score.Record `json:"-"`
	InputHash  core.InputHash `json:"input_hash"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// Ingestor reads, merges and orders the weekly score exports of a folder.
type Ingestor struct {
	cfg    IngestConfig
	merger *Merger
	log    *slog.Logger
}

// NewIngestor creates an ingestor that keeps the first record per key.
func NewIngestor(cfg IngestConfig) *Ingestor {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	log := logging.Component("ingest")
	return &Ingestor{
		cfg: cfg,
		merger: NewMerger(&MergeConfig{ProgressCallback: func(progress float64, message string) {
			log.Debug(message, "progress", progress)
		}}),
		log: log,
	}
}

// FindInputs lists matching files in folder, sorted by file name.
func (in *Ingestor) FindInputs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to list %s", folder), err)
	}

	prefix := in.cfg.Prefix + "_"
	suffix := "." + strings.TrimPrefix(in.cfg.Extension, ".")
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		files = append(files, filepath.Join(folder, name))
	}
	return files, nil
}

// Ingest reads every matching file of folder into one deduplicated, sorted
// record set. It fails with an EMPTY_INPUT error when nothing matches or the
// files hold no rows.
func (in *Ingestor) Ingest(ctx context.Context, folder string) (*IngestResult, error) {
	files, err := in.FindInputs(folder)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.EmptyInput(fmt.Sprintf("no %s_*.%s files found in %s",
			in.cfg.Prefix, strings.TrimPrefix(in.cfg.Extension, "."), folder))
	}

	tables, err := in.readAll(ctx, files)
	if err != nil {
		return nil, err
	}

	contents := make(map[string][]byte, len(files))
	rowsRead := 0
	for i, data := range tables {
		in.log.Info("file loaded", "file", filepath.Base(files[i]), "rows", len(data.Rows))
		contents[filepath.Base(files[i])] = data.Raw
		rowsRead += len(data.Rows)
	}

	if rowsRead == 0 {
		return nil, errors.EmptyInput(fmt.Sprintf("%d input files in %s contain no rows", len(files), folder))
	}

	merged, err := in.merger.Merge(tables)
	if err != nil {
		return nil, err
	}
	for _, w := range merged.Warnings {
		in.log.Warn(w)
	}
	in.log.Info("records merged", "rows", rowsRead, "unique", merged.RowCount,
		"duplicates", merged.DuplicatesFound)

	return &IngestResult{
		Files:      files,
		RowsRead:   rowsRead,
		Duplicates: merged.DuplicatesFound,
		Records:    merged.Records,
		InputHash:  core.ComputeInputHash(contents),
		Warnings:   merged.Warnings,
	}, nil
}

// readAll decodes files concurrently. tables[i] belongs to files[i].
func (in *Ingestor) readAll(ctx context.Context, files []string) ([]*excel.TableData, error) {
	tables := make([]*excel.TableData, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(in.cfg.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := excel.NewDataReader(path, in.cfg.Encoding).ReadData()
			if err != nil {
				return err
			}
			tables[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
