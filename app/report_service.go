package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dormscore/adapters/excel"
	"dormscore/domain/core"
	"dormscore/domain/score"
	"dormscore/internal/dataset"
	"dormscore/internal/errors"
	"dormscore/internal/logging"
	"dormscore/internal/profiling"
	"dormscore/ports"
)

// Conversion outcomes recorded in a RunResult.
const (
	ConversionNotRequested = "not_requested"
	ConversionDone         = "converted"
	ConversionSkipped      = "skipped"
	ConversionFailed       = "failed"
)

const (
	workbookExt = ".xlsx"
	pdfExt      = ".pdf"
	lockPrefix  = "~$"
)

// RunRequest selects what a report run produces.
type RunRequest struct {
	Folder          string
	PDF             bool
	Overwrite       bool
	Clean           bool
	AcceptAnomalies bool
}

// RunResult summarizes one report run.
type RunResult struct {
	RunID           core.RunID              `json:"run_id" yaml:"run_id"`
	Title           string                  `json:"title" yaml:"title"`
	Output          string                  `json:"output" yaml:"output"`
	PDF             string                  `json:"pdf,omitempty" yaml:"pdf,omitempty"`
	Files           []string                `json:"files" yaml:"files"`
	RowsRead        int                     `json:"rows_read" yaml:"rows_read"`
	Duplicates      int                     `json:"duplicates" yaml:"duplicates"`
	Records         int                     `json:"records" yaml:"records"`
	Pages           int                     `json:"pages" yaml:"pages"`
	Anomalies       []score.Anomaly         `json:"anomalies" yaml:"anomalies"`
	Clean           bool                    `json:"clean" yaml:"clean"`
	Conversion      string                  `json:"conversion" yaml:"conversion"`
	ConversionError string                  `json:"conversion_error,omitempty" yaml:"conversion_error,omitempty"`
	Removed         []string                `json:"removed,omitempty" yaml:"removed,omitempty"`
	Scores          *profiling.ScoreSummary `json:"scores,omitempty" yaml:"scores,omitempty"`
	InputHash       core.InputHash          `json:"input_hash" yaml:"input_hash"`
	Warnings        []string                `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Duration        time.Duration           `json:"duration_ns" yaml:"duration"`
}

// ConvertedFile is the outcome of converting one existing workbook.
type ConvertedFile struct {
	Source string `json:"source" yaml:"source"`
	PDF    string `json:"pdf" yaml:"pdf"`
	Status string `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ConvertResult summarizes a conversion-only run.
type ConvertResult struct {
	RunID core.RunID      `json:"run_id" yaml:"run_id"`
	Files []ConvertedFile `json:"files" yaml:"files"`
}

// ReportService wires ingestion, rendering and conversion into one run.
type ReportService struct {
	ingestor  *dataset.Ingestor
	renderer  *excel.Renderer
	converter ports.ConverterPort
	log       *slog.Logger
}

// NewReportService creates a report service. converter may be nil when no PDF
// is ever requested.
func NewReportService(ingestor *dataset.Ingestor, renderer *excel.Renderer, converter ports.ConverterPort) *ReportService {
	return &ReportService{
		ingestor:  ingestor,
		renderer:  renderer,
		converter: converter,
		log:       logging.Component("report"),
	}
}

// OutputName returns the workbook file name for a report title.
func OutputName(title string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(title))
	if name == "" {
		name = "report"
	}
	return name + workbookExt
}

// Run builds the weekly report of req.Folder. An existing workbook is never
// touched unless req.Overwrite is set. Conversion failures are recorded in the
// result and do not fail the run.
func (s *ReportService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	start := time.Now()
	runID := core.NewRunID()
	log := s.log.With("run", runID.String())

	ingested, err := s.ingestor.Ingest(ctx, req.Folder)
	if err != nil {
		return nil, err
	}

	title := ingested.Records[0].Title()
	output := filepath.Join(req.Folder, OutputName(title))
	if !req.Overwrite {
		if _, err := os.Stat(output); err == nil {
			return nil, errors.OutputExists(output)
		} else if !os.IsNotExist(err) {
			return nil, errors.IOError(fmt.Sprintf("failed to check %s", output), err)
		}
	}

	rendered, err := s.renderer.Render(ingested.Records)
	if err != nil {
		return nil, err
	}
	defer rendered.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := rendered.SaveAs(output); err != nil {
		return nil, err
	}
	log.Info("report written", "file", output, "records", len(ingested.Records), "pages", rendered.Pages)

	scores, err := profiling.SummarizeScores(ingested.Records)
	if err != nil {
		log.Warn("score summary unavailable", "error", err)
	}

	result := &RunResult{
		RunID:      runID,
		Title:      rendered.Title,
		Output:     output,
		Files:      ingested.Files,
		RowsRead:   ingested.RowsRead,
		Duplicates: ingested.Duplicates,
		Records:    len(ingested.Records),
		Pages:      rendered.Pages,
		Anomalies:  rendered.Anomalies,
		Clean:      rendered.Clean(),
		Conversion: ConversionNotRequested,
		Scores:     scores,
		InputHash:  ingested.InputHash,
		Warnings:   ingested.Warnings,
	}
	if !result.Clean {
		log.Warn("report contains empty cells", "count", len(result.Anomalies))
	}
	proceed := result.Clean || req.AcceptAnomalies

	if req.PDF {
		switch {
		case !proceed:
			result.Conversion = ConversionSkipped
			result.Warnings = append(result.Warnings, "pdf skipped: report contains empty cells")
			log.Warn("pdf skipped, rerun with --accept-anomalies to convert anyway")
		default:
			file := s.convert(ctx, output, req.Overwrite)
			result.Conversion = file.Status
			result.ConversionError = file.Error
			if file.Status == ConversionDone {
				result.PDF = file.PDF
			}
		}
	}

	if req.Clean {
		if proceed {
			result.Removed = s.removeInputs(ingested.Files)
		} else {
			result.Warnings = append(result.Warnings, "clean skipped: report contains empty cells")
			log.Warn("clean skipped, rerun with --accept-anomalies to remove inputs anyway")
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// ConvertExisting converts every workbook in folder to PDF. Office lock files
// are ignored and an existing PDF is kept unless overwrite is set.
func (s *ReportService) ConvertExisting(ctx context.Context, folder string, overwrite bool) (*ConvertResult, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to list %s", folder), err)
	}

	result := &ConvertResult{RunID: core.NewRunID()}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, lockPrefix) || !strings.EqualFold(filepath.Ext(name), workbookExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, s.convert(ctx, filepath.Join(folder, name), overwrite))
	}
	if len(result.Files) == 0 {
		return nil, errors.EmptyInput(fmt.Sprintf("no %s files found in %s", workbookExt, folder))
	}
	return result, nil
}

func (s *ReportService) convert(ctx context.Context, src string, overwrite bool) ConvertedFile {
	dst := strings.TrimSuffix(src, filepath.Ext(src)) + pdfExt
	file := ConvertedFile{Source: src, PDF: dst}

	if s.converter == nil {
		file.Status = ConversionFailed
		file.Error = "no converter configured"
		s.log.Warn("pdf conversion unavailable", "file", src)
		return file
	}
	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			file.Status = ConversionSkipped
			s.log.Info("pdf exists, skipping", "file", dst)
			return file
		}
	}

	if err := s.converter.Convert(ctx, src, dst); err != nil {
		file.Status = ConversionFailed
		file.Error = err.Error()
		s.log.Warn("pdf conversion failed", "file", src, "converter", s.converter.Name(), "error", err)
		return file
	}
	file.Status = ConversionDone
	return file
}

func (s *ReportService) removeInputs(files []string) []string {
	removed := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			s.log.Warn("failed to remove input", "file", f, "error", err)
			continue
		}
		removed = append(removed, f)
	}
	s.log.Info("inputs removed", "count", len(removed))
	return removed
}
