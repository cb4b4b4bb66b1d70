// Package office converts rendered workbooks to PDF with a headless
// LibreOffice process.
package office

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"dormscore/adapters/excel"
	"dormscore/internal/errors"
	"dormscore/internal/logging"

	"github.com/xuri/excelize/v2"
)

const (
	serviceName = "libreoffice"
	waitDelay   = 5 * time.Second
)

// Config holds the office binary and the print layout applied before conversion.
type Config struct {
	Binary  string
	Timeout time.Duration
	Print   excel.PrintSetup
}

// LibreOfficeConverter implements ports.ConverterPort with soffice.
type LibreOfficeConverter struct {
	cfg Config
	log *slog.Logger
}

// NewLibreOfficeConverter creates a converter
func NewLibreOfficeConverter(cfg Config) *LibreOfficeConverter {
	if cfg.Binary == "" {
		cfg.Binary = "soffice"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &LibreOfficeConverter{cfg: cfg, log: logging.Component("convert")}
}

func (c *LibreOfficeConverter) Name() string { return serviceName }

// Convert stages a copy of src with print settings applied, converts it in a
// private temp dir and copies the PDF to dst. Every failure is an
// EXTERNAL_CONVERSION error.
func (c *LibreOfficeConverter) Convert(ctx context.Context, src, dst string) error {
	bin, err := exec.LookPath(c.cfg.Binary)
	if err != nil {
		return errors.ExternalConversion(serviceName, fmt.Errorf("%s is not available: %w", c.cfg.Binary, err))
	}

	work, err := os.MkdirTemp("", "dormscore-convert-")
	if err != nil {
		return errors.ExternalConversion(serviceName, err)
	}
	defer os.RemoveAll(work)

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	staged := filepath.Join(work, stem+".xlsx")
	if err := stageWorkbook(src, staged, c.cfg.Print); err != nil {
		return errors.ExternalConversion(serviceName, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	profile := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(work, "profile"))}
	cmd := exec.CommandContext(ctx, bin,
		"--headless",
		"--norestore",
		"-env:UserInstallation="+profile.String(),
		"--convert-to", "pdf",
		"--outdir", work,
		staged,
	)
	cmd.WaitDelay = waitDelay

	start := time.Now()
	out, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if stderrors.Is(ctxErr, context.DeadlineExceeded) {
			return errors.ExternalConversion(serviceName, fmt.Errorf("timed out after %s", c.cfg.Timeout))
		}
		return errors.ExternalConversion(serviceName, ctxErr)
	}
	if err != nil {
		return errors.ExternalConversion(serviceName, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))))
	}

	produced := filepath.Join(work, stem+".pdf")
	if err := copyFile(produced, dst); err != nil {
		return errors.ExternalConversion(serviceName, fmt.Errorf("no PDF produced: %w", err))
	}

	c.log.Info("pdf written", "file", dst, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// stageWorkbook copies src to dst with the print setup applied to every sheet.
func stageWorkbook(src, dst string, setup excel.PrintSetup) error {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		if err := excel.ApplyPrintSetup(f, sheet, setup); err != nil {
			return err
		}
	}
	return f.SaveAs(dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
