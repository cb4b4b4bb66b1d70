package testkit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"dormscore/domain/score"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ExportHeader mirrors the column set of the inspection system's export,
// including columns the report drops.
var ExportHeader = []string{"序号", "楼号", "周", "房间", "床位", "总分", "整改意见", "检查人"}

// WriteExport writes records as a CSV export in enc and returns its path.
func WriteExport(dir, name string, enc encoding.Encoding, records []score.Record) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	tw := transform.NewWriter(f, enc.NewEncoder())
	w := csv.NewWriter(tw)
	if err := w.Write(ExportHeader); err != nil {
		return "", err
	}
	for i, r := range records {
		row := []string{strconv.Itoa(i + 1), r.Building, r.Week, r.Room, r.Bed, r.Score, r.Note, "楼长"}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	if err := tw.Close(); err != nil {
		return "", err
	}
	return path, f.Close()
}
