package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dormscore/internal/errors"
	"dormscore/internal/logging"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

const utf8BOM = "\ufeff"

// DataReader handles reading CSV and Excel score exports
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	encoding encoding.Encoding
	log      *slog.Logger
}

// LookupEncoding resolves a WHATWG encoding label such as "gbk" or "utf-8".
func LookupEncoding(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("unknown input encoding %q: %w", label, err))
	}
	return enc, nil
}

// NewDataReader creates a reader for a CSV (decoded with enc) or xlsx file.
func NewDataReader(filePath string, enc encoding.Encoding) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		encoding: enc,
		log:      logging.Component("reader"),
	}
}

// ReadData reads the file into a TableData
func (r *DataReader) ReadData() (*TableData, error) {
	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read %s", r.filePath), err)
	}

	var rows [][]string
	readStart := time.Now()
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows(raw)
	default:
		rows, err = r.readCSVRows(raw)
	}
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to parse %s", filepath.Base(r.filePath)), err)
	}
	r.log.Debug("file read", "file", filepath.Base(r.filePath), "rows", len(rows),
		"elapsed_ms", float64(time.Since(readStart).Nanoseconds())/1e6)

	data := r.processRows(rows)
	data.Path = r.filePath
	data.Raw = raw
	return data, nil
}

// readCSVRows decodes the legacy text encoding and splits CSV records
func (r *DataReader) readCSVRows(raw []byte) ([][]string, error) {
	var src io.Reader = bytes.NewReader(raw)
	if r.encoding != nil {
		src = transform.NewReader(src, r.encoding.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// readExcelRows reads the first worksheet of an xlsx export
func (r *DataReader) readExcelRows(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// processRows converts raw string rows into TableData. A file with only a
// header row yields zero rows.
func (r *DataReader) processRows(rows [][]string) *TableData {
	if len(rows) == 0 {
		return &TableData{}
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &TableData{
		Headers: headers,
		Rows:    dataRows,
	}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
