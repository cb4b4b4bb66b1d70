package excel

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"dormscore/domain/score"
	"dormscore/internal/errors"
	"dormscore/internal/logging"

	"github.com/xuri/excelize/v2"
)

const (
	feedbackBanner = "勤工大队楼层长分队统一意见邮箱：%s"
	contactBanner  = "如有疑问请联系学生楼长：%s@%s 或登陆家园网查询具体成绩"

	anomalyFill   = "FFC7CE"
	narrowColumn  = 6
	noteColumn    = 25
	titleRow      = 1
	feedbackRow   = 2
	contactRow    = 3
	columnNameRow = 4
)

// columnLabels are the header cells of one column-block.
var columnLabels = []string{"房间", "床位", "总分", "整改意见"}

// RenderOptions holds the banner strings and grid geometry of a report.
type RenderOptions struct {
	ContactLocalPart string
	ContactDomain    string
	FeedbackMailbox  string
	FontFamily       string
	Layout           score.Layout
	Print            PrintSetup
}

// DefaultRenderOptions returns the options of the posted weekly report.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		ContactLocalPart: "xxx",
		ContactDomain:    "mails.tsinghua.edu.cn",
		FeedbackMailbox:  "thu.lczh@gmail.com",
		FontFamily:       "宋体",
		Layout:           score.DefaultLayout(),
		Print:            DefaultPrintSetup(),
	}
}

// Renderer lays sorted score records onto a paginated worksheet.
type Renderer struct {
	opts RenderOptions
	log  *slog.Logger
}

// NewRenderer creates a renderer
func NewRenderer(opts RenderOptions) *Renderer {
	if opts.Layout.PageWidth == 0 {
		opts.Layout = score.DefaultLayout()
	}
	return &Renderer{opts: opts, log: logging.Component("render")}
}

// RenderResult is a rendered workbook plus the anomalies found while filling it.
type RenderResult struct {
	File      *excelize.File
	Sheet     string
	Title     string
	Pages     int
	Rows      int
	LastRow   int
	Anomalies []score.Anomaly
}

// Clean reports whether every rendered data cell held a valid value.
func (r *RenderResult) Clean() bool {
	return len(r.Anomalies) == 0
}

// SaveAs writes the workbook to path.
func (r *RenderResult) SaveAs(path string) error {
	if err := r.File.SaveAs(path); err != nil {
		return errors.IOError(fmt.Sprintf("failed to save %s", path), err)
	}
	return nil
}

// Close releases the workbook.
func (r *RenderResult) Close() error {
	return r.File.Close()
}

type cellStyle struct {
	size    int
	anomaly bool
}

// sheetGrid remembers the style of each written cell until the border pass.
type sheetGrid struct {
	styles map[[2]int]cellStyle // {row, col}
}

func (g *sheetGrid) set(row, col int, s cellStyle) {
	g.styles[[2]int{row, col}] = s
}

func (g *sheetGrid) get(row, col int) cellStyle {
	if s, ok := g.styles[[2]int{row, col}]; ok {
		return s
	}
	return cellStyle{size: score.BaseFontSize}
}

// Render builds the report for records, which must already be sorted.
func (r *Renderer) Render(records []score.Record) (*RenderResult, error) {
	if len(records) == 0 {
		return nil, errors.EmptyInput("no records to render")
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	layout := r.opts.Layout
	grid := &sheetGrid{styles: make(map[[2]int]cellStyle)}

	res := &RenderResult{
		File:  f,
		Sheet: sheet,
		Title: records[0].Title(),
		Pages: layout.Pages(len(records)),
		Rows:  len(records),
	}
	res.LastRow = layout.LastRow(len(records))

	if err := r.writeHeader(f, sheet, res.Title); err != nil {
		f.Close()
		return nil, err
	}

	for i, p := range layout.Paginate(len(records)) {
		anomalies, err := r.writeRecord(f, sheet, records[i], p, grid)
		if err != nil {
			f.Close()
			return nil, err
		}
		res.Anomalies = append(res.Anomalies, anomalies...)
	}

	if err := r.finishPages(f, sheet, res, grid); err != nil {
		f.Close()
		return nil, err
	}

	r.log.Info("report rendered", "title", res.Title, "records", res.Rows,
		"pages", res.Pages, "anomalies", len(res.Anomalies))
	return res, nil
}

func (r *Renderer) writeHeader(f *excelize.File, sheet, title string) error {
	width := r.opts.Layout.PageWidth
	lastCol, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return err
	}

	for b := 0; b < r.opts.Layout.BlocksPerPage(); b++ {
		first := b*score.FieldsPerBlock + 1
		from, err := excelize.ColumnNumberToName(first)
		if err != nil {
			return err
		}
		to, err := excelize.ColumnNumberToName(first + score.FieldsPerBlock - 2)
		if err != nil {
			return err
		}
		note, err := excelize.ColumnNumberToName(first + score.FieldsPerBlock - 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, from, to, narrowColumn); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, note, note, noteColumn); err != nil {
			return err
		}
	}

	banners := []struct {
		row  int
		text string
	}{
		{titleRow, title},
		{feedbackRow, fmt.Sprintf(feedbackBanner, r.opts.FeedbackMailbox)},
		{contactRow, fmt.Sprintf(contactBanner, r.opts.ContactLocalPart, r.opts.ContactDomain)},
	}
	for _, b := range banners {
		start := "A" + strconv.Itoa(b.row)
		if err := f.MergeCell(sheet, start, lastCol+strconv.Itoa(b.row)); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, start, b.text); err != nil {
			return err
		}
	}

	for col := 1; col <= width; col++ {
		cell, err := excelize.CoordinatesToCellName(col, columnNameRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, columnLabels[(col-1)%score.FieldsPerBlock]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) writeRecord(f *excelize.File, sheet string, rec score.Record, p score.Placement, grid *sheetGrid) ([]score.Anomaly, error) {
	var anomalies []score.Anomaly
	for j, field := range score.RenderedFields {
		col := p.Column + j
		cell, err := excelize.CoordinatesToCellName(col, p.Row)
		if err != nil {
			return nil, err
		}

		raw := rec.Value(field)
		value, ok := cellValue(field, raw)
		style := cellStyle{size: score.FontSize(raw)}
		if !ok {
			value = ""
			style.anomaly = true
			anomalies = append(anomalies, score.Anomaly{
				Cell:   cell,
				Row:    p.Row,
				Column: col,
				Field:  field,
				Value:  raw,
				Key:    rec.Key().String(),
			})
			r.log.Warn("empty cell", "cell", cell, "field", string(field), "value", raw,
				"room", rec.Room, "bed", rec.Bed)
		}

		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return nil, err
		}
		grid.set(p.Row, col, style)
	}
	return anomalies, nil
}

// cellValue converts a field to the value written to the sheet, or false when
// the field is missing or invalid.
func cellValue(field score.Field, raw string) (interface{}, bool) {
	if field == score.FieldScore {
		v, ok := score.ParseScore(raw)
		if !ok {
			return nil, false
		}
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return v, true
	}
	if score.IsMissing(raw) {
		return nil, false
	}
	raw = strings.TrimSpace(raw)
	if field == score.FieldRoom || field == score.FieldBed {
		if n, err := strconv.Atoi(raw); err == nil && strconv.Itoa(n) == raw {
			return n, true
		}
	}
	return raw, true
}

// finishPages adds page breaks, print settings and the final style pass that
// gives every cell of the used grid a thin border.
func (r *Renderer) finishPages(f *excelize.File, sheet string, res *RenderResult, grid *sheetGrid) error {
	layout := r.opts.Layout
	for p := 1; p < res.Pages; p++ {
		if err := f.InsertPageBreak(sheet, "A"+strconv.Itoa(layout.PageOrigin(p))); err != nil {
			return err
		}
	}

	if err := f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Titles",
		RefersTo: fmt.Sprintf("'%s'!$%d:$%d", sheet, columnNameRow, columnNameRow),
		Scope:    sheet,
	}); err != nil {
		return err
	}

	if err := ApplyPrintSetup(f, sheet, r.opts.Print); err != nil {
		return err
	}

	styles := newStyleCache(f, r.opts.FontFamily)
	for row := 1; row <= res.LastRow; row++ {
		for col := 1; col <= layout.PageWidth; col++ {
			id, err := styles.id(grid.get(row, col))
			if err != nil {
				return err
			}
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
				return err
			}
		}
	}
	return nil
}

type styleCache struct {
	f      *excelize.File
	family string
	ids    map[cellStyle]int
}

func newStyleCache(f *excelize.File, family string) *styleCache {
	return &styleCache{f: f, family: family, ids: make(map[cellStyle]int)}
}

func (c *styleCache) id(s cellStyle) (int, error) {
	if id, ok := c.ids[s]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Font: &excelize.Font{Family: c.family, Size: float64(s.size)},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	}
	if s.anomaly {
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{anomalyFill}, Pattern: 1}
	}

	id, err := c.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("create cell style: %w", err)
	}
	c.ids[s] = id
	return id, nil
}
