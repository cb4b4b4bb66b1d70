package excel

import (
	"fmt"
	"strings"
	"testing"

	"dormscore/domain/score"
	"dormscore/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func makeRecords(n int) []score.Record {
	records := make([]score.Record, n)
	for i := range records {
		records[i] = score.Record{
			Building: "紫荆1号楼",
			Week:     "第3周",
			Room:     fmt.Sprintf("%d", 100+i/4),
			Bed:      fmt.Sprintf("%d", 1+i%4),
			Score:    "95",
			Note:     "良好",
		}
	}
	return records
}

func render(t *testing.T, records []score.Record) *RenderResult {
	t.Helper()
	opts := DefaultRenderOptions()
	opts.ContactLocalPart = "louzhang"
	res, err := NewRenderer(opts).Render(records)
	require.NoError(t, err)
	t.Cleanup(func() { res.Close() })
	return res
}

func cell(t *testing.T, res *RenderResult, ref string) string {
	t.Helper()
	v, err := res.File.GetCellValue(res.Sheet, ref)
	require.NoError(t, err)
	return v
}

func styleOf(t *testing.T, res *RenderResult, ref string) *excelize.Style {
	t.Helper()
	id, err := res.File.GetCellStyle(res.Sheet, ref)
	require.NoError(t, err)
	st, err := res.File.GetStyle(id)
	require.NoError(t, err)
	return st
}

func TestRenderHeader(t *testing.T) {
	res := render(t, makeRecords(3))

	assert.Equal(t, "紫荆1号楼第3周", res.Title)
	assert.Equal(t, "紫荆1号楼第3周", cell(t, res, "A1"))
	assert.Contains(t, cell(t, res, "A2"), "thu.lczh@gmail.com")
	assert.Contains(t, cell(t, res, "A3"), "louzhang@mails.tsinghua.edu.cn")

	for i, ref := range []string{"A4", "B4", "C4", "D4", "E4", "F4", "G4", "H4"} {
		assert.Equal(t, columnLabels[i%4], cell(t, res, ref), ref)
	}

	merges, err := res.File.GetMergeCells(res.Sheet)
	require.NoError(t, err)
	require.Len(t, merges, 3)
	ranges := make([]string, 0, len(merges))
	for _, m := range merges {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"A1:H1", "A2:H2", "A3:H3"}, ranges)
}

func TestRenderColumnWidths(t *testing.T) {
	res := render(t, makeRecords(1))

	for _, col := range []string{"A", "B", "C", "E", "F", "G"} {
		w, err := res.File.GetColWidth(res.Sheet, col)
		require.NoError(t, err)
		assert.InDelta(t, 6, w, 0.01, col)
	}
	for _, col := range []string{"D", "H"} {
		w, err := res.File.GetColWidth(res.Sheet, col)
		require.NoError(t, err)
		assert.InDelta(t, 25, w, 0.01, col)
	}
}

func TestRenderFullSinglePage(t *testing.T) {
	records := makeRecords(110)
	res := render(t, records)

	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 59, res.LastRow)
	assert.True(t, res.Clean())

	assert.Equal(t, records[0].Room, cell(t, res, "A5"))
	assert.Equal(t, records[0].Bed, cell(t, res, "B5"))
	assert.Equal(t, "95", cell(t, res, "C5"))
	assert.Equal(t, "良好", cell(t, res, "D5"))
	assert.Equal(t, records[54].Room, cell(t, res, "A59"))
	assert.Equal(t, records[55].Room, cell(t, res, "E5"))
	assert.Equal(t, records[109].Bed, cell(t, res, "F59"))
	assert.Equal(t, "", cell(t, res, "A60"))
}

func TestRenderSpillsToSecondPage(t *testing.T) {
	records := makeRecords(111)
	res := render(t, records)

	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 60, res.LastRow)
	assert.Equal(t, records[110].Room, cell(t, res, "A60"))
	assert.Equal(t, records[110].Bed, cell(t, res, "B60"))
	assert.Equal(t, "", cell(t, res, "E60"))
	assert.Equal(t, "", cell(t, res, "A61"))

	rows, err := res.File.GetRows(res.Sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 60)
}

func TestRenderEmptyScoreIsFlagged(t *testing.T) {
	records := makeRecords(2)
	records[1].Score = ""
	res := render(t, records)

	assert.False(t, res.Clean())
	require.Len(t, res.Anomalies, 1)
	a := res.Anomalies[0]
	assert.Equal(t, "C6", a.Cell)
	assert.Equal(t, 6, a.Row)
	assert.Equal(t, 3, a.Column)
	assert.Equal(t, score.FieldScore, a.Field)
	assert.Equal(t, records[1].Key().String(), a.Key)

	assert.Equal(t, "", cell(t, res, "C6"))

	flagged := styleOf(t, res, "C6")
	assert.Equal(t, 1, flagged.Fill.Pattern)
	require.NotEmpty(t, flagged.Fill.Color)
	assert.Contains(t, strings.ToUpper(flagged.Fill.Color[0]), anomalyFill)

	plain := styleOf(t, res, "C5")
	assert.Equal(t, 0, plain.Fill.Pattern)
}

func TestRenderInvalidValues(t *testing.T) {
	records := makeRecords(3)
	records[0].Score = "缺考"
	records[1].Note = ""
	records[2].Bed = "nan"
	res := render(t, records)

	require.Len(t, res.Anomalies, 3)
	assert.Equal(t, []string{"C5", "D6", "B7"}, []string{res.Anomalies[0].Cell, res.Anomalies[1].Cell, res.Anomalies[2].Cell})
	assert.Equal(t, "缺考", res.Anomalies[0].Value)
	assert.Equal(t, "", cell(t, res, "B7"))
}

func TestRenderBordersEveryCell(t *testing.T) {
	res := render(t, makeRecords(111))

	for _, ref := range []string{"A1", "H1", "C3", "H4", "D20", "H59", "A60", "H60"} {
		st := styleOf(t, res, ref)
		assert.Len(t, st.Border, 4, ref)
		for _, b := range st.Border {
			assert.Equal(t, 1, b.Style, ref)
		}
	}
}

func TestRenderFontSizeShrinks(t *testing.T) {
	records := makeRecords(2)
	records[1].Note = strings.Repeat("整", 16)
	res := render(t, records)

	require.NotNil(t, styleOf(t, res, "D5").Font)
	assert.InDelta(t, 11, styleOf(t, res, "D5").Font.Size, 0.01)
	assert.InDelta(t, 8, styleOf(t, res, "D6").Font.Size, 0.01)
	assert.Equal(t, "宋体", styleOf(t, res, "D6").Font.Family)
}

func TestRenderPrintSetup(t *testing.T) {
	res := render(t, makeRecords(250))

	layout, err := res.File.GetPageLayout(res.Sheet)
	require.NoError(t, err)
	require.NotNil(t, layout.FitToWidth)
	assert.Equal(t, 1, *layout.FitToWidth)

	found := false
	for _, dn := range res.File.GetDefinedName() {
		if dn.Name == "_xlnm.Print_Titles" {
			found = true
			assert.Contains(t, dn.RefersTo, "$4:$4")
		}
	}
	assert.True(t, found)
}

func TestRenderNoRecords(t *testing.T) {
	_, err := NewRenderer(DefaultRenderOptions()).Render(nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmptyInput, errors.GetCode(err))
}

func TestRenderRejectsLayoutBeyondSheetWidth(t *testing.T) {
	opts := DefaultRenderOptions()
	opts.Layout = score.Layout{PageWidth: excelize.MaxColumns + score.FieldsPerBlock, RowsPerBlock: 55, HeaderRows: 4}

	res, err := NewRenderer(opts).Render(makeRecords(3))
	require.Error(t, err)
	assert.Nil(t, res)
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		field score.Field
		raw   string
		want  interface{}
		ok    bool
	}{
		{score.FieldScore, "95", int64(95), true},
		{score.FieldScore, "87.5", 87.5, true},
		{score.FieldScore, "NaN", nil, false},
		{score.FieldRoom, "101", 101, true},
		{score.FieldRoom, "0101", "0101", true},
		{score.FieldBed, "A", "A", true},
		{score.FieldNote, " 整理 ", "整理", true},
		{score.FieldNote, "", nil, false},
	}

	for _, tt := range tests {
		got, ok := cellValue(tt.field, tt.raw)
		assert.Equal(t, tt.ok, ok, "%s %q", tt.field, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, "%s %q", tt.field, tt.raw)
		}
	}
}
