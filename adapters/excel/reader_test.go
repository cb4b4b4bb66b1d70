package excel

import (
	"os"
	"path/filepath"
	"testing"

	"dormscore/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const sampleCSV = "楼号,周,房间,床位,总分,整改意见,检查人\n" +
	"紫荆1号楼,第3周,101,1,95,桌面整洁。,张三\n" +
	"\n" +
	"紫荆1号楼,第3周,101,2,,地面有垃圾！\n"

func writeGBK(t *testing.T, dir, name, content string) string {
	t.Helper()
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(content)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o600))
	return path
}

func TestReadGBKCSV(t *testing.T) {
	path := writeGBK(t, t.TempDir(), "WeekScoreManage_1.csv", sampleCSV)
	enc, err := LookupEncoding("gbk")
	require.NoError(t, err)

	data, err := NewDataReader(path, enc).ReadData()
	require.NoError(t, err)

	assert.Equal(t, []string{"楼号", "周", "房间", "床位", "总分", "整改意见", "检查人"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "101", data.Rows[0]["房间"])
	assert.Equal(t, "桌面整洁。", data.Rows[0]["整改意见"])
	assert.Equal(t, "", data.Rows[1]["总分"])
	_, hasInspector := data.Rows[1]["检查人"]
	assert.False(t, hasInspector, "ragged row keeps only present cells")
	assert.Equal(t, path, data.Path)
	assert.NotEmpty(t, data.Raw)
}

func TestReadUTF8WithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WeekScoreManage_u.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeff楼号,周\nA,1\n"), 0o600))
	enc, err := LookupEncoding("utf-8")
	require.NoError(t, err)

	data, err := NewDataReader(path, enc).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"楼号", "周"}, data.Headers)
	assert.Equal(t, "A", data.Rows[0]["楼号"])
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WeekScoreManage_x.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"楼号", "周", "房间"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"A", "1", 101}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	data, err := NewDataReader(path, nil).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"楼号", "周", "房间"}, data.Headers)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "101", data.Rows[0]["房间"])
}

func TestReadHeaderOnly(t *testing.T) {
	path := writeGBK(t, t.TempDir(), "WeekScoreManage_h.csv", "楼号,周\n")
	data, err := NewDataReader(path, simplifiedchinese.GBK).ReadData()
	require.NoError(t, err)
	assert.Empty(t, data.Rows)
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv"), nil).ReadData()
	require.Error(t, err)
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))
}

func TestReadCorruptXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	_, err := NewDataReader(path, nil).ReadData()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLookupEncoding(t *testing.T) {
	for _, label := range []string{"gbk", "GB18030", "utf-8", " windows-1252 "} {
		_, err := LookupEncoding(label)
		assert.NoError(t, err, label)
	}

	_, err := LookupEncoding("klingon")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestMissingColumns(t *testing.T) {
	data := &TableData{Headers: []string{"楼号", "房间"}}
	assert.Equal(t, []string{"周", "床位"}, data.MissingColumns([]string{"楼号", "周", "房间", "床位"}))
	assert.Empty(t, data.MissingColumns([]string{"房间"}))
}
