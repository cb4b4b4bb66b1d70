package dataset

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dormscore/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const csvHeader = "楼号,周,房间,床位,总分,整改意见,检查人\n"

func writeExport(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	content := csvHeader + strings.Join(lines, "\n") + "\n"
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(encoded), 0o600))
}

func newTestIngestor() *Ingestor {
	return NewIngestor(IngestConfig{Prefix: "WeekScoreManage", Extension: "csv", Encoding: simplifiedchinese.GBK})
}

func TestIngestThreeOverlappingFiles(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "WeekScoreManage_c.csv",
		"紫荆1号楼,第3周,101,1,10,third",
		"紫荆1号楼,第3周,103,1,93,third")
	writeExport(t, dir, "WeekScoreManage_a.csv",
		"紫荆1号楼,第3周,101,1,90,first",
		"紫荆1号楼,第3周,101,2,91,first")
	writeExport(t, dir, "WeekScoreManage_b.csv",
		"紫荆1号楼,第3周,101,2,50,second",
		"紫荆1号楼,第3周,102,1,92,second")

	res, err := newTestIngestor().Ingest(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, res.Files, 3)
	assert.Equal(t, "WeekScoreManage_a.csv", filepath.Base(res.Files[0]))
	assert.Equal(t, 6, res.RowsRead)
	assert.Equal(t, 2, res.Duplicates)
	require.Len(t, res.Records, 4)

	got := map[string]string{}
	for _, r := range res.Records {
		got[r.Room+"/"+r.Bed] = r.Note
	}
	assert.Equal(t, map[string]string{"101/1": "first", "101/2": "first", "102/1": "second", "103/1": "third"}, got)
	assert.Len(t, res.InputHash.String(), 64)
}

func TestIngestIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "WeekScoreManage_1.csv", "A,1,101,1,90,ok")
	writeExport(t, dir, "Other_1.csv", "A,1,102,1,90,ok")
	writeExport(t, dir, "WeekScoreManage_1.csv.bak", "A,1,103,1,90,ok")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "WeekScoreManage_dir.csv"), 0o700))

	res, err := newTestIngestor().Ingest(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "101", res.Records[0].Room)
}

func TestIngestNoFiles(t *testing.T) {
	_, err := newTestIngestor().Ingest(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmptyInput, errors.GetCode(err))
}

func TestIngestNoRows(t *testing.T) {
	dir := t.TempDir()
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(csvHeader)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "WeekScoreManage_1.csv"), []byte(encoded), 0o600))

	_, err = newTestIngestor().Ingest(context.Background(), dir)
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmptyInput, errors.GetCode(err))
}

func TestIngestMissingFolder(t *testing.T) {
	_, err := newTestIngestor().Ingest(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))
}

func TestIngestCanceled(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "WeekScoreManage_1.csv", "A,1,101,1,90,ok")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestIngestor().Ingest(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIngestIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "WeekScoreManage_1.csv", "A,1,102,1,90,ok", "A,1,101,1,80,x")
	writeExport(t, dir, "WeekScoreManage_2.csv", "A,1,101,1,70,y")

	first, err := newTestIngestor().Ingest(context.Background(), dir)
	require.NoError(t, err)
	second, err := newTestIngestor().Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.InputHash, second.InputHash)
}

func TestIngestLogsMergeProgress(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(previous)

	dir := t.TempDir()
	writeExport(t, dir, "WeekScoreManage_a.csv", "紫荆1号楼,第3周,101,1,90,ok")

	_, err := newTestIngestor().Ingest(context.Background(), dir)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "removing duplicates")
	assert.Contains(t, out, "merge complete")
	assert.Contains(t, out, "ingest.progress=100")
}
