package export_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"disclosure-feed/internal/domain/entity"
	"disclosure-feed/internal/infra/export"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []entity.Disclosure{
	{
		Time:        "15:00",
		Code:        "13010",
		CompanyName: "極洋",
		Title:       "2025年3月期 決算短信, 〔日本基準〕",
		DocumentURL: "https://www.release.tdnet.info/inbs/140120250611512345.pdf",
		Exchange:    "東",
		XBRLURL:     "https://www.release.tdnet.info/inbs/081220250611512345.zip",
	},
	{Time: "15:30", Code: "72030", CompanyName: "トヨタ自動車", Title: `"引用"付き表題`, Exchange: "東名", Place: "名"},
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "tdnet_data_20250611.csv", export.FileName("20250611"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sample))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, export.CSVHeader, rows[0])
	assert.Equal(t, []string{
		"15:00", "13010", "極洋", "2025年3月期 決算短信, 〔日本基準〕",
		"https://www.release.tdnet.info/inbs/140120250611512345.pdf", "東",
		"https://www.release.tdnet.info/inbs/081220250611512345.zip", "",
	}, rows[1])
	assert.Equal(t, `"引用"付き表題`, rows[2][3])
	assert.Equal(t, "名", rows[2][7])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(export.CSVHeader, ",")+"\n", buf.String())
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", export.FileName("20250611"))

	require.NoError(t, export.WriteCSVFile(path, sample))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "time,code,company_name,title,document_url,exchange,xbrl_url,place\n"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be renamed away")
}

func TestWriteTable_AlignsFullWidthText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteTable(&buf, sample, 0))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	want := runewidth.StringWidth(lines[0])
	for _, l := range lines {
		assert.Equal(t, want, runewidth.StringWidth(l), "line %q", l)
	}
	assert.Contains(t, lines[0], "会社名")
	assert.Contains(t, lines[3], "トヨタ自動車")
}

func TestWriteTable_Truncates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteTable(&buf, sample[:1], 10))

	assert.Contains(t, buf.String(), "…")
	assert.NotContains(t, buf.String(), "〔日本基準〕")

	// The shared header must survive truncation for later calls.
	buf.Reset()
	require.NoError(t, export.WriteTable(&buf, nil, 2))
	buf.Reset()
	require.NoError(t, export.WriteTable(&buf, nil, 0))
	assert.Contains(t, buf.String(), "会社名")
}

func TestWritePreview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WritePreview(&buf, sample, 3))

	out := buf.String()
	assert.Contains(t, out, "Record 1:")
	assert.Contains(t, out, "Record 2:")
	assert.NotContains(t, out, "Record 3:")
	assert.Contains(t, out, "  company_name: トヨタ自動車\n")
	assert.Contains(t, out, "  document_url: https://www.release.tdnet.info/inbs/140120250611512345.pdf\n")
	assert.Contains(t, out, "  document_url: (none)\n")
}
