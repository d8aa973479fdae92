package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Student File", "Marks", "Score %"}, rows[0])
	assert.Equal(t, "alice.pdf", rows[1][0])
	assert.Equal(t, "9/10", rows[1][1])
	assert.Equal(t, "80.00", rows[1][2])

	raw, err := f.GetCellValue(SheetName, "C3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Contains(t, raw, "6.666")
}

func TestWriteXLSX_NoResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
