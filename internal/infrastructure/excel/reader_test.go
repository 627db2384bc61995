package excel

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sheetboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx in memory. cells maps A1-style refs to values on Sheet1.
func workbook(t *testing.T, cells map[string]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadFirstSheet_TwoColumnsThreeRows(t *testing.T) {
	buf := workbook(t, map[string]interface{}{
		"A1": "Month", "B1": "Sales",
		"A2": "Jan", "B2": 100,
		"A3": "Feb", "B3": 250.5,
		"A4": "Mar", "B4": 75,
	})

	sheet, err := NewReader(1 << 20).ReadFirstSheet(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"Month", "Sales"}, sheet.Headers)
	require.Len(t, sheet.Rows, 3)
	for _, row := range sheet.Rows {
		assert.Len(t, row, 2)
		assert.Contains(t, row, "Month")
		assert.Contains(t, row, "Sales")
	}
	assert.Equal(t, domain.Row{"Month": "Jan", "Sales": float64(100)}, sheet.Rows[0])
	assert.Equal(t, 250.5, sheet.Rows[1]["Sales"])
	assert.Equal(t, "Mar", sheet.Rows[2]["Month"])
}

func TestReadFirstSheet_CellTypes(t *testing.T) {
	buf := workbook(t, map[string]interface{}{
		"A1": "code", "B1": "active", "C1": "n",
		"A2": "007", "B2": true, "C2": 3,
		"A3": "x", "B3": false,
	})

	sheet, err := NewReader(1 << 20).ReadFirstSheet(buf)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, "007", sheet.Rows[0]["code"], "text cells stay text")
	assert.Equal(t, true, sheet.Rows[0]["active"])
	assert.Equal(t, float64(3), sheet.Rows[0]["n"])
	assert.Equal(t, false, sheet.Rows[1]["active"])
	_, ok := sheet.Rows[1]["n"]
	assert.False(t, ok, "empty cells are omitted")
}

func TestReadFirstSheet_HeaderNaming(t *testing.T) {
	buf := workbook(t, map[string]interface{}{
		"A1": "name", "C1": "name", "D1": "",
		"A2": "a", "B2": "b", "C2": "c", "D2": "d", "E2": "e",
	})

	sheet, err := NewReader(1 << 20).ReadFirstSheet(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "__EMPTY", "name_1", "__EMPTY_1", "__EMPTY_2"}, sheet.Headers)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "e", sheet.Rows[0]["__EMPTY_2"])
	assert.Equal(t, "c", sheet.Rows[0]["name_1"])
}

func TestReadFirstSheet_SkipsBlankRows(t *testing.T) {
	buf := workbook(t, map[string]interface{}{
		"A1": "k",
		"A2": "one",
		"A4": "two",
	})

	sheet, err := NewReader(1 << 20).ReadFirstSheet(buf)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "two", sheet.Rows[1]["k"])
}

func TestReadFirstSheet_Empty(t *testing.T) {
	t.Run("no cells", func(t *testing.T) {
		sheet, err := NewReader(1 << 20).ReadFirstSheet(workbook(t, nil))
		require.NoError(t, err)
		assert.NotNil(t, sheet.Rows)
		assert.Empty(t, sheet.Rows)
	})
	t.Run("header only", func(t *testing.T) {
		sheet, err := NewReader(1 << 20).ReadFirstSheet(workbook(t, map[string]interface{}{"A1": "h"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"h"}, sheet.Headers)
		assert.Empty(t, sheet.Rows)
	})
}

func TestReadFirstSheet_FirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "yes"))
	require.NoError(t, f.SetCellValue("Other", "A1", "second"))
	require.NoError(t, f.SetCellValue("Other", "A2", "no"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	sheet, err := NewReader(1 << 20).ReadFirstSheet(buf)
	require.NoError(t, err)
	assert.Equal(t, []domain.Row{{"first": "yes"}}, sheet.Rows)
}

func TestReadFirstSheet_Unreadable(t *testing.T) {
	_, err := NewReader(1 << 20).ReadFirstSheet(strings.NewReader("definitely not a zip"))
	assert.True(t, errors.Is(err, domain.ErrParse))
}

func TestReadFirstSheet_TooLarge(t *testing.T) {
	buf := workbook(t, map[string]interface{}{"A1": "h", "A2": "v"})
	_, err := NewReader(int64(buf.Len() - 1)).ReadFirstSheet(buf)
	assert.True(t, errors.Is(err, domain.ErrParse))
}
