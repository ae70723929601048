package xlsx

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/visit-recap/internal/model"
)

func scenarioTable() *model.Table {
	text := model.TextCell
	num := func(s string) model.Cell { return model.NumberCell(decimal.RequireFromString(s)) }
	return &model.Table{
		Columns: []string{"Reported on", "Reported by", "POS Visit", "POS Alternative Import Name", "Status", "A", "B", "Total"},
		Rows: []model.Row{
			{text("2024-01-16 21:20"), model.EmptyCell(), text("Store Beta Visit"), model.EmptyCell(), text("reported"), num("2"), model.EmptyCell(), num("2")},
			{text("2024-01-15 17:30"), text("John"), text("Store Alpha Visit"), model.EmptyCell(), text("Validated"), num("5"), num("3.5"), num("8.5")},
		},
	}
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestEncode(t *testing.T) {
	data, err := Encode(scenarioTable())
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, scenarioTable().Columns, rows[0])
	assert.Equal(t, []string{"2024-01-16 21:20", "", "Store Beta Visit", "", "reported", "2", "", "2"}, rows[1])
	assert.Equal(t, []string{"2024-01-15 17:30", "John", "Store Alpha Visit", "", "Validated", "5", "3.5", "8.5"}, rows[2])
}

func TestEncode_NumbersAreNumeric(t *testing.T) {
	data, err := Encode(scenarioTable())
	require.NoError(t, err)
	f := open(t, data)

	isString := func(ct excelize.CellType) bool {
		return ct == excelize.CellTypeSharedString || ct == excelize.CellTypeInlineString
	}

	for _, cell := range []string{"F2", "H2", "G3", "H3"} {
		ct, err := f.GetCellType(SheetName, cell)
		require.NoError(t, err)
		assert.False(t, isString(ct), "cell %s should hold a number", cell)
	}
	for _, cell := range []string{"A1", "A2", "C3"} {
		ct, err := f.GetCellType(SheetName, cell)
		require.NoError(t, err)
		assert.True(t, isString(ct), "cell %s should hold text", cell)
	}

	// Empty cells are not written at all.
	v, err := f.GetCellValue(SheetName, "B2")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestEncode_HeaderIsBoldAndFrozen(t *testing.T) {
	data, err := Encode(scenarioTable())
	require.NoError(t, err)
	f := open(t, data)

	styleID, err := f.GetCellStyle(SheetName, "H1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	bodyStyle, err := f.GetCellStyle(SheetName, "A2")
	require.NoError(t, err)
	assert.NotEqual(t, styleID, bodyStyle)

	panes, err := f.GetPanes(SheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestEncode_EmptyTable(t *testing.T) {
	data, err := Encode(&model.Table{Columns: append([]string{}, model.FixedColumns...)})
	require.NoError(t, err)

	rows, err := open(t, data).GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.FixedColumns, rows[0])
}

func TestWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recap.xlsx")
	w := NewWriter(path, nil)
	assert.Equal(t, path, w.Path())

	require.NoError(t, w.Write(context.Background(), scenarioTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := open(t, data).GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestNewWriter_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultFileName, NewWriter("", nil).Path())
}
