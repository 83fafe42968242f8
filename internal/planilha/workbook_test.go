package planilha

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/plano-planilha/internal/plano"
)

func TestLoadTemplate(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTemplate(filepath.Join(t.TempDir(), "missing.xlsx"))
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LoadTemplate(t.TempDir())
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

		_, err := LoadTemplate(path)
		assert.ErrorIs(t, err, ErrMalformedTemplate)
	})

	t.Run("valid", func(t *testing.T) {
		path := saveTemplate(t, withHeaders(DefaultHeaders))

		tmpl, err := LoadTemplate(path)
		require.NoError(t, err)
		assert.Equal(t, path, tmpl.Path())
	})
}

func TestFill_SingleMetaScenario(t *testing.T) {
	wb := openTemplate(t, buildTemplate(t, withHeaders(DefaultHeaders)))
	require.False(t, wb.IsAnalysis())

	result, err := wb.Fill([]plano.Item{scenarioItem()}, FillOptions{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	data, err := wb.Bytes()
	require.NoError(t, err)
	f, sheet := reopen(t, data)

	assert.Equal(t, "1", cellValue(t, f, sheet, "A3"))
	assert.Equal(t, "1", cellValue(t, f, sheet, "B3"))
	assert.Equal(t, "Computador", cellValue(t, f, sheet, "D3"))
	assert.Equal(t, "2", cellValue(t, f, sheet, "I3"))
	assert.Equal(t, "un", cellValue(t, f, sheet, "J3"))
	assert.Equal(t, "R$ 2.000,00", cellValue(t, f, sheet, "K3"))
	assert.Equal(t, "Planejado", cellValue(t, f, sheet, "L3"))
	assert.Equal(t, "", cellValue(t, f, sheet, "G3"))

	assert.Equal(t, []BlankCell{
		{Cell: "G3", Row: 3, Column: 7, Header: HeaderInstituicao},
	}, result.BlankCells)
}

func TestFill_OneBlankPerMissingField(t *testing.T) {
	wb := openTemplate(t, buildTemplate(t, withHeaders(DefaultHeaders)))

	item := plano.Item{Meta: 3, Number: 4}
	result, err := wb.Fill([]plano.Item{item}, FillOptions{})
	require.NoError(t, err)

	// meta, item and status always carry a value
	var headers []string
	for _, b := range result.BlankCells {
		headers = append(headers, b.Header)
		assert.Equal(t, 3, b.Row)
	}
	assert.Equal(t, []string{
		HeaderAction,
		HeaderMaterial,
		HeaderDescricao,
		HeaderDestinacao,
		HeaderInstituicao,
		HeaderNatureza,
		HeaderQuantidade,
		HeaderUnidade,
		HeaderValor,
	}, headers)
}

func TestFill_RoundTrip(t *testing.T) {
	wb := openTemplate(t, buildTemplate(t, withHeaders(DefaultHeaders)))

	result, err := wb.Fill(sampleItems(), FillOptions{})
	require.NoError(t, err)

	data, err := wb.Bytes()
	require.NoError(t, err)
	f, sheet := reopen(t, data)

	for idx, row := range result.Rows {
		excelRow := result.Layout.StartRow + idx
		for _, col := range result.Layout.Columns {
			want := row[col.Key]
			if IsBlank(want) {
				continue
			}
			got := cellValue(t, f, sheet, cellName(col.Index, excelRow))
			assert.Equal(t, stringValue(want), got, "column %s row %d", col.Title, excelRow)
		}
	}
}

func TestFill_Idempotent(t *testing.T) {
	template := buildTemplate(t, withHeaders(DefaultHeaders))

	render := func() [][]string {
		wb := openTemplate(t, template)
		_, err := wb.Fill(sampleItems(), FillOptions{Article: "7"})
		require.NoError(t, err)
		data, err := wb.Bytes()
		require.NoError(t, err)

		f, sheet := reopen(t, data)
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		return rows
	}

	assert.Equal(t, render(), render())
}

func TestFill_NoItemsWritesHeadersOnly(t *testing.T) {
	wb := openTemplate(t, buildTemplate(t, nil))

	result, err := wb.Fill(nil, FillOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.BlankCells)

	data, err := wb.Bytes()
	require.NoError(t, err)
	f, sheet := reopen(t, data)

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0])
	assert.Equal(t, DefaultHeaders, rows[1])
}

func TestFill_ClearsStaleRows(t *testing.T) {
	template := buildTemplate(t, func(f *excelize.File, sheet string) {
		withHeaders(DefaultHeaders)(f, sheet)
		for r := 3; r <= 5; r++ {
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", r), 99)
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", r), "antigo")
		}
	})
	wb := openTemplate(t, template)

	_, err := wb.Fill([]plano.Item{scenarioItem()}, FillOptions{})
	require.NoError(t, err)

	data, err := wb.Bytes()
	require.NoError(t, err)
	f, sheet := reopen(t, data)

	assert.Equal(t, "Computador", cellValue(t, f, sheet, "D3"))
	assert.Equal(t, "", cellValue(t, f, sheet, "A4"))
	assert.Equal(t, "", cellValue(t, f, sheet, "D5"))
}

func TestFill_ActionHeader(t *testing.T) {
	tests := []struct {
		name    string
		article string
		items   []plano.Item
		want    string
	}{
		{
			name:    "explicit article",
			article: "8",
			items:   []plano.Item{scenarioItem()},
			want:    "Ação conforme Art. 8º da portaria nº 685",
		},
		{
			name:  "article from first row",
			items: []plano.Item{{Meta: 1, Number: 1, Fields: plano.Fields{ArtNum: "6"}}},
			want:  "Ação conforme Art. 6º da portaria nº 685",
		},
		{
			name:    "unsupported article keeps header",
			article: "9",
			items:   []plano.Item{scenarioItem()},
			want:    HeaderAction,
		},
		{
			name:  "no article keeps header",
			items: []plano.Item{scenarioItem()},
			want:  HeaderAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := openTemplate(t, buildTemplate(t, withHeaders(DefaultHeaders)))

			_, err := wb.Fill(tt.items, FillOptions{Article: tt.article})
			require.NoError(t, err)

			data, err := wb.Bytes()
			require.NoError(t, err)
			f, sheet := reopen(t, data)
			assert.Equal(t, tt.want, cellValue(t, f, sheet, "C2"))
		})
	}
}

func TestFill_InheritsFirstRowStyle(t *testing.T) {
	var styleID int
	template := buildTemplate(t, func(f *excelize.File, sheet string) {
		withHeaders(DefaultHeaders)(f, sheet)
		id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		require.NoError(t, err)
		styleID = id
		require.NoError(t, f.SetCellStyle(sheet, "A3", "L3", id))
	})
	wb := openTemplate(t, template)

	_, err := wb.Fill(sampleItems(), FillOptions{})
	require.NoError(t, err)

	for _, cell := range []string{"A4", "D5", "L5"} {
		id, err := wb.File().GetCellStyle(wb.Sheet(), cell)
		require.NoError(t, err)
		assert.Equal(t, styleID, id, cell)
	}
}

func TestFill_CompositeTemplate(t *testing.T) {
	headers := []string{HeaderMeta, HeaderItem, HeaderMaterial, HeaderQuantidadeUnidade, HeaderValorStatus}
	wb := openTemplate(t, buildTemplate(t, withHeaders(headers)))

	result, err := wb.Fill([]plano.Item{scenarioItem()}, FillOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.BlankCells)

	data, err := wb.Bytes()
	require.NoError(t, err)
	f, sheet := reopen(t, data)
	assert.Equal(t, "2 un", cellValue(t, f, sheet, "D3"))
	assert.Equal(t, "R$ 2.000,00 | Planejado", cellValue(t, f, sheet, "E3"))
}

func TestBytes_ResetsSheetView(t *testing.T) {
	template := buildTemplate(t, func(f *excelize.File, sheet string) {
		withHeaders(DefaultHeaders)(f, sheet)
		topLeft := "C40"
		zoom := 150.0
		require.NoError(t, f.SetSheetView(sheet, 0, &excelize.ViewOptions{TopLeftCell: &topLeft, ZoomScale: &zoom}))
	})
	wb := openTemplate(t, template)

	_, err := wb.Fill([]plano.Item{scenarioItem()}, FillOptions{})
	require.NoError(t, err)
	data, err := wb.Bytes()
	require.NoError(t, err)

	f, sheet := reopen(t, data)
	view, err := f.GetSheetView(sheet, 0)
	require.NoError(t, err)
	require.NotNil(t, view.TopLeftCell)
	require.NotNil(t, view.ZoomScale)
	assert.Equal(t, "A1", *view.TopLeftCell)
	assert.Equal(t, 100.0, *view.ZoomScale)
}

func TestTemplate_OpenDoesNotTouchDisk(t *testing.T) {
	path := saveTemplate(t, withHeaders(DefaultHeaders))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)

	wb, err := tmpl.Open()
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.Fill(sampleItems(), FillOptions{})
	require.NoError(t, err)
	_, err = wb.Bytes()
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBlankCellHelpers(t *testing.T) {
	blanks := []BlankCell{
		{Cell: "G3", Row: 3, Column: 7},
		{Cell: "H3", Row: 3, Column: 8},
		{Cell: "G5", Row: 5, Column: 7},
	}
	assert.Equal(t, []string{"G3", "H3", "G5"}, CellRefs(blanks))
	assert.Equal(t, 2, RowsWithBlanks(blanks))
	assert.Equal(t, 0, RowsWithBlanks(nil))
}
