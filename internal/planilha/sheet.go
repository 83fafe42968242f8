package planilha

import (
	"fmt"
	"slices"
)

// validArticles are the article numbers the action header may carry
var validArticles = []string{"6", "7", "8"}

// writeHeaders writes the column titles into the header row
func (w *Workbook) writeHeaders(layout Layout) error {
	for _, col := range layout.Columns {
		if err := w.file.SetCellValue(w.sheet, cellName(col.Index, layout.HeaderRow), col.Title); err != nil {
			return fmt.Errorf("failed to write header %q: %w", col.Title, err)
		}
	}
	return nil
}

// writeItems clears the data area below the header row and writes one row per
// record. When the first data row carries a style, rows without one inherit it.
func (w *Workbook) writeItems(layout Layout, rows []Row, article string) error {
	if len(layout.Columns) == 0 {
		return nil
	}

	if err := w.updateActionHeader(layout, rows, article); err != nil {
		return err
	}
	if err := w.clearData(layout); err != nil {
		return err
	}

	templateStyles, styled, err := w.rowStyles(layout, layout.StartRow)
	if err != nil {
		return err
	}
	templateHeight, err := w.file.GetRowHeight(w.sheet, layout.StartRow)
	if err != nil {
		return fmt.Errorf("failed to read row height: %w", err)
	}

	for idx, row := range rows {
		excelRow := layout.StartRow + idx

		if styled && excelRow != layout.StartRow {
			if err := w.inheritStyle(layout, excelRow, templateStyles, templateHeight); err != nil {
				return err
			}
		}

		for _, col := range layout.Columns {
			value, ok := row[col.Key]
			if !ok || value == nil {
				value = ""
			}
			if err := w.file.SetCellValue(w.sheet, cellName(col.Index, excelRow), value); err != nil {
				return fmt.Errorf("failed to write %s at row %d: %w", col.Title, excelRow, err)
			}
		}
	}
	return nil
}

// clearData empties every mapped cell from the first data row down
func (w *Workbook) clearData(layout Layout) error {
	lastRow, err := w.lastRow()
	if err != nil {
		return err
	}
	maxCol := layout.MaxColumn()
	for r := layout.StartRow; r <= lastRow; r++ {
		for c := 1; c <= maxCol; c++ {
			cell := cellName(c, r)
			value, err := w.file.GetCellValue(w.sheet, cell)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", cell, err)
			}
			if value == "" {
				continue
			}
			if err := w.file.SetCellValue(w.sheet, cell, nil); err != nil {
				return fmt.Errorf("failed to clear %s: %w", cell, err)
			}
		}
	}
	return nil
}

// rowStyles returns the style of each mapped cell of row and whether any of
// them is not the default style
func (w *Workbook) rowStyles(layout Layout, row int) (map[int]int, bool, error) {
	styles := make(map[int]int, len(layout.Columns))
	styled := false
	for _, col := range layout.Columns {
		id, err := w.file.GetCellStyle(w.sheet, cellName(col.Index, row))
		if err != nil {
			return nil, false, fmt.Errorf("failed to read style of row %d: %w", row, err)
		}
		styles[col.Index] = id
		if id != 0 {
			styled = true
		}
	}
	return styles, styled, nil
}

// inheritStyle copies the template row style onto an unstyled row
func (w *Workbook) inheritStyle(layout Layout, row int, styles map[int]int, height float64) error {
	_, styled, err := w.rowStyles(layout, row)
	if err != nil {
		return err
	}
	if styled {
		return nil
	}
	for col, id := range styles {
		cell := cellName(col, row)
		if err := w.file.SetCellStyle(w.sheet, cell, cell, id); err != nil {
			return fmt.Errorf("failed to style %s: %w", cell, err)
		}
	}
	if err := w.file.SetRowHeight(w.sheet, row, height); err != nil {
		return fmt.Errorf("failed to set height of row %d: %w", row, err)
	}
	return nil
}

// updateActionHeader rewrites the action header with the article number.
// The explicit article wins over the one read from the first row; anything
// other than 6, 7 or 8 leaves the header untouched.
func (w *Workbook) updateActionHeader(layout Layout, rows []Row, article string) error {
	col, ok := layout.Column(ActionKey)
	if !ok || len(rows) == 0 {
		return nil
	}
	if article == "" {
		article = stringValue(rows[0][ActionNumKey])
	}
	if !slices.Contains(validArticles, article) {
		return nil
	}
	title := fmt.Sprintf("Ação conforme Art. %sº da portaria nº 685", article)
	if err := w.file.SetCellValue(w.sheet, cellName(col.Index, layout.HeaderRow), title); err != nil {
		return fmt.Errorf("failed to update action header: %w", err)
	}
	return nil
}
