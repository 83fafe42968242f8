package planilha

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/plano-planilha/internal/plano"
)

var (
	// ErrTemplateNotFound is returned when the template file is missing
	ErrTemplateNotFound = errors.New("template not found")
	// ErrMalformedTemplate is returned when the template cannot be opened as a workbook
	ErrMalformedTemplate = errors.New("malformed template")
)

// Template is the spreadsheet every request starts from. The file is read
// again for each request so edits on disk are picked up without a restart.
type Template struct {
	path string
}

// LoadTemplate checks that path holds a readable workbook
func LoadTemplate(path string) (*Template, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("cannot access template %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrTemplateNotFound, path)
	}

	t := &Template{path: path}
	wb, err := t.Open()
	if err != nil {
		return nil, err
	}
	_ = wb.Close()
	return t, nil
}

// Path returns the template file path
func (t *Template) Path() string {
	return t.path
}

// Open returns a fresh in-memory copy of the template
func (t *Template) Open() (*Workbook, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, t.path)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", t.path, err)
	}
	return OpenWorkbook(bytes.NewReader(data))
}

// Workbook is one template copy being filled. It is not safe for concurrent use.
type Workbook struct {
	file  *excelize.File
	sheet string
}

// OpenWorkbook parses an .xlsx stream and selects its active sheet
func OpenWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		_ = f.Close()
		return nil, fmt.Errorf("%w: no active sheet", ErrMalformedTemplate)
	}
	return &Workbook{file: f, sheet: sheet}, nil
}

// Sheet returns the name of the sheet being filled
func (w *Workbook) Sheet() string {
	return w.sheet
}

// File exposes the underlying workbook
func (w *Workbook) File() *excelize.File {
	return w.file
}

// IsAnalysis reports whether the active sheet is the analysis template
func (w *Workbook) IsAnalysis() bool {
	return isAnalysisSheet(w.file, w.sheet)
}

// FillOptions carries the document-level data the writer needs
type FillOptions struct {
	// Article forces the article number in the action header ("6", "7" or "8")
	Article string
	// Analysis is the document analysis written by analysis templates
	Analysis plano.Analysis
}

// FillResult describes what was written
type FillResult struct {
	Layout     Layout
	Rows       []Row
	BlankCells []BlankCell
	Analysis   *plano.Analysis
}

// Fill writes items into the workbook. Analysis templates get the analysis
// blocks first and the item table below them, when the template has one.
func (w *Workbook) Fill(items []plano.Item, opts FillOptions) (*FillResult, error) {
	result := &FillResult{}

	if w.IsAnalysis() {
		analysis, blanks, err := w.fillAnalysis(opts.Analysis)
		if err != nil {
			return nil, err
		}
		result.Analysis = &analysis
		result.BlankCells = append(result.BlankCells, blanks...)

		layout, found, err := w.analysisItemsLayout()
		if err != nil {
			return nil, err
		}
		result.Layout = layout
		if !found {
			result.Rows = BuildRows(items, layout)
			sortBlankCells(result.BlankCells)
			return result, nil
		}
	} else {
		layout, defaulted, err := w.itemsLayout()
		if err != nil {
			return nil, err
		}
		if defaulted {
			if err := w.writeHeaders(layout); err != nil {
				return nil, err
			}
		}
		result.Layout = layout
	}

	result.Rows = BuildRows(items, result.Layout)
	if err := w.writeItems(result.Layout, result.Rows, opts.Article); err != nil {
		return nil, err
	}
	result.BlankCells = append(result.BlankCells, CollectBlankCells(result.Rows, result.Layout)...)

	sortBlankCells(result.BlankCells)
	return result, nil
}

// Bytes resets the sheet view and serializes the workbook
func (w *Workbook) Bytes() ([]byte, error) {
	if err := w.resetView(); err != nil {
		return nil, err
	}
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the workbook resources
func (w *Workbook) Close() error {
	return w.file.Close()
}

// resetView scrolls the sheet to A1 at 100% zoom
func (w *Workbook) resetView() error {
	topLeft := "A1"
	zoom := 100.0
	err := w.file.SetSheetView(w.sheet, 0, &excelize.ViewOptions{
		TopLeftCell: &topLeft,
		ZoomScale:   &zoom,
	})
	if err != nil {
		return fmt.Errorf("failed to reset sheet view: %w", err)
	}
	return nil
}

// itemsLayout reads the header row of an items template. An empty row
// yields the default layout and reports defaulted.
func (w *Workbook) itemsLayout() (layout Layout, defaulted bool, err error) {
	headers, err := w.rowValues(DefaultHeaderRow)
	if err != nil {
		return Layout{}, false, err
	}
	columns := columnsFromHeaders(headers)
	if len(columns) == 0 {
		return DefaultLayout(), true, nil
	}
	return Layout{
		HeaderRow: DefaultHeaderRow,
		StartRow:  DefaultStartRow,
		Columns:   columns,
	}, false, nil
}

// rowValues returns the cell texts of a 1-based row
func (w *Workbook) rowValues(row int) ([]string, error) {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", w.sheet, err)
	}
	if row < 1 || row > len(rows) {
		return nil, nil
	}
	return rows[row-1], nil
}

// lastRow returns the last row holding a value
func (w *Workbook) lastRow() (int, error) {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %s: %w", w.sheet, err)
	}
	return len(rows), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
