package planilha

import "sort"

// BlankCell is an expected cell left empty because its field was not found
type BlankCell struct {
	Cell   string `json:"cell"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Header string `json:"header"`
}

// CollectBlankCells returns one entry per mapped column left blank in each
// row, ordered by row then column
func CollectBlankCells(rows []Row, layout Layout) []BlankCell {
	var blanks []BlankCell
	for idx, row := range rows {
		excelRow := layout.StartRow + idx
		for _, col := range layout.Columns {
			if !IsBlank(row[col.Key]) {
				continue
			}
			blanks = append(blanks, BlankCell{
				Cell:   cellName(col.Index, excelRow),
				Row:    excelRow,
				Column: col.Index,
				Header: col.Title,
			})
		}
	}
	sortBlankCells(blanks)
	return blanks
}

// CellRefs lists the cell references of blanks
func CellRefs(blanks []BlankCell) []string {
	refs := make([]string, 0, len(blanks))
	for _, b := range blanks {
		refs = append(refs, b.Cell)
	}
	return refs
}

// RowsWithBlanks counts the distinct rows holding at least one blank cell
func RowsWithBlanks(blanks []BlankCell) int {
	rows := make(map[int]struct{})
	for _, b := range blanks {
		rows[b.Row] = struct{}{}
	}
	return len(rows)
}

func sortBlankCells(blanks []BlankCell) {
	sort.SliceStable(blanks, func(i, j int) bool {
		if blanks[i].Row != blanks[j].Row {
			return blanks[i].Row < blanks[j].Row
		}
		return blanks[i].Column < blanks[j].Column
	})
}
