package planilha

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/plano-planilha/internal/plano"
)

// Analysis template geometry
const (
	AnalysisTitle      = "ANÁLISE DOS ELEMENTOS DO PLANO DE APLICAÇÃO"
	AnalysisItemsTitle = "ITENS DE CONTRATAÇÃO"

	analysisBlockStartRow = 14
	analysisBlockHeight   = 11
	analysisBlockStartCol = 1  // A
	analysisBlockEndCol   = 10 // J

	metaGeralCell      = "A8"
	indicadorGeralCell = "F10"
)

// Markers that precede the value in analysis cells without placeholder tokens
const (
	markerReference = "A referência informada foi:"
	markerMeta      = "A Meta informada foi:"
	markerPolicy    = "A política informada foi:"
	markerDescricao = "Descrição do Indicador:"
	markerFormula   = "Fórmula:"
	suffixAderencia = "Existe aderência"
	suffixIndicador = "O indicador"
)

var leadingSectionNumber = regexp.MustCompile(`^\d+\s*-\s*`)

// rangeRef is an inclusive cell range in 1-based coordinates
type rangeRef struct {
	minRow, minCol, maxRow, maxCol int
}

func (r rangeRef) overlaps(o rangeRef) bool {
	return !(r.maxRow < o.minRow || o.maxRow < r.minRow || r.maxCol < o.minCol || o.maxCol < r.minCol)
}

func (r rangeRef) cells() (string, string) {
	return cellName(r.minCol, r.minRow), cellName(r.maxCol, r.maxRow)
}

func isAnalysisSheet(f *excelize.File, sheet string) bool {
	v, err := f.GetCellValue(sheet, "A2")
	if err != nil {
		return false
	}
	return strings.Contains(foldUpper(v), foldUpper(AnalysisTitle))
}

func foldUpper(s string) string {
	return strings.ToUpper(plano.Fold(plano.Normalize(s)))
}

// fillAnalysis writes the general analysis cells and one block per META
// ESPECÍFICA section, returning the cells left blank
func (w *Workbook) fillAnalysis(a plano.Analysis) (plano.Analysis, []BlankCell, error) {
	if err := w.fillGeneralCell(metaGeralCell, "1*", a.MetaGeral); err != nil {
		return a, nil, err
	}
	if err := w.fillGeneralCell(indicadorGeralCell, "0*", a.IndicadorGeral); err != nil {
		return a, nil, err
	}

	if len(a.Sections) > 0 {
		if err := w.ensureBlocks(len(a.Sections)); err != nil {
			return a, nil, err
		}
		for idx := 2; idx <= len(a.Sections); idx++ {
			start := blockStartRow(idx)
			if err := w.unmergeBlock(start); err != nil {
				return a, nil, err
			}
			if err := w.copyBlock(analysisBlockStartRow, start); err != nil {
				return a, nil, err
			}
		}
		for idx, section := range a.Sections {
			if err := w.fillSection(idx+1, section, a.ValorReferencia); err != nil {
				return a, nil, err
			}
		}
	}

	return a, analysisBlankCells(a), nil
}

func blockStartRow(block int) int {
	return analysisBlockStartRow + (block-1)*analysisBlockHeight
}

func (w *Workbook) fillGeneralCell(cell, token, value string) error {
	base, err := w.file.GetCellValue(w.sheet, cell)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cell, err)
	}
	replaced := replacePlaceholder(base, token, value)
	if replaced != base || value != "" {
		if replaced == base {
			replaced = value
		}
		if err := w.file.SetCellValue(w.sheet, cell, replaced); err != nil {
			return fmt.Errorf("failed to write %s: %w", cell, err)
		}
	}
	return w.setFontBlack(cell)
}

func (w *Workbook) fillSection(idx int, s plano.Section, reference string) error {
	row := blockStartRow(idx)

	metaText := strings.TrimSpace(leadingSectionNumber.ReplaceAllString(s.MetaTexto, ""))
	numbered := ""
	if metaText != "" {
		numbered = fmt.Sprintf("%d - %s", idx, metaText)
	}

	fills := []struct {
		col    string
		render func(base string) string
	}{
		{"A", func(base string) string {
			if r := replacePlaceholder(base, "2*", numbered); r != base {
				return r
			}
			return numbered
		}},
		{"E", func(base string) string {
			if r := replacePlaceholder(base, "3*", reference); r != base {
				return r
			}
			return injectReference(base, reference)
		}},
		{"F", func(base string) string {
			r := replacePlaceholder(base, "4*", s.DescricaoIndicador)
			r = replacePlaceholder(r, "5*", s.Formula)
			if r != base {
				return r
			}
			return injectDescricaoFormula(base, s.DescricaoIndicador, s.Formula)
		}},
		{"G", func(base string) string {
			if r := replacePlaceholder(base, "6*", s.MetaPESP); r != base {
				return r
			}
			return injectMarked(base, markerMeta, s.MetaPESP)
		}},
		{"H", func(base string) string {
			if r := replacePlaceholder(base, "7*", s.MetaPNSP); r != base {
				return r
			}
			return injectMarked(base, markerMeta, s.MetaPNSP)
		}},
		{"I", func(base string) string {
			if r := replacePlaceholder(base, "8*", s.CarteiraMJSP); r != base {
				return r
			}
			return injectMarked(base, markerPolicy, s.CarteiraMJSP)
		}},
	}

	for _, fill := range fills {
		cell := fmt.Sprintf("%s%d", fill.col, row)
		base, err := w.file.GetCellValue(w.sheet, cell)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", cell, err)
		}
		if err := w.file.SetCellValue(w.sheet, cell, fill.render(base)); err != nil {
			return fmt.Errorf("failed to write %s: %w", cell, err)
		}
	}

	for col := analysisBlockStartCol; col <= analysisBlockEndCol; col++ {
		if err := w.setFontBlack(cellName(col, row)); err != nil {
			return err
		}
	}
	return nil
}

// replacePlaceholder replaces every token...token segment of text with value.
// Text without such a segment is returned unchanged.
func replacePlaceholder(text, token, value string) string {
	pattern := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(token) + `.*?` + regexp.QuoteMeta(token))
	if !pattern.MatchString(text) {
		return text
	}
	return pattern.ReplaceAllLiteralString(text, value)
}

func injectReference(base, reference string) string {
	if reference == "" {
		return base
	}
	before, _, found := strings.Cut(base, markerReference)
	if !found {
		return reference
	}
	return before + markerReference + "\n\n\n\n" + reference
}

// injectMarked places value after marker, keeping the adherence question
// that follows it in the template
func injectMarked(base, marker, value string) string {
	if value == "" {
		return base
	}
	before, after, found := strings.Cut(base, marker)
	if !found {
		return value
	}
	suffix := ""
	if idx := strings.Index(after, suffixAderencia); idx >= 0 {
		suffix = "\n\n\n\n" + strings.TrimSpace(after[idx:])
	}
	return before + marker + "\n\n\n\n" + value + suffix
}

func injectDescricaoFormula(base, descricao, formula string) string {
	if descricao == "" && formula == "" {
		return base
	}
	if !strings.Contains(base, markerDescricao) || !strings.Contains(base, markerFormula) {
		var parts []string
		if descricao != "" {
			parts = append(parts, markerDescricao+" "+descricao)
		}
		if formula != "" {
			parts = append(parts, markerFormula+" "+formula)
		}
		return strings.Join(parts, "\n\n")
	}

	pre, afterDesc, _ := strings.Cut(base, markerDescricao)
	afterFormula := ""
	if _, rest, found := strings.Cut(afterDesc, markerFormula); found {
		afterFormula = rest
	}
	suffix := ""
	if idx := strings.Index(afterFormula, suffixIndicador); idx >= 0 {
		suffix = "\n\n" + strings.TrimSpace(afterFormula[idx:])
	}
	return pre + markerDescricao + "\n" + descricao + "\n\n" + markerFormula + "\n" + formula + suffix
}

// setFontBlack keeps the cell style and forces a black font colour
func (w *Workbook) setFontBlack(cell string) error {
	id, err := w.file.GetCellStyle(w.sheet, cell)
	if err != nil {
		return fmt.Errorf("failed to read style of %s: %w", cell, err)
	}
	style, err := w.file.GetStyle(id)
	if err != nil {
		return fmt.Errorf("failed to load style %d: %w", id, err)
	}
	if style.Font == nil {
		style.Font = &excelize.Font{}
	}
	style.Font.Color = "000000"
	newID, err := w.file.NewStyle(style)
	if err != nil {
		return fmt.Errorf("failed to create style for %s: %w", cell, err)
	}
	if err := w.file.SetCellStyle(w.sheet, cell, cell, newID); err != nil {
		return fmt.Errorf("failed to style %s: %w", cell, err)
	}
	return nil
}

func (w *Workbook) mergedRanges() ([]rangeRef, error) {
	merges, err := w.file.GetMergeCells(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged cells: %w", err)
	}
	ranges := make([]rangeRef, 0, len(merges))
	for _, m := range merges {
		minCol, minRow, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			return nil, err
		}
		maxCol, maxRow, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, rangeRef{minRow: minRow, minCol: minCol, maxRow: maxRow, maxCol: maxCol})
	}
	return ranges, nil
}

// countBlocks counts the analysis blocks already laid out in the template,
// recognised by their 11-row merge in column A. There is always at least one.
func (w *Workbook) countBlocks() (int, error) {
	ranges, err := w.mergedRanges()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, r := range ranges {
		if r.minCol == analysisBlockStartCol && r.maxCol == analysisBlockStartCol &&
			r.maxRow-r.minRow+1 == analysisBlockHeight &&
			r.minRow >= analysisBlockStartRow &&
			(r.minRow-analysisBlockStartRow)%analysisBlockHeight == 0 {
			count++
		}
	}
	return max(count, 1), nil
}

// ensureBlocks makes room for required blocks, reusing the empty rows above
// the items table before inserting new ones
func (w *Workbook) ensureBlocks(required int) error {
	existing, err := w.countBlocks()
	if err != nil {
		return err
	}
	if required <= existing {
		return nil
	}

	titleRow, err := w.findRowWithText(AnalysisItemsTitle)
	if err != nil {
		return err
	}

	needed := (required - existing) * analysisBlockHeight
	insertAt := analysisBlockStartRow + existing*analysisBlockHeight
	reusable := 0
	if titleRow > insertAt {
		reusable = max(0, titleRow-insertAt-1)
	}
	if err := w.insertRows(insertAt, max(0, needed-reusable)); err != nil {
		return err
	}

	for block := existing + 1; block <= required; block++ {
		if err := w.copyBlock(analysisBlockStartRow, blockStartRow(block)); err != nil {
			return err
		}
	}
	return nil
}

// insertRows inserts amount rows at insertAt. Merges crossing the insertion
// point are split so the rebuilt merges never overlap.
func (w *Workbook) insertRows(insertAt, amount int) error {
	if amount <= 0 {
		return nil
	}
	original, err := w.mergedRanges()
	if err != nil {
		return err
	}
	for _, r := range original {
		start, end := r.cells()
		if err := w.file.UnmergeCell(w.sheet, start, end); err != nil {
			return fmt.Errorf("failed to unmerge %s:%s: %w", start, end, err)
		}
	}
	if err := w.file.InsertRows(w.sheet, insertAt, amount); err != nil {
		return fmt.Errorf("failed to insert %d rows at %d: %w", amount, insertAt, err)
	}

	var rebuilt []rangeRef
	add := func(r rangeRef) {
		if r.minRow > r.maxRow || r.minCol > r.maxCol {
			return
		}
		if r.minRow == r.maxRow && r.minCol == r.maxCol {
			return
		}
		for _, existing := range rebuilt {
			if r.overlaps(existing) {
				return
			}
		}
		rebuilt = append(rebuilt, r)
	}

	for _, r := range original {
		switch {
		case r.maxRow < insertAt:
			add(r)
		case r.minRow >= insertAt:
			add(rangeRef{r.minRow + amount, r.minCol, r.maxRow + amount, r.maxCol})
		default:
			add(rangeRef{r.minRow, r.minCol, insertAt - 1, r.maxCol})
			add(rangeRef{insertAt + amount, r.minCol, r.maxRow + amount, r.maxCol})
		}
	}

	for _, r := range rebuilt {
		start, end := r.cells()
		if err := w.file.MergeCell(w.sheet, start, end); err != nil {
			return fmt.Errorf("failed to merge %s:%s: %w", start, end, err)
		}
	}
	return nil
}

// unmergeBlock removes the merges lying entirely inside the block at start
func (w *Workbook) unmergeBlock(start int) error {
	ranges, err := w.mergedRanges()
	if err != nil {
		return err
	}
	end := start + analysisBlockHeight - 1
	for _, r := range ranges {
		if r.minRow >= start && r.maxRow <= end && r.minCol >= analysisBlockStartCol && r.maxCol <= analysisBlockEndCol {
			a, b := r.cells()
			if err := w.file.UnmergeCell(w.sheet, a, b); err != nil {
				return fmt.Errorf("failed to unmerge %s:%s: %w", a, b, err)
			}
		}
	}
	return nil
}

// copyBlock copies values, styles, row heights and merges of one block
func (w *Workbook) copyBlock(src, dst int) error {
	raw := excelize.Options{RawCellValue: true}
	for offset := 0; offset < analysisBlockHeight; offset++ {
		srcRow, dstRow := src+offset, dst+offset

		height, err := w.file.GetRowHeight(w.sheet, srcRow)
		if err != nil {
			return fmt.Errorf("failed to read height of row %d: %w", srcRow, err)
		}
		if err := w.file.SetRowHeight(w.sheet, dstRow, height); err != nil {
			return fmt.Errorf("failed to set height of row %d: %w", dstRow, err)
		}

		for col := analysisBlockStartCol; col <= analysisBlockEndCol; col++ {
			from, to := cellName(col, srcRow), cellName(col, dstRow)
			value, err := w.file.GetCellValue(w.sheet, from, raw)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", from, err)
			}
			if err := w.file.SetCellValue(w.sheet, to, value); err != nil {
				return fmt.Errorf("failed to write %s: %w", to, err)
			}
			style, err := w.file.GetCellStyle(w.sheet, from)
			if err != nil {
				return fmt.Errorf("failed to read style of %s: %w", from, err)
			}
			if err := w.file.SetCellStyle(w.sheet, to, to, style); err != nil {
				return fmt.Errorf("failed to style %s: %w", to, err)
			}
		}
	}

	ranges, err := w.mergedRanges()
	if err != nil {
		return err
	}
	shift := dst - src
	for _, r := range ranges {
		if r.minRow >= src && r.maxRow < src+analysisBlockHeight &&
			r.minCol >= analysisBlockStartCol && r.maxCol <= analysisBlockEndCol {
			shifted := rangeRef{r.minRow + shift, r.minCol, r.maxRow + shift, r.maxCol}
			a, b := shifted.cells()
			if err := w.file.MergeCell(w.sheet, a, b); err != nil {
				return fmt.Errorf("failed to merge %s:%s: %w", a, b, err)
			}
		}
	}
	return nil
}

// findRowWithText returns the first row whose column A equals text, or 0
func (w *Workbook) findRowWithText(text string) (int, error) {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %s: %w", w.sheet, err)
	}
	want := foldUpper(text)
	for i, row := range rows {
		if len(row) > 0 && foldUpper(row[0]) == want {
			return i + 1, nil
		}
	}
	return 0, nil
}

// analysisItemsLayout locates the item table under the "ITENS DE
// CONTRATAÇÃO" title. found is false when the template has no such title.
func (w *Workbook) analysisItemsLayout() (layout Layout, found bool, err error) {
	titleRow, err := w.findRowWithText(AnalysisItemsTitle)
	if err != nil {
		return Layout{}, false, err
	}
	if titleRow == 0 {
		return Layout{HeaderRow: DefaultHeaderRow, StartRow: DefaultStartRow}, false, nil
	}
	headerRow := titleRow + 1
	headers, err := w.rowValues(headerRow)
	if err != nil {
		return Layout{}, false, err
	}
	return Layout{
		HeaderRow: headerRow,
		StartRow:  headerRow + 1,
		Columns:   columnsFromHeaders(headers),
	}, true, nil
}

// analysisBlankCells lists the analysis cells left without extracted data
func analysisBlankCells(a plano.Analysis) []BlankCell {
	var blanks []BlankCell
	add := func(col, row int, header string) {
		blanks = append(blanks, BlankCell{Cell: cellName(col, row), Row: row, Column: col, Header: header})
	}

	if a.MetaGeral == "" {
		add(1, 8, "Meta Geral")
	}
	if a.IndicadorGeral == "" {
		add(6, 10, "Indicador Geral")
	}

	for idx, s := range a.Sections {
		row := blockStartRow(idx + 1)
		if s.MetaTexto == "" {
			add(1, row, "Meta Específica")
		}
		if a.ValorReferencia == "" {
			add(5, row, "Valor de Referência")
		}
		if s.DescricaoIndicador == "" || s.Formula == "" {
			add(6, row, "Descrição do Indicador/Fórmula")
		}
		if s.MetaPESP == "" {
			add(7, row, "Meta do PESP")
		}
		if s.MetaPNSP == "" {
			add(8, row, "Meta do PNSP")
		}
		if s.CarteiraMJSP == "" {
			add(9, row, "Carteira de Políticas do MJSP")
		}
	}
	return blanks
}
