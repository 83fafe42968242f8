package planilha

import (
	"regexp"
	"sort"
	"strings"

	"github.com/a3tai/plano-planilha/internal/plano"
)

// Template column headers, as written in row 2 of the items spreadsheet
const (
	HeaderMeta              = "Número da Meta Específica"
	HeaderItem              = "Número do Item"
	HeaderAction            = "Ação conforme Art. 7º da portaria nº 685"
	HeaderMaterial          = "Material/Serviço"
	HeaderDescricao         = "Descrição"
	HeaderDestinacao        = "Destinação"
	HeaderInstituicao       = "Instituição"
	HeaderNatureza          = "Natureza da Despesa"
	HeaderQuantidade        = "Quantidade Planejada"
	HeaderUnidade           = "Unidade de Medida"
	HeaderQuantidadeUnidade = "Quantidade/Unidade"
	HeaderValor             = "Valor Planejado Total"
	HeaderStatus            = "Status do Item"
	HeaderValorStatus       = "Valor/Status"
)

// Row keys that do not match a literal header
const (
	// ActionKey identifies the action column whatever article number its header carries
	ActionKey = "acao_art"
	// ActionNumKey carries the article number read from the item, never written as a column
	ActionNumKey = "acao_art_num"
)

const (
	// DefaultHeaderRow is the header row of the items template
	DefaultHeaderRow = 2
	// DefaultStartRow is the first data row of the items template
	DefaultStartRow = 3
)

// DefaultHeaders is the column order used when the template header row is empty
var DefaultHeaders = []string{
	HeaderMeta,
	HeaderItem,
	HeaderAction,
	HeaderMaterial,
	HeaderDescricao,
	HeaderDestinacao,
	HeaderInstituicao,
	HeaderNatureza,
	HeaderQuantidade,
	HeaderUnidade,
	HeaderValor,
	HeaderStatus,
}

var actionHeaderPattern = regexp.MustCompile(`(?i)^Acao conforme Art\.\s*\d+\s*º\s+da portaria n\s*º\s*685$`)

// Column maps a row key to a 1-based worksheet column
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Index int    `json:"index"`
}

// Layout describes where the item table lives in a worksheet
type Layout struct {
	HeaderRow int      `json:"header_row"`
	StartRow  int      `json:"start_row"`
	Columns   []Column `json:"columns"`
}

// Has reports whether the layout has a column for key
func (l Layout) Has(key string) bool {
	_, ok := l.Column(key)
	return ok
}

// Column returns the column mapped to key
func (l Layout) Column(key string) (Column, bool) {
	for _, c := range l.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// MaxColumn returns the right-most mapped column index, or 0 without columns
func (l Layout) MaxColumn() int {
	maxCol := 0
	for _, c := range l.Columns {
		maxCol = max(maxCol, c.Index)
	}
	return maxCol
}

// headerKey maps a header title to its row key
func headerKey(title string) string {
	if actionHeaderPattern.MatchString(plano.Fold(title)) {
		return ActionKey
	}
	return title
}

// columnsFromHeaders builds the column map of a header row. The first
// occurrence of a key wins; empty cells are skipped.
func columnsFromHeaders(headers []string) []Column {
	seen := make(map[string]bool)
	var columns []Column
	for i, raw := range headers {
		title := strings.TrimSpace(raw)
		if title == "" {
			continue
		}
		key := headerKey(title)
		if seen[key] {
			continue
		}
		seen[key] = true
		columns = append(columns, Column{Key: key, Title: title, Index: i + 1})
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i].Index < columns[j].Index })
	return columns
}

// DefaultLayout is the items layout used when the template has no headers
func DefaultLayout() Layout {
	return Layout{
		HeaderRow: DefaultHeaderRow,
		StartRow:  DefaultStartRow,
		Columns:   columnsFromHeaders(DefaultHeaders),
	}
}
