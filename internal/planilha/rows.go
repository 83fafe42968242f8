package planilha

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/plano-planilha/internal/plano"
)

// DefaultStatus is written when an item heading carries no status
const DefaultStatus = "Planejado"

var (
	nonDigits  = regexp.MustCompile(`[^0-9]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Row maps row keys (header titles, ActionKey, ActionNumKey) to cell values.
// Values are strings or ints; a missing key or "" is a blank cell.
type Row map[string]any

// IsBlank reports whether v leaves a cell empty
func IsBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}

// BuildRows converts items into rows for the given layout. Composite columns
// (material summary, quantity/unit, value/status) are only filled when the
// layout lacks the dedicated columns.
func BuildRows(items []plano.Item, layout Layout) []Row {
	hasDescricao := layout.Has(HeaderDescricao)
	hasDestinacao := layout.Has(HeaderDestinacao)
	hasQuantidadeUnidade := layout.Has(HeaderQuantidadeUnidade)
	hasValorStatus := layout.Has(HeaderValorStatus)
	hasUnidade := layout.Has(HeaderUnidade)
	hasStatus := layout.Has(HeaderStatus)

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		f := item.Fields

		material := f.Bem
		if !hasDescricao && !hasDestinacao {
			material = buildMaterial(f.Bem, f.Descricao, f.Destinacao)
		}

		valor := FormatCurrency(f.ValorTotal)
		status := item.Status
		if status == "" {
			status = DefaultStatus
		}

		var quantidade any = ""
		if n, ok := ParseInt(f.Quantidade); ok {
			quantidade = n
		}

		quantidadeUnidade := ""
		if hasQuantidadeUnidade && !hasUnidade {
			quantidadeUnidade = joinNonEmpty(" ", stringValue(quantidade), f.Unidade)
		}

		valorStatus := ""
		if hasValorStatus && !hasStatus {
			valorStatus = joinNonEmpty(" | ", valor, status)
		}

		row := Row{
			HeaderMeta:              item.Meta,
			HeaderItem:              item.Number,
			ActionKey:               f.Action(),
			ActionNumKey:            f.ArtNum,
			HeaderMaterial:          material,
			HeaderDescricao:         "",
			HeaderDestinacao:        "",
			HeaderInstituicao:       f.Instituicao,
			HeaderNatureza:          f.Natureza,
			HeaderQuantidade:        quantidade,
			HeaderUnidade:           f.Unidade,
			HeaderQuantidadeUnidade: quantidadeUnidade,
			HeaderValor:             valor,
			HeaderStatus:            status,
			HeaderValorStatus:       valorStatus,
		}
		if hasDescricao {
			row[HeaderDescricao] = f.Descricao
		}
		if hasDestinacao {
			row[HeaderDestinacao] = f.Destinacao
		}
		rows = append(rows, row)
	}
	return rows
}

func buildMaterial(bem, descricao, destinacao string) string {
	var parts []string
	if bem != "" {
		parts = append(parts, "Bem/Serviço: "+bem)
	}
	if descricao != "" {
		parts = append(parts, "Descrição: "+descricao)
	}
	if destinacao != "" {
		parts = append(parts, "Destinação: "+destinacao)
	}
	return strings.Join(parts, " | ")
}

// FormatCurrency rewrites a Brazilian money amount as "R$ 1.234,56".
// Empty input stays empty.
func FormatCurrency(value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "R$", ""))
	value = strings.ReplaceAll(value, ".", "")
	value = whitespace.ReplaceAllString(value, "")
	if value == "" {
		return ""
	}

	integerPart, decimalPart := value, "00"
	if before, after, found := strings.Cut(value, ","); found {
		integerPart, decimalPart = before, after
	}

	integerPart = strings.TrimLeft(nonDigits.ReplaceAllString(integerPart, ""), "0")
	if integerPart == "" {
		integerPart = "0"
	}

	decimalPart = nonDigits.ReplaceAllString(decimalPart, "")
	if len(decimalPart) > 2 {
		decimalPart = decimalPart[:2]
	}
	decimalPart += strings.Repeat("0", 2-len(decimalPart))

	return fmt.Sprintf("R$ %s,%s", groupThousands(integerPart), decimalPart)
}

func groupThousands(digits string) string {
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return strings.Join(groups, ".")
}

// ParseInt keeps only the digits of value. It reports false when none remain.
func ParseInt(value string) (int, bool) {
	digits := nonDigits.ReplaceAllString(value, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
