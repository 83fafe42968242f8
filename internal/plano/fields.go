package plano

import (
	"regexp"
	"strings"
)

type fieldKey int

const (
	fieldNone fieldKey = iota
	fieldAcao
	fieldArt
	fieldBem
	fieldDescricao
	fieldDestinacao
	fieldUnidade
	fieldQuantidade
	fieldNatureza
	fieldInstituicao
	fieldValorTotal
)

type labelPattern struct {
	key     fieldKey
	pattern *regexp.Regexp
}

// Patterns run against the accent-folded line; order matters for overlapping labels.
var (
	actionLabel = regexp.MustCompile(`(?i)^Acao\s*:`)
	artLabel    = regexp.MustCompile(`(?i)^Art\.?\s*(6|7|8)\s*º?\s*(?:\((\d+)\))?\s*:`)

	captureLabels = []labelPattern{
		{fieldBem, regexp.MustCompile(`(?i)^(?:Bem|Material)/Servico\s*:`)},
		{fieldDescricao, regexp.MustCompile(`(?i)^Descricao\s*:`)},
		{fieldDestinacao, regexp.MustCompile(`(?i)^Destinacao\s*:`)},
		{fieldUnidade, regexp.MustCompile(`(?i)^Unidade\s+de\s+Medida\s*:`)},
		{fieldQuantidade, regexp.MustCompile(`(?i)^Qtd\.?\s*Planejada\s*:`)},
		{fieldQuantidade, regexp.MustCompile(`(?i)^Quantidade\s+Planejada\s*:`)},
		{fieldNatureza, regexp.MustCompile(`(?i)^Natureza\s*\(ND\)\s*:`)},
		{fieldInstituicao, regexp.MustCompile(`(?i)^Instituicao\s*:`)},
		{fieldValorTotal, regexp.MustCompile(`(?i)^Valor\s+Total\s*:`)},
	}

	stopLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Cod\.?\s*Senasp\s*:`),
		regexp.MustCompile(`(?i)^Valor\s+Originario\s+Planejado\s*:`),
		regexp.MustCompile(`(?i)^Valor\s+Suplementar\s+Planejado\s*:`),
		regexp.MustCompile(`(?i)^Valor\s+Rendimento\s+Planejado\s*:`),
	}
)

// ExtractFields reads the labelled values of one item. A label line opens a field
// and unlabelled lines that follow are appended to it; stop labels close the
// current field without opening another.
func ExtractFields(lines []string) Fields {
	values := make(map[fieldKey][]string)
	artNum := ""
	current := fieldNone

	for _, line := range lines {
		folded := Fold(line)

		if matchesAny(stopLabels, folded) {
			current = fieldNone
			continue
		}

		if actionLabel.MatchString(folded) {
			current = fieldAcao
			appendValue(values, current, valueAfterColon(line))
			continue
		}

		if m := artLabel.FindStringSubmatch(folded); m != nil {
			current = fieldArt
			artNum = m[1]
			appendValue(values, current, valueAfterColon(line))
			continue
		}

		if key := matchCapture(folded); key != fieldNone {
			current = key
			appendValue(values, current, valueAfterColon(line))
			continue
		}

		if current != fieldNone {
			appendValue(values, current, line)
		}
	}

	get := func(key fieldKey) string {
		return BlankIfDashOnly(strings.Join(values[key], " "))
	}

	return Fields{
		Acao:        get(fieldAcao),
		Art:         get(fieldArt),
		ArtNum:      artNum,
		Bem:         get(fieldBem),
		Descricao:   get(fieldDescricao),
		Destinacao:  get(fieldDestinacao),
		Unidade:     get(fieldUnidade),
		Quantidade:  get(fieldQuantidade),
		Natureza:    get(fieldNatureza),
		Instituicao: get(fieldInstituicao),
		ValorTotal:  get(fieldValorTotal),
	}
}

func matchCapture(folded string) fieldKey {
	for _, label := range captureLabels {
		if label.pattern.MatchString(folded) {
			return label.key
		}
	}
	return fieldNone
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func appendValue(values map[fieldKey][]string, key fieldKey, value string) {
	if value == "" {
		return
	}
	values[key] = append(values[key], value)
}
