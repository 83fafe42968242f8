package plano

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	metaGeralLine       = regexp.MustCompile(`(?i)^Meta Geral$`)
	metaGeralStop       = regexp.MustCompile(`(?i)^(Justificativa|Indicador Geral de Resultado|META\s+ESPECIFICA)`)
	indicadorGeralLine  = regexp.MustCompile(`(?i)^Indicador Geral de Resultado$`)
	indicadorGeralStop  = regexp.MustCompile(`(?i)^(Meta Geral|META\s+ESPECIFICA)`)
	valorReferencia     = regexp.MustCompile(`(?i)valor de refer[eê]ncia\s*:`)
	valorReferenciaStop = regexp.MustCompile(`(?i)^(META\s+ESPECIFICA|Descricao do Indicador:|Itens da Meta|Status:)`)
	sectionStatusLine   = regexp.MustCompile(`(?i)^Status:`)
	sectionItemsLine    = regexp.MustCompile(`(?i)^Itens da Meta$`)
	metaPESPCutoff      = regexp.MustCompile(
		`(?i)\b(?:Periodicidade|Fonte(?:/Ano)?|Valor de Refer[eê]ncia(?:/Fonte)?)\s*:`)
)

type sectionField int

const (
	sectionNone sectionField = iota
	sectionMetaTexto
	sectionDescricao
	sectionFormula
	sectionCarteira
	sectionPNSP
	sectionPESP
)

var sectionLabels = []struct {
	field   sectionField
	pattern *regexp.Regexp
}{
	{sectionDescricao, regexp.MustCompile(`(?i)^Descricao do Indicador\s*:`)},
	{sectionFormula, regexp.MustCompile(`(?i)^Formula\s*:`)},
	{sectionCarteira, regexp.MustCompile(`(?i)^Carteira de Politicas do MJSP\s*:`)},
	{sectionPNSP, regexp.MustCompile(`(?i)^Meta do PNSP\s*:`)},
	{sectionPESP, regexp.MustCompile(`(?i)^Meta do PESP\s*:`)},
}

// ExtractAnalysis collects the plan-level texts and one Section per META ESPECÍFICA
func ExtractAnalysis(lines []string) Analysis {
	return Analysis{
		IndicadorGeral:  collectAfterHeading(lines, indicadorGeralLine, indicadorGeralStop),
		MetaGeral:       collectAfterHeading(lines, metaGeralLine, metaGeralStop),
		ValorReferencia: extractValorReferencia(lines),
		Sections:        ExtractSections(lines),
	}
}

// collectAfterHeading joins the lines that follow the first heading match until a stop line
func collectAfterHeading(lines []string, heading, stop *regexp.Regexp) string {
	for idx, line := range lines {
		if !heading.MatchString(Fold(line)) {
			continue
		}
		var collected []string
		for _, next := range lines[idx+1:] {
			if stop.MatchString(Fold(next)) {
				break
			}
			collected = append(collected, next)
		}
		return BlankIfDashOnly(strings.Join(collected, " "))
	}
	return ""
}

func extractValorReferencia(lines []string) string {
	for idx, line := range lines {
		loc := valorReferencia.FindStringIndex(line)
		if loc == nil {
			continue
		}
		collected := []string{strings.TrimSpace(line[loc[0]:])}
		for _, next := range lines[idx+1:] {
			if valorReferenciaStop.MatchString(Fold(next)) {
				break
			}
			collected = append(collected, next)
		}
		return BlankIfDashOnly(strings.Join(collected, " "))
	}
	return ""
}

// ExtractSections returns the analysis fields of every META ESPECÍFICA block in order
func ExtractSections(lines []string) []Section {
	var (
		sections []Section
		current  map[sectionField][]string
		numero   int
		field    = sectionNone
	)

	finish := func() {
		if current == nil {
			return
		}
		join := func(f sectionField) string {
			return BlankIfDashOnly(strings.Join(current[f], " "))
		}
		sections = append(sections, Section{
			Numero:             numero,
			MetaTexto:          join(sectionMetaTexto),
			DescricaoIndicador: join(sectionDescricao),
			Formula:            join(sectionFormula),
			MetaPESP:           trimMetaPESP(join(sectionPESP)),
			MetaPNSP:           join(sectionPNSP),
			CarteiraMJSP:       join(sectionCarteira),
		})
	}

	for _, line := range lines {
		folded := Fold(line)

		if m := metaHeading.FindStringSubmatch(folded); m != nil {
			finish()
			numero, _ = strconv.Atoi(m[1])
			current = make(map[sectionField][]string)
			field = sectionMetaTexto
			continue
		}

		if current == nil {
			continue
		}

		if sectionStatusLine.MatchString(folded) || sectionItemsLine.MatchString(folded) ||
			itemHeading.MatchString(folded) {
			field = sectionNone
			continue
		}

		if label := matchSectionLabel(folded); label != sectionNone {
			field = label
			if content := valueAfterColon(line); content != "" {
				current[field] = append(current[field], content)
			}
			continue
		}

		if field != sectionNone {
			current[field] = append(current[field], line)
		}
	}
	finish()

	return sections
}

func matchSectionLabel(folded string) sectionField {
	for _, label := range sectionLabels {
		if label.pattern.MatchString(folded) {
			return label.field
		}
	}
	return sectionNone
}

// trimMetaPESP cuts the PESP goal where the indicator metadata labels start
func trimMetaPESP(text string) string {
	text = BlankIfDashOnly(text)
	if loc := metaPESPCutoff.FindStringIndex(text); loc != nil {
		return BlankIfDashOnly(text[:loc[0]])
	}
	return text
}
