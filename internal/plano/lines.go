package plano

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	metaHeadingInline = regexp.MustCompile(`(?i)(META\s+ESPEC[ÍI]FICA\s+\d+)`)
	itemHeadingInline = regexp.MustCompile(`(?i)(Item\s*\d+\s*(?:Planejado|Aprovado|Cancelado)?)`)
	printTimestamp    = regexp.MustCompile(`^\d{2}/\d{2}/\d{4},`)
	anyDate           = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

const portalURLPrefix = "https://apps.mj.gov.br/"

// SplitLines turns page texts into the ordered list of meaningful lines.
// Headings are forced onto their own line and browser print furniture
// (timestamps, page titles, portal URLs) is dropped.
func SplitLines(pages []string) []string {
	var lines []string
	for _, page := range pages {
		lines = append(lines, cleanLines(separateHeadings(page))...)
	}
	return lines
}

func separateHeadings(text string) string {
	text = strings.ReplaceAll(norm.NFC.String(text), "\f", "\n")
	text = metaHeadingInline.ReplaceAllString(text, "\n$1\n")
	text = itemHeadingInline.ReplaceAllString(text, "\n$1\n")
	return text
}

func cleanLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if printTimestamp.MatchString(line) {
			continue
		}
		if strings.Contains(line, "Planos de Aplicação") && anyDate.MatchString(line) {
			continue
		}
		if strings.HasPrefix(line, portalURLPrefix) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
