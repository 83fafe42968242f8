package plano

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// signatureScanLines bounds how far into the document the plan signature is searched
const signatureScanLines = 120

var signaturePattern = regexp.MustCompile(`\b([A-Z]{2})\s*-\s*([A-Z0-9]+)\s*-\s*(20\d{2})\b`)

// ExtractSignature looks for a "UF - SIGLA - YYYY" line near the top of the document
func ExtractSignature(lines []string) Signature {
	limit := min(len(lines), signatureScanLines)
	for _, raw := range lines[:limit] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		m := signaturePattern.FindStringSubmatch(strings.ToUpper(line))
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		return Signature{Sigla: m[2], Ano: year, RawLine: line}
	}
	return Signature{}
}

type articleRule struct {
	siglas   []string
	fromYear int
	toYear   int
	article  string
}

var articleRules = []articleRule{
	{siglas: []string{"ECV", "FISPDS", "RMVI"}, fromYear: 2019, toYear: 2025, article: "6"},
	{siglas: []string{"EVM"}, fromYear: 2023, toYear: 2025, article: "7"},
	{siglas: []string{"VPSP", "MQVPSP"}, fromYear: 2019, toYear: 2025, article: "8"},
}

// ResolveArticle maps a plan signature to the article of portaria nº 685 that
// governs its actions. It returns "" when no rule applies.
func ResolveArticle(sig Signature) string {
	if !sig.Found() {
		return ""
	}
	sigla := strings.ToUpper(sig.Sigla)
	for _, rule := range articleRules {
		if sig.Ano < rule.fromYear || sig.Ano > rule.toYear {
			continue
		}
		if slices.Contains(rule.siglas, sigla) {
			return rule.article
		}
	}
	return ""
}
