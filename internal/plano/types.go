// Package plano extracts budget items and analysis sections from the text of a
// "Plano de Aplicação" document.
//
// Extraction is a sequential scan: heading lines (META ESPECÍFICA n, Item n) open
// a new record and every following line belongs to it until the next heading.
// Labels are matched case- and accent-insensitively; values are copied verbatim.
package plano

// Item is one budget line found under a META ESPECÍFICA heading
type Item struct {
	Meta   int      `json:"meta"`
	Number int      `json:"item"`
	Status string   `json:"status,omitempty"`
	Lines  []string `json:"-"`
	Fields Fields   `json:"fields"`
}

// Fields holds the labelled values captured from an item's lines. A label absent
// from the document leaves its field empty.
type Fields struct {
	Acao        string `json:"acao,omitempty"`
	Art         string `json:"art,omitempty"`
	ArtNum      string `json:"art_num,omitempty"`
	Bem         string `json:"bem,omitempty"`
	Descricao   string `json:"descricao,omitempty"`
	Destinacao  string `json:"destinacao,omitempty"`
	Unidade     string `json:"unidade,omitempty"`
	Quantidade  string `json:"quantidade,omitempty"`
	Natureza    string `json:"natureza,omitempty"`
	Instituicao string `json:"instituicao,omitempty"`
	ValorTotal  string `json:"valor_total,omitempty"`
}

// Action returns the action text, preferring "Ação:" over the article body
func (f Fields) Action() string {
	if f.Acao != "" {
		return f.Acao
	}
	return f.Art
}

// Signature identifies the plan (program acronym and year) a document belongs to
type Signature struct {
	Sigla   string `json:"sigla,omitempty"`
	Ano     int    `json:"ano,omitempty"`
	RawLine string `json:"raw_line,omitempty"`
}

// Found reports whether a signature line was located
func (s Signature) Found() bool {
	return s.Sigla != "" && s.Ano != 0
}

// Section is the analysis data of one META ESPECÍFICA block
type Section struct {
	Numero             int    `json:"numero_meta"`
	MetaTexto          string `json:"meta_texto"`
	DescricaoIndicador string `json:"descricao_indicador"`
	Formula            string `json:"formula"`
	MetaPESP           string `json:"meta_pesp"`
	MetaPNSP           string `json:"meta_pnsp"`
	CarteiraMJSP       string `json:"carteira_mjsp"`
}

// Analysis is the plan-level data used by the analysis template
type Analysis struct {
	IndicadorGeral  string    `json:"indicador_geral"`
	MetaGeral       string    `json:"meta_geral"`
	ValorReferencia string    `json:"valor_referencia"`
	Sections        []Section `json:"sections"`
}
