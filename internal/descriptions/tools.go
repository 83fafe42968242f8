package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	PlanoFillSpreadsheetDescription = `Fill the items spreadsheet template from a Plano de Aplicação PDF.

**When to use:** A Plano de Aplicação PDF has to be turned into the items spreadsheet (one row per item, grouped by META ESPECÍFICA) or into the analysis workbook, whichever the configured template is.

**Why it's useful:** Reads every "Item n" block under each META ESPECÍFICA, maps the labelled fields (Bem, Descrição, Destinação, Instituição, Natureza, Quantidade, Unidade, Valor Total) to the template columns and reports every cell left blank so it can be reviewed by hand.

**Examples:**
• Standard run: "Fill the spreadsheet from planos/FAF-2024.pdf"
• Custom output: "Fill the spreadsheet from FAF-2024.pdf into saida/itens-2024.xlsx"

**Common workflows:**
1. Review: plano_extract_items → check item count → plano_fill_spreadsheet → review blank cells
2. Batch: plano_server_info → list PDFs → plano_fill_spreadsheet for each one

**Best practices:** Paths are relative to the work directory. Blank cells in the response point at fields the PDF did not carry; the output file is overwritten on every run.`

	PlanoExtractItemsDescription = `List the items found in a Plano de Aplicação PDF without writing any spreadsheet.

**When to use:** Check what will land in the spreadsheet before generating it, or inspect a single item's fields.

**Why it's useful:** Shows the plan signature (program and year), the Art. number used in the action header, the item count per META ESPECÍFICA and the extracted fields of each item.

**Examples:**
• Quick check: "How many items are in planos/FAF-2024.pdf?"
• Field audit: "Which items in FAF-2024.pdf have no Instituição?"

**Common workflows:**
1. Pre-flight: plano_extract_items → fix the PDF if items are missing → plano_fill_spreadsheet

**Best practices:** A document with no "META ESPECÍFICA"/"Item" headings yields an error; make sure the file is a Plano de Aplicação.`

	PlanoServerInfoDescription = `Show the server configuration, the available tools and the PDFs in the work directory.

**When to use:** First call in a session, to learn the work directory, the template in use and which PDFs are available.

**Why it's useful:** Tool paths are confined to the work directory; this tells you what that directory is and what it contains.

**Examples:**
• Discovery: "Which Planos de Aplicação can I process?"

**Best practices:** Use the listed file names as pdf_path in the other tools.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"plano_fill_spreadsheet": PlanoFillSpreadsheetDescription,
	"plano_extract_items":    PlanoExtractItemsDescription,
	"plano_server_info":      PlanoServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in alphabetical order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
