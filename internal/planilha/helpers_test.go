package planilha

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/plano-planilha/internal/plano"
)

// buildTemplate creates an in-memory workbook, lets build lay it out and
// returns the serialized bytes
func buildTemplate(t *testing.T, build func(f *excelize.File, sheet string)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if build != nil {
		build(f, sheet)
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// saveTemplate writes a template to a temporary directory and returns its path
func saveTemplate(t *testing.T, build func(f *excelize.File, sheet string)) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if build != nil {
		build(f, sheet)
	}
	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func openTemplate(t *testing.T, data []byte) *Workbook {
	t.Helper()
	wb, err := OpenWorkbook(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

// reopen parses produced workbook bytes and returns the file and active sheet
func reopen(t *testing.T, data []byte) (*excelize.File, string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f, f.GetSheetName(f.GetActiveSheetIndex())
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func withHeaders(headers []string) func(f *excelize.File, sheet string) {
	return func(f *excelize.File, sheet string) {
		_ = f.SetSheetRow(sheet, "A2", &headers)
	}
}

// scenarioItem has every field filled except the institution
func scenarioItem() plano.Item {
	return plano.Item{
		Meta:   1,
		Number: 1,
		Fields: plano.Fields{
			Acao:       "Aquisição de equipamentos",
			Bem:        "Computador",
			Descricao:  "Computador desktop",
			Destinacao: "Delegacias",
			Quantidade: "2",
			Unidade:    "un",
			Natureza:   "449052",
			ValorTotal: "2000",
		},
	}
}

func sampleItems() []plano.Item {
	return []plano.Item{
		scenarioItem(),
		{
			Meta:   1,
			Number: 2,
			Status: "Aprovado",
			Fields: plano.Fields{
				Art:         "Enfrentamento à violência",
				ArtNum:      "7",
				Bem:         "Viatura",
				Quantidade:  "1",
				Instituicao: "Polícia Militar",
				ValorTotal:  "R$ 150.000,00",
			},
		},
		{
			Meta:   2,
			Number: 1,
			Status: "Cancelado",
			Fields: plano.Fields{
				Bem:         "Curso",
				Instituicao: "Academia",
				ValorTotal:  "5000",
			},
		},
	}
}

// analysisLines is a two-META document in the layout of a real export
func analysisLines() []string {
	return []string{
		"SP - EVM - 2024 - Fundo a Fundo",
		"Indicador Geral de Resultado",
		"Taxa de mortes violentas intencionais",
		"Meta Geral",
		"Reduzir em 10% a taxa de MVI",
		"Justificativa",
		"Valor de Referência: 12,5 (2023)",
		"META ESPECÍFICA 1",
		"1 - Ampliar o monitoramento eletrônico",
		"Descrição do Indicador: Número de câmeras instaladas",
		"Fórmula: total de câmeras",
		"Meta do PESP: Ampliar a cobertura",
		"Meta do PNSP: Reduzir mortes",
		"Carteira de Políticas do MJSP: Segurança Pública",
		"Status: Aprovado",
		"Item 1 Planejado",
		"Bem/Serviço: Câmera",
		"META ESPECÍFICA 2",
		"2 - Capacitar profissionais",
		"Descrição do Indicador: Profissionais capacitados",
		"Fórmula: soma",
		"Item 1 Aprovado",
		"Bem/Serviço: Curso",
	}
}
