package filler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/plano-planilha/internal/pdf"
	"github.com/a3tai/plano-planilha/internal/planilha"
	"github.com/a3tai/plano-planilha/internal/plano"
)

type fakeReader struct {
	pages     []pdf.Page
	truncated bool
	err       error
}

func (f *fakeReader) ReadText(data []byte) (*pdf.Text, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pdf.Text{Pages: f.pages, Truncated: f.truncated}, nil
}

type fakeValidator struct {
	err    error
	called bool
}

func (f *fakeValidator) Validate(data []byte) (*pdf.DocumentInfo, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return &pdf.DocumentInfo{Pages: 1, Size: int64(len(data))}, nil
}

const scenarioPage = `Plano de Aplicação
SP - EVM - 2024 - Fundo a Fundo
META ESPECÍFICA 1
1 - Ampliar o monitoramento
Item 1 Planejado
Ação: Aquisição de equipamentos
Bem/Serviço: Computador
Descrição: Computador desktop
Destinação: Delegacias
Unidade de Medida: un
Qtd. Planejada: 2
Natureza (ND): 449052
Valor Total: 2000`

func writeTemplate(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	headers := planilha.DefaultHeaders
	require.NoError(t, f.SetSheetRow(sheet, "A2", &headers))

	path := filepath.Join(t.TempDir(), "Planilha de Itens.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func newTestService(t *testing.T, page string) (*Service, *fakeValidator) {
	t.Helper()
	tmpl, err := planilha.LoadTemplate(writeTemplate(t))
	require.NoError(t, err)

	validator := &fakeValidator{}
	reader := &fakeReader{pages: []pdf.Page{{Number: 1, Text: page}}}
	return NewService(reader, validator, tmpl), validator
}

func request() ProcessRequest {
	return ProcessRequest{Filename: "plano.pdf", Data: []byte("%PDF-1.4 stub")}
}

func TestProcess_Scenario(t *testing.T) {
	svc, _ := newTestService(t, scenarioPage)

	result, err := svc.Process(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, ModeItems, result.Mode)
	assert.Equal(t, 1, result.ItemCount())
	assert.Equal(t, "7", result.Article)
	assert.Equal(t, "EVM", result.Signature.Sigla)
	assert.Equal(t, []MetaCount{{Meta: 1, Items: 1}}, result.MetaCounts)
	assert.False(t, result.NothingExtracted)
	assert.Equal(t, 1, result.RowsWithBlanks)
	require.Len(t, result.BlankCells, 1)
	assert.Equal(t, "G3", result.BlankCells[0].Cell)
	assert.Equal(t, planilha.HeaderInstituicao, result.BlankCells[0].Header)

	f, err := excelize.OpenReader(bytes.NewReader(result.Workbook))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	for cell, want := range map[string]string{
		"A3": "1",
		"D3": "Computador",
		"I3": "2",
		"J3": "un",
		"K3": "R$ 2.000,00",
		"C2": "Ação conforme Art. 7º da portaria nº 685",
	} {
		got, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
}

func TestProcess_NothingExtracted(t *testing.T) {
	svc, _ := newTestService(t, "Documento sem cabeçalhos\nApenas texto corrido")

	result, err := svc.Process(context.Background(), request())
	require.NoError(t, err)

	assert.True(t, result.NothingExtracted)
	assert.Zero(t, result.ItemCount())
	assert.Empty(t, result.BlankCells)
	assert.NotEmpty(t, result.Warnings)
	assert.NotEmpty(t, result.Workbook)
}

func TestProcess_Idempotent(t *testing.T) {
	svc, _ := newTestService(t, scenarioPage)

	first, err := svc.Process(context.Background(), request())
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.BlankCells, second.BlankCells)
}

func TestProcess_Errors(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		validatorErr error
		readerErr    error
		want         error
	}{
		{
			name: "empty upload",
			data: nil,
			want: ErrEmptyFile,
		},
		{
			name:         "not a pdf",
			data:         []byte("hello"),
			validatorErr: fmt.Errorf("%w: bad header", pdf.ErrInvalidDocument),
			want:         ErrInvalidPDF,
		},
		{
			name:         "too large",
			data:         []byte("%PDF-"),
			validatorErr: fmt.Errorf("%w: 10 bytes", pdf.ErrFileTooLarge),
			want:         ErrFileTooLarge,
		},
		{
			name:      "unreadable text",
			data:      []byte("%PDF-"),
			readerErr: errors.New("broken stream"),
			want:      ErrInvalidPDF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := planilha.LoadTemplate(writeTemplate(t))
			require.NoError(t, err)

			validator := &fakeValidator{err: tt.validatorErr}
			svc := NewService(&fakeReader{err: tt.readerErr}, validator, tmpl)

			_, err = svc.Process(context.Background(), ProcessRequest{Filename: "x.pdf", Data: tt.data})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProcess_EmptyUploadSkipsValidation(t *testing.T) {
	svc, validator := newTestService(t, scenarioPage)

	_, err := svc.Process(context.Background(), ProcessRequest{Filename: "x.pdf"})
	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.False(t, validator.called)
}

func TestProcess_TemplateRemoved(t *testing.T) {
	path := writeTemplate(t)
	tmpl, err := planilha.LoadTemplate(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	svc := NewService(&fakeReader{pages: []pdf.Page{{Number: 1, Text: scenarioPage}}}, &fakeValidator{}, tmpl)

	_, err = svc.Process(context.Background(), request())
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestProcess_CanceledContext(t *testing.T) {
	svc, validator := newTestService(t, scenarioPage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, request())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, validator.called)
}

func TestExtract(t *testing.T) {
	page := scenarioPage + "\nItem 2 Aprovado\nBem/Serviço: Viatura\nMETA ESPECÍFICA 3\nItem 1\nBem/Serviço: Curso"
	svc, _ := newTestService(t, page)

	ext, err := svc.Extract(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, "plano.pdf", ext.Filename)
	assert.Equal(t, 1, ext.Pages)
	require.Len(t, ext.Items, 3)
	assert.Equal(t, "Aprovado", ext.Items[1].Status)
	assert.Equal(t, []MetaCount{{Meta: 1, Items: 2}, {Meta: 3, Items: 1}}, ext.MetaCounts)
	require.Len(t, ext.Analysis.Sections, 2)
	assert.Equal(t, "1 - Ampliar o monitoramento", ext.Analysis.Sections[0].MetaTexto)
}

func TestWarnings(t *testing.T) {
	assert.Empty(t, warnings(&ProcessResult{Mode: ModeItems, Items: make([]plano.Item, 1)}, 1))

	w := warnings(&ProcessResult{
		Mode:           ModeItems,
		Items:          make([]plano.Item, 2),
		BlankCells:     make([]planilha.BlankCell, 3),
		RowsWithBlanks: 2,
	}, 1)
	assert.Equal(t, []string{"3 célula(s) ficaram sem dados em 2 linha(s)."}, w)

	w = warnings(&ProcessResult{Mode: ModeAnalysis, SectionsCount: 2}, 1)
	assert.Equal(t, []string{"Nenhum item de contratação foi encontrado no PDF."}, w)
}

func TestProcess_TruncatedText(t *testing.T) {
	tmpl, err := planilha.LoadTemplate(writeTemplate(t))
	require.NoError(t, err)

	reader := &fakeReader{pages: []pdf.Page{{Number: 1, Text: scenarioPage}}, truncated: true}
	svc := NewService(reader, &fakeValidator{}, tmpl)

	result, err := svc.Process(context.Background(), request())
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Len(t, result.Items, 1)
	assert.Contains(t, result.Warnings,
		"O texto do PDF excedeu o limite de leitura; apenas as primeiras 1 página(s) foram processadas.")

	ext, err := svc.Extract(context.Background(), request())
	require.NoError(t, err)
	assert.True(t, ext.Truncated)
	assert.Equal(t, 1, ext.PagesRead)
}

func TestProcess_NotTruncated(t *testing.T) {
	svc, _ := newTestService(t, scenarioPage)

	result, err := svc.Process(context.Background(), request())
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	for _, w := range result.Warnings {
		assert.NotContains(t, w, "limite de leitura")
	}
}
