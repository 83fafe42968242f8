package filler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/a3tai/plano-planilha/internal/pdf"
	"github.com/a3tai/plano-planilha/internal/planilha"
	"github.com/a3tai/plano-planilha/internal/plano"
)

// TextReader turns PDF bytes into page texts
type TextReader interface {
	ReadText(data []byte) (*pdf.Text, error)
}

// DocumentValidator rejects documents that are not readable PDFs
type DocumentValidator interface {
	Validate(data []byte) (*pdf.DocumentInfo, error)
}

// TemplateOpener hands out a fresh copy of the spreadsheet template
type TemplateOpener interface {
	Open() (*planilha.Workbook, error)
}

// Service orchestrates reader, extractor and writer for one request at a time.
// It holds no per-request state and may be shared between goroutines.
type Service struct {
	reader    TextReader
	validator DocumentValidator
	template  TemplateOpener
}

// NewService creates a pipeline service
func NewService(reader TextReader, validator DocumentValidator, template TemplateOpener) *Service {
	return &Service{
		reader:    reader,
		validator: validator,
		template:  template,
	}
}

// NewDefaultService wires the PDF reader and validator with the given limit
func NewDefaultService(maxFileSize int64, template *planilha.Template) *Service {
	return NewService(pdf.NewReader(maxFileSize), pdf.NewValidator(maxFileSize), template)
}

// Extract validates the document and runs the extractor without touching the template
func (s *Service) Extract(ctx context.Context, req ProcessRequest) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Data) == 0 {
		return nil, ErrEmptyFile
	}

	info, err := s.validator.Validate(req.Data)
	if err != nil {
		return nil, mapDocumentError(err)
	}

	text, err := s.reader.ReadText(req.Data)
	if err != nil {
		return nil, mapDocumentError(err)
	}

	texts := make([]string, 0, len(text.Pages))
	for _, p := range text.Pages {
		texts = append(texts, p.Text)
	}
	lines := plano.SplitLines(texts)
	items := plano.ParseItems(lines)
	signature := plano.ExtractSignature(lines)

	return &Extraction{
		Filename:   req.Filename,
		Pages:      info.Pages,
		PagesRead:  len(text.Pages),
		Truncated:  text.Truncated,
		Items:      items,
		Signature:  signature,
		Article:    plano.ResolveArticle(signature),
		MetaCounts: countByMeta(items),
		Analysis:   plano.ExtractAnalysis(lines),
	}, nil
}

// Process runs the whole pipeline and returns the filled workbook bytes with
// the blank-cell report. A document without items still yields a workbook;
// the result is flagged NothingExtracted instead of failing.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	ext, err := s.Extract(ctx, req)
	if err != nil {
		return nil, err
	}

	wb, err := s.template.Open()
	if err != nil {
		if errors.Is(err, planilha.ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer wb.Close()

	mode := ModeItems
	if wb.IsAnalysis() {
		mode = ModeAnalysis
	}

	fill, err := wb.Fill(ext.Items, planilha.FillOptions{Article: ext.Article, Analysis: ext.Analysis})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := wb.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	result := &ProcessResult{
		Filename:       req.Filename,
		Mode:           mode,
		Pages:          ext.Pages,
		Truncated:      ext.Truncated,
		Signature:      ext.Signature,
		Article:        ext.Article,
		Items:          ext.Items,
		Rows:           fill.Rows,
		MetaCounts:     ext.MetaCounts,
		BlankCells:     fill.BlankCells,
		RowsWithBlanks: planilha.RowsWithBlanks(fill.BlankCells),
		Workbook:       data,
	}
	if fill.Analysis != nil {
		result.SectionsCount = len(fill.Analysis.Sections)
	}

	result.NothingExtracted = len(ext.Items) == 0 && result.SectionsCount == 0
	result.Warnings = warnings(result, ext.PagesRead)

	log.Printf("Processed %q: mode=%s pages=%d items=%d blank_cells=%d",
		req.Filename, mode, result.Pages, len(result.Items), len(result.BlankCells))

	return result, nil
}

func warnings(r *ProcessResult, pagesRead int) []string {
	var out []string
	if r.Truncated {
		out = append(out, fmt.Sprintf("O texto do PDF excedeu o limite de leitura; apenas as primeiras %d página(s) foram processadas.", pagesRead))
	}
	if r.NothingExtracted {
		out = append(out, "Nenhum item foi encontrado no PDF. Verifique se o arquivo é um Plano de Aplicação.")
	} else if len(r.Items) == 0 {
		out = append(out, "Nenhum item de contratação foi encontrado no PDF.")
	}
	if len(r.BlankCells) > 0 {
		out = append(out, fmt.Sprintf("%d célula(s) ficaram sem dados em %d linha(s).", len(r.BlankCells), r.RowsWithBlanks))
	}
	return out
}

func countByMeta(items []plano.Item) []MetaCount {
	counts := make(map[int]int)
	for _, item := range items {
		counts[item.Meta]++
	}
	out := make([]MetaCount, 0, len(counts))
	for meta, n := range counts {
		out = append(out, MetaCount{Meta: meta, Items: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Meta < out[j].Meta })
	return out
}

func mapDocumentError(err error) error {
	switch {
	case errors.Is(err, pdf.ErrEmptyDocument):
		return fmt.Errorf("%w: %v", ErrEmptyFile, err)
	case errors.Is(err, pdf.ErrFileTooLarge):
		return fmt.Errorf("%w: %v", ErrFileTooLarge, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
}
