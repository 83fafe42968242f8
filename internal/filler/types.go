// Package filler runs the PDF to spreadsheet pipeline for one document:
// validate, read text, extract items, fill a copy of the template and
// serialize it.
package filler

import (
	"errors"

	"github.com/a3tai/plano-planilha/internal/planilha"
	"github.com/a3tai/plano-planilha/internal/plano"
)

var (
	// ErrTemplateNotFound is returned when the template is missing at request time
	ErrTemplateNotFound = errors.New("template not found")
	// ErrInvalidPDF is returned when the upload is not a readable PDF
	ErrInvalidPDF = errors.New("invalid PDF")
	// ErrFileTooLarge is returned when the upload exceeds the size limit
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyFile is returned when no bytes were uploaded
	ErrEmptyFile = errors.New("empty file")
	// ErrNoItems marks a document where no item heading was recognised
	ErrNoItems = errors.New("no items extracted")
	// ErrWriteFailed is returned when the workbook cannot be filled or serialized
	ErrWriteFailed = errors.New("failed to write spreadsheet")
)

// Mode tells which kind of template was filled
type Mode string

const (
	ModeItems    Mode = "items"
	ModeAnalysis Mode = "analysis"
)

// ProcessRequest is one uploaded document
type ProcessRequest struct {
	Filename string
	Data     []byte
}

// MetaCount is the number of items found under one META ESPECÍFICA
type MetaCount struct {
	Meta  int `json:"meta"`
	Items int `json:"items"`
}

// Extraction is what was read from a document, before any spreadsheet work
type Extraction struct {
	Filename   string          `json:"filename,omitempty"`
	Pages      int             `json:"pages"`
	PagesRead  int             `json:"pages_read"`
	Truncated  bool            `json:"truncated"`
	Items      []plano.Item    `json:"items"`
	Signature  plano.Signature `json:"signature"`
	Article    string          `json:"article,omitempty"`
	MetaCounts []MetaCount     `json:"meta_counts"`
	Analysis   plano.Analysis  `json:"analysis"`
}

// ProcessResult is the outcome of a full pipeline run
type ProcessResult struct {
	Filename         string               `json:"filename,omitempty"`
	Mode             Mode                 `json:"mode"`
	Pages            int                  `json:"pages"`
	Truncated        bool                 `json:"truncated"`
	Signature        plano.Signature      `json:"signature"`
	Article          string               `json:"article,omitempty"`
	Items            []plano.Item         `json:"items"`
	Rows             []planilha.Row       `json:"rows"`
	MetaCounts       []MetaCount          `json:"meta_counts"`
	BlankCells       []planilha.BlankCell `json:"blank_cells"`
	RowsWithBlanks   int                  `json:"rows_with_blanks"`
	SectionsCount    int                  `json:"sections_count"`
	NothingExtracted bool                 `json:"nothing_extracted"`
	Warnings         []string             `json:"warnings,omitempty"`
	Workbook         []byte               `json:"-"`
}

// ItemCount returns the number of extracted items
func (r *ProcessResult) ItemCount() int {
	return len(r.Items)
}
