package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validator handles PDF document validation
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// Validate checks that data is a readable PDF and returns its basic properties
func (v *Validator) Validate(data []byte) (*DocumentInfo, error) {
	if err := checkSize(data, v.maxFileSize); err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: missing PDF header", ErrInvalidDocument)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if ctx.PageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidDocument)
	}

	info := &DocumentInfo{
		Pages: ctx.PageCount,
		Size:  int64(len(data)),
	}
	if ctx.XRefTable != nil {
		info.Title = ctx.XRefTable.Title
		info.Producer = ctx.XRefTable.Producer
	}

	return info, nil
}

// IsValidPDF performs a quick check to see if data is a valid PDF
func (v *Validator) IsValidPDF(data []byte) bool {
	_, err := v.Validate(data)
	return err == nil
}
