package web

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/a3tai/plano-planilha/internal/filler"
	"github.com/a3tai/plano-planilha/internal/planilha"
)

const (
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pageTitle     = "Gerador de Planilha de Itens - FAF"
	indexTemplate = "index.html"

	// multipartOverhead is the room left for boundaries and part headers on
	// top of the file size limit
	multipartOverhead = 64 << 10
)

// Processor runs the PDF to spreadsheet pipeline
type Processor interface {
	Process(ctx context.Context, req filler.ProcessRequest) (*filler.ProcessResult, error)
}

// Handler serves the upload page and the processing endpoints
type Handler struct {
	processor   Processor
	outputName  string
	maxFileSize int64
}

// NewHandler creates a Handler. maxFileSize <= 0 disables the upload limit.
func NewHandler(processor Processor, outputName string, maxFileSize int64) *Handler {
	return &Handler{
		processor:   processor,
		outputName:  outputName,
		maxFileSize: maxFileSize,
	}
}

type metric struct {
	Label string
	Value int
}

type resultView struct {
	Filename     string
	Analysis     bool
	Metrics      []metric
	Warnings     []string
	BlankCells   []planilha.BlankCell
	DownloadName string
	DownloadURL  template.URL
}

type pageData struct {
	Title         string
	MaxFileSizeMB int64
	Error         string
	Result        *resultView
}

// processResponse is the JSON body of POST /api/v1/process
type processResponse struct {
	*filler.ProcessResult
	BlankCellRefs []string `json:"blank_cell_refs"`
	OutputName    string   `json:"output_name"`
	Workbook      string   `json:"workbook_base64"`
}

// Index handles GET /
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, h.page())
}

// ProcessPage handles POST /process and renders the result page
func (h *Handler) ProcessPage(c *gin.Context) {
	result, err := h.process(c)
	if err != nil {
		status, _, msg := MapError(err)
		logServerError(c, status, err)
		data := h.page()
		data.Error = msg
		c.HTML(status, indexTemplate, data)
		return
	}

	data := h.page()
	data.Result = h.resultView(result)
	c.HTML(http.StatusOK, indexTemplate, data)
}

// ProcessJSON handles POST /api/v1/process
func (h *Handler) ProcessJSON(c *gin.Context) {
	result, err := h.process(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, processResponse{
		ProcessResult: result,
		BlankCellRefs: planilha.CellRefs(result.BlankCells),
		OutputName:    h.outputName,
		Workbook:      base64.StdEncoding.EncodeToString(result.Workbook),
	})
}

// ProcessXLSX handles POST /api/v1/process.xlsx and streams the workbook.
// Blank cells travel in the X-Blank-Cells header.
func (h *Handler) ProcessXLSX(c *gin.Context) {
	result, err := h.process(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(h.outputName))
	c.Header("X-Blank-Cells", strings.Join(planilha.CellRefs(result.BlankCells), ","))
	c.Header("X-Items-Count", strconv.Itoa(result.ItemCount()))
	c.Header("X-Nothing-Extracted", strconv.FormatBool(result.NothingExtracted))
	c.Data(http.StatusOK, xlsxMIME, result.Workbook)
}

// Health handles GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) process(c *gin.Context) (*filler.ProcessResult, error) {
	req, err := h.readUpload(c)
	if err != nil {
		return nil, err
	}
	return h.processor.Process(c.Request.Context(), req)
}

// readUpload reads the "file" form field, enforcing the size limit. The
// request body is capped before multipart parsing so an oversized upload is
// never spooled to memory or disk.
func (h *Handler) readUpload(c *gin.Context) (filler.ProcessRequest, error) {
	if h.maxFileSize > 0 {
		limit := h.maxFileSize + multipartOverhead
		if c.Request.ContentLength > limit {
			return filler.ProcessRequest{}, fmt.Errorf("%w: request body of %d bytes", filler.ErrFileTooLarge, c.Request.ContentLength)
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return filler.ProcessRequest{}, fmt.Errorf("%w: more than %d bytes", filler.ErrFileTooLarge, h.maxFileSize)
		}
		return filler.ProcessRequest{}, fmt.Errorf("%w: %v", ErrMissingFile, err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if h.maxFileSize > 0 {
		r = io.LimitReader(file, h.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return filler.ProcessRequest{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if h.maxFileSize > 0 && int64(len(data)) > h.maxFileSize {
		return filler.ProcessRequest{}, fmt.Errorf("%w: more than %d bytes", filler.ErrFileTooLarge, h.maxFileSize)
	}

	return filler.ProcessRequest{Filename: header.Filename, Data: data}, nil
}

func (h *Handler) page() pageData {
	return pageData{
		Title:         pageTitle,
		MaxFileSizeMB: h.maxFileSize / (1024 * 1024),
	}
}

func (h *Handler) resultView(r *filler.ProcessResult) *resultView {
	view := &resultView{
		Filename:     r.Filename,
		Analysis:     r.Mode == filler.ModeAnalysis,
		Warnings:     r.Warnings,
		BlankCells:   r.BlankCells,
		DownloadName: h.outputName,
		DownloadURL:  template.URL("data:" + xlsxMIME + ";base64," + base64.StdEncoding.EncodeToString(r.Workbook)),
	}

	if view.Analysis {
		view.Metrics = []metric{
			{Label: "Metas encontradas", Value: r.SectionsCount},
			{Label: "Itens extraídos (PDF)", Value: r.ItemCount()},
			{Label: "Células em branco", Value: len(r.BlankCells)},
		}
	} else {
		view.Metrics = []metric{
			{Label: "Itens extraídos", Value: r.ItemCount()},
			{Label: "Metas encontradas", Value: len(r.MetaCounts)},
			{Label: "Itens com campos faltantes", Value: r.RowsWithBlanks},
		}
	}
	return view
}

// contentDisposition builds an attachment header that survives non-ASCII names
func contentDisposition(name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > 127 || r == '"' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(name))
}
