package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/plano-planilha/internal/config"
	"github.com/a3tai/plano-planilha/internal/descriptions"
	"github.com/a3tai/plano-planilha/internal/filler"
	"github.com/a3tai/plano-planilha/internal/planilha"
	"github.com/a3tai/plano-planilha/internal/security"
)

const (
	outputDirPerm  = 0o750
	outputFilePerm = 0o644
	maxListedFiles = 10

	noItemsMessage = "Nenhum item encontrado no PDF."
)

// Pipeline is the part of filler.Service the tools need
type Pipeline interface {
	Extract(ctx context.Context, req filler.ProcessRequest) (*filler.Extraction, error)
	Process(ctx context.Context, req filler.ProcessRequest) (*filler.ProcessResult, error)
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	pipeline  Pipeline
	paths     *security.PathValidator
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pipeline Pipeline) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}

	paths, err := security.NewPathValidator(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("invalid work directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		pipeline:  pipeline,
		paths:     paths,
		mcpServer: mcpServer,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	fillTool := mcp.NewTool(
		"plano_fill_spreadsheet",
		mcp.WithDescription(descriptions.GetToolDescription("plano_fill_spreadsheet")),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Path to the Plano de Aplicação PDF, relative to the work directory"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the spreadsheet (defaults to the configured output name in the work directory)"),
		),
	)
	s.mcpServer.AddTool(fillTool, s.handleFillSpreadsheet)

	extractTool := mcp.NewTool(
		"plano_extract_items",
		mcp.WithDescription(descriptions.GetToolDescription("plano_extract_items")),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Path to the Plano de Aplicação PDF, relative to the work directory"),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleExtractItems)

	infoTool := mcp.NewTool(
		"plano_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("plano_server_info")),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

func (s *Server) handleFillSpreadsheet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pdfPath, err := request.RequireString("pdf_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req, err := s.readPDF(pdfPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outputPath, err := s.outputPath(request.GetString("output_path", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pipeline.Process(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if result.NothingExtracted {
		return mcp.NewToolResultError(noItemsMessage), nil
	}

	if err := writeOutput(outputPath, result.Workbook); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFillResult(result, outputPath)), nil
}

func (s *Server) handleExtractItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pdfPath, err := request.RequireString("pdf_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req, err := s.readPDF(pdfPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	extraction, err := s.pipeline.Extract(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(extraction.Items) == 0 {
		return mcp.NewToolResultError(noItemsMessage), nil
	}

	return mcp.NewToolResultText(formatExtraction(extraction)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.listPDFs()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatServerInfo(files)), nil
}

// readPDF resolves path inside the work directory and loads it
func (s *Server) readPDF(path string) (filler.ProcessRequest, error) {
	abs, err := s.paths.Resolve(path)
	if err != nil {
		return filler.ProcessRequest{}, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return filler.ProcessRequest{}, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return filler.ProcessRequest{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > s.config.MaxFileSize {
		return filler.ProcessRequest{}, fmt.Errorf("%w: %d bytes (max %d)", filler.ErrFileTooLarge, info.Size(), s.config.MaxFileSize)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return filler.ProcessRequest{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return filler.ProcessRequest{Filename: filepath.Base(abs), Data: data}, nil
}

func (s *Server) outputPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = s.config.OutputName
	}
	return s.paths.Resolve(path)
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), outputDirPerm); err != nil {
		return fmt.Errorf("%w: %v", filler.ErrWriteFailed, err)
	}
	if err := os.WriteFile(path, data, outputFilePerm); err != nil {
		return fmt.Errorf("%w: %v", filler.ErrWriteFailed, err)
	}
	return nil
}

type pdfFile struct {
	Name string
	Size int64
}

// listPDFs returns the PDFs directly under the work directory
func (s *Server) listPDFs() ([]pdfFile, error) {
	entries, err := os.ReadDir(s.paths.WorkDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read work directory: %w", err)
	}

	var files []pdfFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, pdfFile{Name: entry.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Formatting methods
func formatFillResult(result *filler.ProcessResult, outputPath string) string {
	text := fmt.Sprintf("Spreadsheet written: %s\n", outputPath)
	text += fmt.Sprintf("Mode: %s\n", result.Mode)
	if result.Signature.Found() {
		text += fmt.Sprintf("Plan: %s %d\n", result.Signature.Sigla, result.Signature.Ano)
	}
	if result.Article != "" {
		text += fmt.Sprintf("Article: Art. %sº\n", result.Article)
	}
	text += fmt.Sprintf("Items: %d\n", result.ItemCount())
	if result.Mode == filler.ModeAnalysis {
		text += fmt.Sprintf("Metas (sections): %d\n", result.SectionsCount)
	} else {
		text += fmt.Sprintf("Metas: %d\n", len(result.MetaCounts))
		text += fmt.Sprintf("Rows with missing fields: %d\n", result.RowsWithBlanks)
	}

	if len(result.BlankCells) > 0 {
		text += fmt.Sprintf("\nBlank cells (%d): %s\n", len(result.BlankCells), strings.Join(planilha.CellRefs(result.BlankCells), ", "))
	}
	for _, w := range result.Warnings {
		text += fmt.Sprintf("\n⚠️  %s\n", w)
	}
	return text
}

func formatExtraction(e *filler.Extraction) string {
	text := fmt.Sprintf("Items extracted from %s: %d\n", e.Filename, len(e.Items))
	text += fmt.Sprintf("Pages: %d\n", e.Pages)
	if e.Signature.Found() {
		text += fmt.Sprintf("Plan: %s %d\n", e.Signature.Sigla, e.Signature.Ano)
	}
	if e.Article != "" {
		text += fmt.Sprintf("Article: Art. %sº\n", e.Article)
	}

	text += "\nItems per meta:\n"
	for _, mc := range e.MetaCounts {
		text += fmt.Sprintf("   META %d: %d item(s)\n", mc.Meta, mc.Items)
	}

	text += "\nItems:\n"
	for _, item := range e.Items {
		f := item.Fields
		text += fmt.Sprintf("%d.%d", item.Meta, item.Number)
		if item.Status != "" {
			text += fmt.Sprintf(" [%s]", item.Status)
		}
		text += "\n"
		for _, field := range []struct{ label, value string }{
			{"Bem", f.Bem},
			{"Descrição", f.Descricao},
			{"Destinação", f.Destinacao},
			{"Instituição", f.Instituicao},
			{"Natureza", f.Natureza},
			{"Quantidade", f.Quantidade},
			{"Unidade", f.Unidade},
			{"Valor Total", f.ValorTotal},
		} {
			if field.value != "" {
				text += fmt.Sprintf("   %s: %s\n", field.label, field.value)
			}
		}
	}
	return text
}

func (s *Server) formatServerInfo(files []pdfFile) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Work Directory: %s\n", s.paths.WorkDir())
	text += fmt.Sprintf("📄 Template: %s\n", s.config.TemplatePath)
	text += fmt.Sprintf("💾 Default Output: %s\n", s.config.OutputName)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", s.config.MaxFileSize/(1024*1024))

	if len(files) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(files))
		for i, file := range files {
			if i >= maxListedFiles {
				text += fmt.Sprintf("   ... and %d more files\n", len(files)-maxListedFiles)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in work directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, name := range descriptions.GetAllToolNames() {
		text += fmt.Sprintf("  • %s\n", name)
	}
	return text
}

// Run serves the tools over stdin/stdout until ctx is canceled or stdin closes
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves the tools over the given streams
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if s.config.IsDebug() {
		log.Printf("Starting MCP tools on stdio")
		log.Printf("Work directory: %s", s.paths.WorkDir())
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))

	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
