package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/a3tai/plano-planilha/internal/config"
	"github.com/a3tai/plano-planilha/internal/filler"
	"github.com/a3tai/plano-planilha/internal/planilha"
)

const (
	exitOK = iota
	exitError
	exitUsage
	exitNoItems
)

type options struct {
	pdfPath     string
	xlsxPath    string
	outputPath  string
	format      string
	maxFileSize int64
	verbose     bool
}

// runSummary is the JSON output of a run
type runSummary struct {
	PDF        string               `json:"pdf"`
	Output     string               `json:"output"`
	Mode       filler.Mode          `json:"mode"`
	Items      int                  `json:"items"`
	MetaCounts []filler.MetaCount   `json:"meta_counts"`
	BlankCells []planilha.BlankCell `json:"blank_cells"`
	Warnings   []string             `json:"warnings,omitempty"`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one PDF to spreadsheet conversion and returns the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		return exitUsage
	}

	log.SetOutput(stderr)
	if !opts.verbose {
		log.SetOutput(io.Discard)
	}

	result, err := convert(ctx, opts)
	if errors.Is(err, filler.ErrNoItems) {
		fmt.Fprintln(stderr, "Nenhum item encontrado no PDF.")
		return exitNoItems
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if err := outputResults(stdout, opts, result); err != nil {
		fmt.Fprintf(stderr, "Error outputting results: %v\n", err)
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("preencher-planilha", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.pdfPath, "pdf", "", "Plano de Aplicação PDF to read (required)")
	fs.StringVar(&opts.xlsxPath, "xlsx", config.DefaultTemplatePath, "Spreadsheet template")
	fs.StringVar(&opts.outputPath, "output", config.DefaultOutputName, "Where to write the filled spreadsheet")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.Int64Var(&opts.maxFileSize, "maxfilesize", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log pipeline details to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "preencher-planilha - fills the items spreadsheet from a Plano de Aplicação PDF\n\n")
		fmt.Fprintf(stderr, "USAGE:\n  preencher-planilha --pdf plano.pdf [--xlsx modelo.xlsx] [--output saida.xlsx]\n\n")
		fmt.Fprintf(stderr, "OPTIONS:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.pdfPath == "" {
		fs.Usage()
		return nil, errors.New("--pdf is required")
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, fmt.Errorf("unknown format %q", opts.format)
	}
	return opts, nil
}

func convert(ctx context.Context, opts *options) (*filler.ProcessResult, error) {
	template, err := planilha.LoadTemplate(opts.xlsxPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(opts.pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	service := filler.NewDefaultService(opts.maxFileSize, template)
	result, err := service.Process(ctx, filler.ProcessRequest{
		Filename: filepath.Base(opts.pdfPath),
		Data:     data,
	})
	if err != nil {
		return nil, err
	}
	if result.NothingExtracted {
		return nil, filler.ErrNoItems
	}

	if dir := filepath.Dir(opts.outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: %v", filler.ErrWriteFailed, err)
		}
	}
	if err := os.WriteFile(opts.outputPath, result.Workbook, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", filler.ErrWriteFailed, err)
	}
	return result, nil
}

func outputResults(w io.Writer, opts *options, result *filler.ProcessResult) error {
	switch opts.format {
	case "json":
		return outputJSON(w, opts, result)
	default:
		return outputText(w, opts, result)
	}
}

func outputJSON(w io.Writer, opts *options, result *filler.ProcessResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(runSummary{
		PDF:        opts.pdfPath,
		Output:     opts.outputPath,
		Mode:       result.Mode,
		Items:      result.ItemCount(),
		MetaCounts: result.MetaCounts,
		BlankCells: result.BlankCells,
		Warnings:   result.Warnings,
	})
}

func outputText(w io.Writer, opts *options, result *filler.ProcessResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Itens extraídos: %d\n", result.ItemCount())
	fmt.Fprintf(&b, "Planilha gerada: %s\n", opts.outputPath)
	if len(result.BlankCells) > 0 {
		fmt.Fprintf(&b, "Células em branco (%d): %s\n", len(result.BlankCells), strings.Join(planilha.CellRefs(result.BlankCells), ", "))
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(&b, "Aviso: %s\n", warning)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
