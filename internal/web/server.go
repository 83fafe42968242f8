// Package web serves the upload page and the HTTP API of the spreadsheet
// filler.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

const shutdownTimeout = 10 * time.Second

// Options configures the HTTP server
type Options struct {
	Address     string
	OutputName  string
	MaxFileSize int64
	Debug       bool
}

// Server is the HTTP front end of the pipeline
type Server struct {
	address string
	engine  *gin.Engine
}

// NewServer builds the gin engine with its routes and middleware
func NewServer(opts Options, processor Processor) (*Server, error) {
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger())
	r.SetHTMLTemplate(tmpl)
	if opts.MaxFileSize > 0 {
		r.MaxMultipartMemory = opts.MaxFileSize
	}

	h := NewHandler(processor, opts.OutputName, opts.MaxFileSize)
	r.GET("/", h.Index)
	r.POST("/process", h.ProcessPage)
	r.GET("/healthz", h.Health)

	v1 := r.Group("/api/v1")
	v1.POST("/process", h.ProcessJSON)
	v1.POST("/process.xlsx", h.ProcessXLSX)

	return &Server{address: opts.Address, engine: r}, nil
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on http://%s", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
