package web

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a3tai/plano-planilha/internal/filler"
)

// ErrMissingFile is returned when the upload has no "file" field
var ErrMissingFile = errors.New("missing file")

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError holds error details in the response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapError translates pipeline errors to an HTTP status, an error code and
// a message for the user
func MapError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE", "Selecione o PDF do Plano de Aplicação."
	case errors.Is(err, filler.ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE", "O arquivo enviado está vazio."
	case errors.Is(err, filler.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "O arquivo excede o tamanho máximo permitido."
	case errors.Is(err, filler.ErrInvalidPDF):
		return http.StatusUnprocessableEntity, "INVALID_PDF", "Não foi possível ler o PDF enviado."
	case errors.Is(err, filler.ErrNoItems):
		return http.StatusUnprocessableEntity, "NO_ITEMS", "Nenhum item encontrado no PDF."
	case errors.Is(err, filler.ErrTemplateNotFound):
		return http.StatusInternalServerError, "TEMPLATE_NOT_FOUND", "Planilha modelo não encontrada no servidor."
	case errors.Is(err, filler.ErrWriteFailed):
		return http.StatusInternalServerError, "WRITE_FAILED", "Falha ao gerar a planilha."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "CANCELED", "O processamento foi interrompido."
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Ocorreu um erro interno."
	}
}

// HandleError maps err and sends the JSON error response
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapError(err)
	logServerError(c, status, err)
	RespondError(c, status, code, msg)
}

func logServerError(c *gin.Context, status int, err error) {
	if status < http.StatusInternalServerError {
		return
	}
	requestID, _ := c.Get(requestIDKey)
	log.Printf("[%s] internal error: %v", requestID, err)
}
