package pdf

import "errors"

var (
	// ErrEmptyDocument is returned when the uploaded document has no bytes
	ErrEmptyDocument = errors.New("document is empty")
	// ErrFileTooLarge is returned when the document exceeds the configured size limit
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidDocument is returned when the bytes cannot be parsed as a PDF
	ErrInvalidDocument = errors.New("invalid PDF file")
)

// DocumentInfo represents the basic properties of a validated PDF document
type DocumentInfo struct {
	Pages    int    `json:"pages"`
	Size     int64  `json:"size"`
	Title    string `json:"title,omitempty"`
	Producer string `json:"producer,omitempty"`
}

// Page holds the text extracted from a single page
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Text is the text read from a document, page by page
type Text struct {
	Pages []Page `json:"pages"`
	// Truncated is set when reading stopped at the text size limit
	Truncated bool `json:"truncated"`
}
