package pdf

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// wordGapRatio is the horizontal gap, relative to the font size, above which two
	// glyphs on the same row are treated as separate words
	wordGapRatio = 0.25
	// rowToleranceRatio is the vertical distance, relative to the font size, within
	// which two glyphs belong to the same row
	rowToleranceRatio = 0.5
	// minRowTolerance applies when the font size is unknown or tiny
	minRowTolerance = 2.0
)

// Reader handles PDF text extraction
type Reader struct {
	maxFileSize int64
	maxTextSize int
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// ReadText extracts the text of every page, one line per text row. Reading
// stops at the text size limit and the result is flagged Truncated.
func (r *Reader) ReadText(data []byte) (*Text, error) {
	if err := checkSize(data, r.maxFileSize); err != nil {
		return nil, err
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	result := &Text{}
	totalLength := 0

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text := pageText(page)
		if text == "" {
			continue
		}

		if totalLength+len(text) > r.maxTextSize {
			result.Truncated = true
			break
		}
		totalLength += len(text)

		result.Pages = append(result.Pages, Page{Number: pageNum, Text: text})
	}

	return result, nil
}

// pageText returns the page text row by row. Rows come from the positioned
// glyphs; the row and plain text helpers of the parser are fallbacks.
func pageText(page pdf.Page) string {
	if text := contentText(page); text != "" {
		return text
	}
	if text := rowText(page); text != "" {
		return text
	}
	return plainText(page)
}

func contentText(page pdf.Page) (text string) {
	defer func() {
		// Malformed content streams make the parser panic
		if recover() != nil {
			text = ""
		}
	}()
	return joinRows(groupRows(page.Content().Text))
}

func rowText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	out := make([][]pdf.Text, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Content)
	}
	return joinRows(out)
}

func plainText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	plain, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return plain
}

// groupRows splits glyphs into rows from top to bottom, each sorted left to right
func groupRows(glyphs []pdf.Text) [][]pdf.Text {
	texts := make([]pdf.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			texts = append(texts, g)
		}
	}
	sort.SliceStable(texts, func(i, j int) bool { return texts[i].Y > texts[j].Y })

	var rows [][]pdf.Text
	var current []pdf.Text
	rowY := 0.0
	for _, t := range texts {
		if len(current) > 0 && math.Abs(rowY-t.Y) > rowTolerance(current[0].FontSize) {
			rows = append(rows, current)
			current = nil
		}
		if len(current) == 0 {
			rowY = t.Y
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

func rowTolerance(fontSize float64) float64 {
	return math.Max(fontSize*rowToleranceRatio, minRowTolerance)
}

func joinRows(rows [][]pdf.Text) string {
	var builder strings.Builder
	for _, row := range rows {
		line := joinRow(row)
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	return builder.String()
}

// joinRow concatenates the glyphs of a row, inserting a space where the layout
// leaves a gap. Glyphs without metrics are concatenated as they come.
func joinRow(texts []pdf.Text) string {
	var builder strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			if prev.W > 0 && prev.FontSize > 0 {
				gap := t.X - (prev.X + prev.W)
				if gap > prev.FontSize*wordGapRatio &&
					!strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
					builder.WriteString(" ")
				}
			}
		}
		builder.WriteString(t.S)
	}
	return builder.String()
}

func checkSize(data []byte, maxFileSize int64) error {
	if len(data) == 0 {
		return ErrEmptyDocument
	}
	if int64(len(data)) > maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, len(data), maxFileSize)
	}
	return nil
}
