package plano

import (
	"regexp"
	"strconv"
)

var (
	metaHeading = regexp.MustCompile(`(?i)^META\s+ESPECIFICA\s+(\d+)`)
	itemHeading = regexp.MustCompile(`(?i)^Item\s*(\d+)\s*(Planejado|Aprovado|Cancelado)?`)
)

// ParseItems scans lines in order and returns one Item per "Item n" heading that
// appears under a "META ESPECÍFICA n" heading. Lines before the first heading are
// ignored; a document without headings yields no items.
func ParseItems(lines []string) []Item {
	p := &itemParser{}
	for _, line := range lines {
		p.feed(line)
	}
	p.flush()
	return p.items
}

type itemParser struct {
	items   []Item
	meta    int
	hasMeta bool
	current *Item
}

func (p *itemParser) feed(line string) {
	folded := Fold(line)

	if m := metaHeading.FindStringSubmatch(folded); m != nil {
		p.flush()
		p.meta, _ = strconv.Atoi(m[1])
		p.hasMeta = true
		return
	}

	if m := itemHeading.FindStringSubmatch(folded); m != nil {
		p.flush()
		number, _ := strconv.Atoi(m[1])
		p.current = &Item{
			Meta:   p.meta,
			Number: number,
			Status: capitalize(m[2]),
		}
		return
	}

	if p.current != nil {
		p.current.Lines = append(p.current.Lines, line)
	}
}

func (p *itemParser) flush() {
	if p.current == nil {
		return
	}
	if p.hasMeta {
		item := *p.current
		item.Fields = ExtractFields(item.Lines)
		p.items = append(p.items, item)
	}
	p.current = nil
}
