package document

import (
	"bytes"
	"fmt"
	"strings"

	"example.com/notepad/internal/markdown"
)

const (
	separatorLine = "──────────────────────────────────────────────────"
	ruleLine      = "__________________________________________________"
	cellSeparator = " • "
)

// TextBackend renders documents as plain UTF-8 text. Page breaks become form
// feeds and inline styling is dropped.
type TextBackend struct{}

func (TextBackend) Extension() string   { return "txt" }
func (TextBackend) ContentType() string { return "text/plain; charset=utf-8" }

func (TextBackend) Render(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	for _, el := range doc.Elements {
		switch e := el.(type) {
		case Title:
			buf.WriteString(e.Text + "\n\n")
		case Meta:
			buf.WriteString(e.Text + "\n\n")
		case Body:
			buf.WriteString(e.Text + "\n\n")
		case SectionHeading:
			buf.WriteString(e.Text + "\n\n")
		case TOCEntry:
			buf.WriteString(e.String() + "\n")
		case Separator:
			buf.WriteString("\n" + separatorLine + "\n\n")
		case PageBreak:
			buf.WriteString("\f\n")
		case Flow:
			for _, b := range e.Blocks {
				writeTextBlock(&buf, b)
			}
			buf.WriteString("\n")
		default:
			return nil, fmt.Errorf("text backend: unsupported element %T", el)
		}
	}
	return buf.Bytes(), nil
}

func writeTextBlock(buf *bytes.Buffer, b markdown.Block) {
	switch v := b.(type) {
	case markdown.Heading:
		buf.WriteString(v.Text.String() + "\n")
	case markdown.Paragraph:
		buf.WriteString(v.String() + "\n")
	case markdown.BulletItem:
		buf.WriteString("• " + v.Text.String() + "\n")
	case markdown.CheckItem:
		mark := "☐"
		if v.Checked {
			mark = "✓"
		}
		buf.WriteString(mark + " " + v.Text.String() + "\n")
	case markdown.Quote:
		buf.WriteString(`"  ` + v.Text.String() + `  "` + "\n")
	case markdown.CodeBlock:
		for _, line := range strings.Split(v.Text, "\n") {
			buf.WriteString("    " + line + "\n")
		}
	case markdown.TableRow:
		cells := make([]string, len(v.Cells))
		for i, c := range v.Cells {
			cells[i] = c.String()
		}
		buf.WriteString(strings.Join(cells, cellSeparator) + "\n")
	case markdown.Rule:
		buf.WriteString(ruleLine + "\n")
	}
}
