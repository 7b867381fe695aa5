package markdown

import "strings"

// Style is the emphasis applied to a Span. Styles never nest.
type Style uint8

const (
	Plain Style = iota
	Bold
	Italic
	Strike
	Code
)

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Strike:
		return "strike"
	case Code:
		return "code"
	default:
		return "plain"
	}
}

// Span is a run of text sharing one style.
type Span struct {
	Text  string
	Style Style
}

// Inline is a sequence of styled spans making up one line of text.
type Inline []Span

// String returns the text without any styling.
func (in Inline) String() string {
	var sb strings.Builder
	for _, s := range in {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Block is one structural unit produced by Render.
type Block interface {
	block()
}

type Heading struct {
	Level int
	Text  Inline
}

// Paragraph holds one or more lines; every line after the first follows a
// hard line break.
type Paragraph struct {
	Lines []Inline
}

// BulletItem is produced for both bulleted and numbered list lines.
type BulletItem struct {
	Text Inline
}

type CheckItem struct {
	Checked bool
	Text    Inline
}

type Quote struct {
	Text Inline
}

// CodeBlock carries raw code. Truncated is set when the code was cut to
// MaxCodeRunes.
type CodeBlock struct {
	Text      string
	Truncated bool
}

type TableRow struct {
	Cells []Inline
}

type Rule struct{}

func (Heading) block()    {}
func (Paragraph) block()  {}
func (BulletItem) block() {}
func (CheckItem) block()  {}
func (Quote) block()      {}
func (CodeBlock) block()  {}
func (TableRow) block()   {}
func (Rule) block()       {}

// String joins the paragraph lines with newlines.
func (p Paragraph) String() string {
	lines := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = l.String()
	}
	return strings.Join(lines, "\n")
}
