// Package markdown renders the small markdown subset used by notes into a
// sequence of styled blocks ready for document layout.
//
// Supported: headings (# to ###), bold, italic, strikethrough, inline code,
// fenced code, bullet and numbered lists, checklists, blockquotes, pipe
// tables, horizontal rules and links. Anything else is kept as literal text.
package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxCodeRunes caps the length of a rendered code block.
const MaxCodeRunes = 100

const fence = "```"

var (
	headingRe   = regexp.MustCompile(`^(#{1,3}) (.*)$`)
	ruleRe      = regexp.MustCompile(`^-{3,}[ \t]*$`)
	checkRe     = regexp.MustCompile(`^- \[([ xX])\](?: (.*))?$`)
	bulletRe    = regexp.MustCompile(`^(?:•|-|\d+\.) (.*)$`)
	quoteRe     = regexp.MustCompile(`^> (.*)$`)
	separatorRe = regexp.MustCompile(`^[\s|:-]*-[\s|:-]*$`)
)

// lineRule turns a single line into a block. A rule that matches but yields
// a nil block consumes the line without output (table separators).
type lineRule struct {
	name  string
	match func(line string) (Block, bool)
}

// lineRules is evaluated top to bottom; the first match wins.
var lineRules = []lineRule{
	{"heading", matchHeading},
	{"rule", matchRule},
	{"checklist", matchCheck},
	{"list", matchBullet},
	{"quote", matchQuote},
	{"table", matchTableRow},
}

// Render converts raw note text into blocks. It never fails: malformed or
// unsupported syntax is rendered as literal paragraph text.
func Render(raw string) []Block {
	var out []Block
	for _, unit := range RenderUnits(raw) {
		out = append(out, unit...)
	}
	return out
}

// RenderUnits is Render grouped into flow units. A blank line outside a code
// fence starts a new unit, so layout may break pages between units.
func RenderUnits(raw string) [][]Block {
	s := &scanner{}
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")

		if code, end, ok := scanFence(lines, i); ok {
			s.emit(code)
			i = end
			continue
		}
		if strings.TrimSpace(line) == "" {
			s.endUnit()
			continue
		}
		if b, ok := matchLine(line); ok {
			if b != nil {
				s.emit(b)
			} else {
				s.flushParagraph()
			}
			continue
		}
		s.para = append(s.para, parseInline(line))
	}
	s.endUnit()
	return s.units
}

type scanner struct {
	units [][]Block
	unit  []Block
	para  []Inline
}

func (s *scanner) emit(b Block) {
	s.flushParagraph()
	s.unit = append(s.unit, b)
}

func (s *scanner) flushParagraph() {
	if len(s.para) == 0 {
		return
	}
	s.unit = append(s.unit, Paragraph{Lines: s.para})
	s.para = nil
}

func (s *scanner) endUnit() {
	s.flushParagraph()
	if len(s.unit) == 0 {
		return
	}
	s.units = append(s.units, s.unit)
	s.unit = nil
}

func matchLine(line string) (Block, bool) {
	for _, r := range lineRules {
		if b, ok := r.match(line); ok {
			return b, true
		}
	}
	return nil, false
}

// scanFence recognises a fenced code block starting at lines[i] and returns
// the index of its closing line. An unterminated fence does not match, nor
// does a single-line fence with nothing between the markers.
func scanFence(lines []string, i int) (CodeBlock, int, bool) {
	open := strings.TrimSpace(lines[i])
	if !strings.HasPrefix(open, fence) {
		return CodeBlock{}, i, false
	}
	rest := open[len(fence):]
	if j := strings.Index(rest, fence); j >= 0 {
		if strings.TrimSpace(rest[:j]) == "" {
			return CodeBlock{}, i, false
		}
		return newCodeBlock(rest[:j]), i, true
	}
	for j := i + 1; j < len(lines); j++ {
		if strings.HasPrefix(strings.TrimSpace(lines[j]), fence) {
			return newCodeBlock(strings.Join(lines[i+1:j], "\n")), j, true
		}
	}
	return CodeBlock{}, i, false
}

func newCodeBlock(code string) CodeBlock {
	code = strings.TrimSpace(code)
	if utf8.RuneCountInString(code) <= MaxCodeRunes {
		return CodeBlock{Text: code}
	}
	return CodeBlock{Text: string([]rune(code)[:MaxCodeRunes]) + "...", Truncated: true}
}

func matchHeading(line string) (Block, bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return Heading{Level: len(m[1]), Text: parseInline(strings.TrimSpace(m[2]))}, true
}

func matchRule(line string) (Block, bool) {
	if !ruleRe.MatchString(line) {
		return nil, false
	}
	return Rule{}, true
}

func matchCheck(line string) (Block, bool) {
	m := checkRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return CheckItem{Checked: m[1] != " ", Text: parseInline(m[2])}, true
}

func matchBullet(line string) (Block, bool) {
	m := bulletRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return BulletItem{Text: parseInline(m[1])}, true
}

func matchQuote(line string) (Block, bool) {
	m := quoteRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return Quote{Text: parseInline(m[1])}, true
}

func matchTableRow(line string) (Block, bool) {
	if !strings.Contains(line, "|") {
		return nil, false
	}
	if separatorRe.MatchString(line) {
		return nil, true
	}
	var cells []Inline
	for _, c := range strings.Split(line, "|") {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, parseInline(c))
		}
	}
	if len(cells) == 0 {
		return nil, true
	}
	return TableRow{Cells: cells}, true
}
