package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"example.com/notepad/internal/markdown"
)

// oneInch in millimetres; all four page margins use it.
const oneInch = 25.4

type rgb struct{ r, g, b int }

var (
	colorTitle     = rgb{0x2C, 0x3E, 0x50}
	colorHeading   = rgb{0x34, 0x49, 0x5E}
	colorMeta      = rgb{0x7F, 0x8C, 0x8D}
	colorSeparator = rgb{0xBD, 0xC3, 0xC7}
	colorBody      = rgb{0, 0, 0}
)

var headingSizes = map[int]float64{1: 16, 2: 14, 3: 12}

const (
	sizeTitle   = 18.0
	sizeSection = 14.0
	sizeBody    = 11.0
	sizeMeta    = 9.0
	sizeCode    = 9.0
)

// unicodeFamily is the name the optional TrueType font is registered under.
const unicodeFamily = "notefont"

// PDFBackend lays documents out on A4 pages with one-inch margins.
//
// Without FontFile the core Helvetica and Courier fonts are used, which only
// cover cp1252; other characters print as dots. FontFile names a UTF-8
// TrueType font that is embedded and used for all text instead.
type PDFBackend struct {
	PageSize string
	FontFile string
}

type PDFOption func(*PDFBackend)

// WithFontFile makes the backend embed the TrueType font at path. An empty
// path keeps the core fonts.
func WithFontFile(path string) PDFOption {
	return func(b *PDFBackend) { b.FontFile = path }
}

func NewPDFBackend(opts ...PDFOption) PDFBackend {
	b := PDFBackend{PageSize: "A4"}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (PDFBackend) Extension() string   { return "pdf" }
func (PDFBackend) ContentType() string { return "application/pdf" }

func (b PDFBackend) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", b.PageSize, "")
	pdf.SetMargins(oneInch, oneInch, oneInch)
	pdf.SetAutoPageBreak(true, oneInch)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("notepad", true)
	pdf.AddPage()

	w, err := b.writer(pdf)
	if err != nil {
		return nil, err
	}
	for _, el := range doc.Elements {
		if err := w.element(el); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// writer sets up fonts. Core fonts need text translated to cp1252; an
// embedded UTF-8 font takes text as is.
func (b PDFBackend) writer(pdf *fpdf.Fpdf) (*pdfWriter, error) {
	if b.FontFile == "" {
		return &pdfWriter{
			pdf:  pdf,
			tr:   pdf.UnicodeTranslatorFromDescriptor(""),
			sans: "Helvetica",
			mono: "Courier",
		}, nil
	}

	ttf, err := os.ReadFile(b.FontFile)
	if err != nil {
		return nil, fmt.Errorf("pdf font: %w", err)
	}
	if !isTrueType(ttf) {
		return nil, fmt.Errorf("pdf font %s: not a TrueType font", b.FontFile)
	}
	// one face serves every style; bold and italic keep regular glyphs
	for _, style := range []string{"", "B", "I", "BI"} {
		pdf.AddUTF8FontFromBytes(unicodeFamily, style, ttf)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf font %s: %w", b.FontFile, err)
	}
	return &pdfWriter{
		pdf:  pdf,
		tr:   func(s string) string { return s },
		sans: unicodeFamily,
		mono: unicodeFamily,
	}, nil
}

// isTrueType checks the sfnt version tag. fpdf reports a bad font only on
// stdout, so it is checked up front.
func isTrueType(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0, 1, 0, 0}) || bytes.HasPrefix(b, []byte("true"))
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string

	sans, mono string
}

// lineHeight converts a font size in points to a line height in millimetres.
func lineHeight(size float64) float64 {
	return size * 0.3528 * 1.4
}

func (w *pdfWriter) font(family, style string, size float64, c rgb) {
	w.pdf.SetFont(family, style, size)
	w.pdf.SetTextColor(c.r, c.g, c.b)
}

func (w *pdfWriter) block(text string, style string, size float64, c rgb, after float64) {
	w.font(w.sans, style, size, c)
	w.pdf.MultiCell(0, lineHeight(size), w.tr(text), "", "L", false)
	w.pdf.Ln(after)
}

func (w *pdfWriter) element(el Element) error {
	switch e := el.(type) {
	case Title:
		w.block(e.Text, "B", sizeTitle, colorTitle, 4)
	case Meta:
		w.block(e.Text, "", sizeMeta, colorMeta, 4)
	case Body:
		w.block(e.Text, "", sizeBody, colorBody, 6)
	case SectionHeading:
		w.pdf.Ln(3)
		w.block(e.Text, "B", sizeSection, colorHeading, 3)
	case TOCEntry:
		w.block(e.String(), "", sizeBody, colorBody, 1)
	case Separator:
		w.pdf.Ln(4)
		w.rule()
		w.pdf.Ln(4)
	case PageBreak:
		w.pdf.AddPage()
	case Flow:
		for _, b := range e.Blocks {
			w.markdownBlock(b)
		}
		w.pdf.Ln(2)
	default:
		return fmt.Errorf("pdf backend: unsupported element %T", el)
	}
	return w.pdf.Error()
}

func (w *pdfWriter) rule() {
	left, _, right, _ := w.pdf.GetMargins()
	width, _ := w.pdf.GetPageSize()
	y := w.pdf.GetY()
	w.pdf.SetDrawColor(colorSeparator.r, colorSeparator.g, colorSeparator.b)
	w.pdf.SetLineWidth(0.3)
	w.pdf.Line(left, y, width-right, y)
}

func (w *pdfWriter) markdownBlock(b markdown.Block) {
	h := lineHeight(sizeBody)
	switch v := b.(type) {
	case markdown.Heading:
		size := headingSizes[v.Level]
		w.font(w.sans, "B", size, colorBody)
		w.pdf.MultiCell(0, lineHeight(size), w.tr(v.Text.String()), "", "L", false)
		w.pdf.Ln(1)
	case markdown.Paragraph:
		for i, line := range v.Lines {
			if i > 0 {
				w.pdf.Ln(h)
			}
			w.inline(line, "", h)
		}
		w.pdf.Ln(h + 1.5)
	case markdown.BulletItem:
		w.font(w.sans, "", sizeBody, colorBody)
		w.pdf.Write(h, w.tr("• "))
		w.inline(v.Text, "", h)
		w.pdf.Ln(h)
	case markdown.CheckItem:
		mark := "o"
		if v.Checked {
			mark = "4"
		}
		w.font("ZapfDingbats", "", sizeBody, colorBody)
		w.pdf.Write(h, mark+" ")
		w.inline(v.Text, "", h)
		w.pdf.Ln(h)
	case markdown.Quote:
		w.font(w.sans, "I", sizeBody, colorBody)
		w.pdf.Write(h, `"  `)
		w.inline(v.Text, "I", h)
		w.font(w.sans, "I", sizeBody, colorBody)
		w.pdf.Write(h, `  "`)
		w.pdf.Ln(h)
	case markdown.CodeBlock:
		w.font(w.mono, "", sizeCode, colorBody)
		w.pdf.MultiCell(0, lineHeight(sizeCode), w.tr(v.Text), "", "L", false)
		w.pdf.Ln(1)
	case markdown.TableRow:
		for i, c := range v.Cells {
			if i > 0 {
				w.font(w.sans, "", sizeBody, colorBody)
				w.pdf.Write(h, w.tr(cellSeparator))
			}
			w.inline(c, "", h)
		}
		w.pdf.Ln(h)
	case markdown.Rule:
		w.pdf.Ln(1)
		w.rule()
		w.pdf.Ln(2)
	}
}

// inline writes styled spans into the current line. base is applied to plain
// spans, e.g. italics inside a quote.
func (w *pdfWriter) inline(in markdown.Inline, base string, h float64) {
	for _, s := range in {
		family, style, size := w.sans, base, sizeBody
		switch s.Style {
		case markdown.Bold:
			style = mergeStyle(base, "B")
		case markdown.Italic:
			style = mergeStyle(base, "I")
		case markdown.Strike:
			style = mergeStyle(base, "S")
		case markdown.Code:
			family, style, size = w.mono, "", sizeBody-1
		}
		w.font(family, style, size, colorBody)
		w.pdf.Write(h, w.tr(s.Text))
	}
}

func mergeStyle(base, add string) string {
	if strings.Contains(base, add) {
		return base
	}
	return base + add
}
