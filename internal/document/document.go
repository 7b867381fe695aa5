// Package document arranges rendered notes into paginated documents and
// exports them through a layout backend.
package document

import (
	"fmt"
	"time"

	"example.com/notepad/internal/markdown"
	"example.com/notepad/internal/notes"
)

const (
	CollectionTitle = "My Notes Collection"
	ErrorTitle      = "Document Generation Error"

	metaLayout = "January 02, 2006 at 03:04 PM"
	tocLayout  = "01/02/2006"
)

// Document is an ordered list of layout elements.
type Document struct {
	Title    string
	Elements []Element
}

// Element is one item of document flow.
type Element interface {
	element()
}

type Title struct{ Text string }

// Meta is small grey metadata text such as creation dates.
type Meta struct{ Text string }

type Body struct{ Text string }

type SectionHeading struct{ Text string }

type TOCEntry struct {
	Index int
	Title string
	Date  string
}

// Separator is a horizontal divider between document parts.
type Separator struct{}

type PageBreak struct{}

// Flow is one blank-line-separated run of rendered note content. Layout may
// break pages between flows.
type Flow struct {
	Blocks []markdown.Block
}

func (Title) element()          {}
func (Meta) element()           {}
func (Body) element()           {}
func (SectionHeading) element() {}
func (TOCEntry) element()       {}
func (Separator) element()      {}
func (PageBreak) element()      {}
func (Flow) element()           {}

func (e TOCEntry) String() string {
	return fmt.Sprintf("%d. %s (%s)", e.Index, e.Title, e.Date)
}

// Assembler builds documents. Dates are shown in Location.
type Assembler struct {
	Location *time.Location
}

// Single lays out one note: title, dates, separator and content.
func (a Assembler) Single(n notes.Note) Document {
	doc := Document{Title: n.Title}
	doc.add(Title{Text: n.Title}, a.meta(n), Separator{})
	doc.add(flows(n.Content)...)
	return doc
}

// Collection lays out a cover with a table of contents followed by every
// note in the given order.
func (a Assembler) Collection(list []notes.Note, generatedAt time.Time) Document {
	doc := Document{Title: CollectionTitle}
	doc.add(
		Title{Text: CollectionTitle},
		Meta{Text: "Generated on: " + a.in(generatedAt).Format(metaLayout)},
		Body{Text: fmt.Sprintf("Total Notes: %d", len(list))},
		SectionHeading{Text: "Table of Contents"},
	)
	for i, n := range list {
		doc.add(TOCEntry{Index: i + 1, Title: n.Title, Date: a.in(n.CreatedAt).Format(tocLayout)})
	}
	doc.add(PageBreak{})

	for i, n := range list {
		doc.add(Title{Text: fmt.Sprintf("%d. %s", i+1, n.Title)}, a.meta(n))
		doc.add(flows(n.Content)...)
		if i < len(list)-1 {
			doc.add(Separator{})
		}
	}
	return doc
}

// Fallback is the document exported in place of one that failed to render.
func Fallback(message string) Document {
	return Document{
		Title:    ErrorTitle,
		Elements: []Element{Title{Text: ErrorTitle}, Body{Text: message}},
	}
}

func (a Assembler) meta(n notes.Note) Meta {
	text := "Created: " + a.in(n.CreatedAt).Format(metaLayout)
	if n.Edited() {
		text += " | Last Updated: " + a.in(n.UpdatedAt).Format(metaLayout)
	}
	return Meta{Text: text}
}

func (a Assembler) in(t time.Time) time.Time {
	if a.Location == nil {
		return t.Local()
	}
	return t.In(a.Location)
}

func (d *Document) add(els ...Element) {
	d.Elements = append(d.Elements, els...)
}

func flows(content string) []Element {
	units := markdown.RenderUnits(content)
	out := make([]Element, 0, len(units))
	for _, u := range units {
		out = append(out, Flow{Blocks: u})
	}
	return out
}
