package document

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"example.com/notepad/internal/notes"
)

// File is an exported document ready to be offered for download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Exporter assembles notes into documents and renders them with a Backend.
// It never returns an error: a document that fails to render is replaced by
// a Fallback describing the failure.
type Exporter struct {
	backend Backend
	asm     Assembler
	now     func() time.Time
	log     *zap.Logger
}

type Option func(*Exporter)

func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithLocation sets the time zone dates are printed in. Defaults to local time.
func WithLocation(loc *time.Location) Option {
	return func(e *Exporter) { e.asm.Location = loc }
}

func NewExporter(b Backend, opts ...Option) *Exporter {
	e := &Exporter{backend: b, now: time.Now, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Exporter) ExportSingle(n notes.Note) File {
	doc := e.asm.Single(n)
	return File{
		Name:        SingleFileName(n.Title, e.backend.Extension()),
		ContentType: e.backend.ContentType(),
		Data:        e.render(doc, "Error generating document"),
	}
}

func (e *Exporter) ExportCollection(list []notes.Note) File {
	now := e.now()
	doc := e.asm.Collection(list, now)
	return File{
		Name:        CollectionFileName(now, e.backend.Extension()),
		ContentType: e.backend.ContentType(),
		Data:        e.render(doc, "Error generating notes collection document"),
	}
}

func (e *Exporter) render(doc Document, context string) []byte {
	data, err := e.try(doc)
	if err == nil {
		return data
	}
	e.log.Error("document generation failed",
		zap.String("document", doc.Title),
		zap.String("format", e.backend.Extension()),
		zap.Error(err))

	data, err = e.try(Fallback(fmt.Sprintf("%s: %v", context, err)))
	if err != nil {
		e.log.Error("fallback document generation failed", zap.Error(err))
		return []byte{}
	}
	return data
}

func (e *Exporter) try(doc Document) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return e.backend.Render(doc)
}

// SingleFileName returns "{title}.{ext}" with characters that are unsafe in
// file names replaced by underscores.
func SingleFileName(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '"' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "note"
	}
	return name + "." + ext
}

func CollectionFileName(t time.Time, ext string) string {
	return "all_notes_" + t.Format("20060102_150405") + "." + ext
}
