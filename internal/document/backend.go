package document

import (
	"errors"
	"fmt"

	"example.com/notepad/internal/stringsx"
)

// Backend lays out a Document into a file format.
type Backend interface {
	Render(doc Document) ([]byte, error)
	// Extension is the file extension without a leading dot.
	Extension() string
	ContentType() string
}

var ErrUnknownFormat = errors.New("unknown export format")

// BackendFor resolves an export format name such as "pdf" or "txt". The
// options apply to the PDF backend.
func BackendFor(format string, opts ...PDFOption) (Backend, error) {
	switch stringsx.Normalize(format) {
	case "", "pdf":
		return NewPDFBackend(opts...), nil
	case "txt", "text":
		return TextBackend{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
