package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"example.com/notepad/internal/notes"
)

var ErrEmptyNote = errors.New("title and content are required")

// NoteStore is the storage the notebook depends on; stubbed in unit tests.
type NoteStore interface {
	Create(ctx context.Context, title, content string) (notes.Note, error)
	Get(ctx context.Context, id string) (notes.Note, error)
	Update(ctx context.Context, id, title, content string) (notes.Note, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) []notes.Note
	Search(ctx context.Context, query string) []notes.Note
	Count(ctx context.Context) int
}

// Notebook contains note validation independent from transport and storage.
type Notebook struct {
	store NoteStore
	log   *zap.Logger
}

func New(store NoteStore, log *zap.Logger) *Notebook {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notebook{store: store, log: log}
}

// Create stores a note with surrounding whitespace removed from title and
// content. Both must be non-empty after trimming.
func (nb *Notebook) Create(ctx context.Context, title, content string) (notes.Note, error) {
	title, content, err := clean(title, content)
	if err != nil {
		return notes.Note{}, err
	}
	n, err := nb.store.Create(ctx, title, content)
	if err != nil {
		nb.log.Error("create note", zap.Error(err))
		return notes.Note{}, err
	}
	nb.log.Info("note created", zap.String("note_id", n.ID))
	return n, nil
}

func (nb *Notebook) Update(ctx context.Context, id, title, content string) (notes.Note, error) {
	title, content, err := clean(title, content)
	if err != nil {
		return notes.Note{}, err
	}
	n, err := nb.store.Update(ctx, id, title, content)
	if err != nil {
		if !errors.Is(err, notes.ErrNotFound) {
			nb.log.Error("update note", zap.String("note_id", id), zap.Error(err))
		}
		return notes.Note{}, err
	}
	nb.log.Info("note updated", zap.String("note_id", id))
	return n, nil
}

func (nb *Notebook) Delete(ctx context.Context, id string) error {
	if err := nb.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, notes.ErrNotFound) {
			nb.log.Error("delete note", zap.String("note_id", id), zap.Error(err))
		}
		return err
	}
	nb.log.Info("note deleted", zap.String("note_id", id))
	return nil
}

func (nb *Notebook) Get(ctx context.Context, id string) (notes.Note, error) {
	return nb.store.Get(ctx, id)
}

// List returns the notes matching query, or all notes when query is blank.
func (nb *Notebook) List(ctx context.Context, query string) []notes.Note {
	if strings.TrimSpace(query) == "" {
		return nb.store.List(ctx)
	}
	return nb.store.Search(ctx, query)
}

func (nb *Notebook) Count(ctx context.Context) int {
	return nb.store.Count(ctx)
}

func clean(title, content string) (string, string, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", "", ErrEmptyNote
	}
	return title, content, nil
}
