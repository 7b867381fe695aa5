package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/notepad/internal/stringsx"
)

var (
	ErrNotFound = errors.New("note not found")
	ErrIO       = errors.New("note storage failure")
)

const (
	tempPrefix   = ".notes-tmp-"
	corruptStamp = "20060102T150405.000000000Z"
	filePerm     = 0o644
)

// Store keeps a collection of notes in a single JSON file. Every operation
// reloads the file, so the file is the only state; nothing is cached between
// calls.
type Store struct {
	mu    sync.Mutex
	path  string
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open returns a store backed by path, creating the parent directory and an
// empty collection if they do not exist yet.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:  path,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %w", ErrIO, err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.save([]Note{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Create(ctx context.Context, title, content string) (Note, error) {
	if err := ctx.Err(); err != nil {
		return Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return Note{}, err
	}

	now := s.timestamp()
	n := Note{
		ID:        s.newID(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(append(list, n)); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (s *Store) Get(ctx context.Context, id string) (Note, error) {
	if err := ctx.Err(); err != nil {
		return Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.loadOrEmpty() {
		if n.ID == id {
			return n, nil
		}
	}
	return Note{}, ErrNotFound
}

// List returns all notes, newest first. Notes created at the same instant
// keep their stored order.
func (s *Store) List(ctx context.Context) []Note {
	if ctx.Err() != nil {
		return []Note{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortNewestFirst(s.loadOrEmpty())
}

func (s *Store) Update(ctx context.Context, id, title, content string) (Note, error) {
	if err := ctx.Err(); err != nil {
		return Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return Note{}, err
	}

	i := slices.IndexFunc(list, func(n Note) bool { return n.ID == id })
	if i < 0 {
		return Note{}, ErrNotFound
	}

	n := &list[i]
	n.Title = title
	n.Content = content
	n.UpdatedAt = s.timestamp()
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}

	if err := s.save(list); err != nil {
		return Note{}, err
	}
	return *n, nil
}

// Delete removes every note carrying id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(slices.Clone(list), func(n Note) bool { return n.ID == id })
	if len(kept) == len(list) {
		return ErrNotFound
	}
	return s.save(kept)
}

// Search returns notes whose title or content contains query, ignoring case,
// in List order. A blank query matches everything.
func (s *Store) Search(ctx context.Context, query string) []Note {
	list := s.List(ctx)
	if stringsx.IsEmpty(query) {
		return list
	}

	out := make([]Note, 0, len(list))
	for _, n := range list {
		if stringsx.ContainsFold(n.Title, query) || stringsx.ContainsFold(n.Content, query) {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) Count(ctx context.Context) int {
	return len(s.List(ctx))
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Round(0)
}

func sortNewestFirst(list []Note) []Note {
	slices.SortStableFunc(list, func(a, b Note) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list
}

// loadOrEmpty is load for read paths: failures are logged and read as an
// empty collection.
func (s *Store) loadOrEmpty() []Note {
	list, err := s.load()
	if err != nil {
		s.log.Error("load notes", zap.String("path", s.path), zap.Error(err))
		return []Note{}
	}
	return list
}

// load reads the whole collection. A missing file is an empty collection.
// A file that does not parse is moved aside so the next save cannot
// overwrite it, and the collection is treated as empty.
func (s *Store) load() ([]Note, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}

	var list []Note
	if err := json.Unmarshal(data, &list); err != nil {
		if qerr := s.quarantine(err); qerr != nil {
			return nil, qerr
		}
		return []Note{}, nil
	}
	if list == nil {
		list = []Note{}
	}
	return list, nil
}

func (s *Store) quarantine(cause error) error {
	aside, err := s.asideName()
	if err != nil {
		return err
	}
	if err := os.Rename(s.path, aside); err != nil {
		return fmt.Errorf("%w: move corrupt file %s: %w", ErrIO, s.path, err)
	}
	s.log.Warn("corrupt notes file moved aside",
		zap.String("path", s.path),
		zap.String("moved_to", aside),
		zap.Error(cause))
	return nil
}

// asideName picks a backup name for a corrupt file that does not clobber an
// earlier backup.
func (s *Store) asideName() (string, error) {
	base := s.path + ".corrupt-" + s.now().UTC().Format(corruptStamp)
	name := base
	for i := 1; ; i++ {
		_, err := os.Lstat(name)
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %w", ErrIO, name, err)
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *Store) save(list []Note) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("%w: encode notes: %w", ErrIO, err)
	}
	if err := writeFileAtomic(s.path, buf.Bytes(), filePerm); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over filename, so readers see either the old or the new file.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", filename, err)
	}
	return nil
}
