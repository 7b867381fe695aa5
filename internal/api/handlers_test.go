package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/notepad/internal/document"
	"example.com/notepad/internal/notes"
	"example.com/notepad/internal/service"
)

type stubNotebook struct {
	createFn func(context.Context, string, string) (notes.Note, error)
	getFn    func(context.Context, string) (notes.Note, error)
	updateFn func(context.Context, string, string, string) (notes.Note, error)
	deleteFn func(context.Context, string) error
	listFn   func(context.Context, string) []notes.Note
	countFn  func(context.Context) int
	applyFn  func(context.Context, service.State, service.Action) (service.Outcome, error)
}

func (s stubNotebook) Create(ctx context.Context, title, content string) (notes.Note, error) {
	return s.createFn(ctx, title, content)
}
func (s stubNotebook) Get(ctx context.Context, id string) (notes.Note, error) {
	return s.getFn(ctx, id)
}
func (s stubNotebook) Update(ctx context.Context, id, title, content string) (notes.Note, error) {
	return s.updateFn(ctx, id, title, content)
}
func (s stubNotebook) Delete(ctx context.Context, id string) error { return s.deleteFn(ctx, id) }
func (s stubNotebook) List(ctx context.Context, q string) []notes.Note {
	return s.listFn(ctx, q)
}
func (s stubNotebook) Count(ctx context.Context) int { return s.countFn(ctx) }
func (s stubNotebook) Apply(ctx context.Context, st service.State, a service.Action) (service.Outcome, error) {
	return s.applyFn(ctx, st, a)
}

type stubExporter struct{ format string }

func (e stubExporter) ExportSingle(n notes.Note) document.File {
	return document.File{Name: n.Title + "." + e.format, ContentType: "text/plain", Data: []byte("one:" + n.ID)}
}

func (e stubExporter) ExportCollection(list []notes.Note) document.File {
	return document.File{Name: "all." + e.format, ContentType: "text/plain", Data: []byte("count:" + string(rune('0'+len(list))))}
}

func routes(nb Notebook) http.Handler {
	return NewHandlers(Options{
		Notebooks: func(context.Context) (Notebook, error) { return nb, nil },
		Exporters: func(format string) (Exporter, error) {
			if format != "pdf" && format != "txt" {
				return nil, document.ErrUnknownFormat
			}
			return stubExporter{format: format}, nil
		},
		MaxBodyBytes: 256,
	}).Routes()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlers_Health(t *testing.T) {
	rr := do(routes(stubNotebook{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHandlers_Create_Validation(t *testing.T) {
	h := routes(stubNotebook{
		createFn: func(context.Context, string, string) (notes.Note, error) {
			return notes.Note{}, service.ErrEmptyNote
		},
	})

	rr := do(h, http.MethodPost, "/notes/", `{"title":"","content":"x"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(h, http.MethodPost, "/notes/", "{")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(h, http.MethodPost, "/notes/", `{"title":"t","content":"`+strings.Repeat("x", 300)+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestHandlers_Create_Success(t *testing.T) {
	created := notes.Note{ID: "abc", Title: "t", Content: "c", CreatedAt: time.Unix(1, 0).UTC(), UpdatedAt: time.Unix(1, 0).UTC()}
	h := routes(stubNotebook{
		createFn: func(_ context.Context, title, content string) (notes.Note, error) {
			require.Equal(t, "t", title)
			require.Equal(t, "c", content)
			return created, nil
		},
	})

	rr := do(h, http.MethodPost, "/notes/", `{"title":"t","content":"c"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var got notes.Note
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Equal(t, created, got)
}

func TestHandlers_Create_StorageFailure(t *testing.T) {
	h := routes(stubNotebook{
		createFn: func(context.Context, string, string) (notes.Note, error) { return notes.Note{}, notes.ErrIO },
	})
	rr := do(h, http.MethodPost, "/notes/", `{"title":"t","content":"c"}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandlers_Get_Success_NotFound_And_Internal(t *testing.T) {
	n := notes.Note{ID: "42", Title: "t", Content: "c"}

	// success
	{
		h := routes(stubNotebook{
			getFn: func(_ context.Context, id string) (notes.Note, error) {
				require.Equal(t, "42", id)
				return n, nil
			},
		})
		rr := do(h, http.MethodGet, "/notes/42", "")
		require.Equal(t, http.StatusOK, rr.Code)
	}

	// not found
	{
		h := routes(stubNotebook{
			getFn: func(context.Context, string) (notes.Note, error) { return notes.Note{}, notes.ErrNotFound },
		})
		rr := do(h, http.MethodGet, "/notes/999", "")
		require.Equal(t, http.StatusNotFound, rr.Code)
	}

	// internal error
	{
		boom := errors.New("boom")
		h := routes(stubNotebook{
			getFn: func(context.Context, string) (notes.Note, error) { return notes.Note{}, boom },
		})
		rr := do(h, http.MethodGet, "/notes/1", "")
		require.Equal(t, http.StatusInternalServerError, rr.Code)
	}
}

func TestHandlers_Update_Delete_And_List(t *testing.T) {
	fixed := time.Unix(3, 0).UTC()

	h := routes(stubNotebook{
		updateFn: func(_ context.Context, id, title, content string) (notes.Note, error) {
			if id == "missing" {
				return notes.Note{}, notes.ErrNotFound
			}
			if title == "" {
				return notes.Note{}, service.ErrEmptyNote
			}
			return notes.Note{ID: id, Title: title, Content: content, CreatedAt: fixed, UpdatedAt: fixed}, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			if id == "missing" {
				return notes.ErrNotFound
			}
			return nil
		},
		listFn: func(_ context.Context, q string) []notes.Note {
			require.Equal(t, "title", q)
			return []notes.Note{{ID: "2", Title: "a", Content: "b", CreatedAt: fixed, UpdatedAt: fixed}}
		},
		countFn: func(context.Context) int { return 3 },
	})

	// update invalid json
	require.Equal(t, http.StatusBadRequest, do(h, http.MethodPut, "/notes/1", "{").Code)

	// update blank title
	require.Equal(t, http.StatusBadRequest, do(h, http.MethodPut, "/notes/1", `{"title":"","content":"c"}`).Code)

	// update success
	require.Equal(t, http.StatusOK, do(h, http.MethodPut, "/notes/1", `{"title":"t2","content":"c2"}`).Code)

	// update missing
	require.Equal(t, http.StatusNotFound, do(h, http.MethodPut, "/notes/missing", `{"title":"t2","content":"c2"}`).Code)

	// delete
	require.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/notes/1", "").Code)
	require.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/notes/missing", "").Code)

	// list with query
	{
		rr := do(h, http.MethodGet, "/notes?q=title", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Items []notes.Note `json:"items"`
			Count int          `json:"count"`
			Total int          `json:"total"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Equal(t, 1, resp.Count)
		require.Equal(t, 3, resp.Total)
		require.Equal(t, "2", resp.Items[0].ID)
	}
}

func TestHandlers_Export(t *testing.T) {
	h := routes(stubNotebook{
		getFn: func(_ context.Context, id string) (notes.Note, error) {
			if id == "missing" {
				return notes.Note{}, notes.ErrNotFound
			}
			return notes.Note{ID: id, Title: "Groceries"}, nil
		},
		listFn: func(_ context.Context, q string) []notes.Note {
			require.Empty(t, q)
			return []notes.Note{{ID: "1"}, {ID: "2"}}
		},
	})

	rr := do(h, http.MethodGet, "/notes/7/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `attachment; filename=Groceries.pdf`, rr.Header().Get("Content-Disposition"))
	require.Equal(t, "one:7", rr.Body.String())

	rr = do(h, http.MethodGet, "/notes/7/export?format=txt", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Disposition"), "Groceries.txt")

	rr = do(h, http.MethodGet, "/notes/7/export?format=docx", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(h, http.MethodGet, "/notes/missing/export", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(h, http.MethodGet, "/export?format=txt", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "count:2", rr.Body.String())
	require.Equal(t, "7", rr.Header().Get("Content-Length"))
}

func TestHandlers_Session(t *testing.T) {
	h := routes(stubNotebook{
		applyFn: func(_ context.Context, st service.State, a service.Action) (service.Outcome, error) {
			if a.Kind != service.ActionSave {
				return service.Outcome{}, service.ErrUnknownAction
			}
			require.Equal(t, service.State{EditMode: true}, st)
			require.Equal(t, "t", a.Title)
			next := service.State{CurrentNoteID: "n1"}
			return service.Outcome{
				State:  next,
				View:   next.View(),
				Notice: &service.Notice{Level: service.LevelSuccess, Text: service.NoticeSaved},
			}, nil
		},
	})

	rr := do(h, http.MethodPost, "/session", `{"state":{"edit_mode":true},"action":"save","title":"t","content":"c"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{
		"state": {"current_note_id": "n1", "edit_mode": false},
		"view": "note",
		"notice": {"level": "success", "text": "Note saved successfully!"}
	}`, rr.Body.String())

	rr = do(h, http.MethodPost, "/session", `{"action":"fly"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlers_AuthGuardsNotesButNotHealth(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	h := NewHandlers(Options{
		Notebooks: func(context.Context) (Notebook, error) { return stubNotebook{}, nil },
		Auth:      deny,
	}).Routes()

	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/notes", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/export", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/session", "{}").Code)
}

func TestHandlers_NotebookUnavailable(t *testing.T) {
	h := NewHandlers(Options{
		Notebooks: func(context.Context) (Notebook, error) { return nil, errors.New("no user") },
	}).Routes()

	require.Equal(t, http.StatusInternalServerError, do(h, http.MethodGet, "/notes", "").Code)
}
