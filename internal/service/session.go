package service

import (
	"context"
	"errors"
	"fmt"

	"example.com/notepad/internal/notes"
)

// View is the screen a client should show after an action.
type View string

const (
	ViewEditor View = "editor"
	ViewNote   View = "note"
)

// State is the per-client navigation state. Clients hold it and send it
// back with every action.
type State struct {
	CurrentNoteID string `json:"current_note_id,omitempty"`
	EditMode      bool   `json:"edit_mode"`
}

// View shows the editor while editing or when no note is selected.
func (s State) View() View {
	if s.EditMode || s.CurrentNoteID == "" {
		return ViewEditor
	}
	return ViewNote
}

type ActionKind string

const (
	ActionNew    ActionKind = "new"
	ActionOpen   ActionKind = "open"
	ActionEdit   ActionKind = "edit"
	ActionCancel ActionKind = "cancel"
	ActionSave   ActionKind = "save"
	ActionDelete ActionKind = "delete"
)

var ErrUnknownAction = errors.New("unknown action")

type Action struct {
	Kind    ActionKind
	ID      string
	Title   string
	Content string
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

const (
	NoticeSaved        = "Note saved successfully!"
	NoticeUpdated      = "Note updated successfully!"
	NoticeSaveFailed   = "Failed to save note."
	NoticeUpdateFailed = "Failed to update note."
	NoticeIncomplete   = "Please enter both title and content."
	NoticeDeleted      = "Note deleted!"
	NoticeDeleteFailed = "Failed to delete note."
	NoticeNotFound     = "Note not found."
)

// Outcome is the result of applying an action: the new state, the view to
// render and an optional message for the user.
type Outcome struct {
	State  State       `json:"state"`
	View   View        `json:"view"`
	Note   *notes.Note `json:"note,omitempty"`
	Notice *Notice     `json:"notice,omitempty"`
}

// Apply runs one user action against st and returns the next state. It only
// fails for an unknown action kind; storage failures become notices.
func (nb *Notebook) Apply(ctx context.Context, st State, a Action) (Outcome, error) {
	var notice *Notice

	switch a.Kind {
	case ActionNew:
		st = State{EditMode: true}
	case ActionOpen:
		st = State{CurrentNoteID: a.ID}
	case ActionEdit:
		if a.ID != "" {
			st.CurrentNoteID = a.ID
		}
		st.EditMode = true
	case ActionCancel:
		st.EditMode = false
	case ActionSave:
		st, notice = nb.save(ctx, st, a)
	case ActionDelete:
		st, notice = nb.remove(ctx, st, a)
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}

	return nb.resolve(ctx, st, notice), nil
}

func (nb *Notebook) save(ctx context.Context, st State, a Action) (State, *Notice) {
	if st.CurrentNoteID != "" {
		_, err := nb.Update(ctx, st.CurrentNoteID, a.Title, a.Content)
		switch {
		case errors.Is(err, ErrEmptyNote):
			return st, &Notice{LevelWarning, NoticeIncomplete}
		case err != nil:
			return st, &Notice{LevelError, NoticeUpdateFailed}
		}
		st.EditMode = false
		return st, &Notice{LevelSuccess, NoticeUpdated}
	}

	n, err := nb.Create(ctx, a.Title, a.Content)
	switch {
	case errors.Is(err, ErrEmptyNote):
		return st, &Notice{LevelWarning, NoticeIncomplete}
	case err != nil:
		return st, &Notice{LevelError, NoticeSaveFailed}
	}
	return State{CurrentNoteID: n.ID}, &Notice{LevelSuccess, NoticeSaved}
}

func (nb *Notebook) remove(ctx context.Context, st State, a Action) (State, *Notice) {
	id := a.ID
	if id == "" {
		id = st.CurrentNoteID
	}
	if err := nb.Delete(ctx, id); err != nil {
		return st, &Notice{LevelError, NoticeDeleteFailed}
	}
	if st.CurrentNoteID == id {
		st = State{}
	}
	return st, &Notice{LevelSuccess, NoticeDeleted}
}

// resolve loads the selected note for display. A selected note that no
// longer exists is deselected with a not-found notice unless another notice
// is already pending.
func (nb *Notebook) resolve(ctx context.Context, st State, notice *Notice) Outcome {
	out := Outcome{State: st, Notice: notice}
	if st.CurrentNoteID != "" {
		n, err := nb.Get(ctx, st.CurrentNoteID)
		if err != nil {
			out.State = State{EditMode: st.EditMode}
			if out.Notice == nil {
				out.Notice = &Notice{LevelError, NoticeNotFound}
			}
		} else {
			out.Note = &n
		}
	}
	out.View = out.State.View()
	return out
}
