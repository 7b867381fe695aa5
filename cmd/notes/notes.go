package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"example.com/notepad/internal/notes"
	"example.com/notepad/internal/service"
	"example.com/notepad/internal/stringsx"
)

// listTitleRunes is how much of a title fits in list output.
const listTitleRunes = 30

func (a *app) addCmd() *cobra.Command {
	var content string
	cmd := &cobra.Command{
		Use:   "add [-c CONTENT] TITLE [CONTENT]",
		Short: "Create a note; content is read from stdin when not given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case len(args) == 2:
				content = args[1]
			case content == "":
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read content: %w", err)
				}
				content = string(b)
			}

			n, err := a.notebook.Create(cmd.Context(), args[0], content)
			if errors.Is(err, service.ErrEmptyNote) {
				return errors.New(service.NoticeIncomplete)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", service.NoticeSaveFailed, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.NoticeSaved)
			fmt.Fprintln(cmd.OutOrStdout(), n.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content")
	// markdown content often starts with "-"; flags must come before TITLE
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := a.notebook.List(cmd.Context(), "")
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes yet. Create your first note!")
				return nil
			}
			writeList(cmd.OutOrStdout(), list)
			fmt.Fprintf(cmd.OutOrStdout(), "\nTotal notes: %d\n", a.notebook.Count(cmd.Context()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find notes whose title or content contains QUERY, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := a.notebook.List(cmd.Context(), args[0])
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes found matching your search.")
				return nil
			}
			writeList(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	var (
		raw   bool
		style string
	)
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a note with markdown formatting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.notebook.Get(cmd.Context(), args[0])
			if errors.Is(err, notes.ErrNotFound) {
				return errors.New(service.NoticeNotFound)
			}
			if err != nil {
				return err
			}
			if raw {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), n.Content)
				return err
			}
			return writePretty(cmd.OutOrStdout(), n, style)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source")
	cmd.Flags().StringVar(&style, "style", "dracula", "glamour style (dark, light, dracula, notty)")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the title or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.notebook.Get(cmd.Context(), args[0])
			if errors.Is(err, notes.ErrNotFound) {
				return errors.New(service.NoticeNotFound)
			}
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				n.Title = title
			}
			if cmd.Flags().Changed("content") {
				n.Content = content
			}

			_, err = a.notebook.Update(cmd.Context(), n.ID, n.Title, n.Content)
			if errors.Is(err, service.ErrEmptyNote) {
				return errors.New(service.NoticeIncomplete)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", service.NoticeUpdateFailed, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.NoticeUpdated)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.notebook.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s: %w", service.NoticeDeleteFailed, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.NoticeDeleted)
			return nil
		},
	}
}

func writeList(w io.Writer, list []notes.Note) {
	for _, n := range list {
		title, _ := stringsx.Ellipsize(n.Title, listTitleRunes)
		fmt.Fprintf(w, "%s  %s  (%s)\n", n.ID, title, n.CreatedAt.Local().Format("01/02/06 15:04"))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writePretty renders a note for the terminal with glamour.
func writePretty(w io.Writer, n notes.Note, style string) error {
	meta := "**Created:** " + n.CreatedAt.Local().Format("January 02, 2006 at 03:04 PM")
	if n.Edited() {
		meta += " | **Last updated:** " + n.UpdatedAt.Local().Format("January 02, 2006 at 03:04 PM")
	}

	md := fmt.Sprintf("# %s\n\n> %s\n\n---\n\n%s\n", n.Title, meta, hardBreaks(n.Content))

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}

// hardBreaks keeps line breaks as typed by ending every line outside code
// fences with a markdown hard break.
func hardBreaks(content string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	inFence := false
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.TrimSpace(l) != "" {
			lines[i] = strings.TrimRight(l, " \t") + "  "
		}
	}
	return strings.Join(lines, "\n")
}
