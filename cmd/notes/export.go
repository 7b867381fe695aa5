package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"example.com/notepad/internal/document"
	"example.com/notepad/internal/notes"
	"example.com/notepad/internal/service"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		all    bool
		format string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export [ID]",
		Short: "Export one note, or all notes with --all, to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("give either a note ID or --all")
			}

			backend, err := document.BackendFor(format, document.WithFontFile(a.cfg.PDFFont))
			if err != nil {
				return err
			}
			exp := document.NewExporter(backend, document.WithLogger(a.log))

			var f document.File
			if all {
				f = exp.ExportCollection(a.notebook.List(cmd.Context(), ""))
			} else {
				n, err := a.notebook.Get(cmd.Context(), args[0])
				if errors.Is(err, notes.ErrNotFound) {
					return errors.New(service.NoticeNotFound)
				}
				if err != nil {
					return err
				}
				f = exp.ExportSingle(n)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, f.Name)
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Export every note into one document")
	cmd.Flags().StringVar(&format, "format", a.cfg.ExportFormat, "Output format: pdf or txt")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Directory to write the file to")
	return cmd
}
