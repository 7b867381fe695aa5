package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"example.com/notepad/internal/auth"
	"example.com/notepad/internal/config"
	"example.com/notepad/internal/logger"
	"example.com/notepad/internal/notes"
	"example.com/notepad/internal/service"
)

// app holds the global flags and the services built from them.
type app struct {
	dataDir string
	user    string
	verbose bool

	cfg      config.Config
	log      *zap.Logger
	notebook *service.Notebook
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Load()}

	root := &cobra.Command{
		Use:   "notes",
		Short: "Write, search and export markdown notes",
		Long: `notes keeps markdown notes in a per-user JSON file and exports
them to PDF or plain text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", a.cfg.DataDir, "Directory holding the notes files")
	root.PersistentFlags().StringVar(&a.user, "user", defaultUser(), "Whose notes to use")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.searchCmd(),
		a.showCmd(),
		a.editCmd(),
		a.rmCmd(),
		a.exportCmd(),
		a.hashPasswordCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if !auth.ValidUsername(a.user) {
		return fmt.Errorf("%w: %q", auth.ErrInvalidUsername, a.user)
	}

	a.log = zap.NewNop()
	if a.verbose {
		a.log = logger.New(logger.Options{
			Production: a.cfg.IsProduction(),
			File:       a.cfg.LogFile,
			Console:    cmd.ErrOrStderr(),
		})
	}

	store, err := notes.NewStoreSet(a.dataDir, notes.WithLogger(a.log)).For(a.user)
	if err != nil {
		return err
	}
	a.notebook = service.New(store, a.log)
	return nil
}

func defaultUser() string {
	if u := os.Getenv("USER"); auth.ValidUsername(u) {
		return u
	}
	return "local"
}
