package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"example.com/notepad/internal/api"
	"example.com/notepad/internal/auth"
	"example.com/notepad/internal/config"
	"example.com/notepad/internal/document"
	"example.com/notepad/internal/logger"
	"example.com/notepad/internal/notes"
	"example.com/notepad/internal/service"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{Production: cfg.IsProduction(), File: cfg.LogFile})
	defer log.Sync()

	users, err := auth.LoadUsers(cfg.UsersFile)
	if err != nil {
		log.Fatal("load users", zap.String("path", cfg.UsersFile), zap.Error(err))
	}
	if _, err := document.BackendFor(cfg.ExportFormat); err != nil {
		log.Fatal("export format", zap.String("format", cfg.ExportFormat), zap.Error(err))
	}
	if cfg.PDFFont != "" {
		if _, err := os.Stat(cfg.PDFFont); err != nil {
			log.Fatal("pdf font", zap.String("path", cfg.PDFFont), zap.Error(err))
		}
	}

	stores := notes.NewStoreSet(cfg.DataDir, notes.WithLogger(log.Named("store")))

	h := api.NewHandlers(api.Options{
		Notebooks:     notebooks(stores, log),
		Exporters:     exporters(cfg.PDFFont, log.Named("export")),
		Auth:          auth.Middleware(users, log.Named("auth")),
		DefaultFormat: cfg.ExportFormat,
		MaxBodyBytes:  int64(cfg.MaxBodyBytes),
		Log:           log.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info("notes API listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("data_dir", cfg.DataDir),
		zap.Int("users", users.Len()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func notebooks(stores *notes.StoreSet, log *zap.Logger) api.NotebookResolver {
	return func(ctx context.Context) (api.Notebook, error) {
		u, ok := auth.UserFrom(ctx)
		if !ok {
			return nil, errors.New("no authenticated user")
		}
		s, err := stores.For(u.Username)
		if err != nil {
			return nil, err
		}
		return service.New(s, log.With(zap.String("user", u.Username))), nil
	}
}

func exporters(fontFile string, log *zap.Logger) api.ExporterFactory {
	return func(format string) (api.Exporter, error) {
		b, err := document.BackendFor(format, document.WithFontFile(fontFile))
		if err != nil {
			return nil, err
		}
		return document.NewExporter(b, document.WithLogger(log)), nil
	}
}
