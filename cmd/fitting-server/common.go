package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/db"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/engine"
)

// runtimeEnv is what a command needs once logging, database and engine are up.
type runtimeEnv struct {
	logger   *slog.Logger
	database *db.DB
	engine   *engine.Engine
	closers  []func() error
}

func (r *runtimeEnv) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func setupLogging() (*slog.Logger, func() error) {
	logger, closeLog := config.SetupLogger(settings.LogFile, settings.LogLevel)
	slog.SetDefault(logger)
	return logger, closeLog
}

// openDatabase opens the catalog database and creates its tables if needed.
func openDatabase(ctx context.Context, r *runtimeEnv) error {
	database, err := db.OpenAndInit(ctx, settings.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	r.database = database
	r.closers = append(r.closers, database.Close)
	return nil
}

// startEngine brings up logging, the cached catalog and the engine.
func startEngine(ctx context.Context, logger *slog.Logger) (*runtimeEnv, error) {
	r := &runtimeEnv{logger: logger}
	if err := openDatabase(ctx, r); err != nil {
		return nil, err
	}

	store := catalog.NewStore(r.database)
	maxID, err := store.MaxItemID(ctx)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("reading catalog size: %w", err)
	}
	if maxID == 0 {
		r.Close()
		return nil, fmt.Errorf("item catalog %s is empty; run import-items first", settings.DBPath)
	}
	cached, err := catalog.NewCached(store, settings.CacheSize, maxID)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("creating catalog cache: %w", err)
	}

	data, err := config.LoadData(settings.DataDir)
	if err != nil {
		r.Close()
		return nil, err
	}

	eng, err := engine.New(ctx, cached, data, logger)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.engine = eng
	return r, nil
}

// readInput returns args joined, the named file, or stdin, in that order.
func readInput(args []string, file string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	var (
		raw []byte
		err error
	)
	if file != "" {
		raw, err = os.ReadFile(file)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
