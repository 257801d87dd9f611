package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravitrone/nebula-notes/internal/api"
	"github.com/gravitrone/nebula-notes/internal/config"
	"github.com/gravitrone/nebula-notes/internal/logging"
	"github.com/gravitrone/nebula-notes/internal/note"
	"github.com/gravitrone/nebula-notes/internal/storage"
	"github.com/gravitrone/nebula-notes/internal/store"
	"github.com/gravitrone/nebula-notes/internal/textsvc"
	"github.com/gravitrone/nebula-notes/internal/ui"
)

// Env is everything a command needs: config, logger and the loaded store.
type Env struct {
	Config *config.Config
	Log    *zap.Logger
	Store  *store.Store
}

// OpenEnv loads config, builds the logger and opens the note database.
func OpenEnv(ctx context.Context, verbose bool) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(logging.Options{File: cfg.LogFile, Verbose: verbose})
	if err != nil {
		return nil, err
	}
	db, err := storage.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	st := store.New(db, log)
	st.Load(ctx)
	log.Debug("environment ready", zap.String("db", cfg.DBPath), zap.String("transport", cfg.Transport))
	return &Env{Config: cfg, Log: log, Store: st}, nil
}

// Close releases the database and flushes the log.
func (e *Env) Close() error {
	err := e.Store.Close()
	_ = e.Log.Sync()
	return err
}

// TextFactory returns a builder for the AI text service. Building is
// deferred so a missing key only matters once an action is used.
func (e *Env) TextFactory() ui.TextFactory {
	return func(ctx context.Context) (ui.TextService, error) {
		return newTextService(ctx, e)
	}
}

// newTextService is swapped in tests.
var newTextService = func(ctx context.Context, e *Env) (ui.TextService, error) {
	gen, err := api.NewGenerator(ctx, api.Options{
		Transport: e.Config.Transport,
		APIKey:    e.Config.APIKey,
		Model:     e.Config.Model,
		BaseURL:   e.Config.BaseURL,
		Timeout:   e.Config.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}
	return textsvc.New(gen, e.Log, e.Config.RequestTimeout), nil
}

// withEnv opens the environment around fn.
func withEnv(c *cobra.Command, fn func(ctx context.Context, env *Env) error) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := OpenEnv(ctx, Verbose(c))
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(ctx, env)
}

// Verbose reads the root --verbose flag. Commands run on their own see false.
func Verbose(c *cobra.Command) bool {
	v, err := c.Flags().GetBool("verbose")
	return err == nil && v
}

var errAmbiguousID = errors.New("ambiguous note id")

// resolveID accepts a full id or a unique prefix of one.
func resolveID(st *store.Store, arg string) (note.Note, error) {
	arg = strings.TrimSpace(arg)
	if n, err := st.Get(arg); err == nil {
		return n, nil
	}
	var match []note.Note
	if arg != "" {
		for _, n := range st.Snapshot() {
			if strings.HasPrefix(n.ID, arg) {
				match = append(match, n)
			}
		}
	}
	switch len(match) {
	case 0:
		return note.Note{}, fmt.Errorf("%w: %s", store.ErrNotFound, arg)
	case 1:
		return match[0], nil
	default:
		return note.Note{}, fmt.Errorf("%w: %s matches %d notes", errAmbiguousID, arg, len(match))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
