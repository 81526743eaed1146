package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/shoplist/internal/config"
	"github.com/roach88/shoplist/internal/engine"
	"github.com/roach88/shoplist/internal/logging"
	"github.com/roach88/shoplist/internal/product"
	"github.com/roach88/shoplist/internal/store"
)

// env is what the data-file commands share: configuration, logger, the
// store and an engine loaded from it.
type env struct {
	cfg    *config.Config
	log    *zap.SugaredLogger
	store  *store.Store
	engine *engine.Engine
	out    *OutputFormatter
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig reads the configuration and builds the logger. --verbose
// forces debug level.
func (o *RootOptions) loadConfig() (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(config.Options{File: o.ConfigFile, EnvFile: o.EnvFile})
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.Verbose {
		cfg.Logger.Level = "debug"
	}
	log, err := logging.New(cfg.Logger)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}
	return cfg, log, nil
}

func openStore(cfg *config.Config, log *zap.SugaredLogger) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path, store.Mode(cfg.Store.Scope), log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open data file", err)
	}
	return st, nil
}

// openEnv loads everything a data-file command needs. Commands that change
// the file pass write and must call close when done.
func (o *RootOptions) openEnv(cmd *cobra.Command, write bool) (*env, error) {
	cfg, log, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	out := o.formatter(cmd)
	if write {
		if err := lockStore(st, out); err != nil {
			return nil, err
		}
	}
	eng, err := engine.Load(cmd.Context(), st,
		engine.WithLogger(log),
		engine.WithSaveTimeout(cfg.Store.SaveTimeout),
	)
	if err != nil {
		_ = st.Unlock()
		return nil, WrapExitError(ExitFailure, "failed to load data file", err)
	}
	out.VerboseLog("data file: %s (%s)", st.Path(), st.Mode())
	return &env{cfg: cfg, log: log, store: st, engine: eng, out: out}, nil
}

// close releases the writer lock, if taken.
func (e *env) close() {
	if err := e.store.Unlock(); err != nil {
		e.log.Warnw("cannot release writer lock", "path", e.store.Path(), "error", err)
	}
}

// lockStore takes the data file's writer lock. A held lock (usually a
// running bot) is a command error: the caller would overwrite its state.
func lockStore(st *store.Store, out *OutputFormatter) error {
	err := st.Lock()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrLocked):
		_ = out.Error(CodeLocked, "data file is in use by another shoplist process", err.Error())
		return WrapExitError(ExitCommandError, "data file is locked", err)
	default:
		_ = out.Error(CodePersist, "cannot lock data file", err.Error())
		return WrapExitError(ExitFailure, "failed to lock data file", err)
	}
}

// addUserFlag registers --user on commands that address one list.
func addUserFlag(cmd *cobra.Command, user *int64) {
	cmd.Flags().Int64VarP(user, "user", "u", 0, "user id whose list to use (per_user scope only)")
}

// scope resolves the list a command works on. Per-user deployments need
// an explicit --user.
func (e *env) scope(user int64) (product.Scope, error) {
	if e.store.Mode() != store.ModePerUser {
		return product.SharedScope, nil
	}
	if user == 0 {
		_ = e.out.Error(CodeInput, "--user is required when store.scope is per_user", nil)
		return "", NewExitError(ExitCommandError, "--user is required when store.scope is per_user")
	}
	return product.UserScope(user), nil
}
