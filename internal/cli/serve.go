package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/shoplist/internal/bot"
	"github.com/roach88/shoplist/internal/dialog"
	"github.com/roach88/shoplist/internal/engine"
	"github.com/roach88/shoplist/internal/journal"
	"github.com/roach88/shoplist/internal/metrics"
	"github.com/roach88/shoplist/internal/telegram"
)

const (
	sweepInterval   = 10 * time.Minute
	shutdownTimeout = 5 * time.Second
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions

	// FlowGenerator overrides the flow id generator (for testing).
	// If nil, defaults to bot.UUIDv7Generator.
	FlowGenerator bot.FlowGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Long: `Run the bot: poll Telegram for updates, handle them one at a time and
reply. Stops on SIGINT or SIGTERM after the queued events are handled.

With metrics.enabled an ops server exposes /healthz, /metrics and /list.

Example:
  BOT_TOKEN=123:abc shoplist serve
  shoplist serve --config ./shoplist.yaml --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, log, err := opts.loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateServe(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	if err := lockStore(st, opts.formatter(cmd)); err != nil {
		return err
	}
	defer func() { _ = st.Unlock() }()

	eng, err := engine.Load(cmd.Context(), st,
		engine.WithLogger(log),
		engine.WithSaveTimeout(cfg.Store.SaveTimeout),
	)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load data file", err)
	}
	log.Infow("data file loaded",
		"path", st.Path(),
		"scope", st.Mode(),
		"products", len(eng.Vocabulary()),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	sessions := dialog.NewSessions()
	handler := bot.NewHandler(eng, sessions, st.Mode(), log)

	loopOpts := []bot.LoopOption{
		bot.WithLoopLogger(log),
		bot.WithSendTimeout(cfg.Telegram.SendTimeout),
		bot.WithMetrics(m),
	}
	if opts.FlowGenerator != nil {
		loopOpts = append(loopOpts, bot.WithFlowGenerator(opts.FlowGenerator))
	}
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				log.Errorw("error closing journal", "error", closeErr)
			}
		}()
		loopOpts = append(loopOpts, bot.WithJournal(j))
		log.Infow("journal enabled", "path", cfg.Journal.Path)
	}

	// The adapter feeds the loop and the loop replies through the adapter.
	var loop *bot.Loop
	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Bot.Token,
		PollTimeout: cfg.Telegram.PollTimeout,
		SendTimeout: cfg.Telegram.SendTimeout,
		RateLimit:   cfg.Telegram.RateLimit,
	}, telegram.SinkFunc(func(ev bot.Event) bool { return loop.Enqueue(ev) }), log)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to connect to Telegram", err)
	}
	loop = bot.NewLoop(handler, adapter, loopOpts...)

	m.WatchGauge("shoplist_list_items", "Products on all shopping lists.", func() float64 {
		n := 0
		for _, l := range eng.Snapshot().Lists {
			n += len(l)
		}
		return float64(n)
	})
	m.WatchGauge("shoplist_vocabulary_size", "Products ever added.", func() float64 {
		return float64(len(eng.Vocabulary()))
	})
	m.WatchGauge("shoplist_sessions", "Senders with dialog state.", func() float64 {
		return float64(sessions.Len())
	})
	m.WatchGauge("shoplist_queue_pending", "Events waiting for the loop.", func() float64 {
		return float64(loop.Pending())
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Queued events are still handled after a signal, so the loop runs
	// on a context that is never cancelled and ends through Stop.
	g.Go(func() error {
		return loop.Run(context.WithoutCancel(gctx))
	})
	g.Go(func() error {
		adapter.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down")
		adapter.Stop()
		loop.Stop()
		return nil
	})
	g.Go(func() error {
		sweepSessions(gctx, sessions, log)
		return nil
	})

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Addr, m, eng, log)
		g.Go(func() error {
			log.Infow("ops server listening", "addr", cfg.Metrics.Addr)
			if err := srv.Start(); err != nil {
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Bot started. Press Ctrl-C to stop.")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "bot stopped with an error", err)
	}
	log.Infow("bot stopped gracefully")
	return nil
}

// sweepSessions drops idle dialog sessions until ctx is done.
func sweepSessions(ctx context.Context, sessions *dialog.Sessions, log *zap.SugaredLogger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.Debugw("idle sessions swept", "count", n)
			}
		}
	}
}
