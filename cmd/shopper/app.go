package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/MichalMitros/flyer-shopper/cmd/shopper/config"
	"github.com/MichalMitros/flyer-shopper/internal/apiclient"
	"github.com/MichalMitros/flyer-shopper/internal/catalog"
	"github.com/MichalMitros/flyer-shopper/internal/debounce"
	"github.com/MichalMitros/flyer-shopper/internal/notify"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/internal/platform/rabbitmq"
	"github.com/MichalMitros/flyer-shopper/internal/platform/storage"
	"github.com/MichalMitros/flyer-shopper/internal/preferences"
	"github.com/MichalMitros/flyer-shopper/internal/shoppinglist"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// app wires the CLI to backend client and local state.
type app struct {
	cfg    config.Config
	logger *zerolog.Logger
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	color  bool

	outMu    sync.Mutex
	client   *apiclient.Client
	notifier *notify.Console
	list     *shoppinglist.List
	session  *catalog.Session
	render   func()
}

func newApp(cfg config.Config, logger *zerolog.Logger, in io.Reader, out, errOut io.Writer) *app {
	return &app{
		cfg:    cfg,
		logger: logger,
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
}

// setup builds components from configuration, after flags were parsed.
func (a *app) setup() error {
	level, err := zerolog.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("can't parse log level %q: %w", a.cfg.LogLevel, err)
	}
	logger := a.logger.Level(level)
	a.logger = &logger

	limit := rate.Inf
	if a.cfg.RatePerSecond > 0 {
		limit = rate.Limit(a.cfg.RatePerSecond)
	}

	a.client = apiclient.NewClient(
		&http.Client{Timeout: a.cfg.HTTPTimeout},
		a.cfg.APIBaseURL,
		a.cfg.UserAgent,
		apiclient.WithRateLimiter(rate.NewLimiter(limit, max(a.cfg.RateBurst, 1))),
		apiclient.WithLogger(a.logger),
	)
	a.notifier = notify.NewConsole(a.errOut, a.logger)
	a.list = shoppinglist.NewList(
		a.client,
		a.notifier,
		shoppinglist.WithMaxQuantity(a.cfg.MaxQuantity),
		shoppinglist.WithLogger(a.logger),
	)
	a.session = catalog.NewSession(
		a.client,
		a.notifier,
		catalog.WithDebouncer(debounce.New(a.cfg.Debounce)),
		catalog.WithLogger(a.logger),
		catalog.WithOnUpdate(a.onUpdate),
	)

	return nil
}

func (a *app) onUpdate() {
	if a.render != nil {
		a.render()
	}
}

// startup loads shopping list, catalog and last update time concurrently.
func (a *app) startup(ctx context.Context) (models.LastUpdated, error) {
	var updated models.LastUpdated

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.list.Load(gctx)
	})
	g.Go(func() error {
		return a.session.Refresh(gctx)
	})
	g.Go(func() error {
		var err error
		updated, err = a.client.GetLastUpdated(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.LastUpdated{}, err
	}

	return updated, nil
}

// openPreferences opens Postgres storage when DATABASE_URL is set, local SQLite file otherwise.
func (a *app) openPreferences(ctx context.Context) (preferences.Preferences, io.Closer, error) {
	if a.cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", a.cfg.DatabaseURL)
		if err != nil {
			return preferences.Preferences{}, nil, fmt.Errorf("can't open Postgres connection: %w", err)
		}
		store := storage.NewPostgres(db)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return preferences.Preferences{}, nil, err
		}
		return preferences.New(store), db, nil
	}

	db, err := storage.OpenSQLite(ctx, a.cfg.StatePath)
	if err != nil {
		return preferences.Preferences{}, nil, err
	}
	store := storage.NewSQLite(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return preferences.Preferences{}, nil, err
	}

	return preferences.New(store), db, nil
}

// displayPrefs reads rendering preferences. Storage failures fall back to defaults.
func (a *app) displayPrefs(ctx context.Context) display {
	d := display{viewMode: preferences.ViewGrid, color: a.color}

	prefs, closer, err := a.openPreferences(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("can't open preferences, using defaults")
		return d
	}
	defer closer.Close()

	if d.viewMode, err = prefs.ViewMode(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("can't read view mode")
	}
	if d.darkMode, err = prefs.DarkMode(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("can't read dark mode")
	}

	return d
}

// connectRabbitMQ dials RabbitMQ. Returned function closes the connection.
func (a *app) connectRabbitMQ() (*rabbitmq.RabbitMQ, func(), error) {
	if a.cfg.RabbitMQ.URL == "" {
		return nil, nil, errRabbitMQDisabled
	}

	connection, err := amqp.Dial(a.cfg.RabbitMQ.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("can't open RabbitMQ connection: %w", err)
	}

	mq, err := rabbitmq.NewRabbitMQ(connection, a.cfg.RabbitMQ.Exchange)
	if err != nil {
		_ = connection.Close()
		return nil, nil, err
	}

	return mq, func() {
		if err := connection.Close(); err != nil {
			a.logger.Error().Err(err).Msg("can't close RabbitMQ connection")
		}
	}, nil
}

func (a *app) storeView() storeView {
	return storeView{
		stores: a.session.Stores(),
		active: a.session.ActiveStore(),
		items:  a.session.View(),
	}
}

// printf writes to output, safe to call from the debounce goroutine.
func (a *app) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()

	fmt.Fprintf(a.out, format, args...)
}

func (a *app) renderFlyers(d display) {
	var b strings.Builder
	renderFlyers(&b, a.storeView(), d)
	a.printf("%s", b.String())
}

func (a *app) renderList() {
	var b strings.Builder
	renderList(&b, a.list.GroupByStore(), a.list.TotalItemCount())
	a.printf("%s", b.String())
}

// confirm asks prompt on output and reads the answer from input.
func (a *app) confirm(prompt string) bool {
	a.printf("%s [y/N]: ", prompt)

	answer, err := a.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
