package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MichalMitros/flyer-shopper/internal/apiclient"
	"github.com/MichalMitros/flyer-shopper/internal/export"
	"github.com/MichalMitros/flyer-shopper/internal/filter"
	"github.com/MichalMitros/flyer-shopper/internal/handler"
	"github.com/MichalMitros/flyer-shopper/internal/platform"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/pkg/v1/events"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	formatText = "text"
	formatXLSX = "xlsx"
)

var (
	errRabbitMQDisabled  = errors.New("RabbitMQ is not configured, set RABBITMQ_URL")
	errUnsupportedFormat = errors.New("unsupported export format")
	errInvalidSetting    = errors.New("invalid setting")
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "shopper",
		Short:         "Browse grocery flyers and keep a shopping list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.APIBaseURL, "api-url", a.cfg.APIBaseURL, "Flyer backend base URL")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "Log level: debug, info, warn, error")
	flags.IntVar(&a.cfg.MaxQuantity, "max-quantity", a.cfg.MaxQuantity, "Highest quantity of a list entry")
	flags.BoolVar(&a.color, "color", false, "Highlight sale prices")

	root.AddCommand(
		a.flyersCommand(),
		a.storesCommand(),
		a.listCommand(),
		a.addCommand(),
		a.incCommand(),
		a.removeCommand(),
		a.clearCommand(),
		a.exportCommand(),
		a.qrCommand(),
		a.statsCommand(),
		a.lastUpdatedCommand(),
		a.updateDataCommand(),
		a.prefsCommand(),
		a.browseCommand(),
		a.watchCommand(),
	)

	return root
}

// filterFlags binds filter flags of cmd.
type filterFlags struct {
	state    filter.State
	minPrice float64
	maxPrice float64
}

func bindFilterFlags(cmd *cobra.Command) *filterFlags {
	ff := &filterFlags{state: filter.Default()}

	f := cmd.Flags()
	f.StringVar(&ff.state.Search, "search", "", "Search query")
	f.StringVar(&ff.state.SaleFilter, "sale", filter.SaleAll, "Sale filter: all, sale, regular")
	f.Float64Var(&ff.minPrice, "min-price", 0, "Lowest price")
	f.Float64Var(&ff.maxPrice, "max-price", 0, "Highest price")
	f.Float64Var(&ff.state.MinSavings, "min-savings", 0, "Lowest savings percentage")
	f.StringVar(&ff.state.SortBy, "sort", filter.SortByName, "Sort by: name, price, savings")
	f.StringVar(&ff.state.SortOrder, "order", filter.OrderAsc, "Sort order: asc, desc")

	return ff
}

func (ff *filterFlags) filter(cmd *cobra.Command) filter.State {
	state := ff.state
	if cmd.Flags().Changed("min-price") {
		state.MinPrice = lo.ToPtr(ff.minPrice)
	}
	if cmd.Flags().Changed("max-price") {
		state.MaxPrice = lo.ToPtr(ff.maxPrice)
	}
	return state
}

func (a *app) flyersCommand() *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "flyers",
		Short: "Show flyer items of a store",
		Args:  cobra.NoArgs,
	}
	ff := bindFilterFlags(cmd)
	cmd.Flags().StringVar(&store, "store", "", "Store to show, first listed store by default")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a.session.SetFilter(ff.filter(cmd))
		if err := a.session.Refresh(ctx); err != nil {
			return err
		}
		if store != "" {
			if err := a.session.SelectStore(store); err != nil {
				return err
			}
		}

		a.renderFlyers(a.displayPrefs(ctx))
		return nil
	}

	return cmd
}

func (a *app) storesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "List stores with flyers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Refresh(cmd.Context()); err != nil {
				return err
			}

			for _, store := range a.session.Stores() {
				a.printf("%s\t%s\t%d items\n", store, models.StoreDisplayName(store), len(a.session.StoreItems(store)))
			}
			return nil
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show shopping list grouped by store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.list.Load(cmd.Context()); err != nil {
				return err
			}

			a.renderList()
			return nil
		},
	}
}

func (a *app) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <item-id>",
		Short: "Add flyer item to shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return a.session.Refresh(gctx) })
			g.Go(func() error { return a.list.Load(gctx) })
			if err := g.Wait(); err != nil {
				return err
			}

			return a.add(cmd.Context(), args[0])
		},
	}
}

func (a *app) add(ctx context.Context, id string) error {
	item, ok := a.session.Find(id)
	if !ok {
		return fmt.Errorf("can't add %q: %w", id, platform.ErrItemNotFound)
	}

	return a.list.Add(ctx, item)
}

func (a *app) incCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inc <item-id> [delta]",
		Short: "Change quantity of a shopping list entry, by 1 unless delta is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			delta := 1
			if len(args) == 2 {
				var err error
				if delta, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("can't parse delta %q: %w", args[1], err)
				}
			}

			if err := a.list.Load(cmd.Context()); err != nil {
				return err
			}
			if _, ok := a.list.Find(id); !ok {
				return fmt.Errorf("can't update %q: %w", id, platform.ErrItemNotFound)
			}

			if err := a.list.IncrementQuantity(cmd.Context(), id, delta); err != nil {
				return err
			}

			entry, _ := a.list.Find(id)
			a.printf("%s\n", export.EntryLine(entry))
			return nil
		},
	}
}

func (a *app) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove entry from shopping list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.list.Load(cmd.Context()); err != nil {
				return err
			}

			return a.list.Remove(cmd.Context(), args[0])
		},
	}
}

func (a *app) clearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all entries from shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			confirm := a.confirm
			if yes {
				confirm = func(string) bool { return true }
			}

			return a.list.Clear(cmd.Context(), confirm)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Don't ask for confirmation")

	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export shopping list as text or spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(format)
			if format != formatText && format != formatXLSX {
				return fmt.Errorf("can't export as %q: %w", format, errUnsupportedFormat)
			}

			if err := a.list.Load(cmd.Context()); err != nil {
				return err
			}

			return a.writeOutput(out, func(w io.Writer) error {
				if format == formatXLSX {
					return export.XLSX(w, a.list.GroupByStore())
				}
				_, err := io.WriteString(w, a.list.ExportAsText())
				return err
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatText, "Export format: text, xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, standard output by default")

	return cmd
}

// writeOutput writes with write to file path, or to standard output when path is empty.
func (a *app) writeOutput(path string, write func(w io.Writer) error) error {
	if path == "" {
		a.outMu.Lock()
		defer a.outMu.Unlock()
		return write(a.out)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't create %q: %w", path, err)
	}

	if err := write(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("can't write %q: %w", path, err)
	}

	return file.Close()
}

func (a *app) qrCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Save QR code linking to the shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.list.Load(ctx); err != nil {
				return err
			}
			if a.list.TotalItemCount() == 0 {
				a.notifier.Info("Your shopping list is empty.")
				return nil
			}

			uri, err := a.client.GenerateQR(ctx, a.list.ExportAsText())
			if err != nil {
				a.notifier.Error("Failed to generate QR code. Please try again.", err)
				return err
			}

			_, image, err := apiclient.DecodeDataURI(uri)
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, image, 0o644); err != nil {
				return fmt.Errorf("can't save QR code: %w", err)
			}

			a.notifier.Info("QR code saved to " + out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "shopping-list.png", "Output PNG file")

	return cmd
}

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.client.GetStatistics(cmd.Context())
			if err != nil {
				return err
			}

			a.outMu.Lock()
			defer a.outMu.Unlock()
			renderStatistics(a.out, stats)
			return nil
		},
	}
}

func (a *app) lastUpdatedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "last-updated",
		Short: "Show when flyer data was last updated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			updated, err := a.client.GetLastUpdated(cmd.Context())
			if err != nil {
				return err
			}

			a.printf("Last updated: %s\n", updated.HumanReadable)
			return nil
		},
	}
}

func (a *app) updateDataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update-data",
		Short: "Ask backend to refresh flyer data and announce it to watchers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			msg, err := a.client.UpdateData(ctx)
			if err != nil {
				a.notifier.Error("Failed to update flyer data.", err)
				return err
			}
			a.notifier.Info(msg)

			if a.cfg.RabbitMQ.URL == "" {
				return nil
			}

			return a.announceUpdate(ctx)
		},
	}
}

func (a *app) announceUpdate(ctx context.Context) error {
	updated, err := a.client.GetLastUpdated(ctx)
	if err != nil {
		return err
	}

	mq, closeConn, err := a.connectRabbitMQ()
	if err != nil {
		return err
	}
	defer closeConn()

	publisher, err := events.NewDataUpdatedRabbitMQPublisher(mq, a.cfg.RabbitMQ.RoutingKey)
	if err != nil {
		return err
	}
	if err := publisher.SendDataUpdated(ctx, updated.LastUpdated, updated.HumanReadable); err != nil {
		return fmt.Errorf("can't announce data update: %w", err)
	}

	a.logger.Debug().Str("lastUpdated", updated.LastUpdated).Msg("data update announced")
	return nil
}

func (a *app) prefsCommand() *cobra.Command {
	var darkMode, viewMode string

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change display preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			prefs, closer, err := a.openPreferences(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			switch strings.ToLower(darkMode) {
			case "":
			case "on":
				err = prefs.SetDarkMode(ctx, true)
			case "off":
				err = prefs.SetDarkMode(ctx, false)
			case "toggle":
				_, err = prefs.ToggleDarkMode(ctx)
			default:
				err = fmt.Errorf("can't set dark mode to %q: %w", darkMode, errInvalidSetting)
			}
			if err != nil {
				return err
			}

			if viewMode != "" {
				if err := prefs.SetViewMode(ctx, strings.ToLower(viewMode)); err != nil {
					return err
				}
			}

			dark, err := prefs.DarkMode(ctx)
			if err != nil {
				return err
			}
			view, err := prefs.ViewMode(ctx)
			if err != nil {
				return err
			}

			a.printf("dark mode: %s\nview mode: %s\n", lo.Ternary(dark, "on", "off"), view)
			return nil
		},
	}
	cmd.Flags().StringVar(&darkMode, "dark-mode", "", "Dark mode: on, off, toggle")
	cmd.Flags().StringVar(&viewMode, "view-mode", "", "View mode: grid, list")

	return cmd
}

func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show flyers and refresh them when backend announces a data update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			mq, closeConn, err := a.connectRabbitMQ()
			if err != nil {
				return err
			}
			defer closeConn()

			queue, err := mq.BindQueue(a.cfg.RabbitMQ.Queue, a.cfg.RabbitMQ.RoutingKey)
			if err != nil {
				return err
			}

			updated, err := a.startup(ctx)
			if err != nil {
				return err
			}

			d := a.displayPrefs(ctx)
			a.printf("Last updated: %s\n\n", updated.HumanReadable)
			a.renderFlyers(d)
			a.render = func() { a.renderFlyers(d) }

			han := handler.NewHandler(mq, a.session, a.logger, func(e events.DataUpdated) {
				when := e.HumanReadable
				if when == "" {
					when = e.LastUpdated
				}
				a.printf("Flyer data updated: %s\n", when)
			})
			done, err := han.Start(ctx, queue)
			if err != nil {
				return err
			}

			a.logger.Info().Str("queue", queue).Msg("watching for data updates")
			<-done
			return nil
		},
	}
}
