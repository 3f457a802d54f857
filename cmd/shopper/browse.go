package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MichalMitros/flyer-shopper/internal/filter"
	"github.com/MichalMitros/flyer-shopper/internal/platform"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const browseHelp = `Type a search query, or an empty line to clear it.
  :store <key>             show store
  :sale all|sale|regular   filter by sale status
  :sort name|price|savings [asc|desc]
  :min-price [amount]      lowest price, empty clears
  :max-price [amount]      highest price, empty clears
  :min-savings <percent>
  :add <id>                add item to shopping list
  :inc <id> [delta]        change entry quantity
  :remove <id>             remove entry
  :list                    show shopping list
  :quit
`

var errUnknownCommand = errors.New("unknown command, type :help")

func (a *app) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Search flyers interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			updated, err := a.startup(ctx)
			if err != nil {
				return err
			}

			d := a.displayPrefs(ctx)
			a.printf("Last updated: %s\n\n", updated.HumanReadable)
			a.renderFlyers(d)
			a.render = func() { a.renderFlyers(d) }

			a.browse(ctx, d)
			return nil
		},
	}
}

// browse reads commands until :quit or end of input, then runs pending search.
func (a *app) browse(ctx context.Context, d display) {
	for {
		line, readErr := a.in.ReadString('\n')
		line = strings.TrimSpace(line)

		if readErr == nil || line != "" {
			quit, err := a.browseLine(ctx, line, d)
			if err != nil {
				a.printf("%s\n", err)
			}
			if quit {
				break
			}
		}

		if readErr != nil {
			break
		}
	}

	a.session.Flush()
}

// browseLine handles one line of input. Failures of list operations are notified by the list.
func (a *app) browseLine(ctx context.Context, line string, d display) (bool, error) {
	if !strings.HasPrefix(line, ":") {
		a.session.SetSearch(ctx, line)
		return false, nil
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "q", "quit":
		return true, nil
	case "help":
		a.printf("%s", browseHelp)
	case "store":
		if err := a.session.SelectStore(arg); err != nil {
			return false, err
		}
		a.renderFlyers(d)
	case "sale":
		a.session.UpdateFilter(ctx, func(s *filter.State) { s.SaleFilter = arg })
	case "sort":
		by, order, _ := strings.Cut(arg, " ")
		a.session.UpdateFilter(ctx, func(s *filter.State) {
			s.SortBy = by
			if order != "" {
				s.SortOrder = strings.TrimSpace(order)
			}
		})
	case "min-price", "max-price":
		bound, err := parseBound(arg)
		if err != nil {
			return false, err
		}
		a.session.UpdateFilter(ctx, func(s *filter.State) {
			if name == "min-price" {
				s.MinPrice = bound
			} else {
				s.MaxPrice = bound
			}
		})
	case "min-savings":
		savings, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return false, fmt.Errorf("can't parse savings %q: %w", arg, err)
		}
		a.session.UpdateFilter(ctx, func(s *filter.State) { s.MinSavings = savings })
	case "add":
		if err := a.add(ctx, arg); errors.Is(err, platform.ErrItemNotFound) {
			return false, err
		}
	case "inc":
		id, delta, err := parseIncrement(arg)
		if err != nil {
			return false, err
		}
		if _, ok := a.list.Find(id); !ok {
			return false, fmt.Errorf("can't update %q: %w", id, platform.ErrItemNotFound)
		}
		_ = a.list.IncrementQuantity(ctx, id, delta)
	case "remove":
		_ = a.list.Remove(ctx, arg)
	case "list":
		a.renderList()
	default:
		return false, fmt.Errorf("%q: %w", name, errUnknownCommand)
	}

	return false, nil
}

func parseBound(arg string) (*float64, error) {
	if arg == "" {
		return nil, nil
	}

	bound, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, fmt.Errorf("can't parse price %q: %w", arg, err)
	}

	return lo.ToPtr(bound), nil
}

func parseIncrement(arg string) (string, int, error) {
	id, rawDelta, _ := strings.Cut(arg, " ")
	rawDelta = strings.TrimSpace(rawDelta)
	if rawDelta == "" {
		return id, 1, nil
	}

	delta, err := strconv.Atoi(rawDelta)
	if err != nil {
		return "", 0, fmt.Errorf("can't parse delta %q: %w", rawDelta, err)
	}

	return id, delta, nil
}
