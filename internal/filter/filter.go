package filter

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/internal/pricing"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Sale filter values.
const (
	SaleAll       = "all"
	SaleOnSale    = "on_sale"
	SaleNotOnSale = "not_on_sale"
)

// Sort keys and orders.
const (
	SortByName    = "name"
	SortByPrice   = "price"
	SortBySavings = "savings"
	OrderAsc      = "asc"
	OrderDesc     = "desc"
)

var saleAliases = map[string]string{
	SaleAll:       SaleAll,
	SaleOnSale:    SaleOnSale,
	"sale":        SaleOnSale,
	SaleNotOnSale: SaleNotOnSale,
	"regular":     SaleNotOnSale,
}

// State is the catalog filter configuration.
type State struct {
	Search     string
	SaleFilter string
	MinPrice   *float64
	MaxPrice   *float64
	MinSavings float64
	SortBy     string
	SortOrder  string
}

// Default returns State matching all items, sorted by name ascending.
func Default() State {
	return State{
		SaleFilter: SaleAll,
		SortBy:     SortByName,
		SortOrder:  OrderAsc,
	}
}

// Normalize resolves aliases and replaces unknown or out of range values with defaults.
func (s State) Normalize() State {
	s.Search = strings.TrimSpace(s.Search)

	if sale, ok := saleAliases[strings.ToLower(s.SaleFilter)]; ok {
		s.SaleFilter = sale
	} else {
		s.SaleFilter = SaleAll
	}

	switch strings.ToLower(s.SortBy) {
	case SortByPrice:
		s.SortBy = SortByPrice
	case SortBySavings:
		s.SortBy = SortBySavings
	default:
		s.SortBy = SortByName
	}

	if strings.EqualFold(s.SortOrder, OrderDesc) {
		s.SortOrder = OrderDesc
	} else {
		s.SortOrder = OrderAsc
	}

	if !isFinite(s.MinSavings) {
		s.MinSavings = 0
	}
	s.MinSavings = min(max(s.MinSavings, 0), 100)
	s.MinPrice = finiteBound(s.MinPrice)
	s.MaxPrice = finiteBound(s.MaxPrice)

	return s
}

// finiteBound drops NaN and infinite price bounds.
func finiteBound(bound *float64) *float64 {
	if bound == nil || !isFinite(*bound) {
		return nil
	}
	return bound
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Query encodes State as /api/flyers query parameters.
// Absent price bounds are sent as empty values.
func (s State) Query() url.Values {
	s = s.Normalize()

	return url.Values{
		"search":      {s.Search},
		"sale_filter": {s.SaleFilter},
		"min_price":   {formatBound(s.MinPrice)},
		"max_price":   {formatBound(s.MaxPrice)},
		"min_savings": {strconv.FormatFloat(s.MinSavings, 'f', -1, 64)},
		"sort_by":     {s.SortBy},
		"sort_order":  {s.SortOrder},
	}
}

// Apply returns items matching State in State's order. The input slice isn't modified.
// Items without a numeric price never match price bounds and are sorted last by price.
func (s State) Apply(items []models.FlyerItem) []models.FlyerItem {
	s = s.Normalize()
	search := strings.ToLower(s.Search)

	result := lo.Filter(items, func(item models.FlyerItem, _ int) bool {
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			return false
		}

		switch s.SaleFilter {
		case SaleOnSale:
			if !pricing.IsOnSale(item) {
				return false
			}
		case SaleNotOnSale:
			if pricing.IsOnSale(item) {
				return false
			}
		}

		if s.MinPrice != nil || s.MaxPrice != nil {
			amount, ok := mainAmount(item)
			if !ok {
				return false
			}
			if s.MinPrice != nil && amount.LessThan(decimal.NewFromFloat(*s.MinPrice)) {
				return false
			}
			if s.MaxPrice != nil && amount.GreaterThan(decimal.NewFromFloat(*s.MaxPrice)) {
				return false
			}
		}

		return savings(item) >= s.MinSavings
	})

	sort.SliceStable(result, func(i, j int) bool {
		return s.less(result[i], result[j])
	})

	return result
}

func (s State) less(a, b models.FlyerItem) bool {
	switch s.SortBy {
	case SortByPrice:
		amountA, okA := mainAmount(a)
		amountB, okB := mainAmount(b)
		if okA != okB {
			return okA
		}
		if s.SortOrder == OrderDesc {
			return amountA.GreaterThan(amountB)
		}
		return amountA.LessThan(amountB)
	case SortBySavings:
		if s.SortOrder == OrderDesc {
			return savings(a) > savings(b)
		}
		return savings(a) < savings(b)
	default:
		nameA, nameB := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if s.SortOrder == OrderDesc {
			return nameA > nameB
		}
		return nameA < nameB
	}
}

// mainAmount returns the amount of the price a shopper pays for item.
func mainAmount(item models.FlyerItem) (decimal.Decimal, bool) {
	return pricing.ParseAmount(pricing.Derive(item).MainPrice)
}

func savings(item models.FlyerItem) float64 {
	if item.SavingsPercentage == nil {
		return 0
	}
	return *item.SavingsPercentage
}

func formatBound(bound *float64) string {
	if bound == nil {
		return ""
	}
	return strconv.FormatFloat(*bound, 'f', -1, 64)
}
