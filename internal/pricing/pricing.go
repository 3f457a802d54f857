package pricing

import (
	"strings"

	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
)

// Style is how a displayed price is styled.
type Style int

const (
	// StyleNone means there is no price to display.
	StyleNone Style = iota
	// StyleSale marks a sale price.
	StyleSale
	// StyleRegular marks a regular, not discounted price.
	StyleRegular
)

// String returns style name.
func (s Style) String() string {
	switch s {
	case StyleSale:
		return "sale"
	case StyleRegular:
		return "regular"
	default:
		return "none"
	}
}

// Presentation holds display strings derived from a flyer item.
// Empty strings mean there is nothing to display.
type Presentation struct {
	Name               string
	ImageURL           string
	MainPrice          string
	MainStyle          Style
	StrikethroughPrice string
	UnitDetail         string
}

// Derive decides which prices of item are displayed and how its unit is labeled.
// An explicit on_sale flag takes precedence, sale status is inferred from prices only when the flag is absent.
func Derive(item models.FlyerItem) Presentation {
	pres := Presentation{
		Name:       item.Name,
		ImageURL:   item.ImageURL,
		UnitDetail: CleanUnit(item.Unit),
	}
	if pres.ImageURL == models.NotAvailable {
		pres.ImageURL = ""
	}

	hasSalePrice := isPresent(item.Price)
	hasOriginalPrice := isPresent(item.OriginalPrice)

	if IsOnSale(item) && hasSalePrice {
		pres.MainPrice = item.Price
		pres.MainStyle = StyleSale
		if hasOriginalPrice && item.OriginalPrice != item.Price {
			pres.StrikethroughPrice = item.OriginalPrice
		}
		return pres
	}

	switch {
	case hasSalePrice:
		pres.MainPrice = item.Price
		pres.MainStyle = StyleRegular
	case hasOriginalPrice:
		pres.MainPrice = item.OriginalPrice
		pres.MainStyle = StyleRegular
	}

	return pres
}

// IsOnSale reports whether item is on sale.
// Uses on_sale flag when present, otherwise compares sale and original prices.
func IsOnSale(item models.FlyerItem) bool {
	if item.OnSale != nil {
		return *item.OnSale
	}
	return isPresent(item.Price) && isPresent(item.OriginalPrice) && item.Price != item.OriginalPrice
}

// PriceLine returns main price with unit, followed by the struck through price when there is one,
// e.g. "$1.99/lb (was $2.99/lb)".
func (p Presentation) PriceLine() string {
	if p.MainPrice == "" {
		return ""
	}

	line := withUnit(p.MainPrice, p.UnitDetail)
	if p.StrikethroughPrice != "" {
		line += " (was " + withUnit(p.StrikethroughPrice, p.UnitDetail) + ")"
	}
	return line
}

func withUnit(price, unit string) string {
	switch {
	case unit == "":
		return price
	case strings.HasPrefix(unit, "/"):
		return price + unit
	default:
		return price + " " + unit
	}
}

func isPresent(value string) bool {
	return value != "" && value != models.NotAvailable
}
