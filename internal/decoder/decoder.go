package decoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
)

// Decoder decodes flyer catalogs.
type Decoder struct{}

// Decode decodes a JSON object mapping store keys to arrays of flyer items.
// Stores are kept in the order they appear in the document.
// Items with fields of unexpected types keep the fields that could be decoded and are counted as malformed,
// items that aren't objects are dropped. Returns decoded catalog and number of malformed items.
func (d Decoder) Decode(ctx context.Context, r io.Reader) (models.Catalog, int, error) {
	dec := json.NewDecoder(r)
	catalog := models.NewCatalog()
	malformed := 0

	if err := expectDelim(dec, '{'); err != nil {
		return catalog, malformed, err
	}

	for dec.More() {
		if err := ctx.Err(); err != nil {
			return catalog, malformed, err
		}

		token, err := dec.Token()
		if err != nil {
			return catalog, malformed, fmt.Errorf("can't read store key: %w", err)
		}
		store, ok := token.(string)
		if !ok {
			return catalog, malformed, fmt.Errorf("unexpected token %v instead of store key", token)
		}
		catalog.Add(store)

		storeMalformed, err := decodeItems(dec, store, &catalog)
		malformed += storeMalformed
		if err != nil {
			return catalog, malformed, err
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return catalog, malformed, err
	}

	return catalog, malformed, nil
}

// decodeItems decodes array of store items and adds them to catalog.
func decodeItems(dec *json.Decoder, store string, catalog *models.Catalog) (int, error) {
	token, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("can't read %q items: %w", store, err)
	}
	if token == nil {
		return 0, nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return 0, fmt.Errorf("unexpected token %v instead of %q items array", token, store)
	}

	malformed := 0
	for dec.More() {
		var item models.FlyerItem
		if err := dec.Decode(&item); err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				return malformed, fmt.Errorf("can't decode %q item: %w", store, err)
			}
			malformed++
			if item == (models.FlyerItem{}) {
				continue
			}
		}
		catalog.Add(store, item)
	}

	return malformed, expectDelim(dec, ']')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	token, err := dec.Token()
	if err != nil {
		return fmt.Errorf("can't read catalog: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != want {
		return fmt.Errorf("unexpected token %v, expected %v", token, want)
	}
	return nil
}
