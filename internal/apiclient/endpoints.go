package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MichalMitros/flyer-shopper/internal/filter"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
)

const (
	flyersPath       = "/api/flyers"
	shoppingListPath = "/api/shopping-list"
	clearPath        = "/api/shopping-list/clear"
	statisticsPath   = "/api/statistics"
	lastUpdatedPath  = "/api/last-updated"
	updateDataPath   = "/api/update-data"
	generateQRPath   = "/api/generate-qr-for-list"
)

// GetFlyers returns flyer catalog filtered by state.
func (c *Client) GetFlyers(ctx context.Context, state filter.State) (models.Catalog, error) {
	body, err := c.do(ctx, http.MethodGet, flyersPath, state.Query(), nil, true)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("can't get flyers: %w", err)
	}
	defer body.Close()

	catalog, malformed, err := c.catalog.Decode(ctx, body)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("can't decode flyers: %w", err)
	}

	if malformed > 0 {
		c.logger.Warn().Int("malformed", malformed).Msg("skipped malformed flyer items")
	}

	return catalog, nil
}

// GetShoppingList returns server's shopping list.
func (c *Client) GetShoppingList(ctx context.Context) ([]models.Entry, error) {
	entries := []models.Entry{}
	if err := c.doJSON(ctx, http.MethodGet, shoppingListPath, nil, &entries); err != nil {
		return nil, fmt.Errorf("can't get shopping list: %w", err)
	}

	return entries, nil
}

// ReplaceShoppingList replaces server's shopping list with entries and returns the list the server stored.
func (c *Client) ReplaceShoppingList(ctx context.Context, entries []models.Entry) ([]models.Entry, error) {
	if entries == nil {
		entries = []models.Entry{}
	}

	stored := []models.Entry{}
	if err := c.doJSON(ctx, http.MethodPost, shoppingListPath, entries, &stored); err != nil {
		return nil, fmt.Errorf("can't replace shopping list: %w", err)
	}

	return stored, nil
}

// DeleteShoppingListEntry deletes entry with id from server's shopping list.
func (c *Client) DeleteShoppingListEntry(ctx context.Context, id string) error {
	payload := struct {
		ID string `json:"id"`
	}{ID: id}

	if err := c.doJSON(ctx, http.MethodDelete, shoppingListPath, payload, nil); err != nil {
		return fmt.Errorf("can't delete shopping list entry %q: %w", id, err)
	}

	return nil
}

// ClearShoppingList removes all entries from server's shopping list.
func (c *Client) ClearShoppingList(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, clearPath, nil, nil); err != nil {
		return fmt.Errorf("can't clear shopping list: %w", err)
	}

	return nil
}

// GetStatistics returns aggregate catalog statistics.
func (c *Client) GetStatistics(ctx context.Context) (models.Statistics, error) {
	var stats models.Statistics
	if err := c.doJSON(ctx, http.MethodGet, statisticsPath, nil, &stats); err != nil {
		return models.Statistics{}, fmt.Errorf("can't get statistics: %w", err)
	}

	return stats, nil
}

// GetLastUpdated returns when flyer data was last refreshed.
func (c *Client) GetLastUpdated(ctx context.Context) (models.LastUpdated, error) {
	var updated models.LastUpdated
	if err := c.doJSON(ctx, http.MethodGet, lastUpdatedPath, nil, &updated); err != nil {
		return models.LastUpdated{}, fmt.Errorf("can't get last update time: %w", err)
	}

	return updated, nil
}

// UpdateData asks the server to refresh flyer data. Returns server's message.
func (c *Client) UpdateData(ctx context.Context) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, updateDataPath, struct{}{}, &result); err != nil {
		return "", fmt.Errorf("can't update data: %w", err)
	}

	return result.Message, nil
}

// GenerateQR asks the server for a QR code linking to a page with content. Returns the code as data URI.
func (c *Client) GenerateQR(ctx context.Context, content string) (string, error) {
	payload := struct {
		ListContent string `json:"listContent"`
	}{ListContent: content}

	var result struct {
		QRCode string `json:"qrCode"`
	}
	if err := c.doJSON(ctx, http.MethodPost, generateQRPath, payload, &result); err != nil {
		return "", fmt.Errorf("can't generate QR code: %w", err)
	}

	return result.QRCode, nil
}
