package helpers

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/internal/platform/models/modelstesting"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const (
	contentType     = "Content-Type"
	contentEncoding = "Content-Encoding"
)

// PNG is the image returned by the fake QR endpoint.
var PNG = []byte("\x89PNG\r\n\x1a\nfake-qr")

// Backend is in-memory flyer backend.
type Backend struct {
	mu          sync.Mutex
	catalog     models.Catalog
	list        []models.Entry
	lastUpdated models.LastUpdated
	qrContent   string
	failures    map[string]int
}

// PrepareBackend starts fake backend serving catalog. Server is closed on test cleanup.
func PrepareBackend(t *testing.T, catalog models.Catalog) (*Backend, *httptest.Server) {
	t.Helper()

	backend := &Backend{
		catalog:     catalog,
		list:        []models.Entry{},
		lastUpdated: models.LastUpdated{LastUpdated: "2024-05-01T10:00:00", HumanReadable: "May 01, 2024 at 10:00 AM"},
		failures:    map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/flyers", backend.flyers)
	mux.HandleFunc("GET /api/shopping-list", backend.getList)
	mux.HandleFunc("POST /api/shopping-list", backend.replaceList)
	mux.HandleFunc("DELETE /api/shopping-list", backend.deleteEntry)
	mux.HandleFunc("POST /api/shopping-list/clear", backend.clearList)
	mux.HandleFunc("GET /api/statistics", backend.statistics)
	mux.HandleFunc("GET /api/last-updated", backend.getLastUpdated)
	mux.HandleFunc("POST /api/update-data", backend.updateData)
	mux.HandleFunc("POST /api/generate-qr-for-list", backend.generateQR)

	srv := httptest.NewServer(backend.failing(mux))
	t.Cleanup(srv.Close)

	return backend, srv
}

// GenerateCatalog returns catalog with n fake items per store.
func GenerateCatalog(t *testing.T, n int, stores ...string) models.Catalog {
	t.Helper()

	catalog := models.NewCatalog()
	for _, store := range stores {
		for ix := range n {
			catalog.Add(store, modelstesting.FakeFlyerItem(func(i *models.FlyerItem) {
				i.Store = store
				i.Name = strings.Repeat("x", ix+1) + " " + i.Name
			}))
		}
	}

	return catalog
}

// FailNext makes next n requests of method to path fail with 500.
func (b *Backend) FailNext(method, path string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures[method+" "+path] = n
}

// SetCatalog replaces served catalog and bumps last update time.
func (b *Backend) SetCatalog(catalog models.Catalog) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.catalog = catalog
	b.touch()
}

// List returns stored shopping list.
func (b *Backend) List() []models.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]models.Entry{}, b.list...)
}

// SetList replaces stored shopping list.
func (b *Backend) SetList(entries []models.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.list = entries
}

// QRContent returns content of the last generated QR code.
func (b *Backend) QRContent() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.qrContent
}

// LastUpdated returns current last update time.
func (b *Backend) LastUpdated() models.LastUpdated {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.lastUpdated
}

func (b *Backend) failing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
		key := req.Method + " " + req.URL.Path

		b.mu.Lock()
		fail := b.failures[key] > 0
		if fail {
			b.failures[key]--
		}
		b.mu.Unlock()

		if fail {
			writeJSON(wrt, req, http.StatusInternalServerError, map[string]string{"error": "backend unavailable"})
			return
		}

		next.ServeHTTP(wrt, req)
	})
}

// flyers writes stores in catalog order, keeping items with name containing search.
func (b *Backend) flyers(wrt http.ResponseWriter, req *http.Request) {
	search := strings.ToLower(req.URL.Query().Get("search"))

	b.mu.Lock()
	defer b.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for ix, store := range b.catalog.Stores {
		items := lo.Filter(b.catalog.Items[store], func(i models.FlyerItem, _ int) bool {
			return strings.Contains(strings.ToLower(i.Name), search)
		})
		if ix > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(store)
		value, _ := json.Marshal(items)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	writeRaw(wrt, req, http.StatusOK, buf.Bytes())
}

func (b *Backend) getList(wrt http.ResponseWriter, req *http.Request) {
	writeJSON(wrt, req, http.StatusOK, b.List())
}

func (b *Backend) replaceList(wrt http.ResponseWriter, req *http.Request) {
	var entries []models.Entry
	if err := json.NewDecoder(req.Body).Decode(&entries); err != nil || entries == nil {
		writeJSON(wrt, req, http.StatusBadRequest, map[string]string{"error": "Invalid data format. Expected a list."})
		return
	}

	b.SetList(entries)
	writeJSON(wrt, req, http.StatusOK, entries)
}

func (b *Backend) deleteEntry(wrt http.ResponseWriter, req *http.Request) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil || payload.ID == "" {
		writeJSON(wrt, req, http.StatusBadRequest, map[string]string{"error": "Item ID not provided for deletion."})
		return
	}

	b.mu.Lock()
	before := len(b.list)
	b.list = lo.Reject(b.list, func(e models.Entry, _ int) bool { return e.ID == payload.ID })
	removed := len(b.list) < before
	b.mu.Unlock()

	if !removed {
		writeJSON(wrt, req, http.StatusNotFound, map[string]string{"error": "Item not found."})
		return
	}
	writeJSON(wrt, req, http.StatusOK, map[string]string{"message": "Item removed successfully."})
}

func (b *Backend) clearList(wrt http.ResponseWriter, req *http.Request) {
	b.SetList([]models.Entry{})
	writeJSON(wrt, req, http.StatusOK, map[string]string{"message": "Shopping list cleared."})
}

func (b *Backend) statistics(wrt http.ResponseWriter, req *http.Request) {
	b.mu.Lock()
	stats := models.Statistics{
		TotalItems:  b.catalog.Len(),
		PriceRanges: map[string]int{},
		Stores:      map[string]int{},
	}
	for _, store := range b.catalog.Stores {
		stats.Stores[store] = len(b.catalog.Items[store])
	}
	b.mu.Unlock()

	writeJSON(wrt, req, http.StatusOK, stats)
}

func (b *Backend) getLastUpdated(wrt http.ResponseWriter, req *http.Request) {
	writeJSON(wrt, req, http.StatusOK, b.LastUpdated())
}

func (b *Backend) updateData(wrt http.ResponseWriter, req *http.Request) {
	b.mu.Lock()
	b.touch()
	b.mu.Unlock()

	writeJSON(wrt, req, http.StatusOK, map[string]string{"message": "Data update initiated successfully."})
}

func (b *Backend) generateQR(wrt http.ResponseWriter, req *http.Request) {
	var payload struct {
		ListContent string `json:"listContent"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil || payload.ListContent == "" {
		writeJSON(wrt, req, http.StatusBadRequest, map[string]string{"error": "No list content provided."})
		return
	}

	b.mu.Lock()
	b.qrContent = payload.ListContent
	b.mu.Unlock()

	writeJSON(wrt, req, http.StatusOK, map[string]string{
		"qrCode": "data:image/png;base64," + base64.StdEncoding.EncodeToString(PNG),
	})
}

func (b *Backend) touch() {
	now := time.Now().UTC()
	b.lastUpdated = models.LastUpdated{
		LastUpdated:   now.Format("2006-01-02T15:04:05"),
		HumanReadable: now.Format("January 02, 2006 at 03:04 PM"),
	}
}

func writeJSON(wrt http.ResponseWriter, req *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(wrt, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(wrt, req, status, data)
}

// writeRaw gzips body when client accepts it.
func writeRaw(wrt http.ResponseWriter, req *http.Request, status int, body []byte) {
	wrt.Header().Set(contentType, "application/json")
	if !strings.Contains(req.Header.Get("Accept-Encoding"), "gzip") {
		wrt.WriteHeader(status)
		_, _ = wrt.Write(body)
		return
	}

	wrt.Header().Set(contentEncoding, "gzip")
	wrt.WriteHeader(status)
	gz := gzip.NewWriter(wrt)
	_, _ = gz.Write(body)
	_ = gz.Close()
}

// RequireEntryIDs asserts ids of entries in order.
func RequireEntryIDs(t *testing.T, want []string, entries []models.Entry) {
	t.Helper()

	require.Equal(t, want, lo.Map(entries, func(e models.Entry, _ int) string { return e.ID }), "should have entries in order")
}
