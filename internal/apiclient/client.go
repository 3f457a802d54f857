package apiclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/MichalMitros/flyer-shopper/internal/decoder"
	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxErrorBody = 64 << 10

// Option is custom configuration of Client.
type Option func(c *Client)

// WithRateLimiter makes Client wait for limiter before every request.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithLogger sets logger used for request diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client calls flyer backend REST API.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	logger    *zerolog.Logger
	catalog   decoder.Decoder
}

// NewClient returns new Client for backend at baseURL, e.g. "http://localhost:5000".
func NewClient(client *http.Client, baseURL, userAgent string, ops ...Option) *Client {
	nop := zerolog.Nop()
	cli := &Client{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		logger:    &nop,
	}

	for _, op := range ops {
		op(cli)
	}

	return cli
}

// apiError is the error body returned by the backend.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends request and returns decompressed response body, which must be JSON when requireJSON is set.
// The caller is responsible for closing returned ReadCloser.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	payload any,
	requireJSON bool,
) (io.ReadCloser, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("can't encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("can't build http request: %w", err)
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("Accept-Encoding", "gzip, br")
	req.Header.Add("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("can't wait for rate limiter: %w", err)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't get http response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("backend responded")

	if resp.StatusCode == http.StatusNoContent && !requireJSON {
		_ = resp.Body.Close()
		return http.NoBody, nil
	}

	decompressed, err := decompressResponse(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer decompressed.Close()
		return nil, statusError(resp.StatusCode, decompressed)
	}

	if !requireJSON {
		return decompressed, nil
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		_ = decompressed.Close()
		return nil, ErrContentTypeNotSupported
	}

	return decompressed, nil
}

// doJSON sends request and decodes JSON response into out.
// When out is nil any 2xx response succeeds, whatever its body.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	body, err := c.do(ctx, method, path, nil, payload, out != nil)
	if err != nil {
		return err
	}
	defer body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, body)
		return nil
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("can't decode response: %w", err)
	}

	return nil
}

// statusError builds error for unsuccessful response, including backend's message when there is one.
func statusError(status int, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))

	var apiErr apiError
	if json.Unmarshal(raw, &apiErr) == nil {
		if msg := strings.TrimSpace(apiErr.Error + " " + apiErr.Message); msg != "" {
			return fmt.Errorf("%w: %d: %s", ErrStatusNotOK, status, msg)
		}
	}

	return fmt.Errorf("%w: %d", ErrStatusNotOK, status)
}

// decompressResponse returns io.ReadCloser with response body decoded according to its content encoding.
func decompressResponse(response io.ReadCloser, encoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return response, nil
	case "gzip":
		decompressed, err := gzip.NewReader(response)
		if err != nil {
			return nil, fmt.Errorf("can't decompress response: %w", err)
		}
		return &decompressedReadCloser{compressed: response, decompressed: decompressed}, nil
	case "br":
		return &decompressedReadCloser{compressed: response, decompressed: brotli.NewReader(response)}, nil
	default:
		return nil, fmt.Errorf("%w: encoding %q", ErrContentTypeNotSupported, encoding)
	}
}

// decompressedReadCloser wraps decompressed Reader and compressed ReadCloser.
// It reads from decompressed Reader, but closes compressed ReadCloser.
type decompressedReadCloser struct {
	compressed   io.ReadCloser
	decompressed io.Reader
}

// Read reads uncompressed bytes from underlying Reader into p.
func (r *decompressedReadCloser) Read(p []byte) (int, error) {
	return r.decompressed.Read(p)
}

// Close closes underlying compressed ReadCloser.
func (r *decompressedReadCloser) Close() error {
	return r.compressed.Close()
}
