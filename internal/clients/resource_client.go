// internal/clients/resource_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adminsync/internal/entity"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const instrumentationName = "adminsync/clients"

// Client talks to one REST collection, /<base>/<resource>. Every call is a
// single attempt: failures are returned, never retried.
type Client[T any] struct {
	baseURL    string
	resource   string
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
	requests   metric.Int64Counter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	transport  http.RoundTripper
	timeout    time.Duration
	rps        float64
	logger     *slog.Logger
	meters     metric.MeterProvider
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTransport sets the round tripper of the default HTTP client.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRateLimit paces requests to rps per second. Zero means unlimited.
func WithRateLimit(rps float64) Option {
	return func(o *options) { o.rps = rps }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMeterProvider records the request counter on mp instead of the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meters = mp }
}

// NewClient creates a client for baseURL/resource, e.g.
// NewClient[entity.News]("http://localhost:3000/api", "noticias").
func NewClient[T any](baseURL, resource string, opts ...Option) *Client[T] {
	o := options{timeout: 15 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: o.timeout, Transport: o.transport}
	}

	limit := rate.Inf
	if o.rps > 0 {
		limit = rate.Limit(o.rps)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	meters := o.meters
	if meters == nil {
		meters = otel.GetMeterProvider()
	}
	requests, err := meters.Meter(instrumentationName).Int64Counter(
		"adminsync.client.requests",
		metric.WithDescription("REST requests issued by resource clients"),
	)
	if err != nil {
		logger.Warn("request counter unavailable", "error", err)
	}

	return &Client[T]{
		baseURL:    strings.TrimRight(baseURL, "/"),
		resource:   strings.Trim(resource, "/"),
		httpClient: hc,
		limiter:    rate.NewLimiter(limit, 1),
		tracer:     otel.Tracer(instrumentationName),
		requests:   requests,
		logger:     logger,
	}
}

// Resource returns the collection name the client targets.
func (c *Client[T]) Resource() string {
	return c.resource
}

func (c *Client[T]) collectionURL() string {
	return fmt.Sprintf("%s/%s", c.baseURL, c.resource)
}

func (c *Client[T]) itemURL(id entity.ID) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.resource, escapeID(id))
}

// escapeID makes id a single path segment. Dot segments are escaped too so
// they cannot walk up the path.
func escapeID(id entity.ID) string {
	seg := url.PathEscape(id.String())
	if seg == "." || seg == ".." {
		seg = strings.ReplaceAll(seg, ".", "%2E")
	}
	return seg
}

// List fetches the full collection.
func (c *Client[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := c.do(ctx, http.MethodGet, c.collectionURL(), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches one record. A 404 matches ErrNotFound.
func (c *Client[T]) Get(ctx context.Context, id entity.ID) (T, error) {
	var item T
	err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &item)
	return item, err
}

// Create posts rec and returns the record echoed by the server, which
// carries the assigned identifier when the server sends one back.
func (c *Client[T]) Create(ctx context.Context, rec T) (T, error) {
	var created T
	err := c.do(ctx, http.MethodPost, c.collectionURL(), rec, &created)
	return created, err
}

// Update sends rec to /resource/id with method (PUT or PATCH).
func (c *Client[T]) Update(ctx context.Context, method string, id entity.ID, rec T) (T, error) {
	if method != http.MethodPut && method != http.MethodPatch {
		var zero T
		return zero, fmt.Errorf("unsupported update method %q", method)
	}
	var updated T
	err := c.do(ctx, method, c.itemURL(id), rec, &updated)
	return updated, err
}

// Delete removes the record. A 404 matches ErrNotFound.
func (c *Client[T]) Delete(ctx context.Context, id entity.ID) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client[T]) do(ctx context.Context, method, url string, body any, target any) (err error) {
	requestID := uuid.New().String()
	ctx, span := c.tracer.Start(ctx, "clients."+strings.ToLower(method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", url),
			attribute.String("resource", c.resource),
			attribute.String("request.id", requestID),
		),
	)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if c.requests != nil {
			c.requests.Add(ctx, 1, metric.WithAttributes(
				attribute.String("resource", c.resource),
				attribute.String("method", method),
				attribute.String("outcome", outcome),
			))
		}
		span.End()
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Method: method, URL: url, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", url, "request_id", requestID, "error", err)
		return &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("request completed", "method", method, "url", url, "request_id", requestID, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, URL: url, Code: resp.StatusCode}
	}

	if target == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, URL: url, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// Some endpoints answer mutations with an empty body.
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, url, err)
	}
	return nil
}
