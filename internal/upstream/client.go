// Package upstream содержит клиент REST API ERP, который хранит записи.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/cloud-ru/erp-finance-summary/internal/metrics"
)

const maxResponseSize = 4 << 20

// ErrUnavailable: upstream недоступен или ответил мусором
var ErrUnavailable = errors.New("upstream: unavailable")

// Error представляет ответ upstream с кодом не 2xx
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream: %d %s", e.Status, e.Message)
}

type authKey struct{}

// WithAuthorization кладёт заголовок Authorization вызывающего в ctx.
// Клиент передаёт его в каждом запросе.
func WithAuthorization(ctx context.Context, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, authKey{}, value)
}

// Client работает с REST API upstream
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient создаёт клиент с инструментированным транспортом
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// Create отправляет новую запись в /api/<resource> и возвращает сохранённую
func (c *Client) Create(ctx context.Context, resource, envelope string, record map[string]any) (map[string]any, error) {
	return c.send(ctx, http.MethodPost, "/api/"+url.PathEscape(resource), resource, envelope, record)
}

// Update заменяет запись /api/<resource>/<id> и возвращает сохранённую
func (c *Client) Update(ctx context.Context, resource, envelope, id string, record map[string]any) (map[string]any, error) {
	path := "/api/" + url.PathEscape(resource) + "/" + url.PathEscape(id)
	return c.send(ctx, http.MethodPut, path, resource, envelope, record)
}

// Modules получает идентификаторы доступных пользователю модулей
func (c *Client) Modules(ctx context.Context, userID string) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userID)+"/modules", "modules", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Modules []string `json:"modules"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode modules: %v", ErrUnavailable, err)
	}
	return out.Modules, nil
}

func (c *Client) send(ctx context.Context, method, path, resource, envelope string, record map[string]any) (map[string]any, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("upstream: encode %s: %w", resource, err)
	}
	body, err := c.do(ctx, method, path, resource, payload)
	if err != nil {
		return nil, err
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, resource, err)
	}
	inner := body
	if raw, ok := wrapped[envelope]; ok {
		inner = raw
	}
	var stored map[string]any
	if err := json.Unmarshal(inner, &stored); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, resource, err)
	}
	return stored, nil
}

func (c *Client) do(ctx context.Context, method, path, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	if auth, ok := ctx.Value(authKey{}).(string); ok {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APICalls.WithLabelValues("upstream", endpoint, "unavailable").Inc()
		c.log.Warn("upstream request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	metrics.APICalls.WithLabelValues("upstream", endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}
	return body, nil
}

func errorMessage(body []byte, fallback string) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return fallback
}
