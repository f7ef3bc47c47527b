// Package gateway is the single choke point for backend requests.
//
// It injects the bearer token, rejects protected calls made while logged
// out without touching the network, clears the session on 401, and maps
// every outcome onto the apierr taxonomy. Silent errors are never logged.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/mmynk/storefront/internal/apierr"
	"github.com/mmynk/storefront/internal/metrics"
)

// RequestIDHeader carries a per-call id for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// TokenSource is the view of the session the gateway needs.
type TokenSource interface {
	Token() string
	Clear()
}

// Config configures a Gateway.
type Config struct {
	BaseURL string

	// HTTPClient overrides the transport. When nil a client with Timeout is built.
	HTTPClient *http.Client
	Timeout    time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Gateway sends requests to the backend on behalf of the current session.
type Gateway struct {
	baseURL string
	client  *http.Client
	session TokenSource
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Gateway bound to session.
func New(session TokenSource, cfg Config) *Gateway {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		session: session,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Get is Send with GET; query may be nil.
func (g *Gateway) Get(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	if query == nil {
		return g.Send(ctx, endpoint, http.MethodGet, nil)
	}
	return g.Send(ctx, endpoint, http.MethodGet, query)
}

// Send issues one request and returns the response payload: the envelope's
// data field when present, else the raw body. method defaults to GET. For
// GET, body is encoded as the query string (url.Values or a flat map);
// otherwise it is normalized and sent as JSON.
//
// Errors are always *apierr.Error:
//   - AuthRequired (silent): protected endpoint with no token; nothing was sent
//   - AuthExpired (silent): 401; the session has already been cleared
//   - RequestFailed: any other non-2xx
//   - Network: no response; silent when the transport error looks auth-related
func (g *Gateway) Send(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error) {
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)
	path := stripQuery(endpoint)

	token := g.session.Token()
	if token == "" && !IsAnonymous(path, method) {
		g.metrics.ObserveRequest(method, path, metrics.OutcomeAuthRequired, 0)
		return nil, apierr.AuthRequired()
	}

	req, err := g.newRequest(ctx, endpoint, method, body)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.KindRequestFailed, Message: "invalid request", Err: err}
	}
	if token != "" && !isLogin(path) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := req.Header.Get(RequestIDHeader)
	g.logger.Debug("Request sent", "method", method, "endpoint", endpoint, "request_id", requestID)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		nerr := apierr.Network(err, authRelated(err))
		g.metrics.ObserveRequest(method, path, metrics.OutcomeNetwork, time.Since(start))
		if !nerr.Silent {
			g.logger.Error("Request failed", "method", method, "endpoint", endpoint, "request_id", requestID, "error", err)
		}
		return nil, nerr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		g.metrics.ObserveRequest(method, path, metrics.OutcomeNetwork, elapsed)
		g.logger.Error("Failed to read response", "method", method, "endpoint", endpoint, "request_id", requestID, "error", err)
		return nil, apierr.Network(fmt.Errorf("read response: %w", err), false)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		g.metrics.ObserveRequest(method, path, metrics.OutcomeOK, elapsed)
		g.logger.Debug("Request completed",
			"method", method,
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"request_id", requestID,
			"duration_ms", elapsed.Milliseconds(),
		)
		return unwrapData(raw), nil

	case resp.StatusCode == http.StatusUnauthorized:
		g.session.Clear()
		g.metrics.ObserveRequest(method, path, metrics.OutcomeAuthExpired, elapsed)
		return nil, apierr.AuthExpired()

	default:
		g.metrics.ObserveRequest(method, path, metrics.OutcomeRequestFailed, elapsed)
		g.logger.Warn("Request rejected",
			"method", method,
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"request_id", requestID,
			"body", truncate(raw, 512),
		)
		return nil, apierr.RequestFailed(resp.StatusCode, raw, serverMessage(raw))
	}
}

func (g *Gateway) newRequest(ctx context.Context, endpoint, method string, body any) (*http.Request, error) {
	target := g.baseURL + endpoint

	var reader io.Reader
	if method == http.MethodGet || method == http.MethodHead {
		q, err := queryValues(body)
		if err != nil {
			return nil, err
		}
		if len(q) > 0 {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + q.Encode()
		}
	} else if body != nil {
		clean, err := Normalize(body)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(clean)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	return req, nil
}

func queryValues(body any) (url.Values, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return b, nil
	case map[string]string:
		q := url.Values{}
		for k, v := range b {
			q.Set(k, v)
		}
		return q, nil
	case map[string]any:
		q := url.Values{}
		for k, v := range b {
			if v == nil {
				continue
			}
			q.Set(k, fmt.Sprint(normalizeField(v)))
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unsupported query type %T", body)
	}
}

// unwrapData returns the envelope's data field when the body is an object
// that has one (even if null), else the body itself.
func unwrapData(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if gjson.ValidBytes(trimmed) {
		if res := gjson.ParseBytes(trimmed); res.IsObject() {
			if data := res.Get("data"); data.Exists() {
				return json.RawMessage(data.Raw)
			}
		}
	}
	return json.RawMessage(trimmed)
}

// serverMessage extracts a displayable message from an error body.
func serverMessage(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	res := gjson.ParseBytes(raw)
	for _, key := range []string{"message", "detail", "error"} {
		if v := res.Get(key); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// authMarkers identify transport errors that are really auth failures
// surfacing below the HTTP layer (proxies, platform bridges).
var authMarkers = []string{"401", "unauthorized", "auth"}

func authRelated(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// The URL is not evidence; only the transport's own message is.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	// Dial and DNS failures embed the host and port in their text.
	var nerr net.Error
	if errors.As(err, &nerr) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
