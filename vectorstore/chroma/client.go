package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/poiesic/conceptrank/ai"
	"github.com/poiesic/conceptrank/core"
)

const (
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 10 * time.Second

	metadataURI    = "uri"
	metadataLocale = "locale"
)

// Client talks to one collection of the chroma wrapper service.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	collection string
	http       *http.Client
	cb         *gobreaker.CircuitBreaker
	logger     *slog.Logger

	breaker gobreaker.Settings
}

var _ ai.VectorIndex = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) error {
		if c == nil {
			return fmt.Errorf("%w: nil http client", ErrInvalidConfig)
		}
		cl.http = c
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		cl.logger = logger
		return nil
	}
}

// WithBreaker sets the trip threshold and open-state timeout of the circuit breaker.
// The breaker trips after failures consecutive failed requests.
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(cl *Client) error {
		if failures == 0 {
			return fmt.Errorf("%w: breaker failures must be positive", ErrInvalidConfig)
		}
		cl.breaker.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		}
		cl.breaker.Timeout = timeout
		return nil
	}
}

// NewClient creates a client for collection on the service at baseURL.
func NewClient(baseURL, collection string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("%w: collection is required", ErrInvalidConfig)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		http:       &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
		breaker: gobreaker.Settings{
			Name:    "chroma:" + collection,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: isSuccessful,
		},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "chroma", "collection", collection)
	c.breaker.OnStateChange = func(name string, from, to gobreaker.State) {
		c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}
	c.cb = gobreaker.NewCircuitBreaker(c.breaker)
	return c, nil
}

type existsResponse struct {
	Exists bool    `json:"exists"`
	Error  *string `json:"error"`
}

type createResponse struct {
	Created bool    `json:"created"`
	Error   *string `json:"error"`
}

type addRequest struct {
	IDs        []string         `json:"ids"`
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
	Embeddings [][]float32      `json:"embeddings"`
}

type addResponse struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Error  *string `json:"error"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type deleteResponse struct {
	Deleted int     `json:"deleted"`
	Error   *string `json:"error"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
}

type queryResults struct {
	IDs       [][]string         `json:"ids"`
	Distances [][]float64        `json:"distances"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Documents [][]*string        `json:"documents"`
}

type queryResponse struct {
	Results *queryResults `json:"results"`
	Error   *string       `json:"error"`
}

// EnsureCollection creates the collection if the service does not have it.
func (c *Client) EnsureCollection(ctx context.Context) error {
	var exists existsResponse
	if err := c.call(ctx, http.MethodGet, "exists", nil, &exists); err != nil {
		return err
	}
	if exists.Exists {
		return nil
	}

	var created createResponse
	if err := c.call(ctx, http.MethodPost, "create", nil, &created); err != nil {
		return err
	}
	if !created.Created {
		return fmt.Errorf("%w: create %s: %s", ErrServiceError, c.collection, deref(created.Error))
	}
	c.logger.Info("created collection")
	return nil
}

// Upsert writes label vectors to the collection. Each label gets a stable
// document id derived from its uri, locale and text. The service only
// adds, so existing documents with the batch ids are deleted first.
func (c *Client) Upsert(ctx context.Context, vectors []core.LabelVector) error {
	if len(vectors) == 0 {
		return nil
	}
	req := addRequest{
		IDs:        make([]string, 0, len(vectors)),
		Documents:  make([]string, 0, len(vectors)),
		Metadatas:  make([]map[string]any, 0, len(vectors)),
		Embeddings: make([][]float32, 0, len(vectors)),
	}
	for _, v := range vectors {
		req.IDs = append(req.IDs, documentID(v))
		req.Documents = append(req.Documents, v.Text)
		req.Metadatas = append(req.Metadatas, map[string]any{
			metadataURI:    v.URI,
			metadataLocale: string(v.Locale),
		})
		req.Embeddings = append(req.Embeddings, v.Vector)
	}

	if err := c.Delete(ctx, req.IDs); err != nil {
		return err
	}

	var resp addResponse
	if err := c.call(ctx, http.MethodPost, "add", req, &resp); err != nil {
		return err
	}
	if resp.Error != nil || resp.Status != "ok" {
		return fmt.Errorf("%w: add: %s", ErrServiceError, deref(resp.Error))
	}
	c.logger.Debug("added vectors", "count", resp.Count)
	return nil
}

// Delete removes documents by id. Unknown ids are ignored by the service.
func (c *Client) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var resp deleteResponse
	if err := c.call(ctx, http.MethodDelete, "delete", deleteRequest{IDs: ids}, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("%w: delete: %s", ErrServiceError, *resp.Error)
	}
	c.logger.Debug("deleted vectors", "count", resp.Deleted)
	return nil
}

// Search queries the collection with one embedding.
func (c *Client) Search(ctx context.Context, vector []float32, limit int) ([]ai.VectorMatch, error) {
	if limit <= 0 {
		return nil, nil
	}
	req := queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        limit,
	}
	var resp queryResponse
	if err := c.call(ctx, http.MethodPost, "query", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: query: %s", ErrServiceError, *resp.Error)
	}
	if resp.Results == nil || len(resp.Results.IDs) == 0 {
		return nil, nil
	}
	return resp.Results.matches()
}

// matches flattens the first query's result lists.
func (r *queryResults) matches() ([]ai.VectorMatch, error) {
	ids := r.IDs[0]
	if len(r.Distances) == 0 || len(r.Distances[0]) != len(ids) {
		return nil, fmt.Errorf("%w: %d ids without matching distances", ErrMalformedResponse, len(ids))
	}
	var metadatas []map[string]any
	if len(r.Metadatas) > 0 {
		metadatas = r.Metadatas[0]
	}
	var documents []*string
	if len(r.Documents) > 0 {
		documents = r.Documents[0]
	}

	out := make([]ai.VectorMatch, 0, len(ids))
	for i, id := range ids {
		m := ai.VectorMatch{
			URI:        id,
			Similarity: similarity(r.Distances[0][i]),
		}
		if i < len(metadatas) {
			if uri, ok := metadatas[i][metadataURI].(string); ok && uri != "" {
				m.URI = uri
			}
		}
		if i < len(documents) && documents[i] != nil {
			m.Label = *documents[i]
		}
		out = append(out, m)
	}
	return out, nil
}

// call runs one request through the circuit breaker and decodes the JSON body into out.
func (c *Client) call(ctx context.Context, method, op string, body, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, method, op, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %w", ErrCircuitOpen, op, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, op string, body, out any) error {
	endpoint := fmt.Sprintf("%s/chroma/collections/%s/%s", c.baseURL, url.PathEscape(c.collection), op)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %w", ErrRequestFailed, op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: status %d: %s", ErrRequestFailed, op, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, op, err)
	}
	return nil
}

// isSuccessful keeps caller cancellation from counting against the service.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// similarity maps a chroma distance onto [0, 1].
func similarity(distance float64) float64 {
	s := 1 - distance/2
	switch {
	case math.IsNaN(s), s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

func documentID(v core.LabelVector) string {
	return strconv.FormatUint(uint64(core.IDFromContent(v.URI+"\x00"+string(v.Locale)+"\x00"+v.Text)), 16)
}

func deref(s *string) string {
	if s == nil {
		return "unknown error"
	}
	return *s
}
