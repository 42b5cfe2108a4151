package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

// Client talks to the EasyLoft REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	userAgent string
	logger    *zap.Logger
}

const (
	defaultBaseURL   = "http://localhost:3000"
	defaultUserAgent = "easyloft/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 64 * 1024
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger; calls are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for baseURL. tokens may be nil, in which case no
// request carries an Authorization header.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		tokens:    tokens,
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request performs a JSON call. body is encoded as JSON when non-nil and the
// JSON content type is declared either way; the response is decoded into dest when dest is non-nil. When auth is true and a
// token is available it is sent as a bearer token.
func (c *Client) Request(ctx context.Context, method, path string, body any, auth bool, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &RequestError{
				Kind:    KindEncode,
				Method:  method,
				Path:    path,
				Message: fmt.Sprintf("encode request: %v", err),
				Err:     err,
			}
		}
		reader = bytes.NewReader(encoded)
	}
	return c.do(ctx, method, path, reader, jsonContentType, auth, dest)
}

// File is an upload payload.
type File struct {
	Name        string
	ContentType string // sniffed from the content when empty
	Body        io.Reader
}

const jsonContentType = "application/json"

// Upload posts file as a multipart form under field. The JSON content type is
// not set; the multipart boundary type is used instead.
func (c *Client) Upload(ctx context.Context, path, field string, file File, auth bool, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	body, contentType, err := encodeMultipart(field, file)
	if err != nil {
		return &RequestError{
			Kind:    KindEncode,
			Method:  http.MethodPost,
			Path:    path,
			Message: fmt.Sprintf("encode upload: %v", err),
			Err:     err,
		}
	}
	return c.do(ctx, http.MethodPost, path, body, contentType, auth, dest)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool, dest any) error {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return &RequestError{Kind: KindEncode, Method: method, Path: path, Message: fmt.Sprintf("parse path: %v", err), Err: err}
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return &RequestError{Kind: KindEncode, Method: method, Path: path, Message: fmt.Sprintf("create request: %v", err), Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth && c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.Token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return &RequestError{
			Kind:    KindNetwork,
			Method:  method,
			Path:    path,
			Message: fmt.Sprintf("execute request: %v", err),
			Err:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(method, path, resp.StatusCode, payload)
	}
	if dest == nil {
		return nil
	}
	buffered := bufio.NewReader(resp.Body)
	if _, err := buffered.Peek(1); err == io.EOF {
		return nil
	}
	if err := json.NewDecoder(buffered).Decode(dest); err != nil {
		return &RequestError{
			Kind:    KindDecode,
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("decode response: %v", err),
			Err:     err,
		}
	}
	return nil
}

func encodeMultipart(field string, file File) (io.Reader, string, error) {
	if file.Body == nil {
		return nil, "", fmt.Errorf("file body is nil")
	}
	if strings.TrimSpace(field) == "" {
		field = "file"
	}
	content, err := io.ReadAll(file.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	contentType := strings.TrimSpace(file.ContentType)
	if contentType == "" {
		contentType = mimetype.Detect(content).String()
	}
	name := strings.TrimSpace(file.Name)
	if name == "" {
		name = "upload" + mimetype.Detect(content).Extension()
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("write part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

// parseBaseURL normalises the API root. A path prefix such as /api is kept so
// that relative endpoint paths resolve beneath it.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
