package resolver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultHTTPRetries = 3

// HTTPOption customises an HTTP resolver.
type HTTPOption func(*HTTP)

// WithHTTPClient injects a preconfigured retrying client.
func WithHTTPClient(client *retryablehttp.Client) HTTPOption {
	return func(r *HTTP) {
		if client != nil {
			r.client = client
		}
	}
}

// WithHTTPSuffix overrides the suffix appended to template names.
func WithHTTPSuffix(suffix string) HTTPOption {
	return func(r *HTTP) {
		suffix = strings.TrimSpace(suffix)
		if suffix == "" {
			return
		}
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		r.suffix = suffix
	}
}

// WithHTTPTimeout bounds each request.
func WithHTTPTimeout(timeout time.Duration) HTTPOption {
	return func(r *HTTP) {
		r.timeout = timeout
	}
}

// WithHTTPLogger sets the logger used by the default retrying client.
func WithHTTPLogger(logger log.Logger) HTTPOption {
	return func(r *HTTP) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// HTTP fetches templates from a base URL. "admin::users/list" maps to
// "<base>/admin/users/list.mustache". A 404 response is reported as
// ErrNotFound; other non-2xx statuses fail the lookup.
type HTTP struct {
	base    *url.URL
	client  *retryablehttp.Client
	logger  log.Logger
	suffix  string
	timeout time.Duration
}

var _ Resolver = (*HTTP)(nil)

// NewHTTP constructs an HTTP resolver rooted at baseURL.
func NewHTTP(baseURL string, options ...HTTPOption) (*HTTP, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("resolver: base url is required")
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolver: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("resolver: unsupported base url scheme %q", base.Scheme)
	}

	r := &HTTP{
		base:   base,
		suffix: DefaultSuffix,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.NewLogger()
	}
	if r.client == nil {
		r.client = retryhttp.NewClient(r.logger)
		r.client.RetryMax = defaultHTTPRetries
	}
	if r.timeout > 0 && r.client.HTTPClient != nil {
		r.client.HTTPClient.Timeout = r.timeout
	}
	return r, nil
}

// Resolve downloads the template source for name.
func (r *HTTP) Resolve(name string) (string, error) {
	file := strings.TrimSpace(name)
	if ns, rest, ok := strings.Cut(file, NamespaceSeparator); ok {
		file = ns + "/" + rest
	}
	if file == "" || strings.Contains(file, "..") {
		return "", notFound(name)
	}
	if !strings.HasSuffix(file, r.suffix) {
		file += r.suffix
	}

	target := r.base.JoinPath(strings.Split(file, "/")...)
	req, err := retryablehttp.NewRequest(http.MethodGet, target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("resolver: build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolver: fetch %q: %w", name, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return "", notFound(name)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("resolver: fetch %q: unexpected status %s", name, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("resolver: read %q: %w", name, err)
	}
	return string(data), nil
}
