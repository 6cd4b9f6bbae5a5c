package client

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/adt-protocol/adt-go/pkg/log"
)

// DefaultTimeout bounds a single exchange when no HTTP client is given.
const DefaultTimeout = 2 * time.Minute

// Client is a connection to one ABAP system. It is safe for concurrent
// use; CSRF token and session cookies are shared.
type Client struct {
	base   *url.URL
	client *http.Client

	user, password string
	sapClient      string
	language       string
	userAgent      string
	headers        map[string]string
	maxResponse    int64

	logger   *slog.Logger
	protoLog log.Logger
	metrics  *Metrics

	mu        sync.Mutex
	csrfToken string
	stateful  bool
}

// Opt configures a Client.
type Opt func(*Client) error

// New returns a client for the system at baseURL, for example
// "https://host:44300".
func New(baseURL string, opts ...Opt) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid service URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid service URL %q: missing host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:     u,
		client:   &http.Client{Jar: jar, Timeout: DefaultTimeout},
		protoLog:    log.NoopLogger{},
		headers:     map[string]string{},
		maxResponse: maxResponseSize,
	}
	for _, op := range opts {
		if err := op(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithHTTPClient replaces the HTTP client. A client without a cookie jar
// gets one, since ADT sessions are cookie based.
func WithHTTPClient(hc *http.Client) Opt {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("nil http client")
		}
		if hc.Jar == nil {
			jar, err := cookiejar.New(nil)
			if err != nil {
				return err
			}
			hc.Jar = jar
		}
		c.client = hc
		return nil
	}
}

// WithBasicAuth sets the user and password.
func WithBasicAuth(user, password string) Opt {
	return func(c *Client) error {
		c.user, c.password = user, password
		return nil
	}
}

// WithSAPClient sets the sap-client query parameter sent with every request.
func WithSAPClient(client string) Opt {
	return func(c *Client) error {
		c.sapClient = client
		return nil
	}
}

// WithLanguage sets the sap-language query parameter sent with every request.
func WithLanguage(lang string) Opt {
	return func(c *Client) error {
		c.language = strings.ToUpper(lang)
		return nil
	}
}

// WithTimeout bounds every exchange.
func WithTimeout(d time.Duration) Opt {
	return func(c *Client) error {
		c.client.Timeout = d
		return nil
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify() Opt {
	return func(c *Client) error {
		tr, ok := http.DefaultTransport.(*http.Transport)
		if !ok {
			return errors.New("cannot configure TLS on the default transport")
		}
		tr = tr.Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
		c.client.Transport = tr
		return nil
	}
}

// WithMaxResponseSize bounds the response bodies read into memory.
func WithMaxResponseSize(n int64) Opt {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("invalid response size limit %d", n)
		}
		c.maxResponse = n
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Opt {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithHTTPHeaders adds headers to every request.
func WithHTTPHeaders(headers map[string]string) Opt {
	return func(c *Client) error {
		for k, v := range headers {
			c.headers[k] = v
		}
		return nil
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Opt {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// WithProtocolLogger records every exchange to l.
func WithProtocolLogger(l log.Logger) Opt {
	return func(c *Client) error {
		if l != nil {
			c.protoLog = l
		}
		return nil
	}
}

// WithMetrics counts every exchange in m.
func WithMetrics(m *Metrics) Opt {
	return func(c *Client) error {
		c.metrics = m
		return nil
	}
}

// BaseURL returns the service URL the client was created with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// SetStateful switches between stateful and stateless sessions. Locks
// only survive in a stateful session.
func (c *Client) SetStateful(stateful bool) {
	c.mu.Lock()
	c.stateful = stateful
	c.mu.Unlock()
}

func (c *Client) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
