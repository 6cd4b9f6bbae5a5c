package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adt-protocol/adt-go/pkg/log"
	"github.com/adt-protocol/adt-go/pkg/marshal"
	"github.com/adt-protocol/adt-go/pkg/objects"
	"github.com/adt-protocol/adt-go/pkg/schema"
)

const (
	headerCSRF        = "X-Csrf-Token"
	headerSessionType = "X-Sap-Adt-Sessiontype"

	discoveryPath = objects.ServicePath + "discovery"

	// maxResponseSize bounds the response bodies read into memory.
	maxResponseSize = 64 << 20
)

// serverResponse is a fully read answer of the service.
type serverResponse struct {
	body       []byte
	header     http.Header
	statusCode int
	reqURL     *url.URL
	method     string
	exchangeID string
}

func (r serverResponse) contentType() string {
	mt, _, _ := mime.ParseMediaType(r.header.Get("Content-Type"))
	return mt
}

// get sends a GET request.
func (c *Client) get(ctx context.Context, path string, query url.Values, headers http.Header) (serverResponse, error) {
	return c.sendRequest(ctx, http.MethodGet, path, query, nil, headers)
}

// post sends a POST request with a raw body.
func (c *Client) post(ctx context.Context, path string, query url.Values, body []byte, headers http.Header) (serverResponse, error) {
	return c.sendRequest(ctx, http.MethodPost, path, query, body, headers)
}

// postObject serializes obj as an XML document and posts it.
func (c *Client) postObject(ctx context.Context, path string, query url.Values, obj schema.Object, headers http.Header) (serverResponse, error) {
	body, hdr, err := prepareXMLRequest(obj, headers)
	if err != nil {
		return serverResponse{}, err
	}
	return c.post(ctx, path, query, body, hdr)
}

// put sends a PUT request with a raw body.
func (c *Client) put(ctx context.Context, path string, query url.Values, body []byte, headers http.Header) (serverResponse, error) {
	return c.sendRequest(ctx, http.MethodPut, path, query, body, headers)
}

// delete sends a DELETE request.
func (c *Client) delete(ctx context.Context, path string, query url.Values, headers http.Header) (serverResponse, error) {
	return c.sendRequest(ctx, http.MethodDelete, path, query, nil, headers)
}

// prepareXMLRequest serializes obj and sets its content type.
func prepareXMLRequest(obj schema.Object, headers http.Header) ([]byte, http.Header, error) {
	doc, err := marshal.Document(obj)
	if err != nil {
		return nil, headers, err
	}
	hdr := http.Header{}
	if headers != nil {
		hdr = headers.Clone()
	}
	if hdr.Get("Content-Type") == "" {
		hdr.Set("Content-Type", descriptorOf(obj).MIMEType())
	}
	return []byte(doc), hdr, nil
}

// descriptorOf returns the effective descriptor of obj, which differs
// from its type's for objects below a parent.
func descriptorOf(obj schema.Object) *schema.Descriptor {
	if o, ok := obj.(interface{ Descriptor() *schema.Descriptor }); ok {
		return o.Descriptor()
	}
	return obj.Schema().Descriptor()
}

// sendRequest sends one request, fetching a CSRF token first for
// modifying methods, and retries once when the server rejects the token.
func (c *Client) sendRequest(ctx context.Context, method, path string, query url.Values, body []byte, headers http.Header) (serverResponse, error) {
	modifying := method != http.MethodGet && method != http.MethodHead
	if modifying && c.token() == "" {
		if err := c.fetchToken(ctx); err != nil {
			return serverResponse{}, err
		}
	}

	resp, err := c.exchange(ctx, method, path, query, body, headers)
	if err != nil {
		return resp, err
	}
	if modifying && resp.statusCode == http.StatusForbidden && strings.EqualFold(resp.header.Get(headerCSRF), "required") {
		c.debugLog("csrf token rejected, refreshing", "url", resp.reqURL.String())
		c.setToken("")
		if err := c.fetchToken(ctx); err != nil {
			return serverResponse{}, err
		}
		resp, err = c.exchange(ctx, method, path, query, body, headers)
		if err != nil {
			return resp, err
		}
	}
	return resp, c.checkResponseErr(resp)
}

// fetchToken requests a CSRF token from the discovery document.
func (c *Client) fetchToken(ctx context.Context) error {
	resp, err := c.exchange(ctx, http.MethodGet, discoveryPath, nil, nil, http.Header{headerCSRF: {"fetch"}})
	if err != nil {
		return err
	}
	if err := c.checkResponseErr(resp); err != nil {
		return fmt.Errorf("fetching csrf token: %w", err)
	}
	if c.token() == "" {
		return fmt.Errorf("fetching csrf token: %w", &ServiceError{
			StatusCode: resp.statusCode,
			Method:     resp.method,
			URL:        resp.reqURL.String(),
			Message:    "no token in response",
		})
	}
	return nil
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csrfToken
}

func (c *Client) setToken(t string) {
	c.mu.Lock()
	c.csrfToken = t
	c.mu.Unlock()
}

// exchange performs a single round trip and records it.
func (c *Client) exchange(ctx context.Context, method, path string, query url.Values, body []byte, headers http.Header) (serverResponse, error) {
	req, err := c.buildRequest(ctx, method, path, query, body, headers)
	if err != nil {
		return serverResponse{}, err
	}

	id := uuid.NewString()
	out := log.Event{
		Timestamp:   time.Now(),
		ExchangeID:  id,
		Direction:   log.DirectionOut,
		Layer:       log.LayerHTTP,
		Category:    log.CategoryRequest,
		Method:      method,
		URL:         req.URL.RequestURI(),
		ContentType: req.Header.Get("Content-Type"),
	}
	out.Capture(body)
	c.protoLog.Log(out)

	start := time.Now()
	resp, err := c.doRequest(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(method, 0, elapsed, len(body), 0)
		c.protoLog.Log(log.Event{
			Timestamp:  time.Now(),
			ExchangeID: id,
			Direction:  log.DirectionIn,
			Layer:      log.LayerHTTP,
			Category:   log.CategoryError,
			Method:     method,
			URL:        out.URL,
			Duration:   elapsed,
			Error:      &log.ErrorEventData{Layer: log.LayerHTTP, Message: err.Error()},
		})
		return serverResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return serverResponse{}, errConnectionFailed{fmt.Errorf("reading response of %s %s: %w", method, out.URL, err)}
	}
	if int64(len(data)) > c.maxResponse {
		err := fmt.Errorf("%s %s: %w: more than %d bytes", method, out.URL, ErrResponseTooLarge, c.maxResponse)
		c.metrics.observe(method, resp.StatusCode, elapsed, len(body), len(data))
		c.protoLog.Log(log.Event{
			Timestamp:   time.Now(),
			ExchangeID:  id,
			Direction:   log.DirectionIn,
			Layer:       log.LayerHTTP,
			Category:    log.CategoryError,
			Method:      method,
			URL:         out.URL,
			Status:      resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Duration:    elapsed,
			Error:       &log.ErrorEventData{Layer: log.LayerHTTP, Message: err.Error()},
		})
		return serverResponse{}, err
	}
	if tok := resp.Header.Get(headerCSRF); tok != "" && !strings.EqualFold(tok, "required") {
		c.setToken(tok)
	}

	in := log.Event{
		Timestamp:   time.Now(),
		ExchangeID:  id,
		Direction:   log.DirectionIn,
		Layer:       log.LayerHTTP,
		Category:    log.CategoryResponse,
		Method:      method,
		URL:         out.URL,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Duration:    elapsed,
	}
	in.Capture(data)
	c.protoLog.Log(in)
	c.metrics.observe(method, resp.StatusCode, elapsed, len(body), len(data))

	return serverResponse{
		body:       data,
		header:     resp.Header,
		statusCode: resp.StatusCode,
		reqURL:     req.URL,
		method:     method,
		exchangeID: id,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, method, path string, query url.Values, body []byte, headers http.Header) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	u := *c.base
	u.Path = c.base.Path + ref.Path
	u.RawPath = ""
	if ref.RawPath != "" {
		u.RawPath = c.base.Path + ref.RawPath
	}

	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if c.sapClient != "" && q.Get("sap-client") == "" {
		q.Set("sap-client", c.sapClient)
	}
	if c.language != "" && q.Get("sap-language") == "" {
		q.Set("sap-language", c.language)
	}
	u.RawQuery = q.Encode()

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req, headers)
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/xml")
	}
	return req, nil
}

func (c *Client) addHeaders(req *http.Request, headers http.Header) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	c.mu.Lock()
	token, stateful := c.csrfToken, c.stateful
	c.mu.Unlock()
	if req.Header.Get(headerCSRF) == "" && token != "" {
		req.Header.Set(headerCSRF, token)
	}
	if stateful {
		req.Header.Set(headerSessionType, "stateful")
	} else {
		req.Header.Set(headerSessionType, "stateless")
	}
}

// doRequest wraps http.Client.Do and decorates connection errors.
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err == nil {
		return resp, nil
	}

	// Context errors are returned as is; callers compare against them.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return nil, errConnectionFailed{fmt.Errorf("failed to connect to %s: %w", c.base.Host, dnsErr)}
	}
	var nErr net.Error
	if errors.As(err, &nErr) && nErr.Timeout() {
		return nil, errConnectionFailed{fmt.Errorf("timeout connecting to %s: %w", c.base.Host, err)}
	}
	if c.base.Scheme == "https" && strings.Contains(err.Error(), "certificate") {
		return nil, errConnectionFailed{fmt.Errorf("TLS verification of %s failed; check the CA or use insecure mode: %w", c.base.Host, err)}
	}
	return nil, errConnectionFailed{fmt.Errorf("error during connect: %w", err)}
}

// checkResponseErr turns an error status into a *ServiceError, decoding
// exc:exception bodies.
func (c *Client) checkResponseErr(resp serverResponse) error {
	if resp.statusCode >= http.StatusOK && resp.statusCode < http.StatusBadRequest {
		return nil
	}

	se := &ServiceError{
		StatusCode: resp.statusCode,
		Method:     resp.method,
		URL:        resp.reqURL.Path,
	}
	ct := resp.contentType()
	switch {
	case len(resp.body) == 0:
	case strings.HasSuffix(ct, "xml"):
		exc := objects.NewException()
		if err := marshal.Deserialize(resp.body, exc); err == nil && exc.Type() != "" {
			se.Namespace = exc.Namespace()
			se.Type = exc.Type()
			se.Message = exc.Message()
			break
		}
		se.Message = strings.TrimSpace(string(resp.body))
	case ct == "text/html":
		// Proxy and login pages carry no useful text.
	default:
		se.Message = strings.TrimSpace(string(resp.body))
	}
	c.metrics.exception(se.Type)
	c.debugLog("service error", "status", se.StatusCode, "type", se.Type, "url", se.URL)
	return se
}

// decodeInto deserializes a response body into target, recording decode
// failures to the protocol log.
func (c *Client) decodeInto(resp serverResponse, target schema.Object) error {
	if err := marshal.Deserialize(resp.body, target); err != nil {
		return c.decodeError(resp, err)
	}
	return nil
}

func (c *Client) decodeError(resp serverResponse, err error) error {
	c.protoLog.Log(log.Event{
		Timestamp:  time.Now(),
		ExchangeID: resp.exchangeID,
		Direction:  log.DirectionIn,
		Layer:      log.LayerXML,
		Category:   log.CategoryError,
		Method:     resp.method,
		URL:        resp.reqURL.RequestURI(),
		Error:      &log.ErrorEventData{Layer: log.LayerXML, Message: err.Error()},
	})
	return fmt.Errorf("%w of %s %s: %w", ErrDecode, resp.method, resp.reqURL.Path, err)
}
