package utils

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type HTTPClientConfig struct {
	Timeout       time.Duration // applies to connect, response headers and each body read
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	Username      string
	Password      string
	TokenSource   oauth2.TokenSource // bearer auth instead of basic auth when set
}

type HTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	var roundTripper http.RoundTripper = newTransport(cfg)
	if cfg.TokenSource != nil {
		roundTripper = &oauth2.Transport{Source: cfg.TokenSource, Base: roundTripper}
	}
	// no overall client timeout, dumps can take a long time to stream
	return &HTTPClient{
		client: &http.Client{Transport: roundTripper},
		config: cfg,
	}
}

// newTransport honours an explicit proxy and falls back to the environment.
// Credentials set apart from the proxy url replace any inside it.
func newTransport(cfg HTTPClientConfig) *http.Transport {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
		IdleConnTimeout:       DefaultKATimeout,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		DisableCompression:    true,
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			log.Warn().Str("op", "utils/http-client").Err(err).Msg("ignoring unparsable proxy url")
			return transport
		}
		if cfg.ProxyUsername != "" {
			if cfg.ProxyPassword != "" {
				proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
			} else {
				proxyURL.User = url.User(cfg.ProxyUsername)
			}
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return transport
}

func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", ToolUserAgent)
	if c.config.TokenSource == nil && c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
	if GlobalDebugFlag {
		log.Debug().Str("op", "utils/http-client").Msgf("%s %s", req.Method, req.URL.Redacted())
	}
	return c.client.Do(req)
}

// Get performs an authenticated GET and returns the whole body.
func (c *HTTPClient) Get(ctx context.Context, link string) ([]byte, error) {
	body, err := c.Stream(ctx, link)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	return data, nil
}

// Stream performs an authenticated GET and hands back the body for the caller to
// consume. Any non-200 response is an error. The body fails with ErrReadTimeout
// when no bytes arrive for longer than the configured timeout.
func (c *HTTPClient) Stream(ctx context.Context, link string) (io.ReadCloser, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		cancel(nil)
		return nil, fmt.Errorf("error creating GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		cancel(nil)
		return nil, fmt.Errorf("error executing GET request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel(nil)
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	return newIdleTimeoutBody(ctx, resp.Body, c.config.Timeout, cancel), nil
}

type idleTimeoutBody struct {
	ctx     context.Context
	body    io.ReadCloser
	timeout time.Duration
	timer   *time.Timer
	cancel  context.CancelCauseFunc
}

func newIdleTimeoutBody(ctx context.Context, body io.ReadCloser, timeout time.Duration, cancel context.CancelCauseFunc) *idleTimeoutBody {
	b := &idleTimeoutBody{
		ctx:     ctx,
		body:    body,
		timeout: timeout,
		cancel:  cancel,
	}
	b.timer = time.AfterFunc(timeout, func() { cancel(ErrReadTimeout) })
	return b
}

func (b *idleTimeoutBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 {
		b.timer.Reset(b.timeout)
	}
	if err != nil && err != io.EOF && b.ctx.Err() != nil {
		return n, context.Cause(b.ctx)
	}
	return n, err
}

func (b *idleTimeoutBody) Close() error {
	b.timer.Stop()
	err := b.body.Close()
	b.cancel(nil)
	return err
}
