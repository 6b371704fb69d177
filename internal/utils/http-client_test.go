package utils

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSendsAuthAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "s3cret" {
			t.Errorf("unexpected basic auth: %q %q %v", user, pass, ok)
		}
		if got := r.Header.Get("User-Agent"); got != ToolUserAgent {
			t.Errorf("expected user agent %q, got %q", ToolUserAgent, got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected json accept header, got %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewHTTPClient(HTTPClientConfig{Username: "alice", Password: "s3cret"})
	data, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected body [], got %q", data)
	}
}

func TestGetNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewHTTPClient(HTTPClientConfig{})
	_, err := client.Get(context.Background(), server.URL)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestStreamReadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client := NewHTTPClient(HTTPClientConfig{Timeout: 100 * time.Millisecond})
	body, err := client.Stream(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer body.Close()

	start := time.Now()
	_, err = io.ReadAll(body)
	if !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("expected ErrReadTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("read timeout took too long: %v", elapsed)
	}
}

func TestStreamKeepsFlowingBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 5; i++ {
			w.Write([]byte("ab"))
			w.(http.Flusher).Flush()
			time.Sleep(40 * time.Millisecond)
		}
	}))
	defer server.Close()

	// each gap is shorter than the timeout although the whole body is not
	client := NewHTTPClient(HTTPClientConfig{Timeout: 150 * time.Millisecond})
	body, err := client.Stream(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "ababababab" {
		t.Errorf("unexpected body %q", data)
	}
}

func TestTokenAuth(t *testing.T) {
	var logins atomic.Int32
	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode login request: %v", err)
		}
		if req.Username != "alice" || req.Password != "s3cret" {
			t.Errorf("unexpected credentials %+v", req)
		}
		json.NewEncoder(w).Encode(loginResponse{AccessToken: "tok-1", RefreshToken: "ref-1", ExpiresIn: 3600})
	}))
	defer login.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if _, _, ok := r.BasicAuth(); ok {
			t.Error("basic auth must not be sent in token mode")
		}
		w.Write([]byte("ok"))
	}))
	defer api.Close()

	ctx := context.Background()
	cfg := HTTPClientConfig{Username: "alice", Password: "s3cret"}
	cfg.TokenSource = NewLoginTokenSource(ctx, login.URL, "alice", "s3cret", cfg)
	client := NewHTTPClient(cfg)

	for i := 0; i < 3; i++ {
		if _, err := client.Get(ctx, api.URL); err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
	}
	if n := logins.Load(); n != 1 {
		t.Errorf("expected a single login, got %d", n)
	}
}

func TestTokenAuthLoginRejected(t *testing.T) {
	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer login.Close()

	var apiCalls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
	}))
	defer api.Close()

	ctx := context.Background()
	cfg := HTTPClientConfig{}
	cfg.TokenSource = NewLoginTokenSource(ctx, login.URL, "alice", "wrong", cfg)
	client := NewHTTPClient(cfg)
	if _, err := client.Get(ctx, api.URL); !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected login failure, got %v", err)
	}
	if apiCalls.Load() != 0 {
		t.Error("api must not be called without a token")
	}
}

func TestRequestsGoThroughProxy(t *testing.T) {
	var proxied atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied.Add(1)
		if r.Host != "dumps.example.invalid" {
			t.Errorf("expected request for dumps.example.invalid, got host %q", r.Host)
		}
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("squid:pw"))
		if got := r.Header.Get("Proxy-Authorization"); got != want {
			t.Errorf("expected proxy auth %q, got %q", want, got)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("api basic auth should still be sent")
		}
		w.Write([]byte("via proxy"))
	}))
	defer proxy.Close()

	client := NewHTTPClient(HTTPClientConfig{
		Username:      "alice",
		Password:      "s3cret",
		ProxyURL:      proxy.URL,
		ProxyUsername: "squid",
		ProxyPassword: "pw",
	})
	data, err := client.Get(context.Background(), "http://dumps.example.invalid/exports/json/abwiki")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "via proxy" || proxied.Load() != 1 {
		t.Errorf("expected one proxied request, got %d with body %q", proxied.Load(), data)
	}
}

func TestLoginGoesThroughProxy(t *testing.T) {
	var proxied atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied.Add(1)
		if r.URL.Path == "/v1/login" {
			json.NewEncoder(w).Encode(loginResponse{AccessToken: "tok-1", ExpiresIn: 3600})
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer token, got %q", got)
		}
		w.Write([]byte("ok"))
	}))
	defer proxy.Close()

	ctx := context.Background()
	cfg := HTTPClientConfig{ProxyURL: proxy.URL}
	cfg.TokenSource = NewLoginTokenSource(ctx, "http://auth.example.invalid/v1/login", "alice", "s3cret", cfg)
	if _, err := NewHTTPClient(cfg).Get(ctx, "http://api.example.invalid/v1/projects"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if proxied.Load() != 2 {
		t.Errorf("expected login and api request through the proxy, got %d", proxied.Load())
	}
}
