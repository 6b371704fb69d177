package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// loginTokenSource trades the user's credentials for a bearer token at the
// login endpoint. Wrapped in oauth2.ReuseTokenSource it logs in again only
// once the previous token has expired. Logins go through the same proxy as
// the api requests.
type loginTokenSource struct {
	ctx      context.Context
	client   *http.Client
	loginURL string
	username string
	password string
}

func NewLoginTokenSource(ctx context.Context, loginURL, username, password string, cfg HTTPClientConfig) oauth2.TokenSource {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return oauth2.ReuseTokenSource(nil, &loginTokenSource{
		ctx:      ctx,
		client:   &http.Client{Transport: newTransport(cfg), Timeout: cfg.Timeout},
		loginURL: loginURL,
		username: username,
		password: password,
	})
}

func (s *loginTokenSource) Token() (*oauth2.Token, error) {
	payload, err := json.Marshal(loginRequest{Username: s.username, Password: s.password})
	if err != nil {
		return nil, fmt.Errorf("error encoding login request: %w", err)
	}
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.loginURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", ToolUserAgent)
	log.Debug().Str("op", "utils/auth").Msgf("logging in at %s", s.loginURL)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing login request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed: %w: %s", ErrUnexpectedStatus, resp.Status)
	}
	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding login response: %w", err)
	}
	if body.AccessToken == "" {
		return nil, errors.New("login response carried no access token")
	}
	token := &oauth2.Token{
		AccessToken:  body.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: body.RefreshToken,
	}
	if body.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	log.Debug().Str("op", "utils/auth").Msgf("access token retrieved, expires %s", token.Expiry.Format(time.DateTime))
	return token, nil
}
