package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const DefaultSettingsFile = "okapi_downloader_settings"

const (
	AuthModeBasic = "basic"
	AuthModeToken = "token"
)

// Settings is resolved once per run and never mutated afterwards.
type Settings struct {
	WikiListURL string
	BaseDumpURL string
	BaseOutDir  string
	Wait        int // seconds between two wiki downloads
	RetryWait   int // minutes between two batch attempts
	AuthMode    string
	LoginURL    string
	S3Bucket    string // mirror committed dumps here when set
	S3Prefix    string
	S3Profile   string
	ProxyURL    string // user:pass@ inside the url is honoured too
	ProxyUser   string
	ProxyPasswd string
}

func DefaultSettings() Settings {
	return Settings{
		WikiListURL: "https://api.wikimediaenterprise.org/v1/projects",
		BaseDumpURL: "https://api.wikimediaenterprise.org/v1/exports/json",
		BaseOutDir:  "okapi-dumps",
		Wait:        20,
		RetryWait:   10,
		AuthMode:    AuthModeBasic,
		LoginURL:    "https://auth.enterprise.wikimedia.com/v1/login",
		S3Profile:   "default",
	}
}

func (s Settings) WaitDuration() time.Duration {
	return time.Duration(s.Wait) * time.Second
}

func (s Settings) RetryWaitDuration() time.Duration {
	return time.Duration(s.RetryWait) * time.Minute
}

// LoadSettings overlays the entries of a settings file on DefaultSettings.
// Unknown keys are rejected.
func LoadSettings(path string) (Settings, error) {
	entries, err := readEntries(path)
	if err != nil {
		return Settings{}, err
	}
	settings := DefaultSettings()
	for _, e := range entries {
		switch e.name {
		case "wikilisturl":
			settings.WikiListURL = e.value
		case "basedumpurl":
			settings.BaseDumpURL = e.value
		case "baseoutdir":
			settings.BaseOutDir = e.value
		case "wait", "retrywait":
			n, err := strconv.Atoi(e.value)
			if err != nil || n < 0 {
				return Settings{}, fmt.Errorf("%w: %s must be a non-negative number, got %q in %s", ErrConfig, e.name, e.value, path)
			}
			if e.name == "wait" {
				settings.Wait = n
			} else {
				settings.RetryWait = n
			}
		case "authmode":
			settings.AuthMode = e.value
		case "loginurl":
			settings.LoginURL = e.value
		case "s3bucket":
			settings.S3Bucket = e.value
		case "s3prefix":
			settings.S3Prefix = e.value
		case "s3profile":
			settings.S3Profile = e.value
		case "proxyurl":
			settings.ProxyURL = e.value
		case "proxyuser":
			settings.ProxyUser = e.value
		case "proxypasswd":
			settings.ProxyPasswd = e.value
		default:
			return Settings{}, fmt.Errorf("%w: unknown entry %q on line %d of settings file %s", ErrConfig, e.name, e.line, path)
		}
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

func (s Settings) Validate() error {
	if s.WikiListURL == "" || s.BaseDumpURL == "" || s.BaseOutDir == "" {
		return fmt.Errorf("%w: wikilisturl, basedumpurl and baseoutdir must not be empty", ErrConfig)
	}
	switch s.AuthMode {
	case AuthModeBasic:
	case AuthModeToken:
		if s.LoginURL == "" {
			return fmt.Errorf("%w: loginurl is required with authmode=token", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: authmode must be %q or %q, got %q", ErrConfig, AuthModeBasic, AuthModeToken, s.AuthMode)
	}
	if s.ProxyURL != "" {
		proxyURL, err := url.Parse(s.ProxyURL)
		if err != nil || proxyURL.Scheme == "" || proxyURL.Host == "" {
			return fmt.Errorf("%w: proxyurl must look like http://host:port, got %q", ErrConfig, s.ProxyURL)
		}
	}
	if s.ProxyPasswd != "" && s.ProxyUser == "" {
		return fmt.Errorf("%w: proxypasswd needs proxyuser", ErrConfig)
	}
	return nil
}
