package config

import "fmt"

const DefaultCredentialsFile = ".okapi_creds"

// Credentials hold the HTTP Basic Auth pair for the export api.
type Credentials struct {
	User     string
	Password string
}

// LoadCredentials reads a credentials file with exactly the keys user and
// passwd. Both must be present and non-empty.
func LoadCredentials(path string) (Credentials, error) {
	entries, err := readEntries(path)
	if err != nil {
		return Credentials{}, err
	}
	var creds Credentials
	for _, e := range entries {
		switch e.name {
		case "user":
			creds.User = e.value
		case "passwd":
			creds.Password = e.value
		default:
			return Credentials{}, fmt.Errorf("%w: unknown entry %q on line %d of credentials file %s", ErrConfig, e.name, e.line, path)
		}
	}
	if creds.User == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("%w: both user and passwd must be specified in credentials file %s", ErrConfig, path)
	}
	return creds, nil
}
