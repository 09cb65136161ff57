package database

import (
	"fmt"
	"net/url"
)

// ConstructDatabaseURL points baseURL at databaseName and defaults sslmode to disable.
// An empty databaseName returns baseURL unchanged.
func ConstructDatabaseURL(baseURL, databaseName string) (string, error) {
	if databaseName == "" {
		return baseURL, nil
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid database URL: missing scheme or host")
	}

	// The database name replaces any database already in the path
	u.Path = "/" + databaseName
	u.RawPath = ""

	if query := u.Query(); !query.Has("sslmode") {
		query.Set("sslmode", "disable")
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}
