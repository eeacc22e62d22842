package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultAPIURL = "http://localhost:8080"

const tokenFileName = ".blogctl_token"

// APIURL returns the base URL for the blog platform API.
// It can be overridden with the BLOG_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("BLOG_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// SaveToken writes the JWT token to a dotfile in the user's home directory.
func SaveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0600)
}

// LoadToken reads the locally stored JWT token saved by a previous login.
func LoadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("not logged in, run 'blogctl login' first: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// RemoveToken deletes the stored token, if any.
func RemoveToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, tokenFileName), nil
}
