package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultAPIURL = "http://localhost:8080"

const tokenFileName = ".agripulse_token"

// APIURL returns the base URL for the AgriPulse API.
// It can be overridden with the AGRIPULSE_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("AGRIPULSE_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// SaveToken stores the JWT token in the user's home directory.
func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0o600)
}

// ReadToken loads the stored JWT token. Returns an error when not logged in.
func ReadToken() (string, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", fmt.Errorf("no stored token, run 'agripulse login' first")
	}
	return strings.TrimSpace(string(data)), nil
}

// RemoveToken deletes the stored JWT token.
func RemoveToken() error {
	err := os.Remove(tokenPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func tokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}
