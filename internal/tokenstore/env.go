package tokenstore

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvStore reads the refresh token from an environment variable.
type EnvStore struct {
	envKey string
	lookup func(string) (string, bool)
}

// Compile-time check to ensure EnvStore implements TokenStore
var _ TokenStore = (*EnvStore)(nil)

// NewEnvStore creates an EnvStore for the given environment variable.
func NewEnvStore(envKey string) (*EnvStore, error) {
	return newEnvStore(envKey, os.LookupEnv)
}

func newEnvStore(envKey string, lookup func(string) (string, bool)) (*EnvStore, error) {
	if envKey == "" {
		return nil, fmt.Errorf("environment key cannot be empty")
	}

	return &EnvStore{
		envKey: envKey,
		lookup: lookup,
	}, nil
}

// Read returns the token from the environment variable. Returns error if unset or empty.
func (e *EnvStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, ok := e.lookup(e.envKey)
	if !ok {
		return "", fmt.Errorf("environment variable %s not set", e.envKey)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("environment variable %s is empty", e.envKey)
	}
	return token, nil
}
