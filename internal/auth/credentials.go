package auth

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ugm616/news-automation-n8n/internal/failure"
)

// Default environment variables holding the account identity and secret.
const (
	DefaultIdentityEnv = "RUMBLE_EMAIL"
	DefaultSecretEnv   = "RUMBLE_PASSWORD"
)

// Credentials identify the publishing account.
type Credentials struct {
	Identity string
	Secret   string
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// CredentialsFromEnv reads both variables through lookup. A missing or blank
// variable is a validation failure naming the variable, never its value.
func CredentialsFromEnv(lookup LookupFunc, identityVar, secretVar string) (Credentials, error) {
	if identityVar == "" {
		identityVar = DefaultIdentityEnv
	}
	if secretVar == "" {
		secretVar = DefaultSecretEnv
	}
	if lookup == nil {
		return Credentials{}, failure.Wrap(failure.ErrValidation, "auth", "read credentials", "no environment available", nil)
	}

	var missing []string
	identity, ok := lookup(identityVar)
	identity = strings.TrimSpace(identity)
	if !ok || identity == "" {
		missing = append(missing, identityVar)
	}
	secret, ok := lookup(secretVar)
	if !ok || secret == "" {
		missing = append(missing, secretVar)
	}
	if len(missing) > 0 {
		return Credentials{}, failure.Wrap(failure.ErrValidation, "auth", "read credentials",
			fmt.Sprintf("missing environment variable(s): %s", strings.Join(missing, ", ")), nil)
	}
	return Credentials{Identity: identity, Secret: secret}, nil
}

// String reports only whether each value is set.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{identity_set: %t, secret_set: %t}", c.Identity != "", c.Secret != "")
}

// GoString keeps %#v from printing either value.
func (c Credentials) GoString() string {
	return c.String()
}

// LogValue implements slog.LogValuer.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("identity_set", c.Identity != ""),
		slog.Bool("secret_set", c.Secret != ""),
	)
}
