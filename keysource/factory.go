// Package keysource loads the gateway signing key from the locations an
// operator is likely to keep it in: the environment, a keystore file, a Vault
// KV v2 secret or an S3 object.
package keysource

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

var rawHexKey = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

// KeySourceFactory resolves signing key URIs to private keys.
type KeySourceFactory struct {
	log *slog.Logger
}

// NewKeySourceFactory creates a factory logging through logger.
func NewKeySourceFactory(logger *slog.Logger) *KeySourceFactory {
	return &KeySourceFactory{log: logger}
}

// Load is a convenience wrapper around KeySourceFactory.Load.
func Load(ctx context.Context, uri string, logger *slog.Logger) (*ecdsa.PrivateKey, error) {
	return NewKeySourceFactory(logger).Load(ctx, uri)
}

// Load fetches the private key referenced by uri.
//
// Supported forms:
//   - 64 hex characters, optionally 0x-prefixed, or hex:<key>
//   - env://VAR - hex key held in an environment variable
//   - file:///path/key.json?password-env=VAR - go-ethereum keystore file, or a file holding a hex key
//   - vault://host:port/mount/path?field=private_key&tls=false&token-env=VAR - Vault KV v2 secret
//   - s3://[ACCESS_KEY:SECRET_KEY@]bucket/object?region=us-east-1&endpoint=... - object holding a hex key
//
// Every failure wraps interfaces.ErrSigningConfiguration.
func (f *KeySourceFactory) Load(ctx context.Context, uri string) (*ecdsa.PrivateKey, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("%w: no signing key configured", interfaces.ErrSigningConfiguration)
	}

	if rawHexKey.MatchString(uri) {
		return ParseHexKey(uri)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid key URI: %v", interfaces.ErrSigningConfiguration, err)
	}

	var key *ecdsa.PrivateKey
	switch strings.ToLower(u.Scheme) {
	case "hex":
		key, err = ParseHexKey(u.Opaque)
	case "env":
		key, err = f.loadFromEnv(u)
	case "file":
		key, err = f.loadFromFile(u)
	case "vault":
		key, err = f.loadFromVault(ctx, u)
	case "s3":
		key, err = f.loadFromS3(ctx, u)
	default:
		return nil, fmt.Errorf("%w: unsupported key source scheme %q", interfaces.ErrSigningConfiguration, u.Scheme)
	}
	if err != nil {
		return nil, err
	}

	f.log.Info("Loaded signing key", "source", u.Scheme, "address", crypto.PubkeyToAddress(key.PublicKey).Hex())
	return key, nil
}

// ParseHexKey parses a secp256k1 private key from hex, with or without 0x prefix.
func ParseHexKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex private key: %v", interfaces.ErrSigningConfiguration, err)
	}
	return key, nil
}

// loadFromEnv reads env://VAR.
func (f *KeySourceFactory) loadFromEnv(u *url.URL) (*ecdsa.PrivateKey, error) {
	name := u.Host
	if name == "" {
		name = u.Opaque
	}
	f.log.Debug("Loading signing key from environment", slog.String("variable", name))

	value, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: environment variable %s is not set", interfaces.ErrSigningConfiguration, name)
	}
	return ParseHexKey(value)
}
