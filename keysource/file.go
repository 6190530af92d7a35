package keysource

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// loadFromFile reads file:///path. A JSON file is treated as an encrypted
// go-ethereum keystore unlocked with the password from ?password-env=VAR or
// ?password-file=/path; anything else must be a hex key.
func (f *KeySourceFactory) loadFromFile(u *url.URL) (*ecdsa.PrivateKey, error) {
	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI", interfaces.ErrSigningConfiguration)
	}

	f.log.Debug("Loading signing key from file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read key file: %v", interfaces.ErrSigningConfiguration, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ParseHexKey(string(trimmed))
	}

	password, err := keystorePassword(u.Query())
	if err != nil {
		return nil, err
	}

	key, err := keystore.DecryptKey(trimmed, password)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decrypt keystore: %v", interfaces.ErrSigningConfiguration, err)
	}
	return key.PrivateKey, nil
}

func keystorePassword(query url.Values) (string, error) {
	if name := query.Get("password-env"); name != "" {
		password, ok := os.LookupEnv(name)
		if !ok {
			return "", fmt.Errorf("%w: keystore password variable %s is not set", interfaces.ErrSigningConfiguration, name)
		}
		return password, nil
	}

	if path := query.Get("password-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: failed to read keystore password file: %v", interfaces.ErrSigningConfiguration, err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	return "", nil
}
