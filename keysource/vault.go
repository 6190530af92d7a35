package keysource

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// loadFromVault reads the key from a Vault KV v2 secret.
// URI format: vault://host:port/mount/path/to/secret?field=private_key&tls=false&token-env=VAULT_TOKEN
// The token defaults to the Vault client environment (VAULT_TOKEN).
func (f *KeySourceFactory) loadFromVault(ctx context.Context, u *url.URL) (*ecdsa.PrivateKey, error) {
	query := u.Query()

	scheme := "https"
	if query.Get("tls") == "false" {
		scheme = "http"
	}

	mountPath, dataPath, found := strings.Cut(strings.Trim(u.Path, "/"), "/")
	if !found || mountPath == "" || dataPath == "" {
		return nil, fmt.Errorf("%w: vault URI must name a mount and a secret path", interfaces.ErrSigningConfiguration)
	}

	field := query.Get("field")
	if field == "" {
		field = "private_key"
	}

	config := api.DefaultConfig()
	config.Address = fmt.Sprintf("%s://%s", scheme, u.Host)
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Vault client: %v", interfaces.ErrSigningConfiguration, err)
	}

	if tokenEnv := query.Get("token-env"); tokenEnv != "" {
		client.SetToken(os.Getenv(tokenEnv))
	}

	path := fmt.Sprintf("%s/data/%s", mountPath, dataPath)
	f.log.Debug("Loading signing key from Vault", slog.String("address", config.Address), slog.String("path", path))

	secret, err := client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read from Vault: %v", interfaces.ErrSigningConfiguration, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: no secret at %s", interfaces.ErrSigningConfiguration, path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: invalid data format in Vault response", interfaces.ErrSigningConfiguration)
	}

	value, ok := data[field].(string)
	if !ok {
		return nil, fmt.Errorf("%w: field %q not found in Vault secret", interfaces.ErrSigningConfiguration, field)
	}

	return ParseHexKey(value)
}
