package flags

import (
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/ccip-read-gateway/api"
	"github.com/ruteri/ccip-read-gateway/common"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
		CORSOrigins:              cCtx.StringSlice(CORSOriginsFlag.Name),
		RateLimitRPM:             cCtx.Int(RateLimitRPMFlag.Name),
		RateLimitBurst:           cCtx.Int(RateLimitBurstFlag.Name),
		TrustProxyHeaders:        cCtx.Bool(TrustProxyFlag.Name),
	}
}

// ListenAddress applies a PORT override to listenAddr. A set port binds all interfaces.
func ListenAddress(listenAddr, port string) (string, error) {
	if port == "" {
		return listenAddr, nil
	}
	if strings.ContainsAny(port, ":/") {
		return "", fmt.Errorf("invalid port %q", port)
	}
	return net.JoinHostPort("", port), nil
}

// RPCEndpoint appends apiKey as a trailing path segment of rpcURL when set.
func RPCEndpoint(rpcURL, apiKey string) string {
	if apiKey == "" {
		return rpcURL
	}
	return strings.TrimSuffix(rpcURL, "/") + "/" + apiKey
}

// LoadConfigFile opens the file named by --config as a TOML or YAML input source.
func LoadConfigFile(cCtx *cli.Context) (altsrc.InputSourceContext, error) {
	path := cCtx.String(ConfigFlag.Name)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return altsrc.NewTomlSourceFromFile(path)
	case ".yaml", ".yml":
		return altsrc.NewYamlSourceFromFile(path)
	default:
		return nil, fmt.Errorf("unsupported config file %q: expected .toml, .yaml or .yml", path)
	}
}

// ConfigFileLoader returns a Before hook populating flags from --config when it is set.
// Values from the command line and environment take precedence over the file.
func ConfigFileLoader(flags []cli.Flag) cli.BeforeFunc {
	load := altsrc.InitInputSourceWithContext(flags, LoadConfigFile)
	return func(cCtx *cli.Context) error {
		if cCtx.String(ConfigFlag.Name) == "" {
			return nil
		}
		return load(cCtx)
	}
}

var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	EnvVars: []string{"CONFIG_FILE"},
	Usage:   "TOML or YAML file with flag values",
}

var RpcAddrFlag = altsrc.NewStringFlag(&cli.StringFlag{
	Name:    "rpc-addr",
	Aliases: []string{"rpc-url"},
	Value:   "http://127.0.0.1:8545",
	EnvVars: []string{"RPC_URL"},
	Usage:   "authoritative chain RPC endpoint",
})
var RpcAPIKeyFlag = altsrc.NewStringFlag(&cli.StringFlag{
	Name:    "rpc-api-key",
	EnvVars: []string{"RPC_API_KEY"},
	Usage:   "API key appended to the RPC endpoint path",
})

var LogJsonFlag = altsrc.NewBoolFlag(&cli.BoolFlag{
	Name:    "log-json",
	Value:   false,
	EnvVars: []string{"LOG_JSON"},
	Usage:   "log in JSON format",
})
var LogDebugFlag = altsrc.NewBoolFlag(&cli.BoolFlag{
	Name:    "log-debug",
	Value:   false,
	EnvVars: []string{"LOG_DEBUG"},
	Usage:   "log debug messages",
})
var LogUidFlag = altsrc.NewBoolFlag(&cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
})

var LogServiceFlagFn = func(service string) *altsrc.StringFlag {
	return altsrc.NewStringFlag(&cli.StringFlag{
		Name:    "log-service",
		Value:   service,
		EnvVars: []string{"LOG_SERVICE"},
		Usage:   "add 'service' tag to logs",
	})
}

var PprofFlag = altsrc.NewBoolFlag(&cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
})
var DrainSecondsFlag = altsrc.NewInt64Flag(&cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
})
var MetricsAddrFlag = altsrc.NewStringFlag(&cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	EnvVars: []string{"METRICS_ADDR"},
	Usage:   "address to listen on for Prometheus metrics, empty to disable",
})

var CORSOriginsFlag = altsrc.NewStringSliceFlag(&cli.StringSliceFlag{
	Name:    "cors-origins",
	EnvVars: []string{"CORS_ORIGINS"},
	Usage:   "allowed CORS origins, any origin when unset",
})
var RateLimitRPMFlag = altsrc.NewIntFlag(&cli.IntFlag{
	Name:    "rate-limit-rpm",
	Value:   0,
	EnvVars: []string{"RATE_LIMIT_RPM"},
	Usage:   "requests per minute allowed per client, 0 disables rate limiting",
})
var RateLimitBurstFlag = altsrc.NewIntFlag(&cli.IntFlag{
	Name:    "rate-limit-burst",
	Value:   20,
	EnvVars: []string{"RATE_LIMIT_BURST"},
	Usage:   "requests a client may burst above the sustained rate",
})
var TrustProxyFlag = altsrc.NewBoolFlag(&cli.BoolFlag{
	Name:    "trust-proxy-headers",
	EnvVars: []string{"TRUST_PROXY_HEADERS"},
	Usage:   "take client addresses from X-Forwarded-For / X-Real-IP for rate limiting",
})

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
	CORSOriginsFlag,
	RateLimitRPMFlag,
	RateLimitBurstFlag,
	TrustProxyFlag,
}
