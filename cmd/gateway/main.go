package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ruteri/ccip-read-gateway/api/ccipreadhandler"
	"github.com/ruteri/ccip-read-gateway/api/server"
	"github.com/ruteri/ccip-read-gateway/cache"
	"github.com/ruteri/ccip-read-gateway/cmd/flags"
	"github.com/ruteri/ccip-read-gateway/gateway"
	"github.com/ruteri/ccip-read-gateway/keysource"
	"github.com/ruteri/ccip-read-gateway/resolver"
	"github.com/ruteri/ccip-read-gateway/signer"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

// startupTimeout bounds key loading and the resolver code check.
const startupTimeout = 30 * time.Second

var GatewayServiceLogFlag = flags.LogServiceFlagFn("ccip-read-gateway")

var ListenAddrFlag = altsrc.NewStringFlag(&cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	EnvVars: []string{"LISTEN_ADDR"},
	Usage:   "address to listen on for API",
})
var PortFlag = altsrc.NewStringFlag(&cli.StringFlag{
	Name:    "port",
	EnvVars: []string{"PORT"},
	Usage:   "port to listen on on all interfaces, overrides --listen-addr",
})
var ResolverAddressFlag = altsrc.NewStringFlag(&cli.StringFlag{
	Name:    "resolver-address",
	EnvVars: []string{"RESOLVER_ADDRESS"},
	Usage:   "resolver contract on the authoritative chain",
})
var PrivateKeyFlag = altsrc.NewStringFlag(&cli.StringFlag{
	Name:    "private-key",
	EnvVars: []string{"PRIVATE_KEY"},
	Usage:   "hex-encoded signing key",
})
var SigningKeyURIFlag = altsrc.NewStringFlag(&cli.StringFlag{
	Name:    "signing-key-uri",
	EnvVars: []string{"SIGNING_KEY_URI"},
	Usage:   "signing key location: env://VAR, file:///path, vault://host:port/mount/path or s3://bucket/key",
})
var CacheURIFlag = altsrc.NewStringFlag(&cli.StringFlag{
	Name:    "cache-uri",
	Value:   "memory://",
	EnvVars: []string{"CACHE_URI"},
	Usage:   "comma-separated resolution cache tiers: memory://, bigcache://?size=64, redis://host:6379/0, noop://",
})
var CacheTTLFlag = altsrc.NewDurationFlag(&cli.DurationFlag{
	Name:    "cache-ttl",
	Value:   resolver.DefaultCacheTTL,
	EnvVars: []string{"CACHE_TTL"},
	Usage:   "how long authoritative results are served from cache",
})
var SignatureTTLFlag = altsrc.NewDurationFlag(&cli.DurationFlag{
	Name:    "signature-ttl",
	Value:   signer.DefaultTTL,
	EnvVars: []string{"SIGNATURE_TTL"},
	Usage:   "validity window of signed responses",
})
var UpstreamTimeoutFlag = altsrc.NewDurationFlag(&cli.DurationFlag{
	Name:    "upstream-timeout",
	Value:   resolver.DefaultUpstreamTimeout,
	EnvVars: []string{"UPSTREAM_TIMEOUT"},
	Usage:   "timeout of a single resolve call on the authoritative chain",
})

var gatewayFlags = append([]cli.Flag{
	flags.RpcAddrFlag,
	flags.RpcAPIKeyFlag,
	ListenAddrFlag,
	PortFlag,
	ResolverAddressFlag,
	PrivateKeyFlag,
	SigningKeyURIFlag,
	CacheURIFlag,
	CacheTTLFlag,
	SignatureTTLFlag,
	UpstreamTimeoutFlag,
	GatewayServiceLogFlag,
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:   "ccip-read-gateway",
		Usage:  "Serve signed CCIP-Read responses for names resolved on an authoritative chain",
		Flags:  append([]cli.Flag{flags.ConfigFlag}, gatewayFlags...),
		Before: flags.ConfigFileLoader(gatewayFlags),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			listenAddr, err := flags.ListenAddress(cCtx.String(ListenAddrFlag.Name), cCtx.String(PortFlag.Name))
			if err != nil {
				logger.Error("Invalid listen address", "err", err)
				return err
			}

			resolverAddress := cCtx.String(ResolverAddressFlag.Name)
			if !ethcommon.IsHexAddress(resolverAddress) {
				logger.Error("Invalid resolver address", "address", resolverAddress)
				return fmt.Errorf("invalid resolver address %q", resolverAddress)
			}
			resolverAddr := ethcommon.HexToAddress(resolverAddress)

			keyURI, err := signingKeyURI(cCtx)
			if err != nil {
				logger.Error("Invalid signing key configuration", "err", err)
				return err
			}

			startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
			defer cancel()

			key, err := keysource.Load(startupCtx, keyURI, logger)
			if err != nil {
				logger.Error("Failed to load signing key", "err", err)
				return err
			}

			responseSigner, err := signer.New(key, cCtx.Duration(SignatureTTLFlag.Name))
			if err != nil {
				logger.Error("Failed to create signer", "err", err)
				return err
			}

			// Connect to the authoritative chain
			rpcAddress := cCtx.String(flags.RpcAddrFlag.Name)
			logger.Info("Connecting to Ethereum RPC", "address", rpcAddress)
			ethClient, err := ethclient.Dial(flags.RPCEndpoint(rpcAddress, cCtx.String(flags.RpcAPIKeyFlag.Name)))
			if err != nil {
				logger.Error("Failed to dial RPC", "err", err)
				return err
			}
			defer ethClient.Close()

			code, err := ethClient.CodeAt(startupCtx, resolverAddr, nil)
			if err != nil {
				logger.Warn("Could not check resolver contract code", "err", err, "resolver", resolverAddr.Hex())
			} else if len(code) == 0 {
				logger.Warn("No contract code at resolver address", "resolver", resolverAddr.Hex())
			}

			resolutionCache, err := cache.NewFactory(logger).FromURIs(cCtx.String(CacheURIFlag.Name), cCtx.Duration(CacheTTLFlag.Name))
			if err != nil {
				logger.Error("Failed to create resolution cache", "err", err)
				return err
			}
			defer resolutionCache.Close()

			chainReader, err := resolver.NewChainReader(ethClient, resolverAddr, cCtx.Duration(UpstreamTimeoutFlag.Name), logger)
			if err != nil {
				logger.Error("Failed to bind resolver contract", "err", err)
				return err
			}
			reader := resolver.NewCachingReader(chainReader, resolutionCache, cCtx.Duration(CacheTTLFlag.Name), logger)

			gw := gateway.New(reader, responseSigner, logger)

			srv, err := server.New(flags.ConfigureServer(cCtx, logger, listenAddr), ccipreadhandler.NewHandler(gw, logger))
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Gateway configured",
				"resolver", resolverAddr.Hex(),
				"signer", responseSigner.Address().Hex(),
				"signatureTTL", responseSigner.TTL(),
				"cacheTTL", cCtx.Duration(CacheTTLFlag.Name),
			)
			srv.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			srv.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func signingKeyURI(cCtx *cli.Context) (string, error) {
	privateKey := cCtx.String(PrivateKeyFlag.Name)
	uri := cCtx.String(SigningKeyURIFlag.Name)

	switch {
	case privateKey != "" && uri != "":
		return "", errors.New("set only one of --private-key and --signing-key-uri")
	case privateKey != "":
		return privateKey, nil
	case uri != "":
		return uri, nil
	default:
		return "", errors.New("a signing key is required: set --private-key or --signing-key-uri")
	}
}
