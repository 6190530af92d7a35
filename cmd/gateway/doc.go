// Package main (cmd/gateway) runs the CCIP-Read resolution gateway.
//
// The gateway answers EIP-3668 lookups for names whose records live on an
// authoritative chain. For each request it calls resolve(name, data) on the
// configured resolver contract, caches the result, and returns it signed for
// the requesting contract with a short expiry.
//
// Every flag can also be given through its environment variable or a TOML or
// YAML file passed with --config. The signing key is taken from --private-key
// or from --signing-key-uri (env://, file://, vault:// or s3://). The process
// refuses to start without a usable key.
//
// Example usage:
//
//	RPC_URL=https://mainnet.example.org RESOLVER_ADDRESS=0x... \
//	SIGNING_KEY_URI=vault://vault:8200/secret/ccip/gateway \
//	gateway --cache-uri memory://,redis://cache:6379/0 --rate-limit-rpm 600
//
// The process shuts down gracefully on SIGINT or SIGTERM.
package main
