// Package common holds process-wide helpers shared by the gateway binaries.
package common

// PackageName is used as the metrics namespace label and the default log service.
const PackageName = "ccip-read-gateway"

// Version is overridden at build time with -ldflags "-X github.com/ruteri/ccip-read-gateway/common.Version=...".
var Version = "dev"
