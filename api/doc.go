/*
Package api holds the HTTP surface of the CCIP-Read gateway.

The package itself defines the JSON wire types and the server configuration.
Its subpackages implement the two halves of the transport:

1. ccipreadhandler - the /resolve routes and a Go client for them
2. server - the chi server with health, drain, metrics, CORS and rate limiting

# Routes

	GET  /                        {"ok":true}
	GET  /resolve/{sender}/{data} CCIP-Read lookup, {data} may end in .json
	POST /resolve/{sender}/{data} same as GET
	POST /resolve                 CCIP-Read lookup with a {"sender","data"} body
	GET  /livez, /readyz          liveness and readiness
	GET  /drain, /undrain         toggle readiness ahead of shutdown

Successful lookups return {"data":"0x..."} where the payload is the
ABI-encoded (bytes result, uint64 expires, bytes signature) tuple. Failures
return {"message": ..., "error": {...}} with status 400 for invalid input,
502 when the authoritative chain call fails and 500 otherwise.
*/
package api
