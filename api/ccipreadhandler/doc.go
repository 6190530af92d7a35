/*
Package ccipreadhandler serves CCIP-Read (EIP-3668) lookups over HTTP.

Routes:
  - GET  /resolve/{sender}/{data}
  - POST /resolve/{sender}/{data}
  - POST /resolve with a {"sender": "0x...", "data": "0x..."} body

{data} may carry the .json suffix of the ENS offchain-resolver URL template.
Every request is given a request id, logged and echoed in X-Request-Id.

The package also provides Resolve, a client that follows the EIP-3668 URL
template rules, for use by tools and tests.
*/
package ccipreadhandler
