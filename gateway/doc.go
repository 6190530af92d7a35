/*
Package gateway implements the CCIP-Read request pipeline.

A request moves through the states

	RECEIVED -> VALIDATED -> NAME_DECODED -> UPSTREAM_FETCHED -> SIGNED -> RESPONDED

and ends in ERRORED when any step fails. Validation parses the sender address
and the hex calldata. The calldata must be a resolve(bytes name, bytes data)
call. Its name is decoded from DNS wire format and its nested resolver call is
described for logging only; both are forwarded verbatim to the authoritative
reader. The result is signed for the sender contract together with the
original calldata.

There is no retry inside the pipeline. Callers retry per the CCIP-Read
convention.
*/
package gateway
