// Package dnsname converts between dot-separated ENS names and the DNS wire
// format used by ENS wildcard resolution (ENSIP-10), and computes ENS namehashes.
//
// Wire format: each label is a one-byte length followed by the label bytes; the
// sequence ends with a zero-length label. ENS allows labels of up to 255 bytes,
// so the 63-byte limit of classic DNS is not enforced here.
package dnsname
