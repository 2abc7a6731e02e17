// Package clientip extracts the caller's network address from an HTTP
// request for rate-limit key derivation.
//
// Extraction order: first valid entry of the X-Forwarded-For chain, then
// X-Real-IP, then the connection's RemoteAddr. Every candidate is parsed and
// normalized; malformed values are skipped rather than trusted.
//
// The forwarded headers are client-controlled, which is acceptable here: a
// spoofed address only moves the caller into a different quota bucket, it
// grants nothing.
package clientip
