// Package sanitizer provides defense-in-depth scrubbing of untrusted request
// data before it is logged, stored or interpolated into downstream operations.
//
// The central entry point is SanitizeString, which runs its input through an
// ordered pipeline of cleaning stages (null-byte removal, trimming,
// truncation, injection-pattern stripping, HTML escaping, …) and reports
// which threat categories were detected along the way:
//
//	res, err := sanitizer.SanitizeString(input)
//	if err != nil {
//	    // input was not textual
//	}
//	if len(res.Threats) > 0 {
//	    // log or flag the request; res.Sanitized is already clean
//	}
//
// SanitizeObject applies the same pipeline to every string leaf of a nested
// structure (as produced by decoding a JSON request body) and reports threats
// per field path. The specialized helpers ValidateEmail, ValidateURL and
// SanitizeFilename compose SanitizeString with fixed option profiles for
// their respective contexts.
//
// Detection is regex-denylist based and therefore inherently best-effort: it
// neutralizes common payloads and surfaces them for auditing, but it is not a
// substitute for parameterized queries, context-aware output encoding or a
// sandboxed execution environment at the layers that consume the data. The
// sanitizer never rejects a request; it cleans and reports, and the caller
// decides what to do with the threat list.
//
// All functions are pure and stateless, safe for concurrent use from any
// number of goroutines.
package sanitizer
