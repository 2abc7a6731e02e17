// Package ratelimit implements fixed-window request admission control with
// interchangeable storage backends.
//
// A Limiter combines an immutable policy Config (window size, ceiling,
// outcome-based counting exemptions) with a Store that owns the per-key
// counters. Three stores ship with the package:
//
//   - MemoryStore: in-process map, fast and volatile, single instance.
//   - MongoStore: durable document store, safe across server processes via
//     per-document atomic updates.
//   - RedisStore: durable key-value store, atomic via a Lua script, entries
//     expire through native TTLs.
//
// Admission keys are derived from the caller identity with DeriveKey:
// authenticated bearer subject first, then client network address, then a
// hash of the declared client identifier.
//
// Middleware wires a Limiter in front of an http.Handler. Every response
// carries X-RateLimit-* headers so well-behaved clients can self-throttle;
// rejected requests get a structured 429 JSON body with a retry-after hint.
// When the backing store is unreachable the middleware fails open: the
// protected service stays available and the degraded state is logged.
//
// Named policies for the document vault's traffic classes are provided by
// GeneralPolicy, UploadPolicy, ProcessingPolicy and AuthPolicy.
package ratelimit
