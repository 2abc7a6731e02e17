// Package redis provides connection setup for the key-value variant of the
// durable rate-limit backend.
//
// Like pkg/mongo, the client is built once at startup and injected where it
// is needed:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil { ... }
//	store := ratelimit.NewRedisStore(client)
package redis
