// Package mongo provides connection setup for the durable rate-limit
// backend's document store.
//
// Construct the client once during process startup and inject it into both
// the admission path and the cleanup sweeper; nothing here is created lazily
// or looked up through globals.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.Connect(ctx, cfg, "vault")
//	if err != nil { ... }
//	store := ratelimit.NewMongoStore(db.Collection("rate_limits"))
package mongo
