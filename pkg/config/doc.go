// Package config loads environment-based configuration into env-tagged
// structs, optionally seeding the environment from a .env file first.
//
//	type StoreConfig struct {
//	    URL string `env:"MONGODB_URL,required"`
//	}
//
//	var cfg StoreConfig
//	config.MustLoad(&cfg)
//
// Loading is a plain read of the process environment on every call; there is
// no ambient cache, so tests can vary the environment freely.
package config
