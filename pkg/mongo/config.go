package mongo

import "time"

// Config holds the connection settings for the document store.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`                         // e.g. "mongodb://localhost:27017"
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`     // timeout for establishing a connection
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`       // maximum connections in the pool
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`         // minimum connections in the pool
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"` // how long an idle connection is kept
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`       // retry write operations once on transient errors
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`        // connection attempts before giving up
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`       // wait between connection attempts
}
