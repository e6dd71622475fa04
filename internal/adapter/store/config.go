package store

// Config contains connection and behavior options for the Redis-backed
// verdict store. The struct is validated via go-playground/validator tags.
type Config struct {
	Host               string `validate:"required,hostname|ip"`
	Port               string `validate:"required,numeric"`
	Password           string
	DB                 int `validate:"gte=0"`
	UseTLS             bool
	PoolSize           int `validate:"gte=0"`
	MaxRetries         int `validate:"gte=0"`
	DialTimeoutSeconds int `validate:"gte=0"`
	Streams            StreamConfig
	Lock               LockConfig
}

// StreamConfig holds the Redis stream the store appends verdicts to.
type StreamConfig struct {
	// Key is the Redis stream where verdicts are appended.
	Key string `validate:"required"`
}

// LockConfig holds the idempotency marker options.
type LockConfig struct {
	// DedupPrefix is the prefix used for the idempotency SET key (e.g., "verdict").
	DedupPrefix string `validate:"required"`
	// VerdictTTLSeconds is the TTL for the dedup key.
	VerdictTTLSeconds int `validate:"required,gte=1"`
}
