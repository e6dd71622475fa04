package infra

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/adapter/store"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/port"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
)

// InitVerdictStore creates the Redis-backed verdict store using
// configuration loaded via Viper. It wires the nested Stream and Lock
// configs and returns the port-facing interface so callers remain
// decoupled from the adapter.
func InitVerdictStore(log applog.AppLogger, v *validator.Validate) (port.ReportStore, error) {
	cfg := store.Config{
		Host:               viper.GetString("redis.host"),
		Port:               viper.GetString("redis.port"),
		Password:           viper.GetString("redis.password"),
		DB:                 viper.GetInt("redis.db"),
		UseTLS:             viper.GetBool("redis.use_tls"),
		PoolSize:           viper.GetInt("redis.pool_size"),
		MaxRetries:         viper.GetInt("redis.max_retries"),
		DialTimeoutSeconds: viper.GetInt("redis.dial_timeout_seconds"),
		Streams: store.StreamConfig{
			Key: viper.GetString("redis.streams.key"),
		},
		Lock: store.LockConfig{
			DedupPrefix:       viper.GetString("redis.lock.dedup_prefix"),
			VerdictTTLSeconds: viper.GetInt("redis.lock.verdict_ttl_seconds"),
		},
	}

	vs, err := store.NewVerdictStore(log, v, &cfg)
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init verdict store: %w", err)
	}
	return vs, nil
}
