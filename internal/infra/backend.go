package infra

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/adapter/backend"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/port"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
)

// InitBackend constructs the Ethereum chain reader using configuration
// provided via Viper. It validates the backend config and returns a
// port.ChainReader implementation; call Connect on it before use.
func InitBackend(log applog.AppLogger, v *validator.Validate) (port.ChainReader, error) {
	if v == nil {
		v = validator.New()
	}

	cfg := backend.Config{
		RPCURL:                    viper.GetString("backend.rpc_url"),
		Network:                   viper.GetString("backend.network"),
		FetchTimeoutSeconds:       viper.GetInt("backend.fetch_timeout_seconds"),
		DialMaxRetryAttempts:      viper.GetInt("backend.dial_max_retry_attempts"),
		DialRetryInitialBackoffMS: viper.GetInt("backend.dial_retry_initial_backoff_ms"),
		DialRetryMaxBackoffMS:     viper.GetInt("backend.dial_retry_max_backoff_ms"),
		DialRetryJitter:           viper.GetFloat64("backend.dial_retry_jitter"),
	}

	r, err := backend.NewEthereumReader(log, &cfg, v)
	if err != nil {
		return nil, fmt.Errorf("infra: failed to init backend reader: %w", err)
	}
	return r, nil
}
