package infra

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitConfig loads the service configuration from a `config.yml` found in
// the working directory or ./configs, with environment variable overrides
// (dots replaced by underscores, e.g. BACKEND_RPC_URL).
func InitConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
