package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// WatchConfig holds configuration for the watch command.
type WatchConfig struct {
	WSURL       string
	Out         string
	Errors      string
	MetricsAddr string
	Limit       uint64
	LogLevel    string
}

// BalanceConfig holds configuration for the balance and token-balance commands.
type BalanceConfig struct {
	RPCURL   string
	Address  string
	Token    string
	Wallet   string
	Timeout  time.Duration
	LogLevel string
}

// LoadWatch merges config file, environment variables, and flags into WatchConfig.
func LoadWatch(cfgFile string, flags *pflag.FlagSet) (WatchConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":       "-",
		"log-level": "info",
	})
	if err != nil {
		return WatchConfig{}, err
	}

	cfg := WatchConfig{
		WSURL:       strings.TrimSpace(v.GetString("ws")),
		Out:         v.GetString("out"),
		Errors:      v.GetString("errors"),
		MetricsAddr: v.GetString("metrics-addr"),
		Limit:       v.GetUint64("limit"),
		LogLevel:    v.GetString("log-level"),
	}
	if cfg.WSURL == "" {
		return cfg, fmt.Errorf("ws url is required")
	}
	if cfg.Out == "" {
		return cfg, fmt.Errorf("output path is required")
	}
	return cfg, nil
}

// LoadBalance merges config file, environment variables, and flags into BalanceConfig.
func LoadBalance(cfgFile string, flags *pflag.FlagSet) (BalanceConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"timeout":   30 * time.Second,
		"log-level": "info",
	})
	if err != nil {
		return BalanceConfig{}, err
	}

	cfg := BalanceConfig{
		RPCURL:   strings.TrimSpace(v.GetString("rpc")),
		Address:  strings.TrimSpace(v.GetString("address")),
		Token:    strings.TrimSpace(v.GetString("token")),
		Wallet:   strings.TrimSpace(v.GetString("wallet")),
		Timeout:  v.GetDuration("timeout"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.RPCURL == "" {
		return cfg, fmt.Errorf("rpc url is required")
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
