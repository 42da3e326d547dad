package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the history service configuration loaded from flags, env, or config file.
type Config struct {
	Chains       []int64
	ChainRPC     map[int64]string
	TransfersRPC map[int64]string
	WindowSize   int
	MaxPerChain  int
	RPCTimeout   time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	RPCRate      float64
	RPCBurst     int
	PGDSN        string
	CatalogDir   string
	RedisURL     string
	Listen       string
	PageLimit    int
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("chains", "8453,10")
		v.SetDefault("window-size", 200)
		v.SetDefault("max-per-chain", 100)
		v.SetDefault("rpc-timeout", 10*time.Second)
		v.SetDefault("max-retries", 3)
		v.SetDefault("retry-backoff", 250*time.Millisecond)
		v.SetDefault("rpc-rate", 25.0)
		v.SetDefault("rpc-burst", 5)
		v.SetDefault("listen", ":8080")
		v.SetDefault("page-limit", 20)
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return Config{}, err
	}

	chains, err := getInt64Slice(v, "chains")
	if err != nil {
		return Config{}, err
	}
	chainRPC, err := getChainMap(v, "chain-rpc")
	if err != nil {
		return Config{}, err
	}
	transfersRPC, err := getChainMap(v, "transfers-rpc")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Chains:       chains,
		ChainRPC:     chainRPC,
		TransfersRPC: transfersRPC,
		WindowSize:   v.GetInt("window-size"),
		MaxPerChain:  v.GetInt("max-per-chain"),
		RPCTimeout:   v.GetDuration("rpc-timeout"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		RPCRate:      v.GetFloat64("rpc-rate"),
		RPCBurst:     v.GetInt("rpc-burst"),
		PGDSN:        v.GetString("pg-dsn"),
		CatalogDir:   v.GetString("catalog-dir"),
		RedisURL:     v.GetString("redis-url"),
		Listen:       v.GetString("listen"),
		PageLimit:    v.GetInt("page-limit"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks that every enabled chain can be served.
func (c Config) Validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain is required")
	}
	for _, id := range c.Chains {
		if c.ChainRPC[id] == "" {
			return fmt.Errorf("chain %d: chain-rpc url is required", id)
		}
		if c.TransfersRPC[id] == "" {
			return fmt.Errorf("chain %d: transfers-rpc url is required", id)
		}
	}
	if c.PGDSN == "" && c.CatalogDir == "" {
		return fmt.Errorf("either pg-dsn or catalog-dir is required")
	}
	return nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(v *viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("HISTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if defaults != nil {
		defaults(v)
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
