package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ImportConfig holds configuration for the catalog import command.
type ImportConfig struct {
	PGDSN      string
	CatalogDir string
	Chains     []int64
	LogLevel   string
}

// LoadImport merges config file, environment variables, and flags into ImportConfig.
func LoadImport(cfgFile string, flags *pflag.FlagSet) (ImportConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("chains", "8453,10")
		v.SetDefault("catalog-dir", "./catalog")
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return ImportConfig{}, err
	}

	chains, err := getInt64Slice(v, "chains")
	if err != nil {
		return ImportConfig{}, err
	}

	return ImportConfig{
		PGDSN:      v.GetString("pg-dsn"),
		CatalogDir: v.GetString("catalog-dir"),
		Chains:     chains,
		LogLevel:   v.GetString("log-level"),
	}, nil
}
