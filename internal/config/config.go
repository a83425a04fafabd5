package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ImportConfig drives the bulk spreadsheet import. Each store sheet carries
// the transaction history of the store it is named after; the catalog sheet
// holds the item master data, assigned to CatalogStore.
type ImportConfig struct {
	Workbook       string   `mapstructure:"workbook"`
	CatalogSheet   string   `mapstructure:"catalog_sheet"`
	CatalogStore   string   `mapstructure:"catalog_store"`
	StoreSheets    []string `mapstructure:"store_sheets"`
	HeaderScanRows int      `mapstructure:"header_scan_rows"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Import   ImportConfig   `mapstructure:"import"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from the given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in the current working
// directory. Environment variables prefixed with INV override file values.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		v.SetDefault("server.address", "0.0.0.0")
		v.SetDefault("server.port", 8080)
		v.SetDefault("database.path", "data/inventory.db")
		v.SetDefault("jwt.expire_hours", 24)
		v.SetDefault("log.level", "info")
		v.SetDefault("import.catalog_sheet", "STOCK CONTROL SHEET")
		v.SetDefault("import.header_scan_rows", 10)

		// environment overrides, e.g. INV_SERVER_PORT=9000
		v.SetEnvPrefix("INV")
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})
	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded configuration, or nil before Load.
func Get() *Config {
	return appConfig
}
