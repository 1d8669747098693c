package internal

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tuannm99/csvsql/internal/sql/executor"
)

const EnvPrefix = "CSVSQL"

type CsvSqlConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Workdir string `mapstructure:"workdir"`
	} `mapstructure:"storage"`

	Engine struct {
		StackSize     int `mapstructure:"stack_size"`
		MaxColumns    int `mapstructure:"max_columns"`
		MaxValues     int `mapstructure:"max_values"`
		MaxAssigns    int `mapstructure:"max_assigns"`
		MaxRowCells   int `mapstructure:"max_row_cells"`
		StmtCacheSize int `mapstructure:"stmt_cache_size"`
	} `mapstructure:"engine"`

	Server struct {
		Addr  string `mapstructure:"addr"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`
}

func setDefaults(v *viper.Viper) {
	d := executor.DefaultLimits()
	v.SetDefault("app_name", "csvsql")
	v.SetDefault("storage.workdir", "test_db")
	v.SetDefault("engine.stack_size", d.StackSize)
	v.SetDefault("engine.max_columns", d.MaxColumns)
	v.SetDefault("engine.max_values", d.MaxValues)
	v.SetDefault("engine.max_assigns", d.MaxAssigns)
	v.SetDefault("engine.max_row_cells", d.MaxRowCells)
	v.SetDefault("engine.stmt_cache_size", 64)
	v.SetDefault("server.addr", "127.0.0.1:8866")
	v.SetDefault("server.debug", false)
}

// LoadConfig reads path (YAML unless the extension says otherwise) on top of
// the defaults. An empty path means defaults and environment only.
// Environment variables override the file, e.g. CSVSQL_SERVER_ADDR.
func LoadConfig(path string) (*CsvSqlConfig, error) {
	return LoadConfigWithFlags(path, nil)
}

// LoadConfigWithFlags is LoadConfig with command line flags bound on top.
// Flag names use the config keys, e.g. --server.addr.
func LoadConfigWithFlags(path string, flags *pflag.FlagSet) (*CsvSqlConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg CsvSqlConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Limits converts the engine section for the executor.
func (c *CsvSqlConfig) Limits() executor.Limits {
	return executor.Limits{
		StackSize:   c.Engine.StackSize,
		MaxColumns:  c.Engine.MaxColumns,
		MaxValues:   c.Engine.MaxValues,
		MaxAssigns:  c.Engine.MaxAssigns,
		MaxRowCells: c.Engine.MaxRowCells,
	}
}
