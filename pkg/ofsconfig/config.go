// Package ofsconfig loads ofsd's configuration: spec.md §6's ofs.Config
// fields plus the non-core server knobs (port, max_connections,
// queue_timeout) the transport and CLI consume. Grounded on
// pkg/vconvert/config.go's viper.SetConfigFile/AddConfigPath/ReadInConfig
// pattern, generalized from a single hardcoded file name to an overridable
// --config path with a fixed default.
package ofsconfig

import (
	"fmt"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/Zohaasad/file-verse/pkg/ofs"
)

const defaultConfigName = "config"

// ServerConfig holds the non-core knobs pkg/ofsnet and cmd/ofsd consume;
// pkg/ofs never sees these.
type ServerConfig struct {
	Port         int
	MaxConns     int
	QueueTimeout time.Duration
}

// Load reads cfgFile (or ~/.ofsd/config.toml if cfgFile is empty) and
// returns the parsed ofs.Config plus ServerConfig, falling back to
// spec.md §6's defaults for any key the file doesn't set. Environment
// variables are not consulted.
func Load(cfgFile string) (ofs.Config, ServerConfig, error) {
	v := viper.New()
	v.SetConfigType("toml")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			v.AddConfigPath(home + "/.ofsd")
		}
		v.SetConfigName(defaultConfigName)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return ofs.Config{}, ServerConfig{}, fmt.Errorf("reading config: %w", err)
		}
		// No config file on disk: defaults already set above carry the load.
	}

	cfg := ofs.Config{
		TotalSize:     v.GetUint64("total_size"),
		HeaderSize:    v.GetUint64("header_size"),
		BlockSize:     v.GetUint64("block_size"),
		MaxFiles:      uint32(v.GetUint32("max_files")),
		MaxUsers:      uint32(v.GetUint32("max_users")),
		AdminUsername: v.GetString("admin_username"),
		AdminPassword: v.GetString("admin_password"),
	}

	srv := ServerConfig{
		Port:         v.GetInt("port"),
		MaxConns:     v.GetInt("max_connections"),
		QueueTimeout: v.GetDuration("queue_timeout"),
	}

	return cfg, srv, nil
}

func setDefaults(v *viper.Viper) {
	def := ofs.DefaultConfig()
	v.SetDefault("total_size", def.TotalSize)
	v.SetDefault("header_size", def.HeaderSize)
	v.SetDefault("block_size", def.BlockSize)
	v.SetDefault("max_files", def.MaxFiles)
	v.SetDefault("max_users", def.MaxUsers)
	v.SetDefault("admin_username", def.AdminUsername)
	v.SetDefault("admin_password", def.AdminPassword)

	v.SetDefault("port", 9090)
	v.SetDefault("max_connections", 64)
	v.SetDefault("queue_timeout", 30*time.Second)
}
