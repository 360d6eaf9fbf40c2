package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/studiobook/internal/logging"
	"github.com/mesh-intelligence/studiobook/internal/paths"
	"github.com/mesh-intelligence/studiobook/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "STUDIO"

	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyLogLevel = "log_level"
	cfgKeyRedis    = "redis"

	defaultBackend     = types.BackendSQLite
	defaultRedisAddr   = "localhost:6379"
	defaultRedisPrefix = "studio"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# studio configuration

# Storage backend: sqlite, memory or redis
backend: sqlite

# Data directory (optional; overridden by --data-dir and STUDIO_DATA_DIR)
# data_dir:

# Log level: panic, fatal, error, warn, info, debug, trace
log_level: warn

# Used when backend is redis
redis:
  addr: localhost:6379
  db: 0
  prefix: studio
`

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. STUDIO_* environment variables override file
// values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyLogLevel, logging.DefaultLevel)
	v.SetDefault(cfgKeyRedis+".addr", defaultRedisAddr)
	v.SetDefault(cfgKeyRedis+".db", 0)
	v.SetDefault(cfgKeyRedis+".prefix", defaultRedisPrefix)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates config.yaml when it does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// storageConfig builds the backend configuration from flags and config.yaml.
func (a *app) storageConfig() (types.Config, error) {
	cfg := types.Config{Backend: a.cfg.GetString(cfgKeyBackend)}
	if a.flags.backend != "" {
		cfg.Backend = a.flags.backend
	}

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir

	if err := a.cfg.UnmarshalKey(cfgKeyRedis, &cfg.Redis); err != nil {
		return types.Config{}, fmt.Errorf("read redis config: %w", err)
	}
	return cfg, nil
}
