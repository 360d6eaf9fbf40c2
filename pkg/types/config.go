package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds backend selection and parameters for Backend.Attach.
type Config struct {
	Backend string      `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string      `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Redis   RedisConfig `json:"redis" yaml:"redis" mapstructure:"redis"`
}

// RedisConfig configures the redis backend. It is only validated when
// Backend is BackendRedis.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required,hostname_port"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
	DB       int    `json:"db" yaml:"db" mapstructure:"db" validate:"gte=0,lte=15"`
	Prefix   string `json:"prefix" yaml:"prefix" mapstructure:"prefix" validate:"omitempty,max=64"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrRedisConfig    = errors.New("invalid redis configuration")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMemory: true,
	BackendRedis:  true,
}

var validate = validator.New()

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendRedis {
		if err := validate.Struct(c.Redis); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisConfig, err)
		}
	}
	return nil
}
