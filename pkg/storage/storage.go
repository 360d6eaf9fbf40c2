// Package storage provides the public factory for KV backends while keeping
// the implementations internal.
package storage

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/studiobook/internal/memory"
	"github.com/mesh-intelligence/studiobook/internal/rediskv"
	"github.com/mesh-intelligence/studiobook/internal/sqlite"
	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// NewBackend returns a detached backend for config.Backend.
func NewBackend(config types.Config, log *logrus.Logger) (types.Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(sqlite.WithLogger(log)), nil
	case types.BackendMemory:
		return memory.NewBackend(), nil
	case types.BackendRedis:
		return rediskv.NewBackend(), nil
	default:
		return nil, types.ErrBackendUnknown
	}
}

// Open creates the backend for config and attaches it. The caller must
// Detach the result.
//
// Example:
//
//	backend, err := storage.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".studio-db",
//	}, logrus.StandardLogger())
//	defer backend.Detach()
func Open(config types.Config, log *logrus.Logger) (types.Backend, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	backend, err := NewBackend(config, log)
	if err != nil {
		return nil, err
	}
	if err := backend.Attach(config); err != nil {
		return nil, fmt.Errorf("attach %s backend: %w", config.Backend, err)
	}
	log.WithFields(logrus.Fields{
		"backend":  config.Backend,
		"data_dir": config.DataDir,
	}).Debug("storage attached")
	return backend, nil
}
