// Package paths locates the studio's configuration and data directories.
//
// Each directory is chosen from the first source that is set: the command
// line flag, the environment, the config file (data directory only), then the
// platform default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "studiobook"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "STUDIO_CONFIG_DIR"
	EnvDataDir   = "STUDIO_DATA_DIR"
)

// platform holds the OS lookups so tests can replace them.
var platform = struct {
	goos          string
	getenv        func(string) string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	getenv:        os.Getenv,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $xdgVar/studiobook on Linux, falling back to
// ~/<fallback...>/studiobook. Other systems use os.UserConfigDir for both
// configuration and data.
func xdgDir(xdgVar string, fallback ...string) (string, error) {
	if platform.goos != "linux" {
		dir, err := platform.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := platform.getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, AppName)...), nil
}

// DefaultConfigDir returns the platform configuration directory:
// $XDG_CONFIG_HOME/studiobook or ~/.config/studiobook on Linux, and the
// user config directory elsewhere.
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory:
// $XDG_DATA_HOME/studiobook or ~/.local/share/studiobook on Linux, and the
// user config directory elsewhere.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir returns flag, else $STUDIO_CONFIG_DIR, else
// DefaultConfigDir. Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	return firstAbs(DefaultConfigDir, flag, platform.getenv(EnvConfigDir))
}

// ResolveDataDir returns flag, else $STUDIO_DATA_DIR, else the config file's
// data_dir, else DefaultDataDir. Explicit values are made absolute.
func ResolveDataDir(flag, configValue string) (string, error) {
	return firstAbs(DefaultDataDir, flag, platform.getenv(EnvDataDir), configValue)
}

func firstAbs(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}
