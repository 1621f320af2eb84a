// pkg/xdg/xdg.go

package xdg

import (
	"errors"
	"os"
	"path/filepath"
)

// DirPermStandard is used for every directory this tool creates.
const DirPermStandard os.FileMode = 0o750

// ErrNoHome is returned when neither the XDG variable nor HOME is set.
var ErrNoHome = errors.New("neither XDG base directory nor HOME is set")

// GetEnvOrDefault returns the value of envVar, or fallback when it is unset or empty.
func GetEnvOrDefault(envVar, fallback string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return fallback
}

func base(envVar string, homeRel ...string) (string, error) {
	fallback := ""
	if home := os.Getenv("HOME"); home != "" {
		fallback = filepath.Join(append([]string{home}, homeRel...)...)
	}
	if dir := GetEnvOrDefault(envVar, fallback); dir != "" {
		return dir, nil
	}
	return "", ErrNoHome
}

// ConfigPath returns $XDG_CONFIG_HOME/<app>/<file>.
func ConfigPath(app, file string) (string, error) {
	b, err := base("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(b, app, file), nil
}

// StatePath returns $XDG_STATE_HOME/<app>/<file>. Logs live here.
func StatePath(app, file string) (string, error) {
	b, err := base("XDG_STATE_HOME", ".local", "state")
	if err != nil {
		return "", err
	}
	return filepath.Join(b, app, file), nil
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), DirPermStandard)
}
