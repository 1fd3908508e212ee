// Package profile locates the directory holding Thunderbird's per-account
// mail folders for the default profile.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/tbunread/tbunread/internal/config"
)

var (
	ErrNoHome           = errors.New("unable to get user home directory")
	ErrNoDefaultProfile = errors.New("unable to find default profile")
)

// Home returns the Thunderbird home directory for the current platform.
func Home() (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoHome, err)
		}
		return filepath.Join(dir, "Thunderbird"), nil
	case "darwin":
		dir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoHome, err)
		}
		return filepath.Join(dir, "Library", "Thunderbird"), nil
	default:
		dir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoHome, err)
		}
		return filepath.Join(dir, ".thunderbird"), nil
	}
}

// DefaultProfile reads profiles.ini below home and returns the directory of
// the profile the installation uses by default.
func DefaultProfile(home string) (string, error) {
	path := filepath.Join(home, "profiles.ini")
	file, err := ini.Load(path)
	if err != nil {
		return "", fmt.Errorf("unable to read %s: %w", path, err)
	}

	for _, sec := range file.Sections() {
		if !strings.HasPrefix(sec.Name(), "Install") || !sec.HasKey("Default") {
			continue
		}
		name := sec.Key("Default").String()
		if name == "" {
			continue
		}
		if filepath.IsAbs(name) {
			return filepath.Clean(name), nil
		}
		return filepath.Join(home, filepath.FromSlash(name)), nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrNoDefaultProfile)
}

// WatchRoot resolves the directory to monitor. An explicit root in cfg wins;
// otherwise the default profile's mail directory is used. The result is
// absolute with symbolic links resolved, and must exist.
func WatchRoot(cfg config.ProfileConfig) (string, error) {
	if cfg.Root != "" {
		return resolve(cfg.Root)
	}

	home := cfg.Home
	if home == "" {
		var err error
		if home, err = Home(); err != nil {
			return "", err
		}
	}

	dir, err := DefaultProfile(home)
	if err != nil {
		return "", err
	}

	mailDir := cfg.MailDir
	if mailDir == "" {
		mailDir = config.DefaultMailDir
	}
	return resolve(filepath.Join(dir, mailDir))
}

func resolve(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("unable to resolve watch root %s: %w", dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("unable to resolve watch root %s: %w", dir, err)
	}
	return resolved, nil
}
