// Package prefs remembers the last user context a plan was built from.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jask/lifeops/internal/agents"
)

const profileFile = "profile.yaml"

// Dir returns the default preferences directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lifeops"), nil
}

func SaveProfile(dir string, uc agents.UserContext) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(uc)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	path := filepath.Join(dir, profileFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadProfile returns the saved context, or the defaults when none was saved.
func LoadProfile(dir string, now time.Time) (agents.UserContext, error) {
	path := filepath.Join(dir, profileFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return agents.DefaultUserContext(now), nil
		}
		return agents.UserContext{}, err
	}
	return agents.LoadUserContext(path, now)
}
