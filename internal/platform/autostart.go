package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidEntry is returned for an autostart entry without a name or executable.
var ErrInvalidEntry = errors.New("invalid autostart entry")

// Entry describes a program registered to start at login.
type Entry struct {
	Name    string
	Exec    string
	Args    []string
	Comment string
}

func (entry Entry) validate() error {
	if strings.TrimSpace(entry.Name) == "" {
		return fmt.Errorf("%w: app name is empty", ErrInvalidEntry)
	}
	if strings.TrimSpace(entry.Exec) == "" {
		return fmt.Errorf("%w: exec path is empty", ErrInvalidEntry)
	}
	return nil
}

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
	EnableAutostart(entry Entry) error
	DisableAutostart(appName string) error
	AutostartEnabled(appName string) (bool, error)
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

func slug(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "focustimer"
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
