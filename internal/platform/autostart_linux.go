//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (service *platformService) EnableAutostart(entry Entry) error {
	if err := entry.validate(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	path, err := service.desktopFilePath(entry.Name)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(buildDesktopEntry(entry)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}

	path, err := service.desktopFilePath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	path, err := service.desktopFilePath(appName)
	if err != nil {
		return false, err
	}
	return fileExists(path)
}

func (service *platformService) desktopFilePath(appName string) (string, error) {
	configDir, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", slug(appName)+".desktop"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func buildDesktopEntry(entry Entry) string {
	parts := make([]string, 0, len(entry.Args)+1)
	for _, part := range append([]string{entry.Exec}, entry.Args...) {
		if strings.ContainsAny(part, " \t\"") {
			part = `"` + strings.ReplaceAll(part, `"`, `\"`) + `"`
		}
		parts = append(parts, part)
	}

	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", entry.Name)
	if entry.Comment != "" {
		fmt.Fprintf(&b, "Comment=%s\n", entry.Comment)
	}
	fmt.Fprintf(&b, "Exec=%s\n", strings.Join(parts, " "))
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	b.WriteString("Terminal=false\n")
	return b.String()
}
