//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (service *platformService) EnableAutostart(entry Entry) error {
	if err := entry.validate(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	output, err := exec.Command(
		"reg", "add", registryRunKey,
		"/v", entry.Name,
		"/t", "REG_SZ",
		"/d", commandLine(entry),
		"/f",
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("enable autostart: reg add failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}

	output, err := exec.Command("reg", "delete", registryRunKey, "/v", appName, "/f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("disable autostart: reg delete failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	err := exec.Command("reg", "query", registryRunKey, "/v", appName).Run()
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, err
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func commandLine(entry Entry) string {
	parts := []string{quoteWindowsPath(entry.Exec)}
	for _, arg := range entry.Args {
		if strings.ContainsAny(arg, " \t") {
			arg = quoteWindowsPath(arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

func quoteWindowsPath(execPath string) string {
	trimmed := strings.Trim(execPath, `"`)
	return fmt.Sprintf(`"%s"`, trimmed)
}
