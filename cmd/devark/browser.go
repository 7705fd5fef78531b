package main

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/google/shlex"

	"github.com/devark-ai/devark/internal/config"
)

// openBrowser opens url with the configured browser command, or
// the platform default when none is set.
func openBrowser(cfg config.Config, url string) error {
	if cfg.Browser != "" {
		parts, err := shlex.Split(cfg.Browser)
		if err != nil || len(parts) == 0 {
			return fmt.Errorf("invalid browser command %q", cfg.Browser)
		}
		args := append(parts[1:], url)
		return exec.Command(parts[0], args...).Start()
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command(
			"rundll32", "url.dll,FileProtocolHandler", url,
		)
	default:
		return fmt.Errorf("no browser opener for %s", runtime.GOOS)
	}
	return cmd.Start()
}

// offerURL opens url in the browser, falling back to the
// clipboard, and always prints it for manual use.
func offerURL(cfg config.Config, url string) {
	fmt.Printf("Open this URL to log in:\n  %s\n",
		urlStyle.Render(url))

	if cfg.NoBrowser {
		return
	}
	if err := openBrowser(cfg, url); err == nil {
		return
	}
	if err := clipboard.WriteAll(url); err == nil {
		fmt.Println(dimStyle.Render(
			"Could not open a browser; URL copied to clipboard.",
		))
	}
}
