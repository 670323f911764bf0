package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// osName is a variable so tests can exercise the launcher table for
// platforms other than the one running the suite.
var osName = runtime.GOOS

// launcherArgs returns the command line that opens url in the default
// browser on the given platform.
func launcherArgs(goos, url string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"open", url}, nil
	case "linux":
		return []string{"xdg-open", url}, nil
	case "windows":
		return []string{"cmd", "/c", "start", url}, nil
	}
	return nil, fmt.Errorf("no browser launcher for platform %s", goos)
}

// OpenBrowser opens the default system browser to url. Used by `serve
// --open` to drop the user onto the catalog endpoint.
func OpenBrowser(url string) error {
	args, err := launcherArgs(osName, url)
	if err != nil {
		return err
	}

	if err := exec.Command(args[0], args[1:]...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
