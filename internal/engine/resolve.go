package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dsabanin/pygmentskit/internal/log"
)

// DefaultCommand is the engine command used when none is configured.
const DefaultCommand = "pygmentize"

// findExecutable resolves command to an executable path.
// Paths containing a separator are checked directly; bare names go through PATH.
func findExecutable(command string) (string, error) {
	if command == "" {
		command = DefaultCommand
	}

	if strings.ContainsRune(command, os.PathSeparator) || filepath.IsAbs(command) {
		info, err := os.Stat(command)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrConfiguration, command, err)
		}
		if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			return "", fmt.Errorf("%w: %s is not executable", ErrConfiguration, command)
		}
		log.Debug(log.CatEngine, "Found engine at path", "path", command)
		return command, nil
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found in PATH", ErrConfiguration, command)
	}
	log.Debug(log.CatEngine, "Found engine via PATH", "path", path)
	return path, nil
}
