// Package background spawns the detached push process so interactive
// commands can exit immediately after a local change.
package background

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// PushCommand is the hidden subcommand the spawned process runs.
const PushCommand = "_internal_background_push"

// SpawnPush starts a detached copy of the current executable running the
// hidden push command and returns without waiting for it. Pending records
// are uploaded while the invoking command exits.
func SpawnPush() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	cmd := exec.Command(executable, PushCommand)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn background push: %w", err)
	}
	return nil
}

// Logger returns a logger writing to the background log file in the user
// cache directory. The detached process has no terminal, so stderr would
// be lost.
func Logger() (*log.Logger, func(), error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, nil, err
	}
	dir := filepath.Join(cacheDir, "storysync")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(filepath.Join(dir, "background.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "[push] ", log.LstdFlags), func() { _ = f.Close() }, nil
}
