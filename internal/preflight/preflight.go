package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"discforge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the configuration. Output
// directories are only checked when configured; a job can still write
// anywhere via an explicit destination.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("History directory", cfg.Paths.HistoryDir),
	}

	optional := []struct {
		name string
		path string
	}{
		{"DVD output directory", cfg.Paths.DVDOutputDir},
		{"MP4 output directory", cfg.Paths.MP4OutputDir},
		{"AVI output directory", cfg.Paths.AVIOutputDir},
		{"Subtitle output directory", cfg.Paths.SubtitleOutputDir},
	}
	for _, dir := range optional {
		if dir.path != "" {
			results = append(results, CheckDirectoryAccess(dir.name, dir.path))
		}
	}

	if cfg.DVD.Device != "" {
		results = append(results, CheckDeviceAccess("Optical drive", cfg.DVD.Device))
	}

	return results
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDeviceAccess verifies that the block device node exists and is
// readable. Burning additionally needs write access, but read suffices to
// confirm the drive is present.
func CheckDeviceAccess(name, device string) Result {
	info, err := os.Stat(device)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", device)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", device, err)}
	}
	if info.Mode()&os.ModeDevice == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a device node)", device)}
	}
	if err := unix.Access(device, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", device, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (accessible)", device)}
}
