package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"laughprep/internal/config"
	"laughprep/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if r, ok := statDirectory(name, path); !ok {
		return r
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	if r, ok := statDirectory(name, path); !ok {
		return r
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckFileReadable verifies that path is a readable regular file.
func CheckFileReadable(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckFreeSpace verifies that the filesystem holding path (or its nearest
// existing ancestor) has at least minMiB available.
func CheckFreeSpace(name, path string, minMiB uint64) Result {
	target := nearestExisting(path)
	var st unix.Statfs_t
	if err := unix.Statfs(target, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", target, err)}
	}
	freeMiB := uint64(st.Bavail) * uint64(st.Bsize) / (1024 * 1024)
	detail := fmt.Sprintf("%s (%d MiB free, %d MiB required)", target, freeMiB, minMiB)
	if freeMiB < minMiB {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the external programs the configuration invokes.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	var requirements []deps.Requirement
	if cfg.Resample.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "Resampler",
			Command:     cfg.ResampleBinary(),
			Description: "Required to convert source audio to the pipeline rate",
		})
	}
	command := cfg.Spk2UttCommand()
	req := deps.Requirement{
		Name:        "spk2utt converter",
		Description: "Required to derive spk2utt from utt2spk",
	}
	if len(command) > 0 {
		req.Command = command[0]
		req.Files = scriptArgs(command[1:])
	}
	requirements = append(requirements, req)
	return deps.CheckBinaries(requirements)
}

// scriptArgs returns the arguments that look like script files rather than flags.
func scriptArgs(args []string) []string {
	var files []string
	for _, arg := range args {
		if arg == "" || arg[0] == '-' {
			continue
		}
		if filepath.Ext(arg) != "" || filepath.Base(arg) != arg {
			files = append(files, arg)
		}
	}
	return files
}

func statDirectory(name, path string) (Result, bool) {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}, false
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, false
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}, false
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}, false
	}
	return Result{}, true
}

func nearestExisting(path string) string {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
