package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Requirement defines an external program laughprep invokes. Files lists
// companion files the command needs, such as an interpreter's script.
type Requirement struct {
	Name        string
	Command     string
	Files       []string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		if missing := firstMissing(req.Files); missing != "" {
			status.Detail = fmt.Sprintf("file %q not found", missing)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

func firstMissing(files []string) string {
	for _, file := range files {
		file = strings.TrimSpace(file)
		if file == "" {
			continue
		}
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			return file
		}
	}
	return ""
}
