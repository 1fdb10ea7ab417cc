// Package prerequisites checks that the external tools a command shells
// out to are installed.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is an executable looked up on PATH.
type Tool struct {
	Name        string
	Description string
	InstallURL  string
}

// Talosctl generates machine configs.
var Talosctl = Tool{
	Name:        "talosctl",
	Description: "generates machine configs from rendered patches",
	InstallURL:  "https://www.talos.dev/latest/talos-guides/install/talosctl/",
}

// Docker runs the snapshot uploader container.
var Docker = Tool{
	Name:        "docker",
	Description: "runs hcloud-upload-image to create the Talos snapshot",
	InstallURL:  "https://docs.docker.com/engine/install/",
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// CheckResult is the outcome for one tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults collects the outcome for several tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// Error returns nil when every tool was found.
func (r *CheckResults) Error() error {
	if len(r.Missing) == 0 {
		return nil
	}
	missing := make([]string, 0, len(r.Missing))
	for _, tool := range r.Missing {
		missing = append(missing, fmt.Sprintf("%s, %s (%s)", tool.Name, tool.Description, tool.InstallURL))
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, "; "))
}

// Check looks up every tool on PATH.
func Check(tools ...Tool) *CheckResults {
	results := &CheckResults{}
	for _, tool := range tools {
		result := CheckResult{Tool: tool}
		if path, err := lookPath(tool.Name); err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}
		results.Results = append(results.Results, result)
	}
	return results
}

// Require is Check followed by Error.
func Require(tools ...Tool) error {
	return Check(tools...).Error()
}
