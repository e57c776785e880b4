package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"discforge/internal/config"
)

// Requirement defines an external tool discforge relies on.
type Requirement struct {
	Name        string
	Command     string
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

// Requirements builds the tool list from the configured commands. The
// transcoder pair is mandatory; the disc tools only matter for DVD outputs
// and ccextractor only for teletext and closed-caption sources.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "transcoding and remuxing"},
		{Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "input analysis"},
		{Name: "dvdauthor", Command: cfg.Tools.DVDAuthor, Description: "DVD structure authoring", Optional: true},
		{Name: "mkisofs", Command: cfg.Tools.Mkisofs, Description: "ISO image creation", Optional: true},
		{Name: "growisofs", Command: cfg.Tools.Growisofs, Description: "disc burning", Optional: true},
		{Name: "ccextractor", Command: cfg.Tools.CCExtractor, Description: "teletext and closed-caption extraction", Optional: true},
	}
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
		if resolved, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		} else {
			status.Command = resolved
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional tools.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
