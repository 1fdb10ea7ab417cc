package infrastructure

import (
	"fmt"

	hcloudplatform "github.com/imamik/talhybrid/internal/platform/hcloud"
	"github.com/imamik/talhybrid/internal/platform/robot"
)

// describeCause names the reason behind a failed Cloud or Robot call, or
// returns "" when the error carries no known API code.
func describeCause(err error) string {
	if c := hcloudplatform.Classify(err); c != hcloudplatform.CauseUnknown {
		return string(c)
	}
	switch {
	case robot.IsUnauthorized(err):
		return "Robot credentials rejected"
	case robot.IsRateLimited(err):
		return "Robot rate limit exceeded"
	case robot.IsNotFound(err):
		return "not found"
	}
	return ""
}

// failure wraps err under sentinel, naming the resource and, when known,
// the cause.
func failure(sentinel error, what string, err error) error {
	if c := describeCause(err); c != "" {
		return fmt.Errorf("%w: %s [%s]: %w", sentinel, what, c, err)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, what, err)
}
