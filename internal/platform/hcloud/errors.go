package hcloud

import (
	"errors"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// Cause is a short operator-facing description of why an API call failed.
type Cause string

const (
	CauseUnknown      Cause = ""
	CauseNotFound     Cause = "not found"
	CauseUnauthorized Cause = "HCLOUD_TOKEN rejected"
	CauseRateLimited  Cause = "rate limit exceeded"
	CauseQuota        Cause = "resource limit exceeded"
	CauseNameTaken    Cause = "name already in use"
	CauseConflict     Cause = "conflicting action in progress"
)

var causes = map[hcloud.ErrorCode]Cause{
	hcloud.ErrorCodeNotFound:              CauseNotFound,
	hcloud.ErrorCodeUnauthorized:          CauseUnauthorized,
	hcloud.ErrorCodeForbidden:             CauseUnauthorized,
	hcloud.ErrorCodeRateLimitExceeded:     CauseRateLimited,
	hcloud.ErrorCodeResourceLimitExceeded: CauseQuota,
	hcloud.ErrorCodeUniquenessError:       CauseNameTaken,
	hcloud.ErrorCodeConflict:              CauseConflict,
}

// Classify maps an hcloud API error, possibly wrapped, to its Cause.
// Errors that are not API errors yield CauseUnknown.
func Classify(err error) Cause {
	var apiErr hcloud.Error
	if !errors.As(err, &apiErr) {
		return CauseUnknown
	}
	return causes[apiErr.Code]
}
