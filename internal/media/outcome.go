package media

import (
	"errors"
	"fmt"
)

// ErrLocalWrite marks a download that failed because the destination could
// not be written. Unlike network failures it is not a per-record problem,
// so batch runs stop on it.
var ErrLocalWrite = errors.New("media: local write failed")

// Status is the result class of a download attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// DownloadOutcome is the result of one Fetch.
type DownloadOutcome struct {
	Status    Status
	LocalPath string
	Reason    string
	Err       error
}

// Success reports a completed download.
func Success(path string) DownloadOutcome {
	return DownloadOutcome{Status: StatusSuccess, LocalPath: path}
}

// Skipped reports a download that was not attempted.
func Skipped(reason string) DownloadOutcome {
	return DownloadOutcome{Status: StatusSkipped, Reason: reason}
}

// Failed reports a failed download with a human-readable reason.
func Failed(reason string, err error) DownloadOutcome {
	return DownloadOutcome{Status: StatusFailed, Reason: reason, Err: err}
}

// Fatal reports whether the failure should abort the batch.
func (o DownloadOutcome) Fatal() bool {
	return errors.Is(o.Err, ErrLocalWrite)
}

func (o DownloadOutcome) String() string {
	switch o.Status {
	case StatusSuccess:
		return "success: " + o.LocalPath
	default:
		return fmt.Sprintf("%s: %s", o.Status, o.Reason)
	}
}

// Availability is the verdict of a reachability probe.
type Availability struct {
	Working    bool
	StatusCode int
	Detail     string
}

// Broken returns a failed verdict.
func Broken(detail string) Availability {
	return Availability{Detail: detail}
}
