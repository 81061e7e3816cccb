package gcp

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// IsNotFound reports whether err is a GCP 404. Used to distinguish "instance
// gone between snapshot and mutation" from genuine API failures.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}

// IsConflict reports whether err is a GCP 409/412, typically a stale
// interface fingerprint from a concurrent update. The next pass resolves it
// from fresh inventory.
func IsConflict(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusConflict || gerr.Code == http.StatusPreconditionFailed
	}
	return false
}
