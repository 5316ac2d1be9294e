// Package fileutil provides the local-path-safety check used by the file
// transfer operations. It has no HTTP dependencies.
package fileutil

import (
	"errors"
	"path/filepath"
)

// ErrForbiddenPath is returned when a caller-supplied local path is empty or
// not absolute.
var ErrForbiddenPath = errors.New("forbidden path")

// ResolveLocalPath validates a local destination path supplied by the
// desktop shell for sftp_download_file (§6: "empty local_path means
// download to memory"). This process only ever serves the single local user
// who picked the path via their own OS file dialog, so the only concerns are
// "non-empty" and "absolute", plus the usual ".." cleanup for defense in
// depth.
func ResolveLocalPath(path string) (string, error) {
	if path == "" {
		return "", ErrForbiddenPath
	}
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		return "", ErrForbiddenPath
	}
	return clean, nil
}
