// Package validate implements the URL/id/path validator contracts of §6:
// transport-layer input rejected before it ever reaches the engine. These
// are pure string checks the teacher would put behind an HTTP handler's
// path parameters, following the same "validators fail fast at the
// boundary" propagation policy as the rest of pkg/errors.
package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/parquedb/parquedb/pkg/errors"
)

var databaseIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// traversalPatterns catches directory traversal attempts across the raw
// value and its single/double URL-decoded forms, including the common
// obfuscations (doubled separators, `..;/`).
var traversalPatterns = []string{"..", "../", "..\\", "%2e%2e", "%252e%252e", "....//", "..;/"}

// ValidateURLParameter rejects empty/whitespace-only values, embedded
// NUL/CR/LF (raw or percent-encoded), and any directory-traversal
// sequence, raw or URL-encoded up to two layers deep.
func ValidateURLParameter(value, paramName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewURLParameterError(paramName, value, "empty_or_whitespace")
	}

	lower := strings.ToLower(value)
	for _, bad := range []string{"\x00", "%00", "\n", "\r", "%0a", "%0d"} {
		if strings.Contains(lower, bad) {
			return errors.NewURLParameterError(paramName, value, "control_character")
		}
	}

	decoded := lower
	for i := 0; i < 2; i++ {
		if unescaped, err := url.QueryUnescape(decoded); err == nil {
			decoded = unescaped
		}
	}

	for _, pattern := range traversalPatterns {
		if strings.Contains(lower, pattern) || strings.Contains(decoded, pattern) {
			return errors.NewURLParameterError(paramName, value, "path_traversal")
		}
	}

	return nil
}

// ValidateDatabaseID applies ValidateURLParameter's checks, then further
// restricts id to `[A-Za-z0-9_-]+` - no dots, slashes, or any of the
// characters that would let an id double as a path segment.
func ValidateDatabaseID(id string) error {
	if err := ValidateURLParameter(id, "databaseId"); err != nil {
		return err
	}
	if !databaseIDPattern.MatchString(id) {
		return errors.NewURLParameterError("databaseId", id, "invalid_characters")
	}
	return nil
}

// ValidateFilePath forbids a leading `/` or `\`, any `..` path segment,
// and any directory-traversal obfuscation ValidateURLParameter already
// catches; dots inside a file-name component (e.g. "file.backup.parquet")
// are permitted.
func ValidateFilePath(path string) error {
	if err := ValidateURLParameter(path, "path"); err != nil {
		return err
	}

	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return errors.NewURLParameterError("path", path, "absolute_path")
	}

	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return errors.NewURLParameterError("path", path, "path_traversal")
		}
	}

	return nil
}
