// Package compat holds the extension compatibility table for Modoboa
// releases and the version arithmetic used to query it.
package compat

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidVersionFormat is returned when a version string cannot be
// parsed into dotted numeric segments.
var ErrInvalidVersionFormat = errors.New("invalid version format")

// segmentWeight leaves room for four-digit segments ("1.10.0" < "1.100.0").
const segmentWeight = 10000

// maxSegments is the number of dotted segments a release version carries.
const maxSegments = 3

// VersionKey converts a dotted numeric version string into an integer
// that orders the same way the versions do. Missing trailing segments
// count as zero, so "1.9" and "1.9.0" map to the same key.
func VersionKey(version string) (int64, error) {
	segments := strings.Split(version, ".")
	if len(segments) > maxSegments {
		return 0, errors.Wrapf(ErrInvalidVersionFormat, "%q has too many segments", version)
	}
	var key int64
	for i := 0; i < maxSegments; i++ {
		var n int64
		if i < len(segments) {
			parsed, err := strconv.ParseInt(segments[i], 10, 64)
			if err != nil || parsed < 0 || parsed >= segmentWeight {
				return 0, errors.Wrapf(ErrInvalidVersionFormat, "%q segment %d", version, i+1)
			}
			n = parsed
		}
		key = key*segmentWeight + n
	}
	return key, nil
}

// OlderThan reports whether version a precedes version b.
func OlderThan(a, b string) (bool, error) {
	ka, err := VersionKey(a)
	if err != nil {
		return false, err
	}
	kb, err := VersionKey(b)
	if err != nil {
		return false, err
	}
	return ka < kb, nil
}
