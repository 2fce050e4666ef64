// Package errors provides common domain error types for the newscast pipeline.
//
// This package defines sentinel errors for common domain conditions like an
// unknown segment type or an invalid configuration that can be used across all
// packages. Using typed errors enables consistent error handling patterns with
// errors.Is() checks.
package errors

import "errors"

// Domain errors - common sentinel errors for pipeline conditions.
var (
	// ErrConfiguration indicates an invalid or unknown segment definition or
	// option combination. Fatal: the current step aborts before any I/O.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnknownSegment indicates a script references a segment type that is
	// not present in the active definition set. Fatal for that script only.
	ErrUnknownSegment = errors.New("unknown segment type")

	// ErrMediaNotFound indicates an expected media asset was not found.
	// Non-fatal: the segment proceeds with fewer or zero attachments.
	ErrMediaNotFound = errors.New("media asset not found")

	// ErrManifestNotFound indicates a persisted manifest does not exist yet.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrNoCredentials indicates no API key is stored for a vendor.
	ErrNoCredentials = errors.New("no credentials stored")
)

// IsConfiguration reports whether any error in err's chain is ErrConfiguration.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsUnknownSegment reports whether any error in err's chain is ErrUnknownSegment.
func IsUnknownSegment(err error) bool {
	return errors.Is(err, ErrUnknownSegment)
}

// IsMediaNotFound reports whether any error in err's chain is ErrMediaNotFound.
func IsMediaNotFound(err error) bool {
	return errors.Is(err, ErrMediaNotFound)
}

// IsManifestNotFound reports whether any error in err's chain is ErrManifestNotFound.
func IsManifestNotFound(err error) bool {
	return errors.Is(err, ErrManifestNotFound)
}
