// Package releaseerrors defines the failure taxonomy of a release run.
//
// Every precondition and publishing step fails with an *Error carrying a Kind.
// Kinds are compared with errors.Is against the exported sentinels, and
// ExitCode maps any error to the process exit status.
package releaseerrors

import (
	"errors"
	"fmt"
)

// Kind classifies a release failure.
type Kind string

// Failure kinds.
const (
	KindUsage             Kind = "usage"
	KindMalformedVersion  Kind = "malformed_version"
	KindToolingMissing    Kind = "tooling_missing"
	KindDuplicateTag      Kind = "duplicate_tag"
	KindTagMissing        Kind = "tag_missing"
	KindManifestMissing   Kind = "manifest_missing"
	KindSigningKeyMissing Kind = "signing_key_missing"
	KindOwnership         Kind = "ownership"
	KindEmptyReleaseNotes Kind = "empty_release_notes"
	KindManifestUpdate    Kind = "manifest_update"
	KindOutOfSync         Kind = "out_of_sync"
	KindPublish           Kind = "publish"
)

const (
	// ExitCodeUsage is returned for invocation errors and a missing signing key.
	ExitCodeUsage = 2
	// ExitCodeFailure is returned for every other failure.
	ExitCodeFailure = 1
	// ExitCodeSuccess is returned when the release completed.
	ExitCodeSuccess = 0

	messageWithCauseTemplateConstant = "%s: %v"
)

// Sentinels for errors.Is comparisons. Only the kind is compared.
var (
	ErrUsage             = &Error{Kind: KindUsage}
	ErrMalformedVersion  = &Error{Kind: KindMalformedVersion}
	ErrToolingMissing    = &Error{Kind: KindToolingMissing}
	ErrDuplicateTag      = &Error{Kind: KindDuplicateTag}
	ErrTagMissing        = &Error{Kind: KindTagMissing}
	ErrManifestMissing   = &Error{Kind: KindManifestMissing}
	ErrSigningKeyMissing = &Error{Kind: KindSigningKeyMissing}
	ErrOwnership         = &Error{Kind: KindOwnership}
	ErrEmptyReleaseNotes = &Error{Kind: KindEmptyReleaseNotes}
	ErrManifestUpdate    = &Error{Kind: KindManifestUpdate}
	ErrOutOfSync         = &Error{Kind: KindOutOfSync}
	ErrPublish           = &Error{Kind: KindPublish}
)

// Error is a classified release failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error renders the message and, when present, the cause.
func (failure *Error) Error() string {
	message := failure.Message
	if len(message) == 0 {
		message = string(failure.Kind)
	}
	if failure.Cause == nil {
		return message
	}
	return fmt.Sprintf(messageWithCauseTemplateConstant, message, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure *Error) Unwrap() error {
	return failure.Cause
}

// Is reports whether target is an *Error of the same kind.
func (failure *Error) Is(target error) bool {
	targetError, isReleaseError := target.(*Error)
	if !isReleaseError {
		return false
	}
	return targetError.Kind == failure.Kind
}

// New constructs an Error with a formatted message.
func New(kind Kind, format string, arguments ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, arguments...)}
}

// Wrap constructs an Error with a formatted message and a cause.
func Wrap(kind Kind, cause error, format string, arguments ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, arguments...), Cause: cause}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var releaseError *Error
	if !errors.As(err, &releaseError) {
		return "", false
	}
	return releaseError.Kind, true
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	kind, classified := KindOf(err)
	if !classified {
		return ExitCodeFailure
	}
	switch kind {
	case KindUsage, KindSigningKeyMissing:
		return ExitCodeUsage
	default:
		return ExitCodeFailure
	}
}
