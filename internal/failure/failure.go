// Package failure defines the error kinds shared across the split pipeline.
//
// Every error that crosses a package boundary is marked with exactly one of
// the sentinel kinds below, so callers classify with errors.Is regardless of
// how many times the error was wrapped on the way up.
package failure

import (
	"github.com/cockroachdb/errors"
)

// Error kinds. The first three are fatal and abort a run before any
// extraction starts; ErrExtraction is recorded per job and never aborts
// sibling jobs.
var (
	ErrMetadata    = errors.New("metadata error")
	ErrPlan        = errors.New("plan error")
	ErrEnvironment = errors.New("environment error")
	ErrExtraction  = errors.New("extraction error")
)

// Kind is a printable name for an error kind.
type Kind string

const (
	KindMetadata    Kind = "MetadataError"
	KindPlan        Kind = "PlanError"
	KindEnvironment Kind = "EnvironmentError"
	KindExtraction  Kind = "ExtractionError"
	KindUnknown     Kind = "Error"
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrMetadata, KindMetadata},
	{ErrPlan, KindPlan},
	{ErrEnvironment, KindEnvironment},
	{ErrExtraction, KindExtraction},
}

// Metadataf returns a new error marked as ErrMetadata.
func Metadataf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrMetadata)
}

// Planf returns a new error marked as ErrPlan.
func Planf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrPlan)
}

// Environmentf returns a new error marked as ErrEnvironment.
func Environmentf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrEnvironment)
}

// Extractionf returns a new error marked as ErrExtraction.
func Extractionf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrExtraction)
}

// Mark wraps err with a message and tags it with kind. A nil err stays nil.
func Mark(err error, kind error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.WrapWithDepthf(1, err, format, args...), kind)
}

// KindOf reports the first matching kind of err, or KindUnknown.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

// IsFatal reports whether err aborts a run before any extraction begins.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMetadata) ||
		errors.Is(err, ErrPlan) ||
		errors.Is(err, ErrEnvironment)
}
