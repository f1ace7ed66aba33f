package ids

import (
	"errors"
	"fmt"
)

// ErrorKind tags a domain failure so a calling agent can branch on it
// programmatically instead of parsing message text.
type ErrorKind string

const (
	// Input-shape errors: detected locally before any mutation.
	KindInvalidIfcVersion           ErrorKind = "InvalidIfcVersion"
	KindInvalidCardinalityBounds    ErrorKind = "InvalidCardinalityBounds"
	KindInvalidLocation             ErrorKind = "InvalidLocation"
	KindInvalidCardinality          ErrorKind = "InvalidCardinality"
	KindInvalidBaseType             ErrorKind = "InvalidBaseType"
	KindUnknownParameter            ErrorKind = "UnknownParameter"
	KindEmptyRestriction            ErrorKind = "EmptyRestriction"
	KindEmptyEnumeration            ErrorKind = "EmptyEnumeration"
	KindEmptyPatternRestriction     ErrorKind = "EmptyPatternRestriction"
	KindEmptyBoundsRestriction      ErrorKind = "EmptyBoundsRestriction"
	KindEmptyLengthRestriction      ErrorKind = "EmptyLengthRestriction"
	KindConflictingLengthConstraint ErrorKind = "ConflictingLengthConstraint"
	KindConflictingRestrictionKinds ErrorKind = "ConflictingRestrictionKinds"

	// Schema-shape errors: caught by early validators so they surface at the
	// offending call instead of as an opaque XSD failure at export time.
	KindDuplicateEntityInApplicability ErrorKind = "DuplicateEntityInApplicability"
	KindMissingPropertySet             ErrorKind = "MissingPropertySet"

	// Lookup errors.
	KindSpecificationNotFound ErrorKind = "SpecificationNotFound"
	KindFacetNotFound         ErrorKind = "FacetNotFound"

	// Delegated/external errors.
	KindXsdValidationFailed        ErrorKind = "XsdValidationFailed"
	KindParseFailed                ErrorKind = "ParseFailed"
	KindModelFileNotFound          ErrorKind = "ModelFileNotFound"
	KindNoSpecificationsToValidate ErrorKind = "NoSpecificationsToValidate"
)

// Error is a typed domain failure. Message names the offending entity;
// Hint, when present, tells the caller how to fix the call.
type Error struct {
	Kind    ErrorKind
	Message string
	Hint    string
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("[%s] %s\n\n%s", e.Kind, e.Message, e.Hint)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func newErrorWithHint(kind ErrorKind, hint, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Hint: hint}
}

// ErrNoSpecifications is returned when model validation is requested against
// an empty document.
func ErrNoSpecifications() error {
	return newError(KindNoSpecificationsToValidate,
		"IDS has no specifications to validate against")
}

// KindOf extracts the ErrorKind from err, or "" if err is not a domain error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
